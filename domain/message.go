// Package domain contains core concepts of the chat service.
// This file defines message envelopes. Messages are immutable once built;
// persistence and authorization happen before they reach the coordinator.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReplyRef points at the message being replied to, denormalized so
// clients can render the quote without a second lookup.
type ReplyRef struct {
	ID         uuid.UUID `json:"id"`
	Text       string    `json:"text"`
	SenderName string    `json:"senderName"`
}

// DirectMessage is a one-to-one message envelope.
type DirectMessage struct {
	ID         uuid.UUID `json:"messageId" validate:"required"`
	SenderID   UserID    `json:"senderId" validate:"required"`
	SenderName string    `json:"senderName" validate:"required"`
	ReceiverID UserID    `json:"receiverId" validate:"required"`
	Text       string    `json:"text" validate:"required"`
	CreatedAt  time.Time `json:"createdAt"`
	ReplyTo    *ReplyRef `json:"replyTo,omitempty"`
	Read       bool      `json:"read"`
}

// RoomMessage is a message envelope fanned out to a whole room.
type RoomMessage struct {
	ID         uuid.UUID `json:"messageId" validate:"required"`
	RoomID     RoomID    `json:"roomId" validate:"required"`
	SenderID   UserID    `json:"senderId" validate:"required"`
	SenderName string    `json:"senderName" validate:"required"`
	Text       string    `json:"text" validate:"required"`
	CreatedAt  time.Time `json:"createdAt"`
	ReplyTo    *ReplyRef `json:"replyTo,omitempty"`
}

// Conversation groups the direct messages between two users.
type Conversation struct {
	ID            uuid.UUID  `json:"id"`
	Participants  [2]UserID  `json:"participants"`
	LastMessageID *uuid.UUID `json:"lastMessageId,omitempty"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}
