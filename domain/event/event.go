// Package event defines the outbound events emitted by the fanout engine.
// EventName doubles as the wire envelope type consumed by clients.
package event

import (
	"chat-hub/domain"

	"github.com/google/uuid"
)

type OutboundEvent interface {
	EventName() string
}

// Delivery pairs an outbound event with the session it targets.
// The fanout engine produces deliveries; the fanout worker sends them.
type Delivery struct {
	SessionID domain.SessionID
	Event     OutboundEvent
}

// OnlineUsers is the full online identity list, broadcast to every
// connected session after any registry mutation.
type OnlineUsers struct {
	Users []domain.UserID `json:"users"`
}

func (OnlineUsers) EventName() string { return "getUsers" }

// RoomRoster is the full membership of one room, broadcast to the whole
// room (joiner included) after any membership mutation.
type RoomRoster struct {
	RoomID domain.RoomID   `json:"roomId"`
	Users  []domain.Member `json:"users"`
}

func (RoomRoster) EventName() string { return "roomUsers" }

// UserJoinedRoom goes to the other members only, never the joiner.
type UserJoinedRoom struct {
	RoomID      domain.RoomID `json:"roomId"`
	UserID      domain.UserID `json:"userId"`
	DisplayName string        `json:"username"`
}

func (UserJoinedRoom) EventName() string { return "userJoinedRoom" }

// UserLeftRoom goes to the remaining members, whether the departure was an
// explicit leave or a disconnect sweep.
type UserLeftRoom struct {
	RoomID      domain.RoomID `json:"roomId"`
	UserID      domain.UserID `json:"userId"`
	DisplayName string        `json:"username"`
}

func (UserLeftRoom) EventName() string { return "userLeftRoom" }

type DirectMessageReceived struct {
	domain.DirectMessage
}

func (DirectMessageReceived) EventName() string { return "getMessage" }

type RoomMessageReceived struct {
	domain.RoomMessage
}

func (RoomMessageReceived) EventName() string { return "roomMessage" }

type UserTyping struct {
	SenderID domain.UserID `json:"senderId"`
}

func (UserTyping) EventName() string { return "userTyping" }

type UserStoppedTyping struct {
	SenderID domain.UserID `json:"senderId"`
}

func (UserStoppedTyping) EventName() string { return "userStoppedTyping" }

type UserTypingInRoom struct {
	RoomID      domain.RoomID `json:"roomId"`
	UserID      domain.UserID `json:"userId"`
	DisplayName string        `json:"username"`
}

func (UserTypingInRoom) EventName() string { return "userTypingInRoom" }

type UserStoppedTypingInRoom struct {
	RoomID domain.RoomID `json:"roomId"`
	UserID domain.UserID `json:"userId"`
}

func (UserStoppedTypingInRoom) EventName() string { return "userStoppedTypingInRoom" }

type DirectMessageDeleted struct {
	MessageID uuid.UUID `json:"messageId"`
}

func (DirectMessageDeleted) EventName() string { return "messageDeleted" }

type RoomMessageDeleted struct {
	RoomID    domain.RoomID `json:"roomId"`
	MessageID uuid.UUID     `json:"messageId"`
}

func (RoomMessageDeleted) EventName() string { return "roomMessageDeleted" }
