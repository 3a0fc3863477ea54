// Package domain contains core concepts of the chat service.
// No runtime, network, or storage logic should be added here.
package domain

// UserID identifies a registered account.
type UserID string

// SessionID identifies one live transport connection. It is the single
// canonical session reference: room rosters never carry their own copy,
// they resolve sessions through the registry at fanout time.
type SessionID string

// RoomID identifies a chat room.
type RoomID string

// UserSession binds an identity to its current connection.
// One active session per user; the last connection wins.
type UserSession struct {
	UserID    UserID
	SessionID SessionID
}

// Member is one entry of a room roster.
type Member struct {
	UserID      UserID `json:"userId"`
	DisplayName string `json:"username"`
}
