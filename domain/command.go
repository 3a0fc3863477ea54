package domain

import "github.com/google/uuid"

// Command is an inbound event consumed by the coordinator. Commands are
// validated at the transport edge; a command that reaches the coordinator
// is structurally complete and already authorized.
type Command interface {
	CommandName() string
}

// AddUserCommand binds an identity to its transport session.
type AddUserCommand struct {
	UserID    UserID    `validate:"required"`
	SessionID SessionID `validate:"required"`
}

func (AddUserCommand) CommandName() string { return "addUser" }

type JoinRoomCommand struct {
	RoomID      RoomID `validate:"required"`
	UserID      UserID `validate:"required"`
	DisplayName string `validate:"required"`
}

func (JoinRoomCommand) CommandName() string { return "joinRoom" }

type LeaveRoomCommand struct {
	RoomID      RoomID `validate:"required"`
	UserID      UserID `validate:"required"`
	DisplayName string
}

func (LeaveRoomCommand) CommandName() string { return "leaveRoom" }

type SendDirectMessageCommand struct {
	Message DirectMessage
}

func (SendDirectMessageCommand) CommandName() string { return "sendMessage" }

type SendRoomMessageCommand struct {
	Message RoomMessage
}

func (SendRoomMessageCommand) CommandName() string { return "sendRoomMessage" }

type TypingCommand struct {
	SenderID   UserID `validate:"required"`
	ReceiverID UserID `validate:"required"`
}

func (TypingCommand) CommandName() string { return "typing" }

type StopTypingCommand struct {
	SenderID   UserID `validate:"required"`
	ReceiverID UserID `validate:"required"`
}

func (StopTypingCommand) CommandName() string { return "stopTyping" }

type RoomTypingCommand struct {
	RoomID      RoomID `validate:"required"`
	UserID      UserID `validate:"required"`
	DisplayName string `validate:"required"`
}

func (RoomTypingCommand) CommandName() string { return "roomTyping" }

type RoomStopTypingCommand struct {
	RoomID RoomID `validate:"required"`
	UserID UserID `validate:"required"`
}

func (RoomStopTypingCommand) CommandName() string { return "roomStopTyping" }

// DeleteDirectMessageCommand notifies the receiver that a message is gone.
// The 15-minute window and sender check happened before dispatch.
type DeleteDirectMessageCommand struct {
	MessageID  uuid.UUID `validate:"required"`
	ReceiverID UserID    `validate:"required"`
}

func (DeleteDirectMessageCommand) CommandName() string { return "messageDeleted" }

// DeleteRoomMessageCommand notifies a room that a message is gone.
// ActorID, when set, is excluded from the fanout: the deleting client
// already removed the message locally.
type DeleteRoomMessageCommand struct {
	RoomID    RoomID    `validate:"required"`
	MessageID uuid.UUID `validate:"required"`
	ActorID   UserID
}

func (DeleteRoomMessageCommand) CommandName() string { return "roomMessageDeleted" }

// DisconnectCommand is the transport-level connection teardown.
type DisconnectCommand struct {
	SessionID SessionID `validate:"required"`
}

func (DisconnectCommand) CommandName() string { return "disconnect" }
