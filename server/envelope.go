package server

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Envelope is the websocket wire frame, inbound and outbound:
// {"event": "joinRoom", "data": {...}}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

var validate = validator.New()

func encodeEvent(e event.OutboundEvent) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: e.EventName(), Data: data})
}

// decodeCommand turns an inbound frame into a domain command. Identity
// fields come from the authenticated session, never from the payload, so
// a client cannot speak for another user.
func decodeCommand(env Envelope, userID domain.UserID, username string, sessionID domain.SessionID) (domain.Command, error) {
	switch env.Event {
	case "addUser":
		return domain.AddUserCommand{UserID: userID, SessionID: sessionID}, nil

	case "joinRoom":
		var payload struct {
			RoomID domain.RoomID `json:"roomId" validate:"required"`
		}
		if err := unmarshalPayload(env.Data, &payload); err != nil {
			return nil, err
		}
		return domain.JoinRoomCommand{RoomID: payload.RoomID, UserID: userID, DisplayName: username}, nil

	case "leaveRoom":
		var payload struct {
			RoomID domain.RoomID `json:"roomId" validate:"required"`
		}
		if err := unmarshalPayload(env.Data, &payload); err != nil {
			return nil, err
		}
		return domain.LeaveRoomCommand{RoomID: payload.RoomID, UserID: userID, DisplayName: username}, nil

	case "typing", "stopTyping":
		var payload struct {
			ReceiverID domain.UserID `json:"receiverId" validate:"required"`
		}
		if err := unmarshalPayload(env.Data, &payload); err != nil {
			return nil, err
		}
		if env.Event == "typing" {
			return domain.TypingCommand{SenderID: userID, ReceiverID: payload.ReceiverID}, nil
		}
		return domain.StopTypingCommand{SenderID: userID, ReceiverID: payload.ReceiverID}, nil

	case "roomTyping":
		var payload struct {
			RoomID domain.RoomID `json:"roomId" validate:"required"`
		}
		if err := unmarshalPayload(env.Data, &payload); err != nil {
			return nil, err
		}
		return domain.RoomTypingCommand{RoomID: payload.RoomID, UserID: userID, DisplayName: username}, nil

	case "roomStopTyping":
		var payload struct {
			RoomID domain.RoomID `json:"roomId" validate:"required"`
		}
		if err := unmarshalPayload(env.Data, &payload); err != nil {
			return nil, err
		}
		return domain.RoomStopTypingCommand{RoomID: payload.RoomID, UserID: userID}, nil

	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownCommand, env.Event)
	}
}

func unmarshalPayload(data json.RawMessage, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	return validate.Struct(v)
}
