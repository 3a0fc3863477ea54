package server

import (
	"chat-hub/domain"
	"chat-hub/services"
	"chat-hub/sink"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Client is one websocket session. The read pump turns inbound frames
// into dispatched commands or service calls; the write pump drains the
// session sink so each session sees events in emission order.
type Client struct {
	sessionID domain.SessionID
	userID    domain.UserID
	username  string

	conn *websocket.Conn
	sink *sink.SessionSink

	chat  services.IChatService
	rooms services.IRoomService
	wsh   *WSHandler
	log   *slog.Logger
}

func (c *Client) readPump() {
	defer func() {
		c.wsh.orchestrator.Disconnect(c.sessionID)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("websocket closed unexpectedly", slog.Any("error", err))
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.log.Warn("rejecting malformed frame",
				slog.String("session_id", string(c.sessionID)),
				slog.Any("error", err))
			continue
		}
		c.handleFrame(env)
	}
}

// handleFrame routes one inbound frame. Malformed payloads are rejected
// and logged, never partially applied.
func (c *Client) handleFrame(env Envelope) {
	switch env.Event {
	case "sendMessage":
		var payload struct {
			ReceiverID domain.UserID    `json:"receiverId" validate:"required"`
			Text       string           `json:"text" validate:"required"`
			ReplyTo    *domain.ReplyRef `json:"replyTo"`
		}
		if err := unmarshalPayload(env.Data, &payload); err != nil {
			c.rejectFrame(env.Event, err)
			return
		}
		sender := domain.User{ID: c.userID, Username: c.username}
		if _, err := c.chat.SendDirectMessage(sender, payload.ReceiverID, payload.Text, payload.ReplyTo); err != nil {
			c.log.Warn("sendMessage failed", slog.Any("error", err))
		}

	case "sendRoomMessage":
		var payload struct {
			RoomID  domain.RoomID    `json:"roomId" validate:"required"`
			Text    string           `json:"text" validate:"required"`
			ReplyTo *domain.ReplyRef `json:"replyTo"`
		}
		if err := unmarshalPayload(env.Data, &payload); err != nil {
			c.rejectFrame(env.Event, err)
			return
		}
		sender := domain.User{ID: c.userID, Username: c.username}
		if _, err := c.rooms.PostRoomMessage(sender, payload.RoomID, payload.Text, payload.ReplyTo); err != nil {
			c.log.Warn("sendRoomMessage failed", slog.Any("error", err))
		}

	case "messageDeleted":
		var payload struct {
			MessageID uuid.UUID `json:"messageId" validate:"required"`
		}
		if err := unmarshalPayload(env.Data, &payload); err != nil {
			c.rejectFrame(env.Event, err)
			return
		}
		if err := c.chat.DeleteDirectMessage(payload.MessageID, c.userID); err != nil {
			c.log.Warn("messageDeleted failed", slog.Any("error", err))
		}

	case "roomMessageDeleted":
		var payload struct {
			MessageID uuid.UUID `json:"messageId" validate:"required"`
		}
		if err := unmarshalPayload(env.Data, &payload); err != nil {
			c.rejectFrame(env.Event, err)
			return
		}
		if err := c.rooms.DeleteRoomMessage(payload.MessageID, c.userID); err != nil {
			c.log.Warn("roomMessageDeleted failed", slog.Any("error", err))
		}

	default:
		cmd, err := decodeCommand(env, c.userID, c.username, c.sessionID)
		if err != nil {
			c.rejectFrame(env.Event, err)
			return
		}
		c.wsh.orchestrator.Dispatch(cmd)
	}
}

func (c *Client) rejectFrame(event string, err error) {
	c.log.Warn("rejecting frame",
		slog.String("event", event),
		slog.String("session_id", string(c.sessionID)),
		slog.Any("error", err))
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case e, ok := <-c.sink.Events:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			frame, err := encodeEvent(e)
			if err != nil {
				c.log.Error("failed to encode outbound event",
					slog.String("event", e.EventName()),
					slog.Any("error", err))
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func newSessionID() domain.SessionID {
	return domain.SessionID(uuid.NewString())
}
