package runtime

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/domain/event"
	"fmt"
	"log/slog"
	"sync"
)

// Coordinator is the single owner of all presence state: the session
// registry and the room membership table. Every mutation is serialized
// through its mutex, so concurrent events for the same user or room are
// linearized: no lost updates, no duplicate cleanup. It holds no I/O;
// each handler mutates state, then computes the resulting deliveries from
// the state *after* the mutation, never from a stale snapshot.
type Coordinator struct {
	mu       sync.Mutex
	log      *slog.Logger
	registry *Registry
	rooms    *RoomTable
	fanout   *Fanout
}

var _ contract.ICoordinator = (*Coordinator)(nil)

func NewCoordinator(log *slog.Logger) *Coordinator {
	registry := NewRegistry()
	rooms := NewRoomTable()
	return &Coordinator{
		log:      log,
		registry: registry,
		rooms:    rooms,
		fanout:   NewFanout(registry, rooms),
	}
}

// Connect attaches a transport session's sink before any identity is known.
// The connection is in the CONNECTED state: reachable, but not yet present.
func (c *Coordinator) Connect(sessionID domain.SessionID, sink contract.EventSink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registry.Attach(sessionID, sink)
}

// Sink resolves a session's receiving end for the fanout worker.
func (c *Coordinator) Sink(sessionID domain.SessionID) (contract.EventSink, bool) {
	return c.registry.Sink(sessionID)
}

// Handle applies one inbound command and returns the deliveries it produced.
func (c *Coordinator) Handle(cmd domain.Command) []event.Delivery {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch cmd := cmd.(type) {
	case domain.AddUserCommand:
		return c.addUser(cmd)
	case domain.JoinRoomCommand:
		return c.joinRoom(cmd)
	case domain.LeaveRoomCommand:
		return c.leaveRoom(cmd)
	case domain.SendDirectMessageCommand:
		return c.fanout.ToUser(cmd.Message.ReceiverID, event.DirectMessageReceived{DirectMessage: cmd.Message})
	case domain.SendRoomMessageCommand:
		return c.fanout.ToRoom(cmd.Message.RoomID, event.RoomMessageReceived{RoomMessage: cmd.Message})
	case domain.TypingCommand:
		return c.fanout.ToUser(cmd.ReceiverID, event.UserTyping{SenderID: cmd.SenderID})
	case domain.StopTypingCommand:
		return c.fanout.ToUser(cmd.ReceiverID, event.UserStoppedTyping{SenderID: cmd.SenderID})
	case domain.RoomTypingCommand:
		return c.fanout.ToRoomExcept(cmd.RoomID, cmd.UserID,
			event.UserTypingInRoom{RoomID: cmd.RoomID, UserID: cmd.UserID, DisplayName: cmd.DisplayName})
	case domain.RoomStopTypingCommand:
		return c.fanout.ToRoomExcept(cmd.RoomID, cmd.UserID,
			event.UserStoppedTypingInRoom{RoomID: cmd.RoomID, UserID: cmd.UserID})
	case domain.DeleteDirectMessageCommand:
		return c.fanout.ToUser(cmd.ReceiverID, event.DirectMessageDeleted{MessageID: cmd.MessageID})
	case domain.DeleteRoomMessageCommand:
		return c.fanout.ToRoomExcept(cmd.RoomID, cmd.ActorID,
			event.RoomMessageDeleted{RoomID: cmd.RoomID, MessageID: cmd.MessageID})
	case domain.DisconnectCommand:
		return c.disconnect(cmd.SessionID)
	default:
		c.log.Warn("Unknown command dropped", "command", cmd.CommandName())
		return nil
	}
}

// addUser moves the connection to the IDENTIFIED state and broadcasts the
// refreshed online list to everyone. Last connection wins on reconnect.
func (c *Coordinator) addUser(cmd domain.AddUserCommand) []event.Delivery {
	if _, ok := c.registry.Sink(cmd.SessionID); !ok {
		// The transport already tore this session down; identifying it now
		// would resurrect presence with no connection behind it.
		c.log.Debug("addUser for a gone session discarded",
			"user_id", cmd.UserID, "session_id", cmd.SessionID)
		return nil
	}
	c.registry.Identify(domain.UserSession{UserID: cmd.UserID, SessionID: cmd.SessionID})
	return c.fanout.Online()
}

func (c *Coordinator) joinRoom(cmd domain.JoinRoomCommand) []event.Delivery {
	if _, ok := c.registry.Lookup(cmd.UserID); !ok {
		// A join racing its own disconnect is discarded whole, never
		// half-applied: the session is gone, so membership would leak.
		c.log.Debug("join without a live session discarded",
			"user_id", cmd.UserID, "room_id", cmd.RoomID)
		return nil
	}

	rejoined := c.rooms.Join(cmd.RoomID, cmd.UserID, cmd.DisplayName)

	var deliveries []event.Delivery
	if !rejoined {
		deliveries = c.fanout.ToRoomExcept(cmd.RoomID, cmd.UserID,
			event.UserJoinedRoom{RoomID: cmd.RoomID, UserID: cmd.UserID, DisplayName: cmd.DisplayName})
	}
	roster := event.RoomRoster{RoomID: cmd.RoomID, Users: c.rooms.MembersOf(cmd.RoomID)}
	return append(deliveries, c.fanout.ToRoom(cmd.RoomID, roster)...)
}

func (c *Coordinator) leaveRoom(cmd domain.LeaveRoomCommand) []event.Delivery {
	if !c.rooms.Leave(cmd.RoomID, cmd.UserID) {
		c.log.Debug("leave for unknown room or member ignored",
			"user_id", cmd.UserID, "room_id", cmd.RoomID)
		return nil
	}
	return c.leaveDeliveries(cmd.RoomID, cmd.UserID, cmd.DisplayName)
}

// leaveDeliveries notifies the remaining members after a departure already
// applied to the table: one userLeftRoom plus a refreshed roster, or
// nothing when the room just emptied and was deleted.
func (c *Coordinator) leaveDeliveries(roomID domain.RoomID, userID domain.UserID, displayName string) []event.Delivery {
	deliveries := c.fanout.ToRoom(roomID,
		event.UserLeftRoom{RoomID: roomID, UserID: userID, DisplayName: displayName})
	remaining := c.rooms.MembersOf(roomID)
	if len(remaining) == 0 {
		return deliveries
	}
	roster := event.RoomRoster{RoomID: roomID, Users: remaining}
	return append(deliveries, c.fanout.ToRoom(roomID, roster)...)
}

// disconnect performs the full ANY→DISCONNECTED cleanup atomically with
// respect to other commands: session removal, an explicit-leave equivalent
// for every room the user was inside, then a presence broadcast.
func (c *Coordinator) disconnect(sessionID domain.SessionID) []event.Delivery {
	joined := map[domain.RoomID]string{}
	userID, identified := c.registry.Remove(sessionID)
	if identified {
		joined = c.rooms.RoomsOf(userID)
	}

	var deliveries []event.Delivery
	for roomID, displayName := range joined {
		c.rooms.Leave(roomID, userID)
		deliveries = append(deliveries, c.leaveDeliveries(roomID, userID, displayName)...)
	}
	if identified {
		deliveries = append(deliveries, c.fanout.Online()...)
		c.log.Info(fmt.Sprintf("User %s disconnected from %d room(s)", userID, len(joined)))
	}
	return deliveries
}

// Stats exposes coarse gauges for the telemetry worker.
func (c *Coordinator) Stats() (online, rooms int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.registry.OnlineUsers()), c.rooms.Count()
}
