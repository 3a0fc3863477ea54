package runtime

import (
	"chat-hub/domain"
	"chat-hub/domain/event"

	"github.com/samber/lo"
)

// Fanout computes recipient sets. It is a pure mapping from (event, current
// registry/table state) to (sessionID, payload) pairs, decoupled from the
// actual transport send so it can be tested without a network layer.
// Emission itself is the FanoutWorker's job and never blocks the caller.
type Fanout struct {
	registry *Registry
	rooms    *RoomTable
}

func NewFanout(registry *Registry, rooms *RoomTable) *Fanout {
	return &Fanout{registry: registry, rooms: rooms}
}

// Online targets every connected session with the current online key set.
func (f *Fanout) Online() []event.Delivery {
	evt := event.OnlineUsers{Users: f.registry.OnlineUsers()}
	return lo.Map(f.registry.ConnectedSessions(),
		func(sessionID domain.SessionID, _ int) event.Delivery {
			return event.Delivery{SessionID: sessionID, Event: evt}
		})
}

// ToUser targets one user's live session. An offline target yields no
// deliveries: at-most-once, best-effort, no retry, no durable queue.
func (f *Fanout) ToUser(userID domain.UserID, evt event.OutboundEvent) []event.Delivery {
	sessionID, ok := f.registry.Lookup(userID)
	if !ok {
		return nil
	}
	return []event.Delivery{{SessionID: sessionID, Event: evt}}
}

// ToRoom targets every current member of the room.
func (f *Fanout) ToRoom(roomID domain.RoomID, evt event.OutboundEvent) []event.Delivery {
	return f.toRoom(roomID, "", evt)
}

// ToRoomExcept targets every member except the acting user, for
// "someone is typing"-style notifications the actor should not receive.
func (f *Fanout) ToRoomExcept(roomID domain.RoomID, exclude domain.UserID, evt event.OutboundEvent) []event.Delivery {
	return f.toRoom(roomID, exclude, evt)
}

func (f *Fanout) toRoom(roomID domain.RoomID, exclude domain.UserID, evt event.OutboundEvent) []event.Delivery {
	return lo.FilterMap(f.rooms.MembersOf(roomID),
		func(m domain.Member, _ int) (event.Delivery, bool) {
			if m.UserID == exclude {
				return event.Delivery{}, false
			}
			// Members without a live session are skipped, not errors:
			// their disconnect sweep is already in flight.
			sessionID, ok := f.registry.Lookup(m.UserID)
			if !ok {
				return event.Delivery{}, false
			}
			return event.Delivery{SessionID: sessionID, Event: evt}, true
		})
}
