package runtime

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func newTestCoordinator() *Coordinator {
	return NewCoordinator(logs.GetLoggerFromLevel(slog.LevelError))
}

// identify attaches a fresh session and announces the user on it.
func identify(c *Coordinator, userID domain.UserID) domain.SessionID {
	sessionID := domain.SessionID(uuid.NewString())
	c.Connect(sessionID, nullSink{})
	c.Handle(domain.AddUserCommand{UserID: userID, SessionID: sessionID})
	return sessionID
}

func eventsFor(deliveries []event.Delivery, sessionID domain.SessionID) []event.OutboundEvent {
	return lo.FilterMap(deliveries, func(d event.Delivery, _ int) (event.OutboundEvent, bool) {
		return d.Event, d.SessionID == sessionID
	})
}

func eventNames(events []event.OutboundEvent) []string {
	return lo.Map(events, func(e event.OutboundEvent, _ int) string {
		return e.EventName()
	})
}

func TestCoordinator_AddUser_Broadcasts_Presence_To_All_Sessions(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator()
	aliceSession := identify(c, "alice")

	// Given a second, not yet identified connection
	anonymous := domain.SessionID(uuid.NewString())
	c.Connect(anonymous, nullSink{})

	// When bob identifies
	bobSession := domain.SessionID(uuid.NewString())
	c.Connect(bobSession, nullSink{})
	deliveries := c.Handle(domain.AddUserCommand{UserID: "bob", SessionID: bobSession})

	// Then every attached session receives the refreshed online list
	req.Len(deliveries, 3)
	for _, sessionID := range []domain.SessionID{aliceSession, bobSession, anonymous} {
		events := eventsFor(deliveries, sessionID)
		req.Len(events, 1)
		online, ok := events[0].(event.OnlineUsers)
		req.True(ok)
		req.ElementsMatch([]domain.UserID{"alice", "bob"}, online.Users)
	}
}

func TestCoordinator_AddUser_For_Gone_Session_Is_Discarded(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator()

	// Given a session that was never attached (transport already tore down)
	deliveries := c.Handle(domain.AddUserCommand{
		UserID:    "ghost",
		SessionID: domain.SessionID(uuid.NewString()),
	})

	// Then nothing happens: no presence, no broadcast
	req.Empty(deliveries)
	online, _ := c.Stats()
	req.Zero(online)
}

func TestCoordinator_JoinRoom_Announces_And_Rosters(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator()
	aliceSession := identify(c, "alice")
	bobSession := identify(c, "bob")
	c.Handle(domain.JoinRoomCommand{RoomID: "room1", UserID: "alice", DisplayName: "Alice"})

	// When bob joins the room alice is already in
	deliveries := c.Handle(domain.JoinRoomCommand{RoomID: "room1", UserID: "bob", DisplayName: "Bob"})

	// Then alice gets the join announcement plus the refreshed roster
	aliceEvents := eventsFor(deliveries, aliceSession)
	req.Equal([]string{"userJoinedRoom", "roomUsers"}, eventNames(aliceEvents))

	// And bob gets the roster only, never his own announcement
	bobEvents := eventsFor(deliveries, bobSession)
	req.Equal([]string{"roomUsers"}, eventNames(bobEvents))

	// And the roster reflects the state after the mutation: both members
	roster := bobEvents[0].(event.RoomRoster)
	req.ElementsMatch([]domain.UserID{"alice", "bob"}, memberIDs(roster.Users))
}

func TestCoordinator_Duplicate_Join_Skips_Announcement(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator()
	aliceSession := identify(c, "alice")
	bobSession := identify(c, "bob")
	c.Handle(domain.JoinRoomCommand{RoomID: "room1", UserID: "alice", DisplayName: "Alice"})
	c.Handle(domain.JoinRoomCommand{RoomID: "room1", UserID: "bob", DisplayName: "Bob"})

	// When bob joins a second time
	deliveries := c.Handle(domain.JoinRoomCommand{RoomID: "room1", UserID: "bob", DisplayName: "Bob"})

	// Then nobody is told about a new arrival, the roster still refreshes
	req.Equal([]string{"roomUsers"}, eventNames(eventsFor(deliveries, aliceSession)))
	req.Equal([]string{"roomUsers"}, eventNames(eventsFor(deliveries, bobSession)))
}

func TestCoordinator_Join_Without_Live_Session_Is_Discarded_Whole(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator()

	// Given alice identified and then disconnected
	aliceSession := identify(c, "alice")
	c.Handle(domain.DisconnectCommand{SessionID: aliceSession})

	// When a join that raced the disconnect arrives late
	deliveries := c.Handle(domain.JoinRoomCommand{RoomID: "room1", UserID: "alice", DisplayName: "Alice"})

	// Then it is dropped entirely: no membership, no deliveries
	req.Empty(deliveries)
	_, rooms := c.Stats()
	req.Zero(rooms)
}

func TestCoordinator_Leave_Unknown_Room_Is_NoOp(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator()
	identify(c, "alice")

	deliveries := c.Handle(domain.LeaveRoomCommand{RoomID: "nowhere", UserID: "alice", DisplayName: "Alice"})

	req.Empty(deliveries)
}

func TestCoordinator_Leave_Notifies_Remaining_Members(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator()
	aliceSession := identify(c, "alice")
	identify(c, "bob")
	c.Handle(domain.JoinRoomCommand{RoomID: "room1", UserID: "alice", DisplayName: "Alice"})
	c.Handle(domain.JoinRoomCommand{RoomID: "room1", UserID: "bob", DisplayName: "Bob"})

	// When bob leaves
	deliveries := c.Handle(domain.LeaveRoomCommand{RoomID: "room1", UserID: "bob", DisplayName: "Bob"})

	// Then alice sees the departure and a roster without bob
	aliceEvents := eventsFor(deliveries, aliceSession)
	req.Equal([]string{"userLeftRoom", "roomUsers"}, eventNames(aliceEvents))
	roster := aliceEvents[1].(event.RoomRoster)
	req.Equal([]domain.UserID{"alice"}, memberIDs(roster.Users))
}

func TestCoordinator_Typing_To_Offline_Receiver_Produces_Nothing(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator()
	identify(c, "alice")

	// When alice types to someone who is not online
	deliveries := c.Handle(domain.TypingCommand{SenderID: "alice", ReceiverID: "nobody"})

	// Then the event is silently dropped: zero deliveries, no error
	req.Empty(deliveries)
}

func TestCoordinator_Direct_Message_Reaches_Exactly_The_Receiver(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator()
	identify(c, "alice")
	bobSession := identify(c, "bob")

	messageID := uuid.New()
	msg := domain.DirectMessage{
		ID:         messageID,
		SenderID:   "alice",
		SenderName: "Alice",
		ReceiverID: "bob",
		Text:       "hi",
		CreatedAt:  time.Now().UTC(),
	}

	// When alice sends "hi" to bob
	deliveries := c.Handle(domain.SendDirectMessageCommand{Message: msg})

	// Then bob's session receives exactly one getMessage event
	req.Len(deliveries, 1)
	req.Equal(bobSession, deliveries[0].SessionID)
	received, ok := deliveries[0].Event.(event.DirectMessageReceived)
	req.True(ok)
	req.Equal("hi", received.Text)
	req.Equal(messageID, received.ID)
}

func TestCoordinator_Disconnect_Sweeps_Every_Joined_Room(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator()
	aliceSession := identify(c, "alice")
	bobSession := identify(c, "bob")
	c.Handle(domain.JoinRoomCommand{RoomID: "room1", UserID: "alice", DisplayName: "Alice"})
	c.Handle(domain.JoinRoomCommand{RoomID: "room2", UserID: "alice", DisplayName: "Alice"})
	c.Handle(domain.JoinRoomCommand{RoomID: "room1", UserID: "bob", DisplayName: "Bob"})
	c.Handle(domain.JoinRoomCommand{RoomID: "room2", UserID: "bob", DisplayName: "Bob"})

	// When alice's transport drops
	deliveries := c.Handle(domain.DisconnectCommand{SessionID: aliceSession})

	// Then bob receives exactly one leave notification per room, each
	// followed by a roster excluding alice, then a presence update
	bobEvents := eventsFor(deliveries, bobSession)
	names := eventNames(bobEvents)
	req.Equal(2, lo.Count(names, "userLeftRoom"))
	req.Equal(2, lo.Count(names, "roomUsers"))
	req.Equal(1, lo.Count(names, "getUsers"))

	for _, e := range bobEvents {
		switch e := e.(type) {
		case event.RoomRoster:
			req.Equal([]domain.UserID{"bob"}, memberIDs(e.Users))
		case event.OnlineUsers:
			req.Equal([]domain.UserID{"bob"}, e.Users)
		}
	}

	// And alice's session gets nothing: it is already gone
	req.Empty(eventsFor(deliveries, aliceSession))

	// And no stale membership is left behind
	online, rooms := c.Stats()
	req.Equal(1, online)
	req.Equal(2, rooms)
	req.Empty(c.rooms.RoomsOf("alice"))
}

func TestCoordinator_Disconnect_Of_Anonymous_Session_Is_Quiet(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator()
	sessionID := domain.SessionID(uuid.NewString())
	c.Connect(sessionID, nullSink{})

	// A session that never identified disconnects without any broadcast
	deliveries := c.Handle(domain.DisconnectCommand{SessionID: sessionID})

	req.Empty(deliveries)
}

func TestCoordinator_Room_Message_Reaches_Whole_Room(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator()
	aliceSession := identify(c, "alice")
	bobSession := identify(c, "bob")
	c.Handle(domain.JoinRoomCommand{RoomID: "room1", UserID: "alice", DisplayName: "Alice"})
	c.Handle(domain.JoinRoomCommand{RoomID: "room1", UserID: "bob", DisplayName: "Bob"})

	msg := domain.RoomMessage{
		ID:         uuid.New(),
		RoomID:     "room1",
		SenderID:   "alice",
		SenderName: "Alice",
		Text:       "hello room",
		CreatedAt:  time.Now().UTC(),
	}

	deliveries := c.Handle(domain.SendRoomMessageCommand{Message: msg})

	// The whole room receives the message, sender included
	req.ElementsMatch(
		[]domain.SessionID{aliceSession, bobSession},
		lo.Map(deliveries, func(d event.Delivery, _ int) domain.SessionID { return d.SessionID }),
	)
}

func TestCoordinator_Room_Typing_Excludes_The_Typist(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator()
	aliceSession := identify(c, "alice")
	bobSession := identify(c, "bob")
	c.Handle(domain.JoinRoomCommand{RoomID: "room1", UserID: "alice", DisplayName: "Alice"})
	c.Handle(domain.JoinRoomCommand{RoomID: "room1", UserID: "bob", DisplayName: "Bob"})

	deliveries := c.Handle(domain.RoomTypingCommand{RoomID: "room1", UserID: "alice", DisplayName: "Alice"})

	req.Len(deliveries, 1)
	req.Equal(bobSession, deliveries[0].SessionID)
	req.Empty(eventsFor(deliveries, aliceSession))
}

// Full end-to-end scenario over the coordinator alone.
func TestCoordinator_Direct_Message_Then_Disconnect_Scenario(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator()

	// Given A and B both identified, sharing room1
	aliceSession := identify(c, "alice")
	bobSession := identify(c, "bob")
	c.Handle(domain.JoinRoomCommand{RoomID: "room1", UserID: "alice", DisplayName: "Alice"})
	c.Handle(domain.JoinRoomCommand{RoomID: "room1", UserID: "bob", DisplayName: "Bob"})

	// When A sends "hi" to B
	messageID := uuid.New()
	deliveries := c.Handle(domain.SendDirectMessageCommand{Message: domain.DirectMessage{
		ID: messageID, SenderID: "alice", SenderName: "Alice",
		ReceiverID: "bob", Text: "hi", CreatedAt: time.Now().UTC(),
	}})

	// Then B receives exactly one getMessage
	bobEvents := eventsFor(deliveries, bobSession)
	req.Len(bobEvents, 1)
	req.Equal(messageID, bobEvents[0].(event.DirectMessageReceived).ID)

	// When A disconnects
	deliveries = c.Handle(domain.DisconnectCommand{SessionID: aliceSession})
	bobEvents = eventsFor(deliveries, bobSession)
	names := eventNames(bobEvents)

	// Then B sees the room departure, the shrunken roster, and an online
	// list without A
	req.Equal([]string{"userLeftRoom", "roomUsers", "getUsers"}, names)
	req.Equal([]domain.UserID{"bob"}, memberIDs(bobEvents[1].(event.RoomRoster).Users))
	req.Equal([]domain.UserID{"bob"}, bobEvents[2].(event.OnlineUsers).Users)
}
