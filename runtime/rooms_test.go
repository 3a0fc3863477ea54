package runtime

import (
	"chat-hub/domain"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func memberIDs(members []domain.Member) []domain.UserID {
	return lo.Map(members, func(m domain.Member, _ int) domain.UserID {
		return m.UserID
	})
}

func TestRoomTable_Join_Creates_Room_On_First_Member(t *testing.T) {
	req := require.New(t)
	rooms := NewRoomTable()

	// Given no rooms exist
	req.Zero(rooms.Count())

	// When the first member joins
	rejoined := rooms.Join("room1", "alice", "Alice")

	// Then the room now exists with exactly that member
	req.False(rejoined)
	req.Equal(1, rooms.Count())
	req.Equal([]domain.UserID{"alice"}, memberIDs(rooms.MembersOf("room1")))
}

func TestRoomTable_Join_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	rooms := NewRoomTable()
	rooms.Join("room1", "alice", "Alice")

	// When the same user joins again under a new display name
	rejoined := rooms.Join("room1", "alice", "Alice v2")

	// Then membership is unchanged and the display name refreshed
	req.True(rejoined)
	members := rooms.MembersOf("room1")
	req.Len(members, 1)
	req.Equal("Alice v2", members[0].DisplayName)
}

func TestRoomTable_Membership_Matches_Unmatched_Joins(t *testing.T) {
	req := require.New(t)
	rooms := NewRoomTable()

	// Given an arbitrary join/leave sequence
	rooms.Join("room1", "alice", "Alice")
	rooms.Join("room1", "bob", "Bob")
	rooms.Join("room1", "carol", "Carol")
	rooms.Leave("room1", "bob")
	rooms.Leave("room1", "bob") // leave is idempotent-removal
	rooms.Join("room1", "bob", "Bob")
	rooms.Leave("room1", "carol")

	// Then membership equals exactly the users with an unmatched join
	req.ElementsMatch([]domain.UserID{"alice", "bob"}, memberIDs(rooms.MembersOf("room1")))
}

func TestRoomTable_Last_Leave_Deletes_The_Room(t *testing.T) {
	req := require.New(t)
	rooms := NewRoomTable()
	rooms.Join("room1", "alice", "Alice")

	// When the only member leaves
	removed := rooms.Leave("room1", "alice")

	// Then the room entry is gone, and membership reads as empty, not an error
	req.True(removed)
	req.Zero(rooms.Count())
	req.Empty(rooms.MembersOf("room1"))

	// And a later join recreates it from scratch
	req.False(rooms.Join("room1", "bob", "Bob"))
	req.Equal(1, rooms.Count())
}

func TestRoomTable_Leave_Unknown_Room_Is_NoOp(t *testing.T) {
	req := require.New(t)
	rooms := NewRoomTable()

	req.False(rooms.Leave("nowhere", "alice"))
}

func TestRoomTable_RoomsOf_Tracks_Reverse_Index(t *testing.T) {
	req := require.New(t)
	rooms := NewRoomTable()
	rooms.Join("room1", "alice", "Alice")
	rooms.Join("room2", "alice", "Alice")
	rooms.Join("room2", "bob", "Bob")

	// The reverse index returns every room with the joined display name
	joined := rooms.RoomsOf("alice")
	req.Len(joined, 2)
	req.Equal("Alice", joined["room1"])
	req.Equal("Alice", joined["room2"])

	// And empties once the user has left everywhere
	rooms.Leave("room1", "alice")
	rooms.Leave("room2", "alice")
	req.Empty(rooms.RoomsOf("alice"))
}
