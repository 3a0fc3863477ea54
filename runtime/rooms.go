package runtime

import (
	"chat-hub/domain"
	"sync"
)

// RoomTable tracks which users are currently present in which rooms.
// Entries exist only while someone is inside: a room is created lazily on
// first join and deleted entirely once its last member leaves, so no empty
// sets linger in the map.
//
// The joined reverse index (userID→rooms) keeps disconnect cleanup
// O(rooms-joined); leaking stale presence entries is the most damaging
// class of bug in this subsystem.
type RoomTable struct {
	mu      sync.RWMutex
	members map[domain.RoomID]map[domain.UserID]string
	joined  map[domain.UserID]map[domain.RoomID]struct{}
}

func NewRoomTable() *RoomTable {
	return &RoomTable{
		members: make(map[domain.RoomID]map[domain.UserID]string),
		joined:  make(map[domain.UserID]map[domain.RoomID]struct{}),
	}
}

// Join adds the user to the room, creating the room on the fly. Idempotent:
// re-joining refreshes the display name and reports rejoined=true so the
// caller can skip the duplicate announcement.
func (t *RoomTable) Join(roomID domain.RoomID, userID domain.UserID, displayName string) (rejoined bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	room, ok := t.members[roomID]
	if !ok {
		room = make(map[domain.UserID]string)
		t.members[roomID] = room
	}
	_, rejoined = room[userID]
	room[userID] = displayName

	if _, ok := t.joined[userID]; !ok {
		t.joined[userID] = make(map[domain.RoomID]struct{})
	}
	t.joined[userID][roomID] = struct{}{}
	return rejoined
}

// Leave removes the member and deletes the room entry when it empties.
// Leaving a room the user is not in is a no-op, not an error.
func (t *RoomTable) Leave(roomID domain.RoomID, userID domain.UserID) (removed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.leaveLocked(roomID, userID)
}

func (t *RoomTable) leaveLocked(roomID domain.RoomID, userID domain.UserID) bool {
	room, ok := t.members[roomID]
	if !ok {
		return false
	}
	if _, ok = room[userID]; !ok {
		return false
	}
	delete(room, userID)
	if len(room) == 0 {
		delete(t.members, roomID)
	}

	if rooms, ok := t.joined[userID]; ok {
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(t.joined, userID)
		}
	}
	return true
}

// MembersOf returns the current roster. Iteration order is not stable
// across calls; membership is exact.
func (t *RoomTable) MembersOf(roomID domain.RoomID) []domain.Member {
	t.mu.RLock()
	defer t.mu.RUnlock()

	room, ok := t.members[roomID]
	if !ok {
		return nil
	}
	roster := make([]domain.Member, 0, len(room))
	for userID, displayName := range room {
		roster = append(roster, domain.Member{UserID: userID, DisplayName: displayName})
	}
	return roster
}

// Count reports how many rooms currently have members.
func (t *RoomTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.members)
}

// RoomsOf returns every room the user is currently inside, with the display
// name they joined under. Used by the disconnect sweep.
func (t *RoomTable) RoomsOf(userID domain.UserID) map[domain.RoomID]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rooms, ok := t.joined[userID]
	if !ok {
		return nil
	}
	res := make(map[domain.RoomID]string, len(rooms))
	for roomID := range rooms {
		res[roomID] = t.members[roomID][userID]
	}
	return res
}
