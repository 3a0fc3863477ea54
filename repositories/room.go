package repositories

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IRoomRepository interface {
	CreateRoom(room domain.Room) (domain.Room, error)
	GetRoomByID(id domain.RoomID) (domain.Room, error)
	GetRoomByNumber(number int) (domain.Room, error)
	ListPublicRooms() ([]domain.Room, error)
	ListRoomsByParticipant(userID domain.UserID) ([]domain.Room, error)
	AddParticipant(id domain.RoomID, userID domain.UserID) (domain.Room, error)
	RemoveParticipant(id domain.RoomID, userID domain.UserID) error
}

// RoomRepository persists the room directory in BadgerDB.
// Keys: "room:{id}" holds the record, "roomnum:{number}" resolves the
// human-facing room number to the id and doubles as the uniqueness check.
type RoomRepository struct {
	db *badger.DB
}

func NewRoomRepository(db *badger.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func roomKey(id domain.RoomID) []byte { return []byte("room:" + id) }
func roomNumKey(number int) []byte    { return []byte(fmt.Sprintf("roomnum:%d", number)) }

func (r *RoomRepository) CreateRoom(room domain.Room) (domain.Room, error) {
	room.ID = domain.RoomID(uuid.NewString())
	now := time.Now().UTC()
	room.CreatedAt = now
	room.UpdatedAt = now

	err := r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(roomNumKey(room.Number)); err == nil {
			return errors.ErrRoomNumberTaken
		}
		if err := putJSON(txn, roomKey(room.ID), room); err != nil {
			return err
		}
		return txn.Set(roomNumKey(room.Number), []byte(room.ID))
	})
	if err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

func (r *RoomRepository) GetRoomByID(id domain.RoomID) (domain.Room, error) {
	var room domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		return getRoom(txn, id, &room)
	})
	return room, err
}

func (r *RoomRepository) GetRoomByNumber(number int) (domain.Room, error) {
	var room domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(roomNumKey(number))
		if err != nil {
			return errors.ErrRoomNotFound
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return getRoom(txn, domain.RoomID(id), &room)
	})
	return room, err
}

func (r *RoomRepository) ListPublicRooms() ([]domain.Room, error) {
	return r.scanRooms(func(room domain.Room) bool { return !room.IsPrivate })
}

func (r *RoomRepository) ListRoomsByParticipant(userID domain.UserID) ([]domain.Room, error) {
	return r.scanRooms(func(room domain.Room) bool { return room.HasParticipant(userID) })
}

// AddParticipant enrolls the user durably; idempotent.
func (r *RoomRepository) AddParticipant(id domain.RoomID, userID domain.UserID) (domain.Room, error) {
	var room domain.Room
	err := r.db.Update(func(txn *badger.Txn) error {
		if err := getRoom(txn, id, &room); err != nil {
			return err
		}
		if room.HasParticipant(userID) {
			return nil
		}
		room.Participants = append(room.Participants, userID)
		room.UpdatedAt = time.Now().UTC()
		return putJSON(txn, roomKey(id), room)
	})
	return room, err
}

func (r *RoomRepository) RemoveParticipant(id domain.RoomID, userID domain.UserID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var room domain.Room
		if err := getRoom(txn, id, &room); err != nil {
			return err
		}
		kept := room.Participants[:0]
		for _, p := range room.Participants {
			if p != userID {
				kept = append(kept, p)
			}
		}
		room.Participants = kept
		room.UpdatedAt = time.Now().UTC()
		return putJSON(txn, roomKey(id), room)
	})
}

// scanRooms walks every room record; results come back most recently
// updated first, matching the directory listings clients expect.
func (r *RoomRepository) scanRooms(keep func(domain.Room) bool) ([]domain.Room, error) {
	var rooms []domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("room:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var room domain.Room
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &room)
			})
			if err != nil {
				return err
			}
			if keep(room) {
				rooms = append(rooms, room)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].UpdatedAt.After(rooms[j].UpdatedAt)
	})
	return rooms, nil
}

func getRoom(txn *badger.Txn, id domain.RoomID, room *domain.Room) error {
	err := fetchJSON(txn, roomKey(id), room)
	if err == badger.ErrKeyNotFound {
		return errors.ErrRoomNotFound
	}
	return err
}
