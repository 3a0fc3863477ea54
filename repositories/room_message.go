package repositories

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IRoomMessageRepository interface {
	StoreRoomMessage(msg domain.RoomMessage) error
	GetRoomMessages(roomID domain.RoomID, limit *int) ([]domain.RoomMessage, error)
	GetRoomMessage(messageID uuid.UUID) (domain.RoomMessage, error)
	DeleteRoomMessage(messageID uuid.UUID, requester domain.UserID) (domain.RoomMessage, error)
}

// RoomMessageRepository persists room history under
// "roommsg:{room}:{timestamp_padded}:{uuid}" with a "roommsgidx:{uuid}"
// index for id lookups, same layout as direct messages.
type RoomMessageRepository struct {
	db *badger.DB
}

func NewRoomMessageRepository(db *badger.DB) *RoomMessageRepository {
	return &RoomMessageRepository{db: db}
}

func roomMsgKey(msg domain.RoomMessage) []byte {
	return []byte(fmt.Sprintf("roommsg:%s:%019d:%s",
		msg.RoomID, msg.CreatedAt.UnixNano(), msg.ID))
}

func roomMsgIdxKey(messageID uuid.UUID) []byte {
	return []byte("roommsgidx:" + messageID.String())
}

func (r *RoomMessageRepository) StoreRoomMessage(msg domain.RoomMessage) error {
	key := roomMsgKey(msg)
	return r.db.Update(func(txn *badger.Txn) error {
		if err := putJSON(txn, key, msg); err != nil {
			return err
		}
		return txn.Set(roomMsgIdxKey(msg.ID), key)
	})
}

// GetRoomMessages returns room history in chronological order.
// With a limit only the most recent messages are kept.
func (r *RoomMessageRepository) GetRoomMessages(roomID domain.RoomID, limit *int) ([]domain.RoomMessage, error) {
	var messages []domain.RoomMessage
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("roommsg:" + roomID + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var msg domain.RoomMessage
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &msg)
			})
			if err != nil {
				return err
			}
			messages = append(messages, msg)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if limit != nil && len(messages) > *limit {
		messages = messages[len(messages)-*limit:]
	}
	return messages, nil
}

func (r *RoomMessageRepository) GetRoomMessage(messageID uuid.UUID) (domain.RoomMessage, error) {
	var msg domain.RoomMessage
	err := r.db.View(func(txn *badger.Txn) error {
		key, err := resolveIdx(txn, roomMsgIdxKey(messageID))
		if err != nil {
			return err
		}
		return fetchJSON(txn, key, &msg)
	})
	return msg, err
}

// DeleteRoomMessage removes the message if the requester sent it and the
// retraction window has not elapsed.
func (r *RoomMessageRepository) DeleteRoomMessage(messageID uuid.UUID, requester domain.UserID) (domain.RoomMessage, error) {
	var msg domain.RoomMessage
	err := r.db.Update(func(txn *badger.Txn) error {
		key, err := resolveIdx(txn, roomMsgIdxKey(messageID))
		if err != nil {
			return err
		}
		if err := fetchJSON(txn, key, &msg); err != nil {
			return err
		}
		if msg.SenderID != requester {
			return errors.ErrNotMessageSender
		}
		if time.Since(msg.CreatedAt) > deleteWindow {
			return errors.ErrDeleteWindowExpired
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(roomMsgIdxKey(messageID))
	})
	return msg, err
}
