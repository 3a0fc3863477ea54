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

// deleteWindow is how long a sender may retract a message.
const deleteWindow = 15 * time.Minute

type IMessageRepository interface {
	GetOrCreateConversation(a, b domain.UserID) (domain.Conversation, error)
	ListConversations(userID domain.UserID) ([]domain.Conversation, error)
	StoreDirectMessage(conversationID uuid.UUID, msg domain.DirectMessage) error
	GetConversationMessages(conversationID uuid.UUID) ([]domain.DirectMessage, error)
	MarkConversationRead(conversationID uuid.UUID, reader domain.UserID) error
	GetDirectMessage(messageID uuid.UUID) (domain.DirectMessage, error)
	DeleteDirectMessage(messageID uuid.UUID, requester domain.UserID) (domain.DirectMessage, error)
}

// MessageRepository persists direct messages and their conversations.
//
// Message keys are "dm:{conversation}:{timestamp_padded}:{uuid}":
//  1. The 19-digit zero padding makes lexicographical order chronological.
//  2. The trailing UUID disambiguates two messages in the same nanosecond.
//
// "dmidx:{uuid}" resolves a message id back to its full key so deletion
// does not scan; "conv:{min}:{max}" keys conversations by their sorted
// participant pair and "convid:{uuid}" resolves a conversation id to it.
type MessageRepository struct {
	db *badger.DB
}

func NewMessageRepository(db *badger.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func pairKey(a, b domain.UserID) []byte {
	if b < a {
		a, b = b, a
	}
	return []byte("conv:" + a + ":" + b)
}

func convIDKey(id uuid.UUID) []byte { return []byte("convid:" + id.String()) }

func dmKey(conversationID uuid.UUID, msg domain.DirectMessage) []byte {
	return []byte(fmt.Sprintf("dm:%s:%019d:%s",
		conversationID, msg.CreatedAt.UnixNano(), msg.ID))
}

func dmIdxKey(messageID uuid.UUID) []byte { return []byte("dmidx:" + messageID.String()) }

func (r *MessageRepository) GetOrCreateConversation(a, b domain.UserID) (domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.Update(func(txn *badger.Txn) error {
		err := fetchJSON(txn, pairKey(a, b), &conv)
		if err == nil {
			return nil
		}
		if err != badger.ErrKeyNotFound {
			return err
		}
		conv = domain.Conversation{
			ID:           uuid.New(),
			Participants: [2]domain.UserID{a, b},
			UpdatedAt:    time.Now().UTC(),
		}
		if err := putJSON(txn, pairKey(a, b), conv); err != nil {
			return err
		}
		return txn.Set(convIDKey(conv.ID), pairKey(a, b))
	})
	return conv, err
}

// ListConversations returns the user's conversations, most recently
// active first.
func (r *MessageRepository) ListConversations(userID domain.UserID) ([]domain.Conversation, error) {
	var conversations []domain.Conversation
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("conv:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var conv domain.Conversation
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &conv)
			})
			if err != nil {
				return err
			}
			if conv.Participants[0] == userID || conv.Participants[1] == userID {
				conversations = append(conversations, conv)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].UpdatedAt.After(conversations[j].UpdatedAt)
	})
	return conversations, nil
}

func (r *MessageRepository) StoreDirectMessage(conversationID uuid.UUID, msg domain.DirectMessage) error {
	key := dmKey(conversationID, msg)
	return r.db.Update(func(txn *badger.Txn) error {
		if err := putJSON(txn, key, msg); err != nil {
			return err
		}
		if err := txn.Set(dmIdxKey(msg.ID), key); err != nil {
			return err
		}
		// Refresh the conversation's last message and activity time.
		pair, err := txn.Get(convIDKey(conversationID))
		if err != nil {
			return errors.ErrConversationNotFound
		}
		pk, err := pair.ValueCopy(nil)
		if err != nil {
			return err
		}
		var conv domain.Conversation
		if err := fetchJSON(txn, pk, &conv); err != nil {
			return err
		}
		id := msg.ID
		conv.LastMessageID = &id
		conv.UpdatedAt = msg.CreatedAt
		return putJSON(txn, pk, conv)
	})
}

// GetConversationMessages returns the history in chronological order;
// the key layout makes a plain prefix scan sufficient.
func (r *MessageRepository) GetConversationMessages(conversationID uuid.UUID) ([]domain.DirectMessage, error) {
	var messages []domain.DirectMessage
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("dm:" + conversationID.String() + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var msg domain.DirectMessage
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
	return messages, err
}

// MarkConversationRead flags every message from the other participant.
func (r *MessageRepository) MarkConversationRead(conversationID uuid.UUID, reader domain.UserID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("dm:" + conversationID.String() + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			var msg domain.DirectMessage
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &msg)
			})
			if err != nil {
				return err
			}
			if msg.SenderID == reader || msg.Read {
				continue
			}
			msg.Read = true
			if err := putJSON(txn, key, msg); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *MessageRepository) GetDirectMessage(messageID uuid.UUID) (domain.DirectMessage, error) {
	var msg domain.DirectMessage
	err := r.db.View(func(txn *badger.Txn) error {
		key, err := resolveIdx(txn, dmIdxKey(messageID))
		if err != nil {
			return err
		}
		return fetchJSON(txn, key, &msg)
	})
	return msg, err
}

// DeleteDirectMessage removes the message if the requester sent it and the
// retraction window has not elapsed. Returns the deleted message so the
// caller can notify the receiver.
func (r *MessageRepository) DeleteDirectMessage(messageID uuid.UUID, requester domain.UserID) (domain.DirectMessage, error) {
	var msg domain.DirectMessage
	err := r.db.Update(func(txn *badger.Txn) error {
		key, err := resolveIdx(txn, dmIdxKey(messageID))
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
		return txn.Delete(dmIdxKey(messageID))
	})
	return msg, err
}

func resolveIdx(txn *badger.Txn, idxKey []byte) ([]byte, error) {
	item, err := txn.Get(idxKey)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, errors.ErrMessageNotFound
		}
		return nil, err
	}
	return item.ValueCopy(nil)
}
