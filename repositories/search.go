package repositories

import (
	"chat-hub/domain"
	"context"
	"log/slog"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
)

const searchPageSize = 20

type IMessageIndex interface {
	Index(msg domain.RoomMessage) error
	Delete(messageID uuid.UUID) error
	SearchPaginated(ctx context.Context, query string, roomID domain.RoomID, offset int) ([]MessageHit, uint64, error)
}

// MessageHit is a search result row, light enough to render a result
// list without loading the full message.
type MessageHit struct {
	MessageID  uuid.UUID     `json:"messageId"`
	RoomID     domain.RoomID `json:"roomId"`
	SenderName string        `json:"senderName"`
	Text       string        `json:"text"`
}

// MessageIndex maintains a full-text index over room messages.
// Badger stays the source of truth; the index only accelerates search.
type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger) *MessageIndex {
	return &MessageIndex{writer: writer, log: log}
}

func (m *MessageIndex) Index(msg domain.RoomMessage) error {
	doc := bluge.NewDocument(msg.ID.String()).
		AddField(bluge.NewTextField("text", msg.Text).StoreValue()).
		AddField(bluge.NewKeywordField("room", string(msg.RoomID)).StoreValue()).
		AddField(bluge.NewKeywordField("sender", msg.SenderName).StoreValue())
	return m.writer.Update(doc.ID(), doc)
}

func (m *MessageIndex) Delete(messageID uuid.UUID) error {
	return m.writer.Delete(bluge.Identifier(messageID.String()))
}

// SearchPaginated matches the query against message text inside a single
// room. Returns one page of hits plus the total hit count.
func (m *MessageIndex) SearchPaginated(ctx context.Context, query string, roomID domain.RoomID, offset int) ([]MessageHit, uint64, error) {
	reader, err := m.writer.Reader()
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		_ = reader.Close()
	}()

	q := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(query).SetField("text")).
		AddMust(bluge.NewTermQuery(string(roomID)).SetField("room"))

	req := bluge.NewTopNSearch(searchPageSize, q).
		SetFrom(offset).
		WithStandardAggregations()
	iter, err := reader.Search(ctx, req)
	if err != nil {
		return nil, 0, err
	}

	var hits []MessageHit
	for {
		match, err := iter.Next()
		if err != nil {
			return nil, 0, err
		}
		if match == nil {
			break
		}
		hit := MessageHit{RoomID: roomID}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				if id, parseErr := uuid.Parse(string(value)); parseErr == nil {
					hit.MessageID = id
				}
			case "text":
				hit.Text = string(value)
			case "sender":
				hit.SenderName = string(value)
			}
			return true
		})
		if err != nil {
			m.log.Warn("skipping unreadable search hit", slog.Any("error", err))
			continue
		}
		hits = append(hits, hit)
	}
	return hits, iter.Aggregations().Count(), nil
}
