package services

import (
	"chat-hub/auth"
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/errors"
	"chat-hub/moderation"
	"chat-hub/repositories"
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type IRoomService interface {
	CreateRoom(creator domain.UserID, number int, name, description, password string) (domain.Room, error)
	JoinRoom(roomID domain.RoomID, userID domain.UserID, password string) (domain.Room, error)
	JoinRoomByNumber(number int, userID domain.UserID, password string) (domain.Room, error)
	LeaveRoom(roomID domain.RoomID, userID domain.UserID) error
	GetRoom(roomID domain.RoomID) (domain.Room, error)
	ListPublicRooms() ([]domain.Room, error)
	ListUserRooms(userID domain.UserID) ([]domain.Room, error)
	GetRoomMessages(roomID domain.RoomID, limit *int) ([]domain.RoomMessage, error)
	PostRoomMessage(sender domain.User, roomID domain.RoomID, text string, replyTo *domain.ReplyRef) (domain.RoomMessage, error)
	DeleteRoomMessage(messageID uuid.UUID, requester domain.UserID) error
	SearchMessages(ctx context.Context, query string, roomID domain.RoomID, offset int) ([]repositories.MessageHit, uint64, error)
}

// RoomService owns the room directory and room history. Directory
// membership (who belongs to a room) is persistent; live presence in a
// room is the coordinator's concern and flows over the socket.
type RoomService struct {
	rooms        repositories.IRoomRepository
	roomMessages repositories.IRoomMessageRepository
	index        repositories.IMessageIndex
	moderator    *moderation.Moderator
	orchestrator contract.IOrchestrator
	log          *slog.Logger
}

func NewRoomService(
	rooms repositories.IRoomRepository,
	roomMessages repositories.IRoomMessageRepository,
	index repositories.IMessageIndex,
	moderator *moderation.Moderator,
	orchestrator contract.IOrchestrator,
	log *slog.Logger,
) *RoomService {
	return &RoomService{
		rooms:        rooms,
		roomMessages: roomMessages,
		index:        index,
		moderator:    moderator,
		orchestrator: orchestrator,
		log:          log,
	}
}

// CreateRoom registers a room under a human-friendly number. A non-empty
// password makes the room private; the creator is its first participant.
func (s *RoomService) CreateRoom(creator domain.UserID, number int, name, description, password string) (domain.Room, error) {
	room := domain.Room{
		ID:           domain.RoomID(uuid.NewString()),
		Number:       number,
		Name:         name,
		Description:  description,
		CreatedBy:    creator,
		Participants: []domain.UserID{creator},
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return domain.Room{}, err
		}
		room.IsPrivate = true
		room.PasswordHash = hash
	}
	return s.rooms.CreateRoom(room)
}

func (s *RoomService) JoinRoom(roomID domain.RoomID, userID domain.UserID, password string) (domain.Room, error) {
	room, err := s.rooms.GetRoomByID(roomID)
	if err != nil {
		return domain.Room{}, err
	}
	return s.join(room, userID, password)
}

func (s *RoomService) JoinRoomByNumber(number int, userID domain.UserID, password string) (domain.Room, error) {
	room, err := s.rooms.GetRoomByNumber(number)
	if err != nil {
		return domain.Room{}, err
	}
	return s.join(room, userID, password)
}

func (s *RoomService) join(room domain.Room, userID domain.UserID, password string) (domain.Room, error) {
	if room.HasParticipant(userID) {
		return room, nil
	}
	if room.IsPrivate {
		match, err := auth.ComparePassword(password, room.PasswordHash)
		if err != nil || !match {
			return domain.Room{}, errors.ErrIncorrectRoomPassword
		}
	}
	return s.rooms.AddParticipant(room.ID, userID)
}

func (s *RoomService) LeaveRoom(roomID domain.RoomID, userID domain.UserID) error {
	return s.rooms.RemoveParticipant(roomID, userID)
}

func (s *RoomService) GetRoom(roomID domain.RoomID) (domain.Room, error) {
	return s.rooms.GetRoomByID(roomID)
}

func (s *RoomService) ListPublicRooms() ([]domain.Room, error) {
	return s.rooms.ListPublicRooms()
}

func (s *RoomService) ListUserRooms(userID domain.UserID) ([]domain.Room, error) {
	return s.rooms.ListRoomsByParticipant(userID)
}

func (s *RoomService) GetRoomMessages(roomID domain.RoomID, limit *int) ([]domain.RoomMessage, error) {
	if _, err := s.rooms.GetRoomByID(roomID); err != nil {
		return nil, err
	}
	return s.roomMessages.GetRoomMessages(roomID, limit)
}

func (s *RoomService) PostRoomMessage(sender domain.User, roomID domain.RoomID, text string, replyTo *domain.ReplyRef) (domain.RoomMessage, error) {
	room, err := s.rooms.GetRoomByID(roomID)
	if err != nil {
		return domain.RoomMessage{}, err
	}
	if !room.HasParticipant(sender.ID) {
		return domain.RoomMessage{}, errors.ErrRoomNotFound
	}

	sanitized, censored := s.moderator.Censor(text)
	if len(censored) > 0 {
		s.log.Warn("Censored room message",
			slog.String("author", sender.Username),
			slog.String("room_id", string(roomID)),
			slog.String("lang", moderation.DetectLanguage(text)),
			slog.Int("words", len(censored)))
	}

	msg := domain.RoomMessage{
		ID:         uuid.New(),
		RoomID:     roomID,
		SenderID:   sender.ID,
		SenderName: sender.Username,
		Text:       sanitized,
		CreatedAt:  time.Now().UTC(),
		ReplyTo:    replyTo,
	}
	if err := s.roomMessages.StoreRoomMessage(msg); err != nil {
		return domain.RoomMessage{}, err
	}
	if err := s.index.Index(msg); err != nil {
		// History in Badger is authoritative, a missed index entry only
		// degrades search.
		s.log.Warn("failed to index room message",
			slog.String("message_id", msg.ID.String()),
			slog.Any("error", err))
	}

	s.orchestrator.Dispatch(domain.SendRoomMessageCommand{Message: msg})
	return msg, nil
}

func (s *RoomService) DeleteRoomMessage(messageID uuid.UUID, requester domain.UserID) error {
	msg, err := s.roomMessages.DeleteRoomMessage(messageID, requester)
	if err != nil {
		return err
	}
	if err := s.index.Delete(messageID); err != nil {
		s.log.Warn("failed to deindex room message",
			slog.String("message_id", messageID.String()),
			slog.Any("error", err))
	}
	s.orchestrator.Dispatch(domain.DeleteRoomMessageCommand{
		RoomID:    msg.RoomID,
		MessageID: msg.ID,
		ActorID:   requester,
	})
	return nil
}

func (s *RoomService) SearchMessages(ctx context.Context, query string, roomID domain.RoomID, offset int) ([]repositories.MessageHit, uint64, error) {
	return s.index.SearchPaginated(ctx, query, roomID, offset)
}
