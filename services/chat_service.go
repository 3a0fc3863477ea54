package services

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/moderation"
	"chat-hub/repositories"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type IChatService interface {
	ListConversations(userID domain.UserID) ([]ConversationSummary, error)
	GetConversation(a, b domain.UserID) ([]domain.DirectMessage, error)
	SendDirectMessage(sender domain.User, receiverID domain.UserID, text string, replyTo *domain.ReplyRef) (domain.DirectMessage, error)
	MarkConversationRead(a, b domain.UserID) error
	DeleteDirectMessage(messageID uuid.UUID, requester domain.UserID) error
}

// ConversationSummary is a conversation enriched with the other
// participant's profile, shaped for the conversation list screen.
type ConversationSummary struct {
	ID        uuid.UUID   `json:"id"`
	With      domain.User `json:"with"`
	LastText  string      `json:"lastText,omitempty"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// ChatService owns direct messaging. Text is censored before it is
// persisted so storage and fanout always carry the same content.
type ChatService struct {
	messages     repositories.IMessageRepository
	users        repositories.IUserRepository
	moderator    *moderation.Moderator
	orchestrator contract.IOrchestrator
	log          *slog.Logger
}

func NewChatService(
	messages repositories.IMessageRepository,
	users repositories.IUserRepository,
	moderator *moderation.Moderator,
	orchestrator contract.IOrchestrator,
	log *slog.Logger,
) *ChatService {
	return &ChatService{
		messages:     messages,
		users:        users,
		moderator:    moderator,
		orchestrator: orchestrator,
		log:          log,
	}
}

func (s *ChatService) ListConversations(userID domain.UserID) ([]ConversationSummary, error) {
	conversations, err := s.messages.ListConversations(userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		other := conv.Participants[0]
		if other == userID {
			other = conv.Participants[1]
		}
		user, err := s.users.GetUserByID(other)
		if err != nil {
			continue // Deleted account, hide the conversation
		}
		summary := ConversationSummary{
			ID:        conv.ID,
			With:      user,
			UpdatedAt: conv.UpdatedAt,
		}
		if conv.LastMessageID != nil {
			if last, err := s.messages.GetDirectMessage(*conv.LastMessageID); err == nil {
				summary.LastText = last.Text
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *ChatService) GetConversation(a, b domain.UserID) ([]domain.DirectMessage, error) {
	conv, err := s.messages.GetOrCreateConversation(a, b)
	if err != nil {
		return nil, err
	}
	return s.messages.GetConversationMessages(conv.ID)
}

func (s *ChatService) SendDirectMessage(sender domain.User, receiverID domain.UserID, text string, replyTo *domain.ReplyRef) (domain.DirectMessage, error) {
	if _, err := s.users.GetUserByID(receiverID); err != nil {
		return domain.DirectMessage{}, err
	}

	sanitized, censored := s.moderator.Censor(text)
	if len(censored) > 0 {
		s.log.Warn("Censored direct message",
			slog.String("author", sender.Username),
			slog.String("lang", moderation.DetectLanguage(text)),
			slog.Int("words", len(censored)))
	}

	msg := domain.DirectMessage{
		ID:         uuid.New(),
		SenderID:   sender.ID,
		SenderName: sender.Username,
		ReceiverID: receiverID,
		Text:       sanitized,
		CreatedAt:  time.Now().UTC(),
		ReplyTo:    replyTo,
	}

	conv, err := s.messages.GetOrCreateConversation(sender.ID, receiverID)
	if err != nil {
		return domain.DirectMessage{}, err
	}
	if err := s.messages.StoreDirectMessage(conv.ID, msg); err != nil {
		return domain.DirectMessage{}, err
	}

	// Live delivery is fire-and-forget: an offline receiver reads the
	// message from the conversation history later.
	s.orchestrator.Dispatch(domain.SendDirectMessageCommand{Message: msg})
	return msg, nil
}

func (s *ChatService) MarkConversationRead(a, b domain.UserID) error {
	conv, err := s.messages.GetOrCreateConversation(a, b)
	if err != nil {
		return err
	}
	return s.messages.MarkConversationRead(conv.ID, a)
}

func (s *ChatService) DeleteDirectMessage(messageID uuid.UUID, requester domain.UserID) error {
	msg, err := s.messages.DeleteDirectMessage(messageID, requester)
	if err != nil {
		return err
	}
	s.orchestrator.Dispatch(domain.DeleteDirectMessageCommand{
		MessageID:  msg.ID,
		ReceiverID: msg.ReceiverID,
	})
	return nil
}
