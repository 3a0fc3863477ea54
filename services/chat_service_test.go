package services

import (
	"bytes"
	"chat-hub/domain"
	"chat-hub/errors"
	"chat-hub/mocks"
	"chat-hub/moderation"
	"chat-hub/repositories"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newModerator(t *testing.T) *moderation.Moderator {
	t.Helper()
	moderator, err := moderation.NewModerator([]string{"idiot"}, '*')
	require.NoError(t, err)
	return moderator
}

func seedUsers(t *testing.T, users repositories.IUserRepository) (domain.User, domain.User) {
	t.Helper()
	alice, err := users.CreateUser("alice", "alice@example.com", "hash")
	require.NoError(t, err)
	bob, err := users.CreateUser("bob", "bob@example.com", "hash")
	require.NoError(t, err)
	return alice, bob
}

func Test_Send_Direct_Message_Censors_Before_Store_And_Dispatch(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	users := repositories.NewUserRepository(db)
	messages := repositories.NewMessageRepository(db)
	alice, bob := seedUsers(t, users)

	ctrl := gomock.NewController(t)
	orchestrator := mocks.NewMockIOrchestrator(ctrl)

	var dispatched domain.DirectMessage
	orchestrator.EXPECT().Dispatch(gomock.Any()).Do(func(cmd domain.Command) {
		dispatched = cmd.(domain.SendDirectMessageCommand).Message
	})

	var logged bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logged, nil))

	service := NewChatService(messages, users, newModerator(t), orchestrator, log)
	sent, err := service.SendDirectMessage(alice, bob.ID, "you idiot", nil)
	req.NoError(err)

	// Stored history and live delivery carry the same masked text.
	req.Equal("you *****", sent.Text)
	req.Equal("you *****", dispatched.Text)

	// The censorship is logged with the detected message language.
	req.Contains(logged.String(), "Censored direct message")
	req.Contains(logged.String(), "lang=")

	history, err := service.GetConversation(alice.ID, bob.ID)
	req.NoError(err)
	req.Len(history, 1)
	req.Equal("you *****", history[0].Text)
}

func Test_Send_Direct_Message_To_Unknown_Receiver(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	users := repositories.NewUserRepository(db)
	messages := repositories.NewMessageRepository(db)
	alice, _ := seedUsers(t, users)

	ctrl := gomock.NewController(t)
	orchestrator := mocks.NewMockIOrchestrator(ctrl)
	// No Dispatch expected: nothing was persisted.

	service := NewChatService(messages, users, newModerator(t), orchestrator, slog.Default())
	_, err := service.SendDirectMessage(alice, "nobody", "hello", nil)
	req.ErrorIs(err, errors.ErrUserNotFound)
}

func Test_Delete_Direct_Message_Notifies_The_Receiver(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	users := repositories.NewUserRepository(db)
	messages := repositories.NewMessageRepository(db)
	alice, bob := seedUsers(t, users)

	ctrl := gomock.NewController(t)
	orchestrator := mocks.NewMockIOrchestrator(ctrl)
	orchestrator.EXPECT().Dispatch(gomock.Any()) // the send

	service := NewChatService(messages, users, newModerator(t), orchestrator, slog.Default())
	sent, err := service.SendDirectMessage(alice, bob.ID, "oops", nil)
	req.NoError(err)

	orchestrator.EXPECT().Dispatch(domain.DeleteDirectMessageCommand{
		MessageID:  sent.ID,
		ReceiverID: bob.ID,
	})
	req.NoError(service.DeleteDirectMessage(sent.ID, alice.ID))

	history, err := service.GetConversation(alice.ID, bob.ID)
	req.NoError(err)
	req.Empty(history)
}

func Test_Delete_Direct_Message_Failure_Stays_Silent(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	users := repositories.NewUserRepository(db)
	messages := repositories.NewMessageRepository(db)
	alice, bob := seedUsers(t, users)

	ctrl := gomock.NewController(t)
	orchestrator := mocks.NewMockIOrchestrator(ctrl)
	orchestrator.EXPECT().Dispatch(gomock.Any()) // the send

	service := NewChatService(messages, users, newModerator(t), orchestrator, slog.Default())
	sent, err := service.SendDirectMessage(alice, bob.ID, "mine", nil)
	req.NoError(err)

	// A rejected delete must not dispatch anything to the receiver.
	err = service.DeleteDirectMessage(sent.ID, bob.ID)
	req.ErrorIs(err, errors.ErrNotMessageSender)
}

func Test_List_Conversations_Skips_Deleted_Accounts(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	users := repositories.NewUserRepository(db)
	messages := repositories.NewMessageRepository(db)
	alice, bob := seedUsers(t, users)

	ctrl := gomock.NewController(t)
	orchestrator := mocks.NewMockIOrchestrator(ctrl)
	orchestrator.EXPECT().Dispatch(gomock.Any()).Times(1)

	service := NewChatService(messages, users, newModerator(t), orchestrator, slog.Default())
	sent, err := service.SendDirectMessage(alice, bob.ID, "hello bob", nil)
	req.NoError(err)

	summaries, err := service.ListConversations(bob.ID)
	req.NoError(err)
	req.Len(summaries, 1)
	req.Equal(alice.ID, summaries[0].With.ID)
	req.Equal("hello bob", summaries[0].LastText)
	req.NotEqual(uuid.Nil, sent.ID)

	// A conversation with an account that no longer resolves is hidden.
	ghost, err := messages.GetOrCreateConversation(bob.ID, "ghost")
	req.NoError(err)
	req.NotEqual(uuid.Nil, ghost.ID)
	summaries, err = service.ListConversations(bob.ID)
	req.NoError(err)
	req.Len(summaries, 1)
}
