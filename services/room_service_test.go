package services

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"chat-hub/mocks"
	"chat-hub/repositories"
	"context"
	"log/slog"
	"testing"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newRoomService(t *testing.T, orchestrator *mocks.MockIOrchestrator) (*RoomService, repositories.IUserRepository) {
	t.Helper()
	db := openTestDB(t)

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = blugeWriter.Close() })

	log := slog.Default()
	service := NewRoomService(
		repositories.NewRoomRepository(db),
		repositories.NewRoomMessageRepository(db),
		repositories.NewMessageIndex(blugeWriter, log),
		newModerator(t),
		orchestrator,
		log,
	)
	return service, repositories.NewUserRepository(db)
}

func Test_Create_Room_With_Password_Is_Private(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	service, _ := newRoomService(t, mocks.NewMockIOrchestrator(ctrl))

	room, err := service.CreateRoom("alice", 42, "vault", "secrets", "Sup3r$ecretPass!")
	req.NoError(err)
	req.True(room.IsPrivate)
	req.NotEmpty(room.PasswordHash)
	req.Equal([]domain.UserID{"alice"}, room.Participants)

	public, err := service.ListPublicRooms()
	req.NoError(err)
	req.Empty(public)
}

func Test_Join_Private_Room_Checks_The_Password(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	service, _ := newRoomService(t, mocks.NewMockIOrchestrator(ctrl))

	room, err := service.CreateRoom("alice", 42, "vault", "", "Sup3r$ecretPass!")
	req.NoError(err)

	_, err = service.JoinRoom(room.ID, "bob", "wrong")
	req.ErrorIs(err, errors.ErrIncorrectRoomPassword)

	joined, err := service.JoinRoom(room.ID, "bob", "Sup3r$ecretPass!")
	req.NoError(err)
	req.True(joined.HasParticipant("bob"))
}

func Test_Join_Is_Idempotent_Even_Without_The_Password(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	service, _ := newRoomService(t, mocks.NewMockIOrchestrator(ctrl))

	room, err := service.CreateRoom("alice", 42, "vault", "", "Sup3r$ecretPass!")
	req.NoError(err)

	// The creator already participates, so no password is needed.
	again, err := service.JoinRoom(room.ID, "alice", "")
	req.NoError(err)
	req.True(again.HasParticipant("alice"))
}

func Test_Join_By_Number(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	service, _ := newRoomService(t, mocks.NewMockIOrchestrator(ctrl))

	_, err := service.CreateRoom("alice", 7, "lobby", "", "")
	req.NoError(err)

	joined, err := service.JoinRoomByNumber(7, "bob", "")
	req.NoError(err)
	req.True(joined.HasParticipant("bob"))

	_, err = service.JoinRoomByNumber(99, "bob", "")
	req.ErrorIs(err, errors.ErrRoomNotFound)
}

func Test_Post_Room_Message_Censors_Stores_Indexes_And_Dispatches(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	orchestrator := mocks.NewMockIOrchestrator(ctrl)
	service, users := newRoomService(t, orchestrator)

	alice, err := users.CreateUser("alice", "alice@example.com", "hash")
	req.NoError(err)
	room, err := service.CreateRoom(alice.ID, 1, "lobby", "", "")
	req.NoError(err)

	var dispatched domain.RoomMessage
	orchestrator.EXPECT().Dispatch(gomock.Any()).Do(func(cmd domain.Command) {
		dispatched = cmd.(domain.SendRoomMessageCommand).Message
	})

	sent, err := service.PostRoomMessage(alice, room.ID, "deploy broke, idiot", nil)
	req.NoError(err)
	req.Equal("deploy broke, *****", sent.Text)
	req.Equal("deploy broke, *****", dispatched.Text)

	history, err := service.GetRoomMessages(room.ID, nil)
	req.NoError(err)
	req.Len(history, 1)
	req.Equal("deploy broke, *****", history[0].Text)

	hits, total, err := service.SearchMessages(context.Background(), "deploy", room.ID, 0)
	req.NoError(err)
	req.Equal(uint64(1), total)
	req.Equal(sent.ID, hits[0].MessageID)
}

func Test_Post_Room_Message_Requires_Membership(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	service, users := newRoomService(t, mocks.NewMockIOrchestrator(ctrl))

	alice, err := users.CreateUser("alice", "alice@example.com", "hash")
	req.NoError(err)
	bob, err := users.CreateUser("bob", "bob@example.com", "hash")
	req.NoError(err)
	room, err := service.CreateRoom(alice.ID, 1, "lobby", "", "")
	req.NoError(err)

	// Outsiders learn nothing beyond "no such room".
	_, err = service.PostRoomMessage(bob, room.ID, "let me in", nil)
	req.ErrorIs(err, errors.ErrRoomNotFound)
}

func Test_Delete_Room_Message_Deindexes_And_Dispatches(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	orchestrator := mocks.NewMockIOrchestrator(ctrl)
	service, users := newRoomService(t, orchestrator)

	alice, err := users.CreateUser("alice", "alice@example.com", "hash")
	req.NoError(err)
	room, err := service.CreateRoom(alice.ID, 1, "lobby", "", "")
	req.NoError(err)

	orchestrator.EXPECT().Dispatch(gomock.Any()) // the post
	sent, err := service.PostRoomMessage(alice, room.ID, "retract me", nil)
	req.NoError(err)

	orchestrator.EXPECT().Dispatch(domain.DeleteRoomMessageCommand{
		RoomID:    room.ID,
		MessageID: sent.ID,
		ActorID:   alice.ID,
	})
	req.NoError(service.DeleteRoomMessage(sent.ID, alice.ID))

	history, err := service.GetRoomMessages(room.ID, nil)
	req.NoError(err)
	req.Empty(history)

	_, total, err := service.SearchMessages(context.Background(), "retract", room.ID, 0)
	req.NoError(err)
	req.Equal(uint64(0), total)
}

func Test_Delete_Room_Message_By_Non_Sender_Dispatches_Nothing(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	orchestrator := mocks.NewMockIOrchestrator(ctrl)
	service, users := newRoomService(t, orchestrator)

	alice, err := users.CreateUser("alice", "alice@example.com", "hash")
	req.NoError(err)
	room, err := service.CreateRoom(alice.ID, 1, "lobby", "", "")
	req.NoError(err)

	orchestrator.EXPECT().Dispatch(gomock.Any()) // the post
	sent, err := service.PostRoomMessage(alice, room.ID, "mine", nil)
	req.NoError(err)

	err = service.DeleteRoomMessage(sent.ID, "bob")
	req.ErrorIs(err, errors.ErrNotMessageSender)
	req.NotEqual(uuid.Nil, sent.ID)
}
