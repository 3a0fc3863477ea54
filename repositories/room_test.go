package repositories

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func Test_Create_Room_And_Resolve_By_Number(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewRoomRepository(db)

	created, err := repository.CreateRoom(domain.Room{
		Number:       42,
		Name:         "general",
		CreatedBy:    "alice",
		Participants: []domain.UserID{"alice"},
	})
	req.NoError(err)
	req.NotEmpty(created.ID)

	byID, err := repository.GetRoomByID(created.ID)
	req.NoError(err)
	req.Equal("general", byID.Name)

	byNumber, err := repository.GetRoomByNumber(42)
	req.NoError(err)
	req.Equal(created.ID, byNumber.ID)
}

func Test_Create_Room_Rejects_Taken_Number(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewRoomRepository(db)

	_, err := repository.CreateRoom(domain.Room{Number: 7, Name: "first"})
	req.NoError(err)

	_, err = repository.CreateRoom(domain.Room{Number: 7, Name: "second"})
	req.ErrorIs(err, errors.ErrRoomNumberTaken)
}

func Test_Get_Unknown_Room(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewRoomRepository(db)

	_, err := repository.GetRoomByID("missing")
	req.ErrorIs(err, errors.ErrRoomNotFound)

	_, err = repository.GetRoomByNumber(99)
	req.ErrorIs(err, errors.ErrRoomNotFound)
}

func Test_Add_Participant_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewRoomRepository(db)

	created, err := repository.CreateRoom(domain.Room{
		Number:       1,
		Name:         "general",
		Participants: []domain.UserID{"alice"},
	})
	req.NoError(err)

	room, err := repository.AddParticipant(created.ID, "bob")
	req.NoError(err)
	req.Len(room.Participants, 2)

	room, err = repository.AddParticipant(created.ID, "bob")
	req.NoError(err)
	req.Len(room.Participants, 2)
}

func Test_Remove_Participant(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewRoomRepository(db)

	created, err := repository.CreateRoom(domain.Room{
		Number:       1,
		Name:         "general",
		Participants: []domain.UserID{"alice", "bob"},
	})
	req.NoError(err)

	err = repository.RemoveParticipant(created.ID, "alice")
	req.NoError(err)

	room, err := repository.GetRoomByID(created.ID)
	req.NoError(err)
	req.Equal([]domain.UserID{"bob"}, room.Participants)
}

func Test_List_Public_Rooms_Skips_Private_Ones(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewRoomRepository(db)

	_, err := repository.CreateRoom(domain.Room{Number: 1, Name: "lobby"})
	req.NoError(err)
	_, err = repository.CreateRoom(domain.Room{Number: 2, Name: "vault", IsPrivate: true, PasswordHash: "hash"})
	req.NoError(err)

	rooms, err := repository.ListPublicRooms()
	req.NoError(err)
	req.Len(rooms, 1)
	req.Equal("lobby", rooms[0].Name)
}

func Test_List_Rooms_By_Participant(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewRoomRepository(db)

	_, err := repository.CreateRoom(domain.Room{Number: 1, Name: "lobby", Participants: []domain.UserID{"alice", "bob"}})
	req.NoError(err)
	_, err = repository.CreateRoom(domain.Room{Number: 2, Name: "dev", Participants: []domain.UserID{"alice"}})
	req.NoError(err)
	_, err = repository.CreateRoom(domain.Room{Number: 3, Name: "ops", Participants: []domain.UserID{"clara"}})
	req.NoError(err)

	rooms, err := repository.ListRoomsByParticipant("alice")
	req.NoError(err)
	names := lo.Map(rooms, func(r domain.Room, _ int) string { return r.Name })
	req.ElementsMatch([]string{"lobby", "dev"}, names)
}
