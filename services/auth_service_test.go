package services

import (
	"chat-hub/auth"
	"chat-hub/errors"
	"chat-hub/repositories"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

const goodPassword = "Sup3r$ecretPass!"

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newAuthService(t *testing.T) (IAuthService, *auth.TokenIssuer) {
	t.Helper()
	issuer := auth.NewTokenIssuer([]byte("test-secret"), time.Hour)
	return NewAuthService(repositories.NewUserRepository(openTestDB(t)), issuer), issuer
}

func Test_Register_Issues_A_Valid_Token(t *testing.T) {
	req := require.New(t)
	service, issuer := newAuthService(t)

	token, user, err := service.Register("alice", "alice@example.com", goodPassword)
	req.NoError(err)
	req.Equal("alice", user.Username)

	claims, err := issuer.Validate(string(token))
	req.NoError(err)
	req.Equal(string(user.ID), claims.UserID)
	req.Equal("alice", claims.Username)
}

func Test_Register_Rejects_Weak_Password(t *testing.T) {
	req := require.New(t)
	service, _ := newAuthService(t)

	_, _, err := service.Register("alice", "alice@example.com", "alllowercasepassword")
	req.ErrorIs(err, errors.ErrInvalidPassword)
}

func Test_Register_Rejects_Duplicate_Account(t *testing.T) {
	req := require.New(t)
	service, _ := newAuthService(t)

	_, _, err := service.Register("alice", "alice@example.com", goodPassword)
	req.NoError(err)

	_, _, err = service.Register("alice2", "alice@example.com", goodPassword)
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func Test_Login_After_Register(t *testing.T) {
	req := require.New(t)
	service, issuer := newAuthService(t)

	_, registered, err := service.Register("alice", "alice@example.com", goodPassword)
	req.NoError(err)

	token, user, err := service.Login("alice@example.com", goodPassword)
	req.NoError(err)
	req.Equal(registered.ID, user.ID)

	_, err = issuer.Validate(string(token))
	req.NoError(err)
}

func Test_Login_Failures_Stay_Generic(t *testing.T) {
	req := require.New(t)
	service, _ := newAuthService(t)

	_, _, err := service.Register("alice", "alice@example.com", goodPassword)
	req.NoError(err)

	// Wrong password and unknown account must be indistinguishable.
	_, _, err = service.Login("alice@example.com", "WrongPassw0rd!")
	req.ErrorIs(err, errors.ErrInvalidCredentials)

	_, _, err = service.Login("ghost@example.com", goodPassword)
	req.ErrorIs(err, errors.ErrInvalidCredentials)
}
