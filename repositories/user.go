package repositories

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(username, email, passwordHash string) (domain.User, error)
	GetUserByEmail(email string) (domain.User, error)
	GetUserByID(id domain.UserID) (domain.User, error)
	UpdateProfile(id domain.UserID, username, status, avatar string) (domain.User, error)
	ListUsers(exclude domain.UserID, limit int) ([]domain.User, error)
	SearchUsers(query string, exclude domain.UserID, limit int) ([]domain.User, error)
}

// UserRepository persists accounts in BadgerDB.
// Keys: "user:{id}" holds the record; "useremail:{email}" and
// "username:{lower}" are uniqueness indexes resolving to the id.
type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) *UserRepository {
	return &UserRepository{db: db}
}

func userKey(id domain.UserID) []byte    { return []byte("user:" + id) }
func emailKey(email string) []byte       { return []byte("useremail:" + strings.ToLower(email)) }
func usernameKey(username string) []byte { return []byte("username:" + strings.ToLower(username)) }

// storedUser carries the password hash on disk. The domain type hides it
// from JSON so it never leaks through a handler response.
type storedUser struct {
	domain.User
	PasswordHash string `json:"passwordHash"`
}

func putUser(txn *badger.Txn, user domain.User) error {
	data, err := json.Marshal(storedUser{User: user, PasswordHash: user.PasswordHash})
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return txn.Set(userKey(user.ID), data)
}

func (r *UserRepository) CreateUser(username, email, passwordHash string) (domain.User, error) {
	user := domain.User{
		ID:           domain.UserID(uuid.NewString()),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Status:       "Hey there! I am using chat-hub",
		CreatedAt:    time.Now().UTC(),
	}
	err := r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(emailKey(email)); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if _, err := txn.Get(usernameKey(username)); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := putUser(txn, user); err != nil {
			return err
		}
		if err := txn.Set(emailKey(email), []byte(user.ID)); err != nil {
			return err
		}
		return txn.Set(usernameKey(username), []byte(user.ID))
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetUserByEmail(email string) (domain.User, error) {
	var user domain.User
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey(email))
		if err != nil {
			return errors.ErrUserNotFound
		}
		var id []byte
		if id, err = item.ValueCopy(nil); err != nil {
			return err
		}
		return getUser(txn, domain.UserID(id), &user)
	})
	return user, err
}

func (r *UserRepository) GetUserByID(id domain.UserID) (domain.User, error) {
	var user domain.User
	err := r.db.View(func(txn *badger.Txn) error {
		return getUser(txn, id, &user)
	})
	return user, err
}

// UpdateProfile rewrites the mutable fields; a username change re-points
// the uniqueness index.
func (r *UserRepository) UpdateProfile(id domain.UserID, username, status, avatar string) (domain.User, error) {
	var user domain.User
	err := r.db.Update(func(txn *badger.Txn) error {
		if err := getUser(txn, id, &user); err != nil {
			return err
		}
		if username != "" && username != user.Username {
			if _, err := txn.Get(usernameKey(username)); err == nil {
				return errors.ErrUserAlreadyExists
			}
			if err := txn.Delete(usernameKey(user.Username)); err != nil {
				return err
			}
			if err := txn.Set(usernameKey(username), []byte(id)); err != nil {
				return err
			}
			user.Username = username
		}
		if status != "" {
			user.Status = status
		}
		if avatar != "" {
			user.Avatar = avatar
		}
		return putUser(txn, user)
	})
	return user, err
}

func (r *UserRepository) ListUsers(exclude domain.UserID, limit int) ([]domain.User, error) {
	return r.scanUsers(exclude, limit, func(domain.User) bool { return true })
}

// SearchUsers is a case-insensitive contains match over usernames. A full
// scan is acceptable at this scale; full-text search capacity is reserved
// for message history.
func (r *UserRepository) SearchUsers(query string, exclude domain.UserID, limit int) ([]domain.User, error) {
	needle := strings.ToLower(query)
	return r.scanUsers(exclude, limit, func(u domain.User) bool {
		return strings.Contains(strings.ToLower(u.Username), needle)
	})
}

func (r *UserRepository) scanUsers(exclude domain.UserID, limit int, keep func(domain.User) bool) ([]domain.User, error) {
	var users []domain.User
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("user:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(users) >= limit {
				break
			}
			var user domain.User
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &user)
			})
			if err != nil {
				return err
			}
			if user.ID == exclude || !keep(user) {
				continue
			}
			users = append(users, user)
		}
		return nil
	})
	return users, err
}

func getUser(txn *badger.Txn, id domain.UserID, user *domain.User) error {
	var stored storedUser
	err := fetchJSON(txn, userKey(id), &stored)
	if err == badger.ErrKeyNotFound {
		return errors.ErrUserNotFound
	}
	if err != nil {
		return err
	}
	stored.User.PasswordHash = stored.PasswordHash
	*user = stored.User
	return nil
}
