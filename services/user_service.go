package services

import (
	"chat-hub/domain"
	"chat-hub/repositories"
)

const defaultUserPageSize = 50

type IUserService interface {
	GetUser(id domain.UserID) (domain.User, error)
	ListUsers(exclude domain.UserID) ([]domain.User, error)
	SearchUsers(query string, exclude domain.UserID) ([]domain.User, error)
	UpdateProfile(id domain.UserID, username, status, avatar string) (domain.User, error)
}

type UserService struct {
	users repositories.IUserRepository
}

func NewUserService(users repositories.IUserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) GetUser(id domain.UserID) (domain.User, error) {
	return s.users.GetUserByID(id)
}

func (s *UserService) ListUsers(exclude domain.UserID) ([]domain.User, error) {
	return s.users.ListUsers(exclude, defaultUserPageSize)
}

func (s *UserService) SearchUsers(query string, exclude domain.UserID) ([]domain.User, error) {
	return s.users.SearchUsers(query, exclude, defaultUserPageSize)
}

func (s *UserService) UpdateProfile(id domain.UserID, username, status, avatar string) (domain.User, error) {
	return s.users.UpdateProfile(id, username, status, avatar)
}
