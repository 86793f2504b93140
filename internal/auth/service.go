package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/monocle-dev/todolist/internal/models"
	"github.com/monocle-dev/todolist/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrMissingUsername    = errors.New("username is required")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrUnknownUser        = errors.New("user not found")
)

// UserStore is implemented by both database backends.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpsertGoogleUser(ctx context.Context, profile models.GoogleProfile) (*models.User, error)
}

type Service struct {
	users UserStore
}

func NewService(users UserStore) *Service {
	return &Service{users: users}
}

func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)

	if username == "" {
		return nil, ErrMissingUsername
	}

	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := HashPassword(password)

	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Username: username, PasswordHash: hash}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if store.IsDuplicate(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return user, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.FindUserByUsername(ctx, strings.TrimSpace(username))

	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == "" || !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GoogleLogin finds or creates the user linked to a Google account.
func (s *Service) GoogleLogin(ctx context.Context, profile models.GoogleProfile) (*models.User, error) {
	if profile.ID == "" {
		return nil, ErrInvalidCredentials
	}

	return s.users.UpsertGoogleUser(ctx, profile)
}

func (s *Service) User(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindUserByID(ctx, id)

	if store.IsNotFound(err) {
		return nil, ErrUnknownUser
	}

	return user, err
}
