package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	app_errors "memochat/internal/errors"
	"memochat/internal/model"
	"memochat/internal/repository"
)

type AuthService struct {
	users  repository.UserRepository
	hasher PasswordHasher
}

func NewAuthService(users repository.UserRepository, hasher PasswordHasher) *AuthService {
	return &AuthService{users: users, hasher: hasher}
}

// Register creates an account and returns its id. It does not log the user in.
func (s *AuthService) Register(ctx context.Context, username, password string) (int64, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return 0, fmt.Errorf("%w: username and password are required", app_errors.ErrValidation)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", app_errors.ErrInternal, err)
	}

	userID, err := s.users.CreateUser(ctx, username, hash)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return 0, app_errors.ErrDuplicateUsername
		}
		return 0, fmt.Errorf("could not register user: %w", err)
	}

	slog.Info("User registered", "user_id", userID, "username", username)
	return userID, nil
}

// Authenticate returns the user when the password matches. An unknown username
// and a wrong password both yield ErrAuthFailure.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, app_errors.ErrAuthFailure
		}
		return nil, fmt.Errorf("could not look up user: %w", err)
	}

	ok, needsRehash := s.hasher.Verify(user.PasswordHash, password)
	if !ok {
		return nil, app_errors.ErrAuthFailure
	}

	if needsRehash {
		s.upgradeHash(ctx, user, password)
	}
	return user, nil
}

// upgradeHash replaces a legacy hash after a successful login. Failure is not fatal.
func (s *AuthService) upgradeHash(ctx context.Context, user *model.User, password string) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		slog.Warn("Could not rehash password", "user_id", user.ID, "error", err)
		return
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		slog.Warn("Could not store upgraded password hash", "user_id", user.ID, "error", err)
		return
	}
	user.PasswordHash = hash
	slog.Info("Upgraded legacy password hash", "user_id", user.ID)
}
