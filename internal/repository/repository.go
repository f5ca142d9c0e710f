package repository

import (
	"context"

	"memochat/internal/model"
)

// UserRepository stores credentials.
type UserRepository interface {
	CreateUser(ctx context.Context, username, passwordHash string) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string) error
}

// ChatLogRepository stores one JSON transcript per (user, session).
type ChatLogRepository interface {
	LoadSession(ctx context.Context, userID int64, sessionID string) ([]model.Message, error)
	SaveSession(ctx context.Context, userID int64, sessionID string, messages []model.Message) error
	ListSessions(ctx context.Context, userID int64) ([]model.SessionSummary, error)
	LoadAllUserMessages(ctx context.Context, userID int64) ([]model.Message, error)
}

// Repository defines the interface for data storage operations.
type Repository interface {
	UserRepository
	ChatLogRepository
}
