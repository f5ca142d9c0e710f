package interfaces

import (
	"context"

	"memochat/internal/model"
	"memochat/internal/navigation"
	"memochat/internal/service"
)

// This file defines the interfaces for our core services.
// The API layer depends on these rather than on concrete implementations,
// so handlers can be tested against mocks.

// AuthService defines the contract for account registration and login.
type AuthService interface {
	Register(ctx context.Context, username, password string) (int64, error)
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
}

// HistoryService defines the contract for reading saved sessions.
type HistoryService interface {
	ListSessions(ctx context.Context, userID int64) ([]model.SessionSummary, error)
	LoadSession(ctx context.Context, userID int64, sessionID string) ([]model.Message, error)
}

// ChatService defines the contract for running a chat turn.
// Accept* run synchronously under the client's lock; Complete streams the reply.
type ChatService interface {
	AcceptText(st *navigation.State, text string) (*service.Turn, error)
	AcceptImage(st *navigation.State, upload service.Upload) (*service.Turn, error)
	Complete(ctx context.Context, turn *service.Turn, streamChan chan<- model.StreamResponse) error
}
