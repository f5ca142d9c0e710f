package service

import (
	"context"
	"fmt"

	"memochat/internal/model"
	"memochat/internal/repository"
)

// HistoryService reads saved sessions for the session picker.
type HistoryService struct {
	chatLogs repository.ChatLogRepository
}

func NewHistoryService(chatLogs repository.ChatLogRepository) *HistoryService {
	return &HistoryService{chatLogs: chatLogs}
}

// ListSessions returns the user's sessions, most recently updated first.
func (s *HistoryService) ListSessions(ctx context.Context, userID int64) ([]model.SessionSummary, error) {
	sessions, err := s.chatLogs.ListSessions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not list sessions: %w", err)
	}
	return sessions, nil
}

// LoadSession returns the saved transcript, or an empty one for an unknown session.
func (s *HistoryService) LoadSession(ctx context.Context, userID int64, sessionID string) ([]model.Message, error) {
	msgs, err := s.chatLogs.LoadSession(ctx, userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("could not load session %s: %w", sessionID, err)
	}
	return msgs, nil
}
