package service

import (
	"context"
	"fmt"
	"strings"

	"memochat/internal/model"
	"memochat/internal/repository"
)

const (
	personaHeader = "This is a returning user. Here are recent things they have said:\n"
	personaFooter = "\nWhen responding, consider the user's style and topics above.\n"
)

// PersonaService derives a system prompt from what the user has said before.
type PersonaService struct {
	chatLogs   repository.ChatLogRepository
	sampleSize int
}

func NewPersonaService(chatLogs repository.ChatLogRepository, sampleSize int) *PersonaService {
	return &PersonaService{chatLogs: chatLogs, sampleSize: sampleSize}
}

// BuildPersonaPrompt renders the user's most recent saved messages into the persona template.
func (s *PersonaService) BuildPersonaPrompt(ctx context.Context, userID int64) (string, error) {
	history, err := s.chatLogs.LoadAllUserMessages(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("could not load user history: %w", err)
	}
	return RenderPersonaPrompt(history, s.sampleSize), nil
}

// RenderPersonaPrompt keeps the last n user-role messages of history, oldest
// first, one bullet line each. Multi-part messages and line breaks are
// flattened onto that line.
func RenderPersonaPrompt(history []model.Message, n int) string {
	var said []string
	for _, msg := range history {
		if msg.Role == model.RoleUser {
			said = append(said, strings.Join(strings.Fields(msg.Content.PlainText()), " "))
		}
	}
	if n < 0 {
		n = 0
	}
	if len(said) > n {
		said = said[len(said)-n:]
	}

	lines := make([]string, len(said))
	for i, text := range said {
		lines[i] = "- " + text
	}
	return personaHeader + strings.Join(lines, "\n") + personaFooter
}
