package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app_errors "memochat/internal/errors"
	"memochat/internal/model"
	mock_repo "memochat/internal/repository/mocks"
	"memochat/internal/service"
)

func TestRenderPersonaPrompt(t *testing.T) {
	t.Run("Empty history", func(t *testing.T) {
		got := service.RenderPersonaPrompt(nil, 5)
		assert.Equal(t, "This is a returning user. Here are recent things they have said:\n\nWhen responding, consider the user's style and topics above.\n", got)
	})

	t.Run("Only the last five user messages, oldest first", func(t *testing.T) {
		var history []model.Message
		for i := 1; i <= 7; i++ {
			history = append(history,
				model.NewTextMessage(model.RoleUser, fmt.Sprintf("u%d", i)),
				model.NewTextMessage(model.RoleAssistant, fmt.Sprintf("a%d", i)),
			)
		}

		got := service.RenderPersonaPrompt(history, 5)
		assert.Equal(t, "This is a returning user. Here are recent things they have said:\n"+
			"- u3\n- u4\n- u5\n- u6\n- u7\n"+
			"When responding, consider the user's style and topics above.\n", got)
	})

	t.Run("Image messages are rendered as text", func(t *testing.T) {
		history := []model.Message{{Role: model.RoleUser, Content: model.PartsContent(
			model.TextPart(service.ImageCaption),
			model.ImagePart("data:image/png;base64,AAAA"),
		)}}
		got := service.RenderPersonaPrompt(history, 5)
		assert.Equal(t, "This is a returning user. Here are recent things they have said:\n"+
			"- Please analyze this image. [image]\n"+
			"When responding, consider the user's style and topics above.\n", got)
	})

	t.Run("Multi-line messages stay on one bullet", func(t *testing.T) {
		history := []model.Message{model.NewTextMessage(model.RoleUser, "first line\nsecond line")}
		got := service.RenderPersonaPrompt(history, 5)
		assert.Contains(t, got, "- first line second line\n")
	})
}

func TestPersonaService_BuildPersonaPrompt(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := mock_repo.NewMockRepository(t)
		repo.On("LoadAllUserMessages", ctx, int64(4)).
			Return([]model.Message{model.NewTextMessage(model.RoleUser, "I like Go")}, nil).Once()

		got, err := service.NewPersonaService(repo, 5).BuildPersonaPrompt(ctx, 4)
		require.NoError(t, err)
		assert.Contains(t, got, "- I like Go\n")
	})

	t.Run("Failure - Repository error", func(t *testing.T) {
		repo := mock_repo.NewMockRepository(t)
		repo.On("LoadAllUserMessages", ctx, int64(4)).
			Return(nil, fmt.Errorf("%w: boom", app_errors.ErrPersistence)).Once()

		_, err := service.NewPersonaService(repo, 5).BuildPersonaPrompt(ctx, 4)
		assert.ErrorIs(t, err, app_errors.ErrPersistence)
		assert.False(t, errors.Is(err, app_errors.ErrAuthFailure))
	})
}
