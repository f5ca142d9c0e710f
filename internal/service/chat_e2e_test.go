package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memochat/internal/database/dbtest"
	"memochat/internal/llm"
	"memochat/internal/model"
	"memochat/internal/navigation"
	"memochat/internal/repository"
	"memochat/internal/service"
)

// scriptedProvider replies with fixed fragments and records every request.
type scriptedProvider struct {
	mu        sync.Mutex
	fragments []string
	requests  []*llm.ChatRequest
}

func (p *scriptedProvider) StreamChat(_ context.Context, req *llm.ChatRequest) (*schema.StreamReader[string], error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	return schema.StreamReaderFromArray(p.fragments), nil
}

type stack struct {
	auth     *service.AuthService
	history  *service.HistoryService
	chat     *service.ChatService
	provider *scriptedProvider
	store    *navigation.Store
}

func newStack(t *testing.T, fragments ...string) stack {
	repo := repository.NewSQLRepository(dbtest.NewSQLite(t))
	hasher, err := service.NewPasswordHasher(service.HasherBcrypt)
	require.NoError(t, err)
	provider := &scriptedProvider{fragments: fragments}
	return stack{
		auth:     service.NewAuthService(repo, hasher),
		history:  service.NewHistoryService(repo),
		chat:     service.NewChatService(repo, service.NewPersonaService(repo, 5), provider, "gpt-4o", 15),
		provider: provider,
		store:    navigation.NewStore(0),
	}
}

func loginNewSession(t *testing.T, s stack, username string) *navigation.State {
	t.Helper()
	ctx := context.Background()
	_, err := s.auth.Register(ctx, username, "pw")
	require.NoError(t, err)
	user, err := s.auth.Authenticate(ctx, username, "pw")
	require.NoError(t, err)

	st := s.store.Create()
	st.Login(user)
	_, err = st.StartNew()
	require.NoError(t, err)
	return st
}

func TestEndToEnd_FirstConversation(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, "hi", " there")
	st := loginNewSession(t, s, "alice")

	turn, err := s.chat.AcceptText(st, "hello")
	require.NoError(t, err)
	events, err := runTurn(t, s.chat, turn)
	require.NoError(t, err)
	assert.Equal(t, "hi there", events[len(events)-2].Content)

	sessions, err := s.history.ListSessions(ctx, st.UserID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, st.SessionID, sessions[0].SessionID)

	saved, err := s.history.LoadSession(ctx, st.UserID, st.SessionID)
	require.NoError(t, err)
	assert.Equal(t, []model.Message{
		model.NewTextMessage(model.RoleUser, "hello"),
		model.NewTextMessage(model.RoleAssistant, "hi there"),
	}, saved)

	// The first turn has no saved history, so the persona section is empty.
	require.Len(t, s.provider.requests, 1)
	assert.Equal(t, service.RenderPersonaPrompt(nil, 5), s.provider.requests[0].Messages[0].Content.Text)
}

func TestEndToEnd_DuplicateImageUpload(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, "a tiny png")
	st := loginNewSession(t, s, "bob")
	upload := service.Upload{Filename: "dot.png", Data: pngBytes}

	turn, err := s.chat.AcceptImage(st, upload)
	require.NoError(t, err)
	_, err = runTurn(t, s.chat, turn)
	require.NoError(t, err)

	_, err = s.chat.AcceptImage(st, upload)
	require.ErrorIs(t, err, service.ErrDuplicateUpload)

	saved, err := s.history.LoadSession(ctx, st.UserID, st.SessionID)
	require.NoError(t, err)
	images := 0
	for _, msg := range saved {
		if msg.Role == model.RoleUser && msg.Content.IsParts() {
			images++
		}
	}
	assert.Equal(t, 1, images)
	assert.Len(t, saved, 2)
}

func TestEndToEnd_PersonaUsesEarlierSessions(t *testing.T) {
	s := newStack(t, "ok")
	st := loginNewSession(t, s, "carol")

	for _, text := range []string{"I write Go", "I like trains"} {
		turn, err := s.chat.AcceptText(st, text)
		require.NoError(t, err)
		_, err = runTurn(t, s.chat, turn)
		require.NoError(t, err)
	}

	persona := s.provider.requests[1].Messages[0].Content.Text
	assert.Contains(t, persona, "- I write Go\n")
	assert.NotContains(t, persona, "I like trains")
}
