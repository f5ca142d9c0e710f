package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app_errors "memochat/internal/errors"
	"memochat/internal/model"
)

// sseChunk renders one chat.completion.chunk frame the way the OpenAI API streams it.
func sseChunk(content string) string {
	return fmt.Sprintf(`data: {"id":"c1","object":"chat.completion.chunk","created":1,"model":"gpt-4o","choices":[{"index":0,"delta":{"content":%q},"finish_reason":null}]}`+"\n\n", content)
}

func drain(t *testing.T, sr *schema.StreamReader[string]) (string, error) {
	t.Helper()
	defer sr.Close()
	var b strings.Builder
	for {
		chunk, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}
		if err != nil {
			return b.String(), err
		}
		b.WriteString(chunk)
	}
}

// TestOpenAIProvider_StreamChat points the go-openai client at a local server
// that speaks the chat completions streaming protocol.
func TestOpenAIProvider_StreamChat(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		var captured map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

			w.Header().Set("Content-Type", "text/event-stream")
			_, _ = io.WriteString(w, sseChunk("Hel"))
			_, _ = io.WriteString(w, sseChunk("lo"))
			_, _ = io.WriteString(w, sseChunk(""))
			_, _ = io.WriteString(w, "data: [DONE]\n\n")
		}))
		defer server.Close()

		provider := NewOpenAIProvider("sk-test", server.URL+"/v1")
		sr, err := provider.StreamChat(ctx, &ChatRequest{
			Model: "gpt-4o",
			Messages: []model.Message{
				model.NewTextMessage(model.RoleSystem, "persona"),
				model.NewTextMessage(model.RoleUser, "hi"),
			},
		})
		require.NoError(t, err)

		text, err := drain(t, sr)
		require.NoError(t, err)
		assert.Equal(t, "Hello", text)

		assert.Equal(t, "gpt-4o", captured["model"])
		assert.Equal(t, true, captured["stream"])
		msgs, ok := captured["messages"].([]any)
		require.True(t, ok)
		require.Len(t, msgs, 2)
		first, ok := msgs[0].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "system", first["role"])
		assert.Equal(t, "persona", first["content"])
	})

	t.Run("Failure - Service rejects the request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
		}))
		defer server.Close()

		provider := NewOpenAIProvider("sk-bad", server.URL+"/v1")
		_, err := provider.StreamChat(ctx, &ChatRequest{Model: "gpt-4o", Messages: []model.Message{model.NewTextMessage(model.RoleUser, "hi")}})
		require.Error(t, err)
		assert.ErrorIs(t, err, app_errors.ErrCompletionService)
	})

	t.Run("Failure - Stream breaks mid-way", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			_, _ = io.WriteString(w, sseChunk("partial"))
			_, _ = io.WriteString(w, "data: {not json\n\n")
		}))
		defer server.Close()

		provider := NewOpenAIProvider("sk-test", server.URL+"/v1")
		sr, err := provider.StreamChat(ctx, &ChatRequest{Model: "gpt-4o", Messages: []model.Message{model.NewTextMessage(model.RoleUser, "hi")}})
		require.NoError(t, err)

		text, err := drain(t, sr)
		assert.Equal(t, "partial", text)
		assert.ErrorIs(t, err, app_errors.ErrCompletionService)
	})
}

func TestToOpenAIMessages(t *testing.T) {
	msgs := toOpenAIMessages([]model.Message{
		model.NewTextMessage(model.RoleAssistant, "earlier reply"),
		{Role: model.RoleUser, Content: model.PartsContent(
			model.TextPart("Please analyze this image."),
			model.ImagePart("data:image/png;base64,AAAA"),
		)},
	})

	require.Len(t, msgs, 2)
	assert.Equal(t, "assistant", msgs[0].Role)
	assert.Equal(t, "earlier reply", msgs[0].Content)
	assert.Empty(t, msgs[0].MultiContent)

	assert.Equal(t, "user", msgs[1].Role)
	assert.Empty(t, msgs[1].Content)
	require.Len(t, msgs[1].MultiContent, 2)
	assert.Equal(t, "Please analyze this image.", msgs[1].MultiContent[0].Text)
	require.NotNil(t, msgs[1].MultiContent[1].ImageURL)
	assert.Equal(t, "data:image/png;base64,AAAA", msgs[1].MultiContent[1].ImageURL.URL)
}

func TestToOpenAIMessages_SkipsImagePartWithoutURL(t *testing.T) {
	var msgs []model.Message
	require.NoError(t, json.Unmarshal([]byte(`[{"role":"user","content":[{"type":"text","text":"look"},{"type":"image_url"}]}]`), &msgs))

	var out []openai.ChatCompletionMessage
	require.NotPanics(t, func() { out = toOpenAIMessages(msgs) })
	require.Len(t, out, 1)
	require.Len(t, out[0].MultiContent, 1)
	assert.Equal(t, "look", out[0].MultiContent[0].Text)
}
