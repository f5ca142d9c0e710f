package llm

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudwego/eino/schema"
	"github.com/sashabaranov/go-openai"

	app_errors "memochat/internal/errors"
	"memochat/internal/model"
)

type openAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider talks to the OpenAI chat completions API, or to any
// compatible endpoint when baseURL is set.
func NewOpenAIProvider(apiKey, baseURL string) Provider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &openAIProvider{client: openai.NewClientWithConfig(cfg)}
}

func (p *openAIProvider) StreamChat(ctx context.Context, req *ChatRequest) (*schema.StreamReader[string], error) {
	stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: toOpenAIMessages(req.Messages),
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", app_errors.ErrCompletionService, err)
	}

	sr, sw := schema.Pipe[string](16)
	go func() {
		defer sw.Close()
		defer stream.Close()
		for {
			chunk, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				sw.Send("", fmt.Errorf("%w: %w", app_errors.ErrCompletionService, err))
				return
			}
			for _, choice := range chunk.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				if closed := sw.Send(choice.Delta.Content, nil); closed {
					return
				}
			}
		}
	}()
	return sr, nil
}

func toOpenAIMessages(msgs []model.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		msg := openai.ChatCompletionMessage{Role: string(m.Role)}
		if !m.Content.IsParts() {
			msg.Content = m.Content.Text
			out = append(out, msg)
			continue
		}
		for _, part := range m.Content.Parts {
			switch part.Type {
			case model.PartTypeText:
				msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
					Type: openai.ChatMessagePartTypeText,
					Text: part.Text,
				})
			case model.PartTypeImageURL:
				if part.ImageURL == nil {
					continue
				}
				msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: part.ImageURL.URL},
				})
			}
		}
		out = append(out, msg)
	}
	return out
}
