package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ark"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	app_errors "memochat/internal/errors"
	"memochat/internal/model"
)

// streamingChatModel is the part of an eino chat model used here.
type streamingChatModel interface {
	Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error)
}

type arkProvider struct {
	chatModel streamingChatModel
}

// NewArkProvider uses a Volcengine Ark endpoint through eino. The endpoint
// (cfg.Model) is bound at construction, so ChatRequest.Model is ignored.
func NewArkProvider(ctx context.Context, cfg Config) (Provider, error) {
	cm, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL: cfg.ArkBaseURL,
		Region:  cfg.ArkRegion,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ark chat model: %w", err)
	}
	return &arkProvider{chatModel: cm}, nil
}

func (p *arkProvider) StreamChat(ctx context.Context, req *ChatRequest) (*schema.StreamReader[string], error) {
	stream, err := p.chatModel.Stream(ctx, toSchemaMessages(req.Messages))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", app_errors.ErrCompletionService, err)
	}
	return schema.StreamReaderWithConvert(stream, func(m *schema.Message) (string, error) {
		if m == nil {
			return "", nil
		}
		return m.Content, nil
	}), nil
}

func toSchemaMessages(msgs []model.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(msgs))
	for _, m := range msgs {
		msg := &schema.Message{Role: schema.RoleType(m.Role)}
		if !m.Content.IsParts() {
			msg.Content = m.Content.Text
			out = append(out, msg)
			continue
		}
		for _, part := range m.Content.Parts {
			switch part.Type {
			case model.PartTypeText:
				msg.MultiContent = append(msg.MultiContent, schema.ChatMessagePart{
					Type: schema.ChatMessagePartTypeText,
					Text: part.Text,
				})
			case model.PartTypeImageURL:
				if part.ImageURL == nil {
					continue
				}
				msg.MultiContent = append(msg.MultiContent, schema.ChatMessagePart{
					Type:     schema.ChatMessagePartTypeImageURL,
					ImageURL: &schema.ChatMessageImageURL{URL: part.ImageURL.URL},
				})
			}
		}
		out = append(out, msg)
	}
	return out
}
