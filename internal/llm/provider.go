package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"memochat/internal/model"
)

// Supported values of COMPLETION_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderArk    = "ark"
)

// ChatRequest is one streaming completion call.
type ChatRequest struct {
	Model    string
	Messages []model.Message
}

// Provider defines the interface for interacting with a hosted completion service.
//
// StreamChat returns a lazy, finite, non-restartable sequence of text fragments.
// Recv returns io.EOF once the stream has ended normally; any other error means
// the stream terminated abnormally. Callers must Close the reader.
type Provider interface {
	StreamChat(ctx context.Context, req *ChatRequest) (*schema.StreamReader[string], error)
}

// Config selects and configures a provider.
type Config struct {
	Provider   string
	APIKey     string
	BaseURL    string
	Model      string
	ArkBaseURL string
	ArkRegion  string
}

// NewProvider builds the provider named by cfg.Provider.
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "", ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.BaseURL), nil
	case ProviderArk:
		return NewArkProvider(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported completion provider %q", cfg.Provider)
	}
}
