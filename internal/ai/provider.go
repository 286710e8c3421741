// Package ai sends rendered prompts to a hosted chat-completion API so they
// can be tried out before use.
package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/kayz/cue/internal/config"
)

// Model is one selectable model.
type Model struct {
	ID      string `json:"id"`
	OwnedBy string `json:"owned_by,omitempty"`
}

// Provider is a chat-completion backend.
type Provider interface {
	Name() string
	ListModels(ctx context.Context) ([]Model, error)
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// ProviderFactory builds a Provider for an API key.
type ProviderFactory func(apiKey string) (Provider, error)

// NewProviderFactory picks the backend named in cfg.
func NewProviderFactory(cfg config.AIConfig, client *http.Client) (ProviderFactory, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "openrouter", "openai":
		return func(key string) (Provider, error) {
			return NewOpenAIProvider(OpenAIConfig{
				APIKey:     key,
				BaseURL:    cfg.BaseURL,
				HTTPClient: client,
			})
		}, nil
	case "anthropic", "claude":
		return func(key string) (Provider, error) {
			return NewAnthropicProvider(AnthropicConfig{
				APIKey:     key,
				BaseURL:    cfg.BaseURL,
				Models:     cfg.Models,
				HTTPClient: client,
			})
		}, nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q (use openrouter or anthropic)", cfg.Provider)
	}
}
