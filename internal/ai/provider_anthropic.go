package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
)

const anthropicMaxTokens = 4096

var defaultAnthropicModels = []string{"claude-sonnet-4-5", "claude-haiku-4-5"}

// AnthropicProvider talks to the Anthropic Messages API. That API has no
// model listing here, so models come from configuration.
type AnthropicProvider struct {
	client *anthropic.Client
	models []string
}

type AnthropicConfig struct {
	APIKey     string
	BaseURL    string
	Models     []string
	HTTPClient *http.Client
}

func NewAnthropicProvider(cfg AnthropicConfig) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	var opts []anthropic.ClientOption
	// the OpenRouter default is meaningless here
	if cfg.BaseURL != "" && cfg.BaseURL != DefaultBaseURL {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, anthropic.WithHTTPClient(cfg.HTTPClient))
	}

	models := cfg.Models
	if len(models) == 0 {
		models = defaultAnthropicModels
	}

	return &AnthropicProvider{
		client: anthropic.NewClient(cfg.APIKey, opts...),
		models: models,
	}, nil
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) ListModels(ctx context.Context) ([]Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Model, 0, len(p.models))
	for _, id := range p.models {
		out = append(out, Model{ID: id, OwnedBy: "anthropic"})
	}
	return out, nil
}

func (p *AnthropicProvider) Complete(ctx context.Context, model, prompt string) (string, error) {
	resp, err := p.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(model),
		Messages:  []anthropic.Message{anthropic.NewUserTextMessage(prompt)},
		MaxTokens: anthropicMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	if len(resp.Content) == 0 {
		return "", errEmptyChoices
	}
	var text strings.Builder
	for _, c := range resp.Content {
		if c.Type == anthropic.MessagesContentTypeText {
			text.WriteString(c.GetText())
		}
	}
	return text.String(), nil
}
