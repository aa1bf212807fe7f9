package genai

import (
	"context"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/inquestlab/inquest/internal/config"
	"github.com/inquestlab/inquest/internal/errors"
)

// Anthropic is a Generator backed by the Anthropic Messages API.
type Anthropic struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropic creates an Anthropic generator from configuration. The
// ANTHROPIC_API_KEY environment variable takes precedence over the
// configured key. Returns ErrGenerationUnavailable when no key is set.
func NewAnthropic(cfg config.GenerationConfig) (*Anthropic, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		return nil, errors.ErrGenerationUnavailable
	}

	return &Anthropic{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.Model(cfg.Model),
		maxTokens: int64(cfg.MaxTokens),
	}, nil
}

// Generate implements Generator.
func (a *Anthropic) Generate(ctx context.Context, prompt string) (string, error) {
	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", errors.NewGenerationError("request failed", err).WithModel(string(a.model))
	}

	if len(message.Content) == 0 {
		return "", errors.NewGenerationError("no content blocks in reply", errors.ErrEmptyReply).WithModel(string(a.model))
	}
	content := message.Content[0]
	if content.Type != "text" {
		return "", errors.NewGenerationError("reply is not a text block", errors.ErrEmptyReply).
			WithModel(string(a.model)).
			WithRetryable(false)
	}

	reply := strings.TrimSpace(content.Text)
	if reply == "" {
		return "", errors.NewGenerationError("blank reply", errors.ErrEmptyReply).WithModel(string(a.model))
	}
	return reply, nil
}
