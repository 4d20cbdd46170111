// Package assist suggests column mappings with the Anthropic Messages API.
package assist

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/JonMunkholm/hygieneops/internal/core"
)

const systemPrompt = "You are a data mapping expert. Always return valid JSON only, no additional text."

// messageSender is the part of the Anthropic client the mapper uses.
type messageSender interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Config controls model calls.
type Config struct {
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Mapper implements core.SemanticMapper.
type Mapper struct {
	messages messageSender
	cfg      Config
	logger   *slog.Logger
}

// New creates a Mapper backed by an Anthropic client with the given key.
func New(apiKey string, cfg Config) *Mapper {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return newMapper(&client.Messages, cfg)
}

func newMapper(messages messageSender, cfg Config) *Mapper {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	return &Mapper{
		messages: messages,
		cfg:      cfg,
		logger:   slog.Default().With("component", "assist"),
	}
}

// SuggestMapping asks the model to map req.Headers onto req.Fields.
// The answer is returned as decoded; the caller sanitizes it.
func (m *Mapper) SuggestMapping(ctx context.Context, req core.MappingRequest) (map[string]string, error) {
	if len(req.Headers) == 0 {
		return map[string]string{}, nil
	}

	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	msg, err := m.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(m.cfg.Model),
		MaxTokens: int64(m.cfg.MaxTokens),
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(req))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mapping request: %w", err)
	}

	if len(msg.Content) == 0 {
		return nil, fmt.Errorf("empty response")
	}

	mapping, err := ParseMapping(msg.Content[0].Text)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("mapping suggested",
		"headers", len(req.Headers),
		"mapped", len(mapping),
		"duration", time.Since(start),
	)
	return mapping, nil
}
