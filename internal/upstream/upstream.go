// Package upstream selects the generation client named by configuration.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"example.com/gymgenius/internal/config"
	"example.com/gymgenius/internal/generation"
	"example.com/gymgenius/internal/prompts"
	"example.com/gymgenius/internal/upstream/gemini"
	"example.com/gymgenius/internal/upstream/openai"
)

// New builds the client for cfg.Provider, bounding every request by cfg.Timeout.
func New(ctx context.Context, cfg config.GenerationConfig, catalog *prompts.Catalog, logger *zap.Logger) (generation.Client, error) {
	client, err := newProvider(ctx, cfg, catalog, logger.With(zap.String("provider", cfg.Provider)))
	if err != nil {
		return nil, err
	}
	return WithTimeout(client, cfg.Timeout), nil
}

func newProvider(ctx context.Context, cfg config.GenerationConfig, catalog *prompts.Catalog, logger *zap.Logger) (generation.Client, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		client, err := gemini.New(ctx, gemini.Config{
			APIKey:     cfg.GeminiAPIKey,
			TextModel:  cfg.TextModel,
			ImageModel: cfg.ImageModel,
			AudioModel: cfg.AudioModel,
			Voice:      cfg.AudioVoice,
		}, catalog, gemini.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderOpenAI:
		client, err := openai.New(openai.Config{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			TextModel:  cfg.TextModel,
			ImageModel: cfg.ImageModel,
			AudioModel: cfg.AudioModel,
			Voice:      cfg.AudioVoice,
		}, catalog, openai.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
}

type timeoutClient struct {
	next    generation.Client
	timeout time.Duration
}

// WithTimeout wraps client so that each request runs under its own deadline.
// A non-positive timeout returns client unchanged.
func WithTimeout(client generation.Client, timeout time.Duration) generation.Client {
	if timeout <= 0 {
		return client
	}
	return &timeoutClient{next: client, timeout: timeout}
}

func (c *timeoutClient) GenerateStructured(ctx context.Context, req generation.StructuredRequest) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.next.GenerateStructured(ctx, req)
}

func (c *timeoutClient) GenerateMedia(ctx context.Context, req generation.MediaRequest) (generation.MediaResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.next.GenerateMedia(ctx, req)
}
