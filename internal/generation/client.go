// Package generation turns user profiles into plan bundles, tips, images and audio
// by coordinating requests against a generative upstream.
package generation

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"example.com/gymgenius/internal/domain"
)

// StructuredRequest asks the upstream for a schema-constrained JSON value.
type StructuredRequest struct {
	Template string
	Params   map[string]any
	Schema   *Schema
}

// MediaRequest asks the upstream for one image or audio artifact.
type MediaRequest struct {
	Kind   domain.MediaKind
	Prompt string
	// Model overrides the adapter default when set.
	Model string
}

// MediaResult carries the artifact URI. URI may be empty on a non-error response.
type MediaResult struct {
	URI string
}

// StructuredClient produces structured content.
type StructuredClient interface {
	GenerateStructured(ctx context.Context, req StructuredRequest) (json.RawMessage, error)
}

// MediaClient produces media artifacts.
type MediaClient interface {
	GenerateMedia(ctx context.Context, req MediaRequest) (MediaResult, error)
}

// Client is the full upstream capability set.
type Client interface {
	StructuredClient
	MediaClient
}

// Option configures generation components.
type Option func(*settings)

type settings struct {
	logger *zap.Logger
	model  string
}

// WithLogger sets the logger used by a component.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithModel sets the model identifier sent with media requests.
func WithModel(model string) Option {
	return func(s *settings) {
		s.model = model
	}
}

func applyOptions(opts []Option) settings {
	s := settings{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
