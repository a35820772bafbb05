package generation

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"example.com/gymgenius/internal/domain"
)

// AudioSynthesizer narrates text in a single attempt. Results are not cached.
type AudioSynthesizer struct {
	client MediaClient
	model  string
	logger *zap.Logger
}

// NewAudioSynthesizer constructs an AudioSynthesizer. WithModel selects the speech model.
func NewAudioSynthesizer(client MediaClient, opts ...Option) *AudioSynthesizer {
	s := applyOptions(opts)
	return &AudioSynthesizer{client: client, model: s.model, logger: s.logger}
}

// Synthesize returns an audio artifact URI for text.
func (a *AudioSynthesizer) Synthesize(ctx context.Context, text string) (uri string, err error) {
	if strings.TrimSpace(text) == "" {
		return "", &domain.ValidationError{Problems: []string{"text is required"}}
	}

	start := time.Now()
	defer func() { observe(kindAudio, start, err) }()

	res, err := a.client.GenerateMedia(ctx, MediaRequest{Kind: domain.MediaAudio, Prompt: text, Model: a.model})
	if err == nil && res.URI == "" {
		err = domain.ErrNoArtifact
	}
	if err != nil {
		a.logger.Error("audio generation failed", zap.Int("text_length", len(text)), zap.Error(err))
		return "", &domain.MediaGenerationError{Kind: domain.MediaAudio, Subject: text, Err: err}
	}
	return res.URI, nil
}
