package generation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"example.com/gymgenius/internal/domain"
	"example.com/gymgenius/internal/prompts"
)

const (
	tierPrimary  = "primary"
	tierFallback = "fallback"
)

// attempt is the outcome of one image tier: a URI or a failure.
type attempt struct {
	tier string
	uri  string
	err  error
}

func (a attempt) succeeded() bool {
	return a.err == nil && a.uri != ""
}

func (a attempt) failure() error {
	if a.err != nil {
		return a.err
	}
	return domain.ErrNoArtifact
}

// ImageSynthesizer illustrates one subject with a primary prompt and a single simpler fallback.
type ImageSynthesizer struct {
	client  MediaClient
	catalog *prompts.Catalog
	model   string
	logger  *zap.Logger
}

// NewImageSynthesizer constructs an ImageSynthesizer. WithModel selects the image model.
func NewImageSynthesizer(client MediaClient, catalog *prompts.Catalog, opts ...Option) *ImageSynthesizer {
	s := applyOptions(opts)
	return &ImageSynthesizer{client: client, catalog: catalog, model: s.model, logger: s.logger}
}

// Synthesize returns an artifact URI for the subject. Which tier produced it is not reported.
func (s *ImageSynthesizer) Synthesize(ctx context.Context, subject domain.Subject) (uri string, err error) {
	if err := subject.Validate(); err != nil {
		return "", err
	}

	start := time.Now()
	defer func() { observe(kindImage, start, err) }()

	primaryID, fallbackID := templatesFor(subject.Category)

	primary := s.attempt(ctx, tierPrimary, primaryID, subject)
	if primary.succeeded() {
		return primary.uri, nil
	}
	s.logger.Warn("primary image prompt failed, trying simple prompt",
		zap.String("subject", subject.Name),
		zap.String("category", string(subject.Category)),
		zap.Error(primary.failure()),
	)

	fallback := s.attempt(ctx, tierFallback, fallbackID, subject)
	if fallback.succeeded() {
		return fallback.uri, nil
	}
	s.logger.Error("image generation failed on both prompts",
		zap.String("subject", subject.Name),
		zap.NamedError("primary_error", primary.failure()),
		zap.Error(fallback.failure()),
	)
	return "", &domain.MediaGenerationError{
		Kind:    domain.MediaImage,
		Subject: subject.Name,
		Err:     fmt.Errorf("fallback prompt: %w", fallback.failure()),
	}
}

func (s *ImageSynthesizer) attempt(ctx context.Context, tier, templateID string, subject domain.Subject) attempt {
	out := attempt{tier: tier}
	prompt, err := s.catalog.Render(templateID, map[string]any{
		"name":  subject.Name,
		"label": subject.Category.Label(),
	})
	if err != nil {
		out.err = err
		recordTier(tier, false)
		return out
	}
	res, err := s.client.GenerateMedia(ctx, MediaRequest{Kind: domain.MediaImage, Prompt: prompt, Model: s.model})
	out.uri, out.err = res.URI, err
	recordTier(tier, out.succeeded())
	return out
}

func templatesFor(category domain.SubjectCategory) (primary, fallback string) {
	if category == domain.CategoryMeal {
		return prompts.MealImage, prompts.MealImageSimple
	}
	return prompts.ExerciseImage, prompts.ExerciseImageSimple
}
