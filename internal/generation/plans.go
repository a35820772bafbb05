package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"example.com/gymgenius/internal/domain"
	"example.com/gymgenius/internal/prompts"
)

// PlanGenerator requests workout and diet plans with a fixed template and schema.
// It performs no retries; callers resubmit.
type PlanGenerator struct {
	client StructuredClient
	logger *zap.Logger
}

// NewPlanGenerator constructs a PlanGenerator.
func NewPlanGenerator(client StructuredClient, opts ...Option) *PlanGenerator {
	s := applyOptions(opts)
	return &PlanGenerator{client: client, logger: s.logger}
}

// Workout generates a seven day workout plan.
func (g *PlanGenerator) Workout(ctx context.Context, in domain.WorkoutInput) (*domain.WorkoutPlan, error) {
	var plan domain.WorkoutPlan
	err := g.generate(ctx, kindWorkout, StructuredRequest{
		Template: prompts.WorkoutPlan,
		Params:   in.Params(),
		Schema:   WorkoutPlanSchema(),
	}, &plan)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// Diet generates a seven day diet plan.
func (g *PlanGenerator) Diet(ctx context.Context, in domain.DietInput) (*domain.DietPlan, error) {
	var plan domain.DietPlan
	err := g.generate(ctx, kindDiet, StructuredRequest{
		Template: prompts.DietPlan,
		Params:   in.Params(),
		Schema:   DietPlanSchema(),
	}, &plan)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

type validator interface {
	Validate() error
}

// generate calls the upstream, decodes into out and checks the decoded plan's structure.
func (g *PlanGenerator) generate(ctx context.Context, kind string, req StructuredRequest, out validator) (err error) {
	start := time.Now()
	defer func() { observe(kind, start, err) }()

	raw, err := g.client.GenerateStructured(ctx, req)
	if err != nil {
		return &domain.GenerationError{Message: domain.MessagePlansFailed, Err: fmt.Errorf("%s plan: %w", kind, err)}
	}
	if err = decodeStructured(raw, out); err != nil {
		return &domain.GenerationError{Message: domain.MessagePlansFailed, Err: fmt.Errorf("%s plan: %w", kind, err)}
	}
	if err = out.Validate(); err != nil {
		g.logger.Warn("upstream plan failed structural checks", zap.String("kind", kind), zap.Error(err))
		return &domain.GenerationError{Message: domain.MessagePlansFailed, Err: err}
	}
	return nil
}

func decodeStructured(raw json.RawMessage, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return domain.ErrEmptyResult
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("decode structured result: %w", err)
	}
	return nil
}
