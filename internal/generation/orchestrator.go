package generation

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"example.com/gymgenius/internal/domain"
)

// PlanSource produces the two halves of a bundle.
type PlanSource interface {
	Workout(ctx context.Context, in domain.WorkoutInput) (*domain.WorkoutPlan, error)
	Diet(ctx context.Context, in domain.DietInput) (*domain.DietPlan, error)
}

// Orchestrator generates complete plan bundles.
type Orchestrator struct {
	plans  PlanSource
	logger *zap.Logger
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(plans PlanSource, opts ...Option) *Orchestrator {
	s := applyOptions(opts)
	return &Orchestrator{plans: plans, logger: s.logger}
}

// GeneratePlans requests the workout and diet plans concurrently and returns both or neither.
func (o *Orchestrator) GeneratePlans(ctx context.Context, profile domain.UserProfile) (bundle domain.PlanBundle, err error) {
	if err := profile.Validate(); err != nil {
		return domain.PlanBundle{}, err
	}

	start := time.Now()
	defer func() { observe(kindBundle, start, err) }()

	var (
		g       errgroup.Group
		workout *domain.WorkoutPlan
		diet    *domain.DietPlan
	)
	// Plain Group: a failed half does not cancel its sibling; the join waits for both.
	g.Go(func() error {
		plan, err := o.plans.Workout(ctx, profile.WorkoutInput())
		if err != nil {
			return err
		}
		workout = plan
		return nil
	})
	g.Go(func() error {
		plan, err := o.plans.Diet(ctx, profile.DietInput())
		if err != nil {
			return err
		}
		diet = plan
		return nil
	})

	if err := g.Wait(); err != nil {
		o.logger.Error("plan generation failed", zap.String("profile", profile.Name), zap.Error(err))
		return domain.PlanBundle{}, &domain.GenerationError{Message: domain.MessagePlansFailed, Err: err}
	}

	bundle = domain.PlanBundle{WorkoutPlan: workout, DietPlan: diet}
	if err := bundle.Validate(); err != nil {
		return domain.PlanBundle{}, &domain.GenerationError{Message: domain.MessagePlansFailed, Err: err}
	}

	if got := workout.TrainingDays(); got != profile.DaysPerWeek {
		planMismatchCounter.Inc()
		o.logger.Warn("workout plan training days differ from request",
			zap.Int("requested", profile.DaysPerWeek),
			zap.Int("generated", got),
		)
	}
	return bundle, nil
}
