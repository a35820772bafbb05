// Package planstore owns the single durable "current plan" slot.
package planstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"example.com/gymgenius/internal/domain"
)

// DefaultKey is the slot key used when none is configured.
const DefaultKey = "gymgenius_saved_plan"

// Persistence operations reported in errors and metrics.
const (
	OpLoad  = "load"
	OpSave  = "save"
	OpClear = "clear"
)

var (
	operationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gymgenius",
		Subsystem: "planstore",
		Name:      "operations_total",
		Help:      "Plan slot operations by op and outcome.",
	}, []string{"op", "outcome"})

	selfHealCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gymgenius",
		Subsystem: "planstore",
		Name:      "corrupted_total",
		Help:      "Corrupted slot payloads discarded on load.",
	})
)

func init() {
	prometheus.MustRegister(operationCounter, selfHealCounter)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger overrides the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store exposes load, save and clear over one slot key. The slot holds either
// nothing or one complete {profile, bundle} pair.
type Store struct {
	slot   Slot
	key    string
	logger *zap.Logger
}

// NewStore constructs a Store. An empty key selects DefaultKey.
func NewStore(slot Slot, key string, opts ...Option) *Store {
	if key == "" {
		key = DefaultKey
	}
	s := &Store{slot: slot, key: key, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the slot key.
func (s *Store) Key() string { return s.key }

// Load returns the saved plan, or nil when the slot is empty. A payload that
// does not decode into a complete pair is deleted and reported as empty.
func (s *Store) Load(ctx context.Context) (plan *domain.StoredPlan, err error) {
	defer func() { record(OpLoad, err) }()

	raw, ok, err := s.slot.Get(ctx, s.key)
	if err != nil {
		return nil, &domain.PersistenceError{Op: OpLoad, Err: err}
	}
	if !ok {
		return nil, nil
	}

	var stored domain.StoredPlan
	problem := json.Unmarshal(raw, &stored)
	if problem == nil {
		problem = stored.Validate()
	}
	if problem == nil {
		return &stored, nil
	}

	selfHealCounter.Inc()
	s.logger.Warn("discarding corrupted plan slot", zap.String("key", s.key), zap.Int("size", len(raw)), zap.Error(problem))
	if err := s.slot.Delete(ctx, s.key); err != nil {
		return nil, &domain.PersistenceError{Op: OpLoad, Err: fmt.Errorf("clear corrupted slot: %w", err)}
	}
	return nil, nil
}

// Save replaces the slot with the pair. The previous value is untouched when
// validation, encoding or the write fails.
func (s *Store) Save(ctx context.Context, profile domain.UserProfile, bundle domain.PlanBundle) (err error) {
	stored := domain.StoredPlan{Profile: &profile, Bundle: &bundle}
	if err := stored.Validate(); err != nil {
		return err
	}
	defer func() { record(OpSave, err) }()

	payload, err := json.Marshal(stored)
	if err != nil {
		return &domain.PersistenceError{Op: OpSave, Err: fmt.Errorf("encode plan: %w", err)}
	}
	if err := s.slot.Put(ctx, s.key, payload); err != nil {
		s.logger.Error("plan slot write failed", zap.String("key", s.key), zap.Error(err))
		return &domain.PersistenceError{Op: OpSave, Err: err}
	}
	return nil
}

// Clear removes the slot. Clearing an empty slot succeeds.
func (s *Store) Clear(ctx context.Context) (err error) {
	defer func() { record(OpClear, err) }()

	if err := s.slot.Delete(ctx, s.key); err != nil {
		return &domain.PersistenceError{Op: OpClear, Err: err}
	}
	return nil
}

func record(op string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	operationCounter.WithLabelValues(op, outcome).Inc()
}
