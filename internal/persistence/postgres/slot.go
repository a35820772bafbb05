// Package postgres stores the plan slot in Postgres and records lifecycle events in the outbox.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/gymgenius/internal/domain"
	"example.com/gymgenius/internal/events"
	"example.com/gymgenius/internal/observability"
)

// DefaultTopic receives plan lifecycle events when no topic is configured.
const DefaultTopic = "plan_events"

// Slot implements planstore.Slot on the plan_slots table. Every write also
// inserts an outbox row in the same transaction.
type Slot struct {
	pool  *pgxpool.Pool
	topic string
	now   func() time.Time
}

// NewSlot constructs a Slot publishing to topic.
func NewSlot(pool *pgxpool.Pool, topic string) *Slot {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Slot{pool: pool, topic: topic, now: func() time.Time { return time.Now().UTC() }}
}

// Get reads the payload stored under key.
func (s *Slot) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT payload FROM plan_slots WHERE slot_key=$1`, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, true, nil
}

// Put upserts the payload and records a plan.saved event.
func (s *Slot) Put(ctx context.Context, key string, value []byte) (err error) {
	savedAt := s.now()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const upsert = `INSERT INTO plan_slots (slot_key, payload, updated_at) VALUES ($1,$2,$3)
        ON CONFLICT (slot_key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
	if _, err = tx.Exec(ctx, upsert, key, value, savedAt); err != nil {
		return err
	}

	event := savedEvent(key, value, savedAt)
	if err = s.insertOutbox(ctx, tx, key, events.TypePlanSaved, event.EventID, event); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordPlanSaved(savedAt)
	return nil
}

// Delete removes the row. A plan.cleared event is recorded only when a row existed.
func (s *Slot) Delete(ctx context.Context, key string) (err error) {
	clearedAt := s.now()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, `DELETE FROM plan_slots WHERE slot_key=$1`, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		event := events.PlanCleared{EventID: uuid.NewString(), SlotKey: key, ClearedAt: clearedAt}
		if err = s.insertOutbox(ctx, tx, key, events.TypePlanCleared, event.EventID, event); err != nil {
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		observability.RecordPlanCleared(clearedAt)
	}
	return nil
}

func (s *Slot) insertOutbox(ctx context.Context, tx pgx.Tx, key, eventType, eventID string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err = tx.Exec(ctx, stmt,
		events.AggregatePlanSlot,
		key,
		eventType,
		s.topic,
		key,
		body,
		fmt.Sprintf("%s:%s", eventType, eventID),
	)
	return err
}

// savedEvent summarises the stored pair. Fields that cannot be read from the
// payload are left empty.
func savedEvent(key string, value []byte, savedAt time.Time) events.PlanSaved {
	event := events.PlanSaved{EventID: uuid.NewString(), SlotKey: key, SavedAt: savedAt}

	var stored domain.StoredPlan
	if json.Unmarshal(value, &stored) != nil {
		return event
	}
	if stored.Profile != nil {
		event.ProfileName = stored.Profile.Name
	}
	if stored.Bundle != nil && stored.Bundle.WorkoutPlan != nil {
		event.WorkoutTitle = stored.Bundle.WorkoutPlan.PlanTitle
		event.TrainingDays = stored.Bundle.WorkoutPlan.TrainingDays()
	}
	if stored.Bundle != nil && stored.Bundle.DietPlan != nil {
		event.DietTitle = stored.Bundle.DietPlan.PlanTitle
	}
	return event
}
