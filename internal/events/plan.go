// Package events defines the plan lifecycle event payloads published through the outbox.
package events

import "time"

// Event types carried in the event_type header.
const (
	TypePlanSaved   = "plan.saved"
	TypePlanCleared = "plan.cleared"
)

// AggregatePlanSlot is the aggregate type recorded for slot events.
const AggregatePlanSlot = "plan_slot"

// PlanSaved is emitted when the slot is replaced by a new {profile, bundle} pair.
type PlanSaved struct {
	EventID      string    `json:"event_id"`
	SlotKey      string    `json:"slot_key"`
	ProfileName  string    `json:"profile_name"`
	WorkoutTitle string    `json:"workout_title"`
	DietTitle    string    `json:"diet_title"`
	TrainingDays int       `json:"training_days"`
	SavedAt      time.Time `json:"saved_at"`
}

// PlanCleared is emitted when the slot is removed.
type PlanCleared struct {
	EventID   string    `json:"event_id"`
	SlotKey   string    `json:"slot_key"`
	ClearedAt time.Time `json:"cleared_at"`
}
