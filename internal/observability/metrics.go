// Package observability exposes process-wide watermark gauges for the plan slot.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	planSavedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gymgenius",
		Subsystem: "persistence",
		Name:      "last_plan_saved_timestamp_seconds",
		Help:      "Unix timestamp of the most recent plan written to the slot.",
	})
	planClearedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gymgenius",
		Subsystem: "persistence",
		Name:      "last_plan_cleared_timestamp_seconds",
		Help:      "Unix timestamp of the most recent slot clear.",
	})
)

func init() {
	prometheus.MustRegister(planSavedGauge, planClearedGauge)
}

// RecordPlanSaved updates the save watermark gauge.
func RecordPlanSaved(ts time.Time) {
	if ts.IsZero() {
		return
	}
	planSavedGauge.Set(float64(ts.Unix()))
}

// RecordPlanCleared updates the clear watermark gauge.
func RecordPlanCleared(ts time.Time) {
	if ts.IsZero() {
		return
	}
	planClearedGauge.Set(float64(ts.Unix()))
}
