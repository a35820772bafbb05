package generation

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request kinds used as metric labels.
const (
	kindWorkout = "workout"
	kindDiet    = "diet"
	kindTips    = "tips"
	kindImage   = "image"
	kindAudio   = "audio"
	kindBundle  = "bundle"
)

var (
	requestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gymgenius",
		Subsystem: "generation",
		Name:      "requests_total",
		Help:      "Generation requests by kind and outcome.",
	}, []string{"kind", "outcome"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gymgenius",
		Subsystem: "generation",
		Name:      "duration_seconds",
		Help:      "Time spent waiting on the upstream per request kind.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
	}, []string{"kind"})

	imageTierCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gymgenius",
		Subsystem: "generation",
		Name:      "image_tier_total",
		Help:      "Image attempts per prompt tier and outcome.",
	}, []string{"tier", "outcome"})

	planMismatchCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gymgenius",
		Subsystem: "generation",
		Name:      "plan_mismatch_total",
		Help:      "Workout plans whose training day count differs from the requested days per week.",
	})
)

func init() {
	prometheus.MustRegister(requestCounter, requestDuration, imageTierCounter, planMismatchCounter)
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func observe(kind string, start time.Time, err error) {
	requestDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	requestCounter.WithLabelValues(kind, outcome(err)).Inc()
}

func recordTier(tier string, ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	imageTierCounter.WithLabelValues(tier, result).Inc()
}
