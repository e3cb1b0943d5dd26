// Package metrics provides Prometheus instrumentation for solvtrace
// history recorders.
//
// Collectors are package-level and registered once; individual recorders are
// distinguished by the "history" label, so any number of recorder instances
// can share them safely.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RowsRecorded counts successfully recorded iterations per recorder.
	RowsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "solvtrace",
			Name:      "rows_recorded_total",
			Help:      "Total number of iteration rows recorded",
		},
		[]string{"history"},
	)

	// ConversionFailures counts values rejected by column type coercion.
	ConversionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "solvtrace",
			Name:      "conversion_failures_total",
			Help:      "Total number of values that failed type coercion",
		},
		[]string{"history", "variable"},
	)

	// SaveDuration tracks snapshot persistence latency.
	SaveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "solvtrace",
			Name:      "save_duration_seconds",
			Help:      "Time spent writing history snapshots",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"history"},
	)

	// SaveBytes tracks the size of written snapshots.
	SaveBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "solvtrace",
			Name:      "save_bytes",
			Help:      "Size in bytes of written history snapshots",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 10),
		},
		[]string{"history"},
	)
)

// Timer measures a single operation duration.
type Timer struct {
	start   time.Time
	history string
}

// NewSaveTimer starts timing a snapshot save for the named recorder.
func NewSaveTimer(history string) *Timer {
	return &Timer{start: time.Now(), history: history}
}

// Stop records the elapsed time and returns it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	SaveDuration.WithLabelValues(t.history).Observe(elapsed.Seconds())
	return elapsed
}
