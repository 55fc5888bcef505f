package batch

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/calumari/jdelta"
)

// Comparison outcomes used as the "outcome" label.
const (
	OutcomeOK               = "ok"
	OutcomeInvalidInput     = "invalid_input"
	OutcomeResourceExceeded = "resource_exceeded"
	OutcomeError            = "error"
)

// Metrics records per-comparison counters and histograms.
type Metrics struct {
	comparisons *prometheus.CounterVec
	score       prometheus.Histogram
	duration    prometheus.Histogram
}

// NewMetrics creates the batch metrics and registers them with reg. A nil reg
// creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		comparisons: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jdelta",
			Name:      "comparisons_total",
			Help:      "Total comparisons by outcome",
		}, []string{"outcome"}),
		score: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "jdelta",
			Name:      "comparison_score",
			Help:      "Aggregate similarity score of successful comparisons",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "jdelta",
			Name:      "comparison_duration_seconds",
			Help:      "Time spent building a comparison report",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
	}
}

func (m *Metrics) observe(outcome string, r *jdelta.Report, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.comparisons.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
	if r != nil {
		m.score.Observe(r.Score)
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, jdelta.ErrInvalidInput):
		return OutcomeInvalidInput
	case errors.Is(err, jdelta.ErrResourceExceeded):
		return OutcomeResourceExceeded
	}
	return OutcomeError
}
