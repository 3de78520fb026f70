package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the transfer pipeline.
type Metrics struct {
	// Submission outcomes by result ("accepted" or the lowercased failure kind)
	SubmissionsTotal *prometheus.CounterVec

	// Confirmation outcomes by terminal state
	ConfirmationsTotal *prometheus.CounterVec

	// Latency of a single submission round trip
	SubmitDuration prometheus.Histogram

	// Time from first status poll to terminal outcome
	ConfirmationDuration prometheus.Histogram

	// Status queries spent per confirmation outcome
	PollAttempts prometheus.Histogram
}

// New creates a new Metrics instance registered on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates a new Metrics instance registered on reg.
// Tests use this with a throwaway registry to avoid duplicate registration.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SubmissionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payrun_submissions_total",
			Help: "Total transfer submissions by result",
		}, []string{"result"}), // result: "accepted", "credential", "address", "amount", "blockhash", "rejected"

		ConfirmationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payrun_confirmations_total",
			Help: "Total confirmation outcomes by terminal state",
		}, []string{"state"}), // state: "confirmed", "failed", "timed_out"

		SubmitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "payrun_submit_duration_seconds",
			Help:    "Duration of a single transfer submission including signing",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		ConfirmationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "payrun_confirmation_duration_seconds",
			Help:    "Duration from first status poll to terminal confirmation outcome",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
		}),

		PollAttempts: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "payrun_poll_attempts",
			Help:    "Number of status queries spent per confirmation outcome",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
	}
}

// RecordSubmission records one submission outcome and its latency.
func (m *Metrics) RecordSubmission(result string, d time.Duration) {
	if m != nil {
		m.SubmissionsTotal.WithLabelValues(result).Inc()
		m.SubmitDuration.Observe(d.Seconds())
	}
}

// RecordConfirmation records one confirmation outcome, the polls it took and
// how long it ran.
func (m *Metrics) RecordConfirmation(state string, attempts int, d time.Duration) {
	if m != nil {
		m.ConfirmationsTotal.WithLabelValues(state).Inc()
		m.PollAttempts.Observe(float64(attempts))
		m.ConfirmationDuration.Observe(d.Seconds())
	}
}
