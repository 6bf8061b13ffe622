// Package metrics exposes Prometheus counters for validation verdicts and
// submission outcomes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-docsubmit/pkg/orchestrator"
)

// Metrics tracks submission traffic.
type Metrics struct {
	Validations        *prometheus.CounterVec
	Submissions        *prometheus.CounterVec
	SubmissionDuration prometheus.Histogram
	Received           *prometheus.CounterVec
}

var _ orchestrator.Recorder = (*Metrics)(nil)

// New registers every collector on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docsubmit_validations_total",
			Help: "Validation verdicts by outcome",
		}, []string{"verdict"}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docsubmit_submissions_total",
			Help: "Submission attempts by outcome",
		}, []string{"outcome"}),
		SubmissionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "docsubmit_submission_duration_seconds",
			Help:    "Duration of submission attempts including validation and delivery",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		Received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docsubmit_intake_received_total",
			Help: "Submissions received by the intake stub by response status",
		}, []string{"status"}),
	}
	reg.MustRegister(m.Validations, m.Submissions, m.SubmissionDuration, m.Received)
	return m
}

// ObserveSubmission records a finished attempt. A verdict is counted only when
// the snapshot was validated.
func (m *Metrics) ObserveSubmission(outcome orchestrator.Outcome, elapsed time.Duration) {
	if m == nil {
		return
	}
	if outcome.Validated {
		verdict := "accepted"
		if outcome.Status == orchestrator.StatusRejected {
			verdict = "rejected"
		}
		m.Validations.WithLabelValues(verdict).Inc()
	}
	if outcome.Status != "" {
		m.Submissions.WithLabelValues(string(outcome.Status)).Inc()
	}
	m.SubmissionDuration.Observe(elapsed.Seconds())
}

// ObserveReceived records a request handled by the intake stub.
func (m *Metrics) ObserveReceived(status int) {
	if m == nil {
		return
	}
	m.Received.WithLabelValues(http.StatusText(status)).Inc()
}

// Handler serves the collectors gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
