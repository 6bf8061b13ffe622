package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-docsubmit/pkg/orchestrator"
)

func TestObserveSubmission(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveSubmission(orchestrator.Outcome{Status: orchestrator.StatusRejected, Validated: true}, 10*time.Millisecond)
	m.ObserveSubmission(orchestrator.Outcome{Status: orchestrator.StatusSubmitted, Validated: true}, 200*time.Millisecond)
	m.ObserveSubmission(orchestrator.Outcome{Status: orchestrator.StatusFailed, Validated: true}, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Validations.WithLabelValues("rejected")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Validations.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("submitted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("failed")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SubmissionDuration))
}

func TestObserveSubmission_UnvalidatedFailureHasNoVerdict(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveSubmission(orchestrator.Outcome{Status: orchestrator.StatusFailed}, time.Millisecond)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.Validations.WithLabelValues("accepted")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Validations.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("failed")))
}

func TestObserveReceived(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveReceived(http.StatusCreated)
	m.ObserveReceived(http.StatusCreated)
	m.ObserveReceived(http.StatusBadRequest)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Received.WithLabelValues("Created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Received.WithLabelValues("Bad Request")))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveSubmission(orchestrator.Outcome{Status: orchestrator.StatusSubmitted, Validated: true}, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `docsubmit_submissions_total{outcome="submitted"} 1`), body)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveSubmission(orchestrator.Outcome{Status: orchestrator.StatusSubmitted, Validated: true}, time.Millisecond)
	m.ObserveReceived(http.StatusCreated)
}
