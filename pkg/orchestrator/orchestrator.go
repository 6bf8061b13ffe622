package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-docsubmit/pkg/form"
	"github.com/goliatone/go-docsubmit/pkg/intake"
	"github.com/goliatone/go-docsubmit/pkg/packager"
	"github.com/goliatone/go-docsubmit/pkg/validation"
)

// ErrSubmissionInProgress is returned when Submit is called while another
// submission for the same store has not finished.
var ErrSubmissionInProgress = errors.New("orchestrator: submission already in progress")

// Status summarises how a submission attempt ended.
type Status string

const (
	StatusRejected  Status = "rejected"
	StatusSubmitted Status = "submitted"
	StatusFailed    Status = "failed"
)

// Outcome reports a finished submission attempt. Validated is false when the
// attempt ended before the snapshot reached the schema. ResetSkipped is set
// when the store changed while a delivery was in flight, so the answers were
// kept instead of reset.
type Outcome struct {
	Status       Status
	Validated    bool
	Errors       *validation.ErrorTree
	Response     intake.Response
	Err          error
	ResetSkipped bool
}

// Recorder observes finished submissions.
type Recorder interface {
	ObserveSubmission(outcome Outcome, elapsed time.Duration)
}

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithSchema replaces the default validation schema.
func WithSchema(schema *validation.Schema) Option {
	return func(o *Orchestrator) {
		if schema != nil {
			o.schema = schema
		}
	}
}

// WithPackager overrides how snapshots become payloads.
func WithPackager(fn func(form.State) packager.Payload) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.pack = fn
		}
	}
}

// WithMetrics records every finished attempt on rec.
func WithMetrics(rec Recorder) Option {
	return func(o *Orchestrator) {
		o.metrics = rec
	}
}

// WithLogger routes orchestration logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates validation, packaging and delivery for one store.
type Orchestrator struct {
	store    *form.Store
	client   intake.Client
	schema   *validation.Schema
	pack     func(form.State) packager.Payload
	metrics  Recorder
	logger   *slog.Logger
	inFlight atomic.Bool
}

// New constructs an Orchestrator for store and client. Missing options fall
// back to the default schema and packager.
func New(store *form.Store, client intake.Client, options ...Option) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("orchestrator: store is required")
	}
	if client == nil {
		return nil, errors.New("orchestrator: intake client is required")
	}
	o := &Orchestrator{
		store:  store,
		client: client,
		pack:   packager.Package,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	if o.schema == nil {
		o.schema = validation.New()
	}
	return o, nil
}

// InFlight reports whether a submission is currently running.
func (o *Orchestrator) InFlight() bool {
	return o.inFlight.Load()
}

// Submit validates the current snapshot and, when accepted, sends it. A
// rejected snapshot returns a StatusRejected outcome with a nil error. A
// failed delivery leaves the form untouched and returns the transport error.
func (o *Orchestrator) Submit(ctx context.Context) (Outcome, error) {
	if ctx == nil {
		return Outcome{}, errors.New("orchestrator: context is required")
	}
	if !o.inFlight.CompareAndSwap(false, true) {
		return Outcome{}, ErrSubmissionInProgress
	}
	defer o.inFlight.Store(false)

	started := time.Now()
	outcome, err := o.submit(ctx)
	if o.metrics != nil {
		o.metrics.ObserveSubmission(outcome, time.Since(started))
	}
	return outcome, err
}

// SubmitAsync runs Submit on its own goroutine. The channel receives exactly
// one Outcome and is then closed. ErrSubmissionInProgress surfaces as a
// StatusFailed outcome. Edits dispatched while the delivery runs are kept: the
// form is only reset when it still matches the snapshot that was sent.
func (o *Orchestrator) SubmitAsync(ctx context.Context) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		outcome, err := o.Submit(ctx)
		if err != nil && outcome.Status == "" {
			outcome = Outcome{Status: StatusFailed, Err: err}
		}
		out <- outcome
	}()
	return out
}

func (o *Orchestrator) submit(ctx context.Context) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{Status: StatusFailed, Err: err}, err
	}

	snapshot, version := o.store.SnapshotVersion()
	result := o.schema.Validate(snapshot)
	if !result.Accepted() {
		o.logger.InfoContext(ctx, "submission rejected by validation", "errors", result.Errors.Len())
		return Outcome{Status: StatusRejected, Validated: true, Errors: result.Errors}, nil
	}

	payload := o.pack(snapshot)
	resp, err := o.client.Submit(ctx, payload)
	if err != nil {
		o.logger.ErrorContext(ctx, "submission failed", "error", err)
		return Outcome{Status: StatusFailed, Validated: true, Err: err}, err
	}

	outcome := Outcome{Status: StatusSubmitted, Validated: true, Response: resp}
	applied, err := o.store.DispatchAtVersion(ctx, version, form.ResetFormFields{}, form.ResetDocuments{})
	if err != nil {
		outcome.Err = fmt.Errorf("orchestrator: reset after submit: %w", err)
		return outcome, outcome.Err
	}
	if !applied {
		outcome.ResetSkipped = true
		o.logger.WarnContext(ctx, "form changed during submission; reset skipped", "submission_id", resp.SubmissionID)
	}

	o.logger.InfoContext(ctx, "submission delivered", "submission_id", resp.SubmissionID, "status", resp.StatusCode)
	return outcome, nil
}
