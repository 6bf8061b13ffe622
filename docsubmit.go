// Package docsubmit collects a document submission (personal details, two
// addresses and a list of uploaded files), validates it and delivers it to an
// intake service as multipart/form-data.
package docsubmit

import (
	"context"
	"fmt"

	"github.com/goliatone/go-docsubmit/pkg/contract"
	"github.com/goliatone/go-docsubmit/pkg/form"
	"github.com/goliatone/go-docsubmit/pkg/intake"
	"github.com/goliatone/go-docsubmit/pkg/orchestrator"
	"github.com/goliatone/go-docsubmit/pkg/packager"
	"github.com/goliatone/go-docsubmit/pkg/sanitize"
	"github.com/goliatone/go-docsubmit/pkg/validation"
)

// State is the form snapshot; alias exported via the root package for
// convenience.
type State = form.State

// Action is any form action accepted by a Store.
type Action = form.Action

// ErrorTree holds validation failures keyed by field path.
type ErrorTree = validation.ErrorTree

// Payload is a packaged submission.
type Payload = packager.Payload

// Outcome reports how a submission attempt ended.
type Outcome = orchestrator.Outcome

// NewStore returns a form store that strips markup from free-text values
// before they reach the reducer. Options are applied after the default
// sanitizer and may replace it.
func NewStore(options ...form.StoreOption) *form.Store {
	opts := append([]form.StoreOption{form.WithSanitizer(sanitize.Func())}, options...)
	return form.NewStore(opts...)
}

// NewClient builds an intake client rooted at baseURL that checks payloads
// against the bundled contract.
func NewClient(ctx context.Context, baseURL string, options ...intake.Option) (*intake.HTTPClient, error) {
	ct, err := contract.Default(ctx)
	if err != nil {
		return nil, fmt.Errorf("docsubmit: %w", err)
	}
	opts := append([]intake.Option{intake.WithContract(ct, contract.DefaultOperationID)}, options...)
	return intake.NewHTTPClient(baseURL, opts...)
}

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(store *form.Store, client intake.Client, options ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	return orchestrator.New(store, client, options...)
}

// Validate checks state against the default schema.
func Validate(state State, options ...validation.Option) validation.Result {
	return validation.Validate(state, options...)
}

// Package converts state into multipart parts.
func Package(state State) Payload {
	return packager.Package(state)
}

// Submit validates the store's current state and delivers it to baseURL in a
// single call. It is the simplest entry point for callers that already hold a
// populated store.
func Submit(ctx context.Context, store *form.Store, baseURL string, options ...orchestrator.Option) (Outcome, error) {
	client, err := NewClient(ctx, baseURL)
	if err != nil {
		return Outcome{}, err
	}
	o, err := orchestrator.New(store, client, options...)
	if err != nil {
		return Outcome{}, err
	}
	return o.Submit(ctx)
}
