// Package form holds the in-progress document submission and the named
// transitions that mutate it. Reduce is a pure function from (State, Action)
// to a new State; Store wraps it as the single owner of the canonical value
// and hands read-only snapshots to validation and packaging. The documents
// section keeps at least one entry while editing so callers always have a
// row to fill in; the two-document minimum is a validation concern.
package form
