// Package orchestrator wires the store → validation → packager → intake
// sequence behind a single Submit call, resetting the form only once the
// intake service has accepted the submission.
package orchestrator
