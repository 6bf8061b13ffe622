package intake

import (
	"errors"
	"fmt"
)

// ErrorKind separates failures that never reached the service from ones the
// service answered with a rejection.
type ErrorKind string

const (
	KindNetwork  ErrorKind = "network"
	KindRejected ErrorKind = "rejected"
)

// ErrContractViolation is returned when a payload does not carry the parts
// the intake contract requires. Nothing is sent in that case.
var ErrContractViolation = errors.New("intake: payload violates contract")

// TransportError reports a failed submission.
type TransportError struct {
	Kind         ErrorKind
	StatusCode   int
	SubmissionID string
	Body         []byte
	Err          error
}

func (e *TransportError) Error() string {
	switch e.Kind {
	case KindRejected:
		return fmt.Sprintf("intake: submission %s rejected with status %d", e.SubmissionID, e.StatusCode)
	default:
		if e.Err != nil {
			return fmt.Sprintf("intake: submission %s failed: %v", e.SubmissionID, e.Err)
		}
		return fmt.Sprintf("intake: submission %s failed", e.SubmissionID)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsNetwork reports whether err is a TransportError that never got a response.
func IsNetwork(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Kind == KindNetwork
}

// IsRejected reports whether err is a TransportError carrying a non-2xx
// response.
func IsRejected(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Kind == KindRejected
}
