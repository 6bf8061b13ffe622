package form

import "errors"

var (
	// ErrInvalidFieldReference reports an UpdateField/UpdateDocument targeting
	// a section or field the form does not define.
	ErrInvalidFieldReference = errors.New("form: invalid field reference")
	// ErrIndexOutOfRange reports a document index outside the current list.
	ErrIndexOutOfRange = errors.New("form: document index out of range")
	// ErrLastDocument is returned when removing the only remaining document.
	ErrLastDocument = errors.New("form: cannot remove the last document")
	// ErrInvalidValue reports a document value of the wrong type.
	ErrInvalidValue = errors.New("form: invalid value")
	// ErrUnknownAction is returned for nil or unrecognised actions.
	ErrUnknownAction = errors.New("form: unknown action")
)
