package services

import "errors"

var (
	// ErrMissingIdentifier is returned when an operation needs a stored record
	// identifier and the entity has none. No request is made to the store.
	ErrMissingIdentifier = errors.New("record identifier is missing")

	// ErrNotFound is returned when the store confirms a record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDecodeFailure is returned when a record from the store cannot be
	// mapped to its model. It points at a schema mismatch, not a transient
	// fault.
	ErrDecodeFailure = errors.New("record could not be decoded")

	// ErrTransport is returned when the store request itself fails. The
	// underlying error is kept as a cause.
	ErrTransport = errors.New("record store request failed")

	// ErrAlreadyExists accompanies ErrTransport when a create is rejected
	// because a record with the same identifier is already stored.
	ErrAlreadyExists = errors.New("a record with the same identifier already exists")

	// ErrInvalidInput is returned by domain services when caller-supplied
	// values are rejected before anything is stored.
	ErrInvalidInput = errors.New("invalid input")
)

// Error is the error type returned by the record store. It carries a message
// and one or more causes, one of which is always one of the sentinel errors
// above, so callers can match on kind with errors.Is.
type Error struct {
	msg   string
	cause []error
}

func newError(msg string, causes ...error) Error {
	return Error{msg: msg, cause: causes}
}

// Error returns the message followed by the message of the most specific
// (last) cause.
func (e Error) Error() string {
	if e.msg == "" && len(e.cause) > 0 {
		return e.cause[0].Error()
	}
	if len(e.cause) > 0 {
		return e.msg + ": " + e.cause[len(e.cause)-1].Error()
	}
	return e.msg
}

// Unwrap returns the causes of Error.
func (e Error) Unwrap() []error {
	if len(e.cause) > 0 {
		return e.cause
	}
	return nil
}

// storeError classifies an error returned by a Database. A missing record
// keeps its own kind; everything else is a transport failure.
func storeError(op string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return newError(op, ErrNotFound, err)
	case errors.Is(err, ErrAlreadyExists):
		return newError(op, ErrTransport, ErrAlreadyExists, err)
	default:
		return newError(op, ErrTransport, err)
	}
}
