package stores

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the logical failures a store operation can report.
type ErrorKind string

const (
	// KindAlreadyExists indicates an insert with an id that is already present.
	KindAlreadyExists ErrorKind = "already_exists"

	// KindNotFound indicates an update or delete of an id that is not present.
	KindNotFound ErrorKind = "not_found"
)

// StoreError is a classified store error with context.
type StoreError struct {
	// Kind is the error classification.
	Kind ErrorKind `json:"kind"`

	// Op is the store operation that failed, e.g. "add" or "delete".
	Op string `json:"op,omitempty"`

	// ID is the medication id the operation targeted.
	ID int64 `json:"id,omitempty"`

	// Err is the underlying error, if any.
	Err error `json:"-"`
}

// Sentinel errors for use with errors.Is. Matching is by Kind only.
var (
	ErrAlreadyExists = &StoreError{Kind: KindAlreadyExists}
	ErrNotFound      = &StoreError{Kind: KindNotFound}
)

// Error implements the error interface.
func (e *StoreError) Error() string {
	var msg string
	switch e.Kind {
	case KindAlreadyExists:
		msg = fmt.Sprintf("medication with id %d already exists", e.ID)
	case KindNotFound:
		msg = fmt.Sprintf("no medication with id %d", e.ID)
	default:
		msg = fmt.Sprintf("medication %d: %s", e.ID, e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is implements error equality checking for errors.Is.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newAlreadyExistsError(op string, id int64, err error) *StoreError {
	return &StoreError{Kind: KindAlreadyExists, Op: op, ID: id, Err: err}
}

func newNotFoundError(op string, id int64) *StoreError {
	return &StoreError{Kind: KindNotFound, Op: op, ID: id}
}

// IsAlreadyExists returns true if the error is an already-exists error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsNotFound returns true if the error is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// KindOf returns the kind of a StoreError in the chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var e *StoreError
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
