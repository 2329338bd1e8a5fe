package localstore

import (
	"context"
	"errors"
	"fmt"
)

// Error implements repositories.RepositoryError for the local slot stores.
type Error struct {
	op          string
	err         error
	notFound    bool
	conflict    bool
	unavailable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.op != "" {
		return fmt.Sprintf("%s: %v", e.op, e.err)
	}
	return e.err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// IsNotFound reports whether the error represents a missing slot or record.
func (e *Error) IsNotFound() bool {
	return e != nil && e.notFound
}

// IsConflict reports whether the error represents a conflicting update.
func (e *Error) IsConflict() bool {
	return e != nil && e.conflict
}

// IsUnavailable reports whether the error represents a backing store failure.
func (e *Error) IsUnavailable() bool {
	return e != nil && e.unavailable
}

func notFoundError(op string, err error) *Error {
	return &Error{op: op, err: err, notFound: true}
}

func unavailableError(op string, err error) *Error {
	return &Error{op: op, err: err, unavailable: true}
}

// wrapError annotates store errors with repository semantics. Context
// cancellations are passed through untouched.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var storeErr *Error
	if errors.As(err, &storeErr) {
		if op != "" && storeErr.op == "" {
			storeErr.op = op
		}
		return storeErr
	}
	return unavailableError(op, err)
}
