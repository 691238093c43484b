package repositories

import (
	"errors"
	"fmt"
)

type errorKind int

const (
	kindUnknown errorKind = iota
	kindNotFound
	kindConflict
	kindUnavailable
)

// StoreError is the RepositoryError returned by the bundled storage drivers.
type StoreError struct {
	Op   string
	kind errorKind
	Err  error
}

var _ RepositoryError = (*StoreError)(nil)

func (e *StoreError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) IsNotFound() bool { return e.kind == kindNotFound }

func (e *StoreError) IsConflict() bool { return e.kind == kindConflict }

func (e *StoreError) IsUnavailable() bool { return e.kind == kindUnavailable }

// NewNotFound reports a missing record.
func NewNotFound(op string, err error) error {
	return &StoreError{Op: op, kind: kindNotFound, Err: err}
}

// NewConflict reports a uniqueness or version conflict.
func NewConflict(op string, err error) error {
	return &StoreError{Op: op, kind: kindConflict, Err: err}
}

// NewUnavailable reports that the backing store could not be reached.
func NewUnavailable(op string, err error) error {
	return &StoreError{Op: op, kind: kindUnavailable, Err: err}
}

// Wrap tags err with op without categorising it.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// IsNotFound reports whether err is a RepositoryError marked not found.
func IsNotFound(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

// IsUnavailable reports whether err is a RepositoryError marked unavailable.
func IsUnavailable(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsUnavailable()
}

// IsConflict reports whether err is a RepositoryError marked as a conflict.
func IsConflict(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsConflict()
}
