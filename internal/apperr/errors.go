// Package apperr defines the sentinel errors shared across service and
// transport boundaries.
package apperr

import "errors"

var (
	// ErrNotFound: the thread, compile record, or entry does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict: a compile version was already recorded.
	ErrConflict = errors.New("conflict")
	// ErrMergeFailed: the merge engine hit a structural failure and
	// could not produce an artifact.
	ErrMergeFailed = errors.New("merge failed")
)
