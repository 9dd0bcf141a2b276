package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Local input problem. Never sent to the backend.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// ConflictKind distinguishes the backend's concurrency rejections.
type ConflictKind string

const (
	ConflictDuplicateKey  ConflictKind = "duplicate_key"
	ConflictStaleRevision ConflictKind = "stale_revision"
	ConflictDuplicateGUID ConflictKind = "duplicate_guid"
)

// Backend rejected a write for concurrency reasons. Duplicate keys are
// retryable inside the allocator only; duplicate guids force a full
// abort-and-resync; stale revisions always surface.
type ConflictError struct {
	Kind    ConflictKind
	Key     string
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict (%s) on %q: %s", e.Kind, e.Key, e.Message)
}

// IsDuplicateKey reports whether err is a duplicate-key conflict, either
// structurally or by the backend's message text ("duplicate", "already
// exists", or the key field name).
func IsDuplicateKey(err error) bool {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Kind == ConflictDuplicateKey
	}

	var te *TransportError
	if errors.As(err, &te) {
		msg := strings.ToLower(te.Message)
		for _, marker := range []string{"duplicate", "already exists", "key1"} {
			if strings.Contains(msg, marker) {
				return true
			}
		}
	}
	return false
}

// Network or backend failure, surfaced verbatim.
type TransportError struct {
	Status  int
	Message string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("backend error %d: %s", e.Status, e.Message)
}

// One failed line write inside a multi-line save.
type LineFailure struct {
	LineNum int
	Err     error
}

// Some but not all line writes of a save succeeded. The header portion
// stays committed; callers refetch to see ground truth.
type PartialBatchError struct {
	Failures []LineFailure
}

func (e *PartialBatchError) Error() string {
	nums := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		nums = append(nums, fmt.Sprintf("%d", f.LineNum))
	}
	return fmt.Sprintf("%d line(s) failed to save: lines %s", len(e.Failures), strings.Join(nums, ", "))
}

// Identifier allocation exhausted its retry budget.
type AllocationError struct {
	Attempts int
	LastErr  error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("allocation failed after %d attempts: %v", e.Attempts, e.LastErr)
}

func (e *AllocationError) Unwrap() error { return e.LastErr }
