package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrSessionNotFound signals a missing or expired editing session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRuleNotFound signals a rule that does not exist in the engine.
	ErrRuleNotFound = errors.New("rule not found")
	// ErrInvalidInput signals a malformed request argument such as an index name.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidAction signals an unknown or malformed editor action.
	ErrInvalidAction = errors.New("invalid action")
	// ErrInvalidRule signals a rule that cannot be loaded into the editor.
	ErrInvalidRule = errors.New("invalid rule")
	// ErrNothingToSave signals a save attempt with no pins and no hides.
	ErrNothingToSave = errors.New("nothing to save")
	// ErrStaleResponse signals a search response for a query that is no longer active.
	ErrStaleResponse = errors.New("stale search response")
	// ErrPersistence signals a failed rule save or delete. The session keeps its overrides.
	ErrPersistence = errors.New("rule persistence failed")
	// ErrEngineUnavailable signals a search engine transport or server failure.
	ErrEngineUnavailable = errors.New("search engine unavailable")

	// ErrRevisionConflict signals an optimistic locking conflict.
	ErrRevisionConflict = errors.New("revision conflict")
)

// RevisionConflictError wraps ErrRevisionConflict with the current session revision.
type RevisionConflictError struct {
	CurrentRevision int
}

func (e *RevisionConflictError) Error() string {
	return fmt.Sprintf("%s: current revision is %d", ErrRevisionConflict.Error(), e.CurrentRevision)
}

func (e *RevisionConflictError) Unwrap() error { return ErrRevisionConflict }

// NewRevisionConflict creates a revision conflict error.
func NewRevisionConflict(currentRevision int) error {
	return &RevisionConflictError{CurrentRevision: currentRevision}
}
