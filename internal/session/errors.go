package session

import (
	"fmt"

	"askgreg/internal/services"
)

var (
	ErrEmptyInput         = fmt.Errorf("%w: input is empty", services.ErrValidation)
	ErrInvalidSide        = fmt.Errorf("%w: side must be left or right", services.ErrValidation)
	ErrSelectionPending   = fmt.Errorf("%w: a selection is already pending", services.ErrConflict)
	ErrNoPendingSelection = fmt.Errorf("%w: no selection is pending", services.ErrConflict)
	ErrInterrupted        = fmt.Errorf("%w: session was reset while generating", services.ErrConflict)
	ErrUnknownSession     = fmt.Errorf("%w: unknown session", services.ErrNotFound)
)

// PersistError reports that a choice was recorded in the session but the
// durable sink rejected it.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return "preference recorded in session but not persisted: " + e.Err.Error()
}

func (e *PersistError) Unwrap() error { return e.Err }
