package checklist

import (
	"errors"
	"fmt"
)

// Error taxonomy of the engine. Handlers map these to HTTP codes; nothing in
// the engine is retried or swallowed.
var (
	// ErrNotFound: unknown type, session or item.
	ErrNotFound = errors.New("not found")

	// ErrSessionClosed: writing to a session that is finalized, deleted, or
	// past its completion deadline. The caller must open a new session.
	ErrSessionClosed = errors.New("session closed")

	// ErrItemMismatch: the item does not belong to the session's checklist
	// type. Indicates a client bug.
	ErrItemMismatch = errors.New("item does not belong to session type")

	// ErrAlreadyFinalized: lost a finalize race; the desired end state was
	// reached by someone else.
	ErrAlreadyFinalized = errors.New("session already finalized")

	// ErrInvalidStatus: unknown validation status value.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrDefectRequired: non_conforme needs a defect description.
	ErrDefectRequired = errors.New("defect description required for non_conforme")

	// ErrCorrectiveRequired: corrige needs a corrective action.
	ErrCorrectiveRequired = errors.New("corrective action required for corrige")
)

// ItemRef identifies an offending item in a CriticalItemsError.
type ItemRef struct {
	ID    uint   `json:"id"`
	Code  string `json:"code"`
	Label string `json:"libelle"`
}

// CriticalItemsError is returned by FinalizeSession when critical items
// remain unresolved. Recoverable: the caller re-prompts the operator with
// the item list.
type CriticalItemsError struct {
	Items []ItemRef
}

func (e *CriticalItemsError) Error() string {
	return fmt.Sprintf("%d critical item(s) unresolved", len(e.Items))
}
