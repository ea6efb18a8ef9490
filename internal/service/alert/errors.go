package alert

import (
	"fmt"

	"github.com/jwalitptl/carewatch-api/internal/model"
)

// ChannelError is a sender rejection for one channel. Its text is stored verbatim in the ledger.
type ChannelError struct {
	Method model.AlertMethod
	Err    error
}

func (e *ChannelError) Error() string {
	return e.Err.Error()
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}

// ValidationGap means the channel could not be attempted: the method is unknown,
// has no sender, or the contact lacks the destination it needs.
type ValidationGap struct {
	Method model.AlertMethod
}

func (e *ValidationGap) Error() string {
	return fmt.Sprintf("Invalid method or missing contact information for %s", e.Method)
}

// PersistenceError is a failed ledger write. It never changes the reported outcome.
type PersistenceError struct {
	Method model.AlertMethod
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to record %s alert: %v", e.Method, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
