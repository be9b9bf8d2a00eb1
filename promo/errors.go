package promo

import (
	"errors"
	"fmt"
)

var (
	// ErrSubmissionNotFound is returned for lookups of unknown submission ids.
	ErrSubmissionNotFound = errors.New("promo: submission not found")

	// ErrAlreadyPaid is returned when a paid transition is requested for a
	// submission that already reached paid. Payment providers redeliver
	// webhook events, so callers treat this as a benign drop.
	ErrAlreadyPaid = errors.New("promo: submission already paid")
)

// ProviderError wraps a failure of an external provider call (charge
// creation, chat delivery). It is surfaced to the affected user as a retry
// hint and never crashes the process.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider: %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Code labels the error for structured logs.
func (e *ProviderError) Code() string { return "PROVIDER_ERROR" }
