package promo

import "context"

// Store persists submissions. Implementations must tolerate concurrent
// access from the intake flow and the webhook handler; MarkPaid in
// particular must apply the pending->paid transition as a single
// conditional write so duplicate webhook deliveries cannot post twice.
type Store interface {
	// Create inserts a new pending submission.
	Create(ctx context.Context, sub *Submission) error

	// Get returns the submission by id or ErrSubmissionNotFound.
	Get(ctx context.Context, id string) (*Submission, error)

	// AttachCharge records the payment-provider charge reference.
	AttachCharge(ctx context.Context, id, chargeID string) error

	// MarkPaid transitions the submission to paid if and only if it is
	// still pending, returning the stored row. It returns
	// ErrSubmissionNotFound for unknown ids and ErrAlreadyPaid when the
	// transition already happened.
	MarkPaid(ctx context.Context, id string) (*Submission, error)
}
