// Package store provides the Postgres-backed submission store.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tokenvestors/promobot/promo"
)

// SubmissionStore implements promo.Store on top of sqlx/Postgres.
type SubmissionStore struct {
	db *sqlx.DB
}

// New wraps the shared database handle.
func New(db *sqlx.DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

var _ promo.Store = (*SubmissionStore)(nil)

// Create inserts a new pending submission.
func (s *SubmissionStore) Create(ctx context.Context, sub *promo.Submission) error {
	const q = `
		INSERT INTO submissions
			(id, user_id, username, chain, contract_address, description,
			 social_links, chart_url, price_usd, status, created_at)
		VALUES
			(:id, :user_id, :username, :chain, :contract_address, :description,
			 :social_links, :chart_url, :price_usd, :status, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, q, sub); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// Get returns the submission by id.
func (s *SubmissionStore) Get(ctx context.Context, id string) (*promo.Submission, error) {
	var sub promo.Submission
	err := s.db.GetContext(ctx, &sub, `SELECT * FROM submissions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, promo.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select submission: %w", err)
	}
	return &sub, nil
}

// AttachCharge records the provider charge reference on an existing row.
func (s *SubmissionStore) AttachCharge(ctx context.Context, id, chargeID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE submissions SET charge_id = $2 WHERE id = $1`, id, chargeID)
	if err != nil {
		return fmt.Errorf("attach charge: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return promo.ErrSubmissionNotFound
	}
	return nil
}

// MarkPaid applies the pending->paid transition as a single conditional
// UPDATE. The WHERE clause on status is the idempotency guard: under
// concurrent or duplicate webhook deliveries exactly one caller observes an
// affected row.
func (s *SubmissionStore) MarkPaid(ctx context.Context, id string) (*promo.Submission, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE submissions SET status = $2 WHERE id = $1 AND status = $3`,
		id, promo.StatusPaid, promo.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("mark paid: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("mark paid rows: %w", err)
	}
	if n == 0 {
		sub, getErr := s.Get(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		if sub.Status == promo.StatusPaid {
			return nil, promo.ErrAlreadyPaid
		}
		return nil, promo.ErrSubmissionNotFound
	}
	return s.Get(ctx, id)
}
