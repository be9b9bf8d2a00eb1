// Package service coordinates the submission lifecycle: intake confirmation
// with charge creation, and the idempotent payment-confirmation path with
// its posting fan-out.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tokenvestors/promobot/core/logger"
	"github.com/tokenvestors/promobot/promo"
)

// Charge is the provider-side payment request created for a submission.
type Charge struct {
	ID        string
	HostedURL string
}

// ChargeIssuer creates charges with the payment provider. The submission id
// travels as metadata so the webhook can correlate the payment back.
type ChargeIssuer interface {
	CreateCharge(ctx context.Context, amountUSD float64, description, submissionID string) (*Charge, error)
}

// Poster delivers the rendered announcement to every destination and
// notifies the requester. Implementations handle each delivery failure
// individually; the returned error is informational only.
type Poster interface {
	Announce(ctx context.Context, sub *promo.Submission) error
}

// Service wires the store, the charge issuer, the price board, and the
// poster together.
type Service struct {
	store  promo.Store
	issuer ChargeIssuer
	prices *PriceBoard
	poster Poster
}

// New builds a Service.
func New(store promo.Store, issuer ChargeIssuer, prices *PriceBoard, poster Poster) *Service {
	return &Service{
		store:  store,
		issuer: issuer,
		prices: prices,
		poster: poster,
	}
}

// Prices exposes the price board for the command surface.
func (s *Service) Prices() *PriceBoard { return s.prices }

// Submit persists a confirmed draft as a pending submission and creates the
// payment charge. The price is snapshotted at this moment. When charge
// creation fails the submission stays pending with no charge reference and
// the error is returned for the caller to surface as a retry hint; no
// automatic retry happens here.
func (s *Service) Submit(ctx context.Context, req promo.Requester, draft promo.Draft) (*promo.Submission, string, error) {
	if !draft.Complete() {
		return nil, "", fmt.Errorf("incomplete draft")
	}

	sub := &promo.Submission{
		ID:              uuid.NewString(),
		UserID:          req.UserID,
		Username:        req.Username,
		Chain:           draft.Chain,
		ContractAddress: draft.ContractAddress,
		Description:     promo.Truncate(draft.Description, promo.MaxDescriptionLen),
		SocialLinks:     draft.SocialLinks,
		ChartURL:        draft.ChartURL,
		PriceUSD:        s.prices.Current(),
		Status:          promo.StatusPending,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.store.Create(ctx, sub); err != nil {
		return nil, "", fmt.Errorf("persist submission: %w", err)
	}
	logger.SVCSubs.Info("submission created",
		slog.String("event", "submission.create"),
		slog.String("submission_id", sub.ID),
		slog.Int64("user_id", sub.UserID),
		slog.String("chain", string(sub.Chain)),
		slog.Float64("price_usd", sub.PriceUSD),
	)

	chargeDesc := fmt.Sprintf("%s — %s promotion", sub.Chain.Label(), promo.Truncate(sub.ContractAddress, 10))
	charge, err := s.issuer.CreateCharge(ctx, sub.PriceUSD, chargeDesc, sub.ID)
	if err != nil {
		logger.SVCSubs.Error("charge creation failed",
			slog.String("event", "charge.create"),
			slog.String("submission_id", sub.ID),
			slog.String("err", err.Error()),
		)
		return sub, "", &promo.ProviderError{Op: "create charge", Err: err}
	}

	if err := s.store.AttachCharge(ctx, sub.ID, charge.ID); err != nil {
		// The charge exists; the webhook correlates by submission id, so a
		// missing local reference is logged rather than failing the intake.
		logger.SVCSubs.Warn("charge reference not stored",
			slog.String("event", "charge.attach"),
			slog.String("submission_id", sub.ID),
			slog.String("charge_id", charge.ID),
			slog.String("err", err.Error()),
		)
	}
	sub.ChargeID = &charge.ID

	logger.SVCSubs.Info("charge created",
		slog.String("event", "charge.create"),
		slog.String("submission_id", sub.ID),
		slog.String("charge_id", charge.ID),
	)
	return sub, charge.HostedURL, nil
}

// ConfirmPayment applies the paid transition for the given submission and,
// on the first (and only) successful transition, runs the posting fan-out.
// Unknown ids and repeated confirmations return their sentinel errors so
// the webhook layer can acknowledge and drop them. Posting failures never
// roll the transition back.
func (s *Service) ConfirmPayment(ctx context.Context, submissionID string) error {
	sub, err := s.store.MarkPaid(ctx, submissionID)
	if err != nil {
		switch {
		case errors.Is(err, promo.ErrSubmissionNotFound):
			logger.SVCSubs.Warn("payment for unknown submission",
				slog.String("event", "payment.confirm"),
				slog.String("submission_id", submissionID),
			)
		case errors.Is(err, promo.ErrAlreadyPaid):
			logger.SVCSubs.Debug("duplicate payment confirmation",
				slog.String("event", "payment.confirm"),
				slog.String("submission_id", submissionID),
			)
		}
		return err
	}

	logger.SVCSubs.Info("submission paid",
		slog.String("event", "payment.confirm"),
		slog.String("submission_id", sub.ID),
		slog.Int64("user_id", sub.UserID),
	)

	if s.poster != nil {
		if err := s.poster.Announce(ctx, sub); err != nil {
			// The payment is real regardless of posting success.
			logger.SVCSubs.Error("announcement fan-out incomplete",
				slog.String("event", "payment.post"),
				slog.String("submission_id", sub.ID),
				slog.String("err", err.Error()),
			)
		}
	}
	return nil
}
