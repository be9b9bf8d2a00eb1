// Package webserver hosts the payment-provider webhook endpoint on a small
// fiber server running next to the Telegram bot.
package webserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/tokenvestors/promobot/core/logger"
	"github.com/tokenvestors/promobot/payments/coinbase"
	"github.com/tokenvestors/promobot/promo"
)

// paidEventTypes are the provider event kinds that mean a finalized,
// successful payment. Everything else is acknowledged and dropped.
var paidEventTypes = map[string]struct{}{
	"charge:confirmed": {},
	"charge:resolved":  {},
}

const signatureHeader = "X-CC-Webhook-Signature"

// confirmTimeout bounds the synchronous transition + fan-out per event.
const confirmTimeout = 25 * time.Second

// Confirmer applies the idempotent paid transition for a submission.
type Confirmer interface {
	ConfirmPayment(ctx context.Context, submissionID string) error
}

// Server is the HTTP surface for payment webhooks.
type Server struct {
	app       *fiber.App
	confirmer Confirmer
	secret    string
}

// New builds the fiber app with the webhook route and a health route.
func New(webhookSecret string, confirmer Confirmer) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "TokenVestors Promo Bot",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	s := &Server{
		app:       app,
		confirmer: confirmer,
		secret:    webhookSecret,
	}

	app.Post("/webhook/coinbase-commerce", s.handleCoinbaseWebhook)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("TokenVestors promo bot running")
	})

	return s
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App { return s.app }

// Start listens on the given address until Shutdown.
func (s *Server) Start(addr string) error {
	logger.WH.Info("webhook server listening",
		slog.String("event", "listen"),
		slog.String("listen", addr),
	)
	return s.app.Listen(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Metadata struct {
			SubmissionID string `json:"submissionId"`
		} `json:"metadata"`
	} `json:"data"`
}

// handleCoinbaseWebhook verifies, filters, correlates, and applies the paid
// transition. The provider expects a timely ack to stop retransmission, so
// every non-security failure mode past the signature check acknowledges
// with 200: unknown event types, missing metadata, unknown submissions, and
// repeated deliveries are all benign drops.
func (s *Server) handleCoinbaseWebhook(c *fiber.Ctx) error {
	raw := c.Body()

	// The signature covers the exact raw bytes; nothing is parsed before
	// this check passes.
	if !coinbase.VerifySignature(s.secret, raw, c.Get(signatureHeader)) {
		logger.WH.Warn("webhook signature rejected",
			slog.String("event", "webhook.verify"),
			slog.Int("body_bytes", len(raw)),
		)
		return c.Status(fiber.StatusUnauthorized).SendString("bad signature")
	}

	var ev webhookEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		logger.WH.Warn("webhook payload malformed",
			slog.String("event", "webhook.decode"),
			slog.String("err", err.Error()),
		)
		return c.Status(fiber.StatusBadRequest).SendString("bad payload")
	}

	if _, paid := paidEventTypes[ev.Type]; !paid {
		logger.WH.Debug("webhook event ignored",
			slog.String("event", "webhook.filter"),
			slog.String("event_type", logger.SanitizeLimit(ev.Type, 64)),
		)
		return c.SendString("ok")
	}

	submissionID := ev.Data.Metadata.SubmissionID
	if submissionID == "" {
		logger.WH.Warn("webhook event without submission id",
			slog.String("event", "webhook.correlate"),
			slog.String("event_type", ev.Type),
		)
		return c.SendString("ok")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), confirmTimeout)
	defer cancel()

	err := s.confirmer.ConfirmPayment(ctx, submissionID)
	switch {
	case err == nil:
	case errors.Is(err, promo.ErrSubmissionNotFound), errors.Is(err, promo.ErrAlreadyPaid):
		// Benign: redelivery or stale metadata. Ack so the provider stops.
	default:
		logger.WH.Error("payment confirmation failed",
			slog.String("event", "webhook.confirm"),
			slog.String("submission_id", submissionID),
			slog.String("err", err.Error()),
		)
		// Still ack: the transition is retried on provider redelivery only
		// if it did not happen, and a 5xx would invite a retry storm.
	}
	return c.SendString("ok")
}
