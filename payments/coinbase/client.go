// Package coinbase wraps the Coinbase Commerce API surface the bot needs:
// charge creation and webhook signature verification.
package coinbase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tokenvestors/promobot/core/logger"
	"github.com/tokenvestors/promobot/promo"
	"github.com/tokenvestors/promobot/promo/service"
)

const (
	defaultBaseURL = "https://api.commerce.coinbase.com"
	apiVersion     = "2018-03-22"

	defaultTimeout = 15 * time.Second
)

// Client creates charges against the Coinbase Commerce API.
type Client struct {
	apiKey  string
	baseURL string
	// PublicBaseURL builds the post-payment redirect targets.
	publicBaseURL string
	httpClient    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a Client. publicBaseURL is the bot's public address used
// for the success/cancel redirects.
func NewClient(apiKey, publicBaseURL string, opts ...Option) *Client {
	c := &Client{
		apiKey:        apiKey,
		baseURL:       defaultBaseURL,
		publicBaseURL: publicBaseURL,
		httpClient:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ service.ChargeIssuer = (*Client)(nil)

type chargeRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	PricingType string            `json:"pricing_type"`
	LocalPrice  localPrice        `json:"local_price"`
	Metadata    map[string]string `json:"metadata"`
	RedirectURL string            `json:"redirect_url"`
	CancelURL   string            `json:"cancel_url"`
}

type localPrice struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type chargeEnvelope struct {
	Data struct {
		ID        string `json:"id"`
		HostedURL string `json:"hosted_url"`
	} `json:"data"`
}

// CreateCharge creates a fixed-price USD charge carrying the submission id
// as correlation metadata and returns the charge id plus the hosted payment
// URL. Failures are returned to the caller; no retries here.
func (c *Client) CreateCharge(ctx context.Context, amountUSD float64, description, submissionID string) (*service.Charge, error) {
	if c.apiKey == "" {
		return nil, &promo.ProviderError{Op: "create charge", Err: fmt.Errorf("api key not configured")}
	}

	body, err := json.Marshal(chargeRequest{
		Name:        "TokenVestors Promo",
		Description: description,
		PricingType: "fixed_price",
		LocalPrice:  localPrice{Amount: fmt.Sprintf("%.2f", amountUSD), Currency: "USD"},
		Metadata:    map[string]string{"submissionId": submissionID},
		RedirectURL: c.publicBaseURL + "/paid",
		CancelURL:   c.publicBaseURL + "/cancel",
	})
	if err != nil {
		return nil, fmt.Errorf("encode charge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/charges", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build charge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CC-Api-Key", c.apiKey)
	req.Header.Set("X-CC-Version", apiVersion)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &promo.ProviderError{Op: "create charge", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logger.PAY.Error("charge request rejected",
			slog.String("event", "charge.create"),
			slog.Int("http_code", resp.StatusCode),
			slog.String("submission_id", submissionID),
			slog.Duration("duration", logger.RoundMS(time.Since(start))),
		)
		return nil, &promo.ProviderError{
			Op:  "create charge",
			Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, logger.SanitizeLimit(string(snippet), 256)),
		}
	}

	var env chargeEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &promo.ProviderError{Op: "create charge", Err: fmt.Errorf("decode response: %w", err)}
	}
	if env.Data.ID == "" || env.Data.HostedURL == "" {
		return nil, &promo.ProviderError{Op: "create charge", Err: fmt.Errorf("incomplete charge response")}
	}

	logger.PAY.Debug("charge created",
		slog.String("event", "charge.create"),
		slog.String("charge_id", env.Data.ID),
		slog.String("submission_id", submissionID),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return &service.Charge{ID: env.Data.ID, HostedURL: env.Data.HostedURL}, nil
}
