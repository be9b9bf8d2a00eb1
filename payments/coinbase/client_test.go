package coinbase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenvestors/promobot/core/logger"
	"github.com/tokenvestors/promobot/promo"
)

func TestMain(m *testing.M) {
	if err := logger.InitLogger(nil); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestCreateCharge(t *testing.T) {
	var captured chargeRequest
	var gotHeaders http.Header

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/charges", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"ch_123","hosted_url":"https://commerce.coinbase.com/charges/ch_123"}}`))
	}))
	defer srv.Close()

	c := NewClient("key_abc", "https://t.me/tokenvestors", WithBaseURL(srv.URL))
	charge, err := c.CreateCharge(context.Background(), 49.9, "Ethereum — 0x12345678 promotion", "sub-1")
	require.NoError(t, err)

	assert.Equal(t, "ch_123", charge.ID)
	assert.Equal(t, "https://commerce.coinbase.com/charges/ch_123", charge.HostedURL)

	assert.Equal(t, "key_abc", gotHeaders.Get("X-CC-Api-Key"))
	assert.Equal(t, "2018-03-22", gotHeaders.Get("X-CC-Version"))
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))

	assert.Equal(t, "fixed_price", captured.PricingType)
	assert.Equal(t, "49.90", captured.LocalPrice.Amount)
	assert.Equal(t, "USD", captured.LocalPrice.Currency)
	assert.Equal(t, "sub-1", captured.Metadata["submissionId"])
	assert.Equal(t, "https://t.me/tokenvestors/paid", captured.RedirectURL)
	assert.Equal(t, "https://t.me/tokenvestors/cancel", captured.CancelURL)
}

func TestCreateChargeAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"type":"authentication_error"}}`))
	}))
	defer srv.Close()

	c := NewClient("bad_key", "https://example.com", WithBaseURL(srv.URL))
	_, err := c.CreateCharge(context.Background(), 50, "d", "sub-1")
	require.Error(t, err)

	var perr *promo.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Error(), "401")
}

func TestCreateChargeIncompleteResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	c := NewClient("key", "https://example.com", WithBaseURL(srv.URL))
	_, err := c.CreateCharge(context.Background(), 50, "d", "sub-1")

	var perr *promo.ProviderError
	assert.ErrorAs(t, err, &perr)
}

func TestCreateChargeWithoutAPIKey(t *testing.T) {
	c := NewClient("", "https://example.com")
	_, err := c.CreateCharge(context.Background(), 50, "d", "sub-1")

	var perr *promo.ProviderError
	assert.ErrorAs(t, err, &perr)
}
