package webserver

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenvestors/promobot/core/logger"
	"github.com/tokenvestors/promobot/payments/coinbase"
	"github.com/tokenvestors/promobot/promo"
)

const testSecret = "whsec_test"

func TestMain(m *testing.M) {
	if err := logger.InitLogger(nil); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type recordingConfirmer struct {
	mu    sync.Mutex
	ids   []string
	errBy map[string]error
}

func (r *recordingConfirmer) ConfirmPayment(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
	if r.errBy != nil {
		return r.errBy[id]
	}
	return nil
}

func (r *recordingConfirmer) confirmed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}

func postWebhook(t *testing.T, s *Server, body []byte, signature string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook/coinbase-commerce", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-CC-Webhook-Signature", signature)
	}
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	return resp
}

func signedBody(body string) ([]byte, string) {
	raw := []byte(body)
	return raw, coinbase.SignPayload(testSecret, raw)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	confirmer := &recordingConfirmer{}
	s := New(testSecret, confirmer)

	body := []byte(`{"type":"charge:confirmed","data":{"metadata":{"submissionId":"sub-1"}}}`)

	resp := postWebhook(t, s, body, "deadbeef")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postWebhook(t, s, body, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	assert.Empty(t, confirmer.confirmed(), "nothing is parsed before the signature check passes")
}

func TestWebhookRejectsMalformedPayload(t *testing.T) {
	confirmer := &recordingConfirmer{}
	s := New(testSecret, confirmer)

	raw, sig := signedBody(`{"type": not-json`)
	resp := postWebhook(t, s, raw, sig)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, confirmer.confirmed())
}

func TestWebhookIgnoresNonPaidEvents(t *testing.T) {
	confirmer := &recordingConfirmer{}
	s := New(testSecret, confirmer)

	for _, typ := range []string{"charge:created", "charge:pending", "charge:failed", "something:else"} {
		raw, sig := signedBody(`{"type":"` + typ + `","data":{"metadata":{"submissionId":"sub-1"}}}`)
		resp := postWebhook(t, s, raw, sig)
		assert.Equal(t, http.StatusOK, resp.StatusCode, typ)
	}
	assert.Empty(t, confirmer.confirmed())
}

func TestWebhookConfirmsPaidEvents(t *testing.T) {
	confirmer := &recordingConfirmer{}
	s := New(testSecret, confirmer)

	raw, sig := signedBody(`{"type":"charge:confirmed","data":{"metadata":{"submissionId":"sub-1"}}}`)
	resp := postWebhook(t, s, raw, sig)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	raw, sig = signedBody(`{"type":"charge:resolved","data":{"metadata":{"submissionId":"sub-2"}}}`)
	resp = postWebhook(t, s, raw, sig)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, []string{"sub-1", "sub-2"}, confirmer.confirmed())
}

func TestWebhookAcksMissingMetadata(t *testing.T) {
	confirmer := &recordingConfirmer{}
	s := New(testSecret, confirmer)

	raw, sig := signedBody(`{"type":"charge:confirmed","data":{"metadata":{}}}`)
	resp := postWebhook(t, s, raw, sig)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, confirmer.confirmed())
}

func TestWebhookAcksBenignConfirmErrors(t *testing.T) {
	confirmer := &recordingConfirmer{errBy: map[string]error{
		"gone": promo.ErrSubmissionNotFound,
		"dup":  promo.ErrAlreadyPaid,
		"bad":  errors.New("db down"),
	}}
	s := New(testSecret, confirmer)

	for _, id := range []string{"gone", "dup", "bad"} {
		raw, sig := signedBody(`{"type":"charge:confirmed","data":{"metadata":{"submissionId":"` + id + `"}}}`)
		resp := postWebhook(t, s, raw, sig)
		assert.Equal(t, http.StatusOK, resp.StatusCode, id, "every post-verification failure still acks")
	}
	assert.Equal(t, []string{"gone", "dup", "bad"}, confirmer.confirmed())
}

func TestHealthRoute(t *testing.T) {
	s := New(testSecret, &recordingConfirmer{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := s.App().Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "running")
}
