package coinbase

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature checks the X-CC-Webhook-Signature header against the
// HMAC-SHA256 of the exact raw request bytes. The comparison is constant
// time. Callers must pass the untouched body; verifying a re-serialized
// payload would open a canonicalization bypass.
func VerifySignature(secret string, rawBody []byte, signature string) bool {
	if secret == "" || len(rawBody) == 0 || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignPayload computes the hex signature for a payload. Exposed for tests
// and local tooling that replays provider events.
func SignPayload(secret string, rawBody []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return hex.EncodeToString(mac.Sum(nil))
}
