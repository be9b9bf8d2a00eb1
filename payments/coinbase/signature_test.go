package coinbase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"type":"charge:confirmed"}`)
	sig := SignPayload(secret, body)

	assert.True(t, VerifySignature(secret, body, sig))

	t.Run("wrong secret", func(t *testing.T) {
		assert.False(t, VerifySignature("other", body, sig))
	})

	t.Run("tampered body", func(t *testing.T) {
		tampered := append([]byte(nil), body...)
		tampered[0] ^= 0x01
		assert.False(t, VerifySignature(secret, tampered, sig))
	})

	t.Run("tampered signature", func(t *testing.T) {
		bad := []byte(sig)
		if bad[0] == 'a' {
			bad[0] = 'b'
		} else {
			bad[0] = 'a'
		}
		assert.False(t, VerifySignature(secret, body, string(bad)))
	})

	t.Run("empty inputs reject", func(t *testing.T) {
		assert.False(t, VerifySignature("", body, sig))
		assert.False(t, VerifySignature(secret, nil, sig))
		assert.False(t, VerifySignature(secret, body, ""))
	})
}
