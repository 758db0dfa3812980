package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignatureRoundTrip(t *testing.T) {
	secret := []byte("whsec_test_secret")
	body := []byte(`{"event":"charge.success","data":{"reference":"ref_001"}}`)

	sig := ComputeSignature(secret, body)
	assert.Len(t, sig, 128) // hex of a 64-byte SHA-512 digest
	assert.True(t, VerifySignature(secret, body, sig))
}

func TestVerifySignatureRejectsTamperedBody(t *testing.T) {
	secret := []byte("whsec_test_secret")
	body := []byte(`{"data":{"amount":1000}}`)
	sig := ComputeSignature(secret, body)

	tampered := []byte(`{"data":{"amount":9000}}`)
	assert.False(t, VerifySignature(secret, tampered, sig))
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	body := []byte(`{"event":"charge.success"}`)
	sig := ComputeSignature([]byte("secret-a"), body)

	assert.False(t, VerifySignature([]byte("secret-b"), body, sig))
}

func TestVerifySignatureRejectsGarbage(t *testing.T) {
	secret := []byte("whsec_test_secret")
	body := []byte(`{}`)

	assert.False(t, VerifySignature(secret, body, ""))
	assert.False(t, VerifySignature(secret, body, "deadbeef"))
}
