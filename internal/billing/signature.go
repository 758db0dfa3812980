package billing

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// ComputeSignature returns hex(HMAC-SHA512(secret, body)), the signature the
// payment provider sends alongside each webhook delivery.
func ComputeSignature(secret, body []byte) string {
	mac := hmac.New(sha512.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature recomputes the body signature and compares it to the header
// value in constant time.
func VerifySignature(secret, body []byte, signature string) bool {
	expected := ComputeSignature(secret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
