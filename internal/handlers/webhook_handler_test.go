package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/chatlens/chatlens-backend/internal/billing"
	"github.com/chatlens/chatlens-backend/internal/config"
	"github.com/chatlens/chatlens-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test"

func newWebhookApp(secret string) *fiber.App {
	cfg := &config.Config{PaymentWebhookSecret: secret}
	h := NewWebhookHandler(billing.NewProcessor(nil, cfg, nil), cfg)

	app := fiber.New()
	app.Post("/api/webhooks/payments", h.HandlePaymentEvent)
	return app
}

func TestWebhookMissingSignatureIsBadRequest(t *testing.T) {
	app := newWebhookApp(testWebhookSecret)

	req := httptest.NewRequest("POST", "/api/webhooks/payments", bytes.NewReader([]byte(`{}`)))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestWebhookMissingSecretIsBadRequest(t *testing.T) {
	// A deployment without the secret must not accept any delivery.
	app := newWebhookApp("")

	body := []byte(`{}`)
	req := httptest.NewRequest("POST", "/api/webhooks/payments", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, billing.ComputeSignature([]byte(testWebhookSecret), body))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestWebhookBadSignatureIsUnauthorized(t *testing.T) {
	app := newWebhookApp(testWebhookSecret)

	req := httptest.NewRequest("POST", "/api/webhooks/payments", bytes.NewReader([]byte(`{}`)))
	req.Header.Set(SignatureHeader, "deadbeef")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWebhookSignatureOverDifferentBodyIsUnauthorized(t *testing.T) {
	app := newWebhookApp(testWebhookSecret)

	signed := []byte(`{"data":{"amount":1000}}`)
	delivered := []byte(`{"data":{"amount":9000}}`)
	req := httptest.NewRequest("POST", "/api/webhooks/payments", bytes.NewReader(delivered))
	req.Header.Set(SignatureHeader, billing.ComputeSignature([]byte(testWebhookSecret), signed))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWebhookAuthenticMalformedBodyIsAcknowledged(t *testing.T) {
	app := newWebhookApp(testWebhookSecret)

	body := []byte(`this is not json`)
	req := httptest.NewRequest("POST", "/api/webhooks/payments", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, billing.ComputeSignature([]byte(testWebhookSecret), body))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var ack dto.WebhookAck
	require.NoError(t, json.Unmarshal(raw, &ack))
	assert.True(t, ack.Received)
}

func TestWebhookRejectedEventIsAcknowledged(t *testing.T) {
	app := newWebhookApp(testWebhookSecret)

	// Parseable but missing a reference: the processor drops it without
	// touching storage, and the handler still acknowledges.
	body := []byte(`{"event":"charge.success","data":{"status":"success"}}`)
	req := httptest.NewRequest("POST", "/api/webhooks/payments", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, billing.ComputeSignature([]byte(testWebhookSecret), body))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
