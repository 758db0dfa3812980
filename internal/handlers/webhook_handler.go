package handlers

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/chatlens/chatlens-backend/internal/billing"
	"github.com/chatlens/chatlens-backend/internal/config"
	"github.com/chatlens/chatlens-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// SignatureHeader carries hex(HMAC-SHA512(secret, body)) on every delivery.
const SignatureHeader = "X-Payment-Signature"

type WebhookHandler struct {
	processor *billing.Processor
	cfg       *config.Config
}

func NewWebhookHandler(processor *billing.Processor, cfg *config.Config) *WebhookHandler {
	return &WebhookHandler{processor: processor, cfg: cfg}
}

// HandlePaymentEvent authenticates the raw body before any parsing, then
// hands the event to the processor. Duplicates and dropped events still
// acknowledge with 200 so the provider stops redelivering.
func (h *WebhookHandler) HandlePaymentEvent(c *fiber.Ctx) error {
	signature := c.Get(SignatureHeader)
	if h.cfg.PaymentWebhookSecret == "" || signature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Missing webhook signature",
		})
	}

	body := c.Body()
	if !billing.VerifySignature([]byte(h.cfg.PaymentWebhookSecret), body, signature) {
		slog.Warn("webhook signature mismatch", "ip", c.IP(), "bytes", len(body))
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid signature",
		})
	}

	var webhook dto.PaymentWebhook
	if err := json.Unmarshal(body, &webhook); err != nil {
		// Authentic but unparseable; the provider retry cannot fix it.
		slog.Warn("webhook event dropped", "reason", "unparseable_body", "error", err)
		return c.JSON(dto.WebhookAck{Received: true})
	}

	outcome, err := h.processor.Process(&webhook, body, time.Now().UTC())
	if err != nil {
		slog.Error("webhook processing failed", "event", webhook.Event,
			"reference", webhook.Data.Reference, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process webhook event",
		})
	}

	if outcome.Kind == billing.OutcomeApplied {
		slog.Info("webhook processed", "event", webhook.Event, "reference", webhook.Data.Reference)
	}
	return c.JSON(dto.WebhookAck{Received: true})
}
