package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chatlens/chatlens-backend/internal/dto"
	"github.com/chatlens/chatlens-backend/internal/entitlement"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitTestApp(err error) *fiber.App {
	app := fiber.New()
	app.Get("/t", func(c *fiber.Ctx) error {
		handled, respErr := limitErrorResponse(c, err)
		if handled {
			return respErr
		}
		return c.SendStatus(fiber.StatusTeapot)
	})
	return app
}

func TestLimitErrorResponseSubmissionLimit(t *testing.T) {
	resets := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	app := limitTestApp(&entitlement.SubmissionLimitError{Limit: 3, Used: 3, ResetsAt: resets})

	resp, err := app.Test(httptest.NewRequest("GET", "/t", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusPaymentRequired, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body dto.LimitErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, entitlement.CodeSubmissionLimit, body.Code)
	assert.Equal(t, 3, body.Details.Limit)
	assert.Equal(t, 3, body.Details.Used)
	require.NotNil(t, body.Details.ResetsAt)
	assert.True(t, body.Details.ResetsAt.Equal(resets))
}

func TestLimitErrorResponseConversationLimitHasNoReset(t *testing.T) {
	app := limitTestApp(&entitlement.ConversationLimitError{Limit: 5, Used: 5})

	resp, err := app.Test(httptest.NewRequest("GET", "/t", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusPaymentRequired, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body dto.LimitErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, entitlement.CodeConversationLimit, body.Code)
	// Lifetime quota: no reset timestamp in the payload.
	assert.Nil(t, body.Details.ResetsAt)
}

func TestLimitErrorResponsePassesThroughOtherErrors(t *testing.T) {
	app := limitTestApp(errors.New("connection refused"))

	resp, err := app.Test(httptest.NewRequest("GET", "/t", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
}
