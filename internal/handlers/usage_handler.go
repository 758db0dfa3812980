package handlers

import (
	"log/slog"
	"time"

	"github.com/chatlens/chatlens-backend/internal/dto"
	"github.com/chatlens/chatlens-backend/internal/entitlement"
	"github.com/chatlens/chatlens-backend/internal/middleware"
	"github.com/chatlens/chatlens-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type UsageHandler struct {
	guard       *entitlement.AllowanceGuard
	authService *services.AuthService
}

func NewUsageHandler(guard *entitlement.AllowanceGuard, authService *services.AuthService) *UsageHandler {
	return &UsageHandler{guard: guard, authService: authService}
}

// Snapshot returns the read-only usage aggregate for the account screen.
func (h *UsageHandler) Snapshot(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	now := time.Now().UTC()
	eff, err := h.guard.EffectivePlan(user, now)
	if err != nil {
		slog.Error("plan resolution failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load usage",
		})
	}

	snap, err := h.guard.Snapshot(userID, eff.IsPro, now)
	if err != nil {
		slog.Error("usage snapshot failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load usage",
		})
	}

	return c.JSON(dto.UsageResponse{
		Plan:          eff.Plan,
		PlanExpiresAt: eff.ExpiresAt,
		UsageSnapshot: *snap,
	})
}
