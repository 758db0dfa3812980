package handlers

import (
	"log/slog"
	"strings"
	"time"

	"github.com/chatlens/chatlens-backend/internal/dto"
	"github.com/chatlens/chatlens-backend/internal/middleware"
	"github.com/chatlens/chatlens-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ConversationHandler struct {
	analysisService *services.AnalysisService
	authService     *services.AuthService
}

func NewConversationHandler(analysisService *services.AnalysisService, authService *services.AuthService) *ConversationHandler {
	return &ConversationHandler{analysisService: analysisService, authService: authService}
}

// Analyze submits a new conversation for persona commentary.
func (h *ConversationHandler) Analyze(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	conv, err := h.analysisService.Analyze(user, &req, time.Now().UTC())
	if err != nil {
		if handled, resp := limitErrorResponse(c, err); handled {
			return resp
		}
		if strings.Contains(err.Error(), "invalid persona") ||
			strings.Contains(err.Error(), "required") ||
			strings.Contains(err.Error(), "too long") {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		slog.Error("conversation analysis failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to analyze conversation",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(conv)
}

// Reanalyze re-runs commentary on a stored conversation.
func (h *ConversationHandler) Reanalyze(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	convID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid conversation id",
		})
	}

	var req dto.ReanalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	conv, err := h.analysisService.Reanalyze(user, convID, req.Persona, time.Now().UTC())
	if err != nil {
		if handled, resp := limitErrorResponse(c, err); handled {
			return resp
		}
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Conversation not found",
			})
		}
		if strings.Contains(err.Error(), "invalid persona") {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		slog.Error("conversation reanalysis failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to analyze conversation",
		})
	}

	return c.JSON(conv)
}

// History lists stored conversations, newest first.
func (h *ConversationHandler) History(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	conversations, total, err := h.analysisService.History(userID, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load conversations",
		})
	}

	return c.JSON(dto.ConversationListResponse{
		Conversations: conversations,
		Total:         total,
		Page:          page,
		Limit:         limit,
	})
}

// Delete removes a stored conversation.
func (h *ConversationHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	convID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid conversation id",
		})
	}

	if err := h.analysisService.Delete(userID, convID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Conversation not found",
		})
	}

	return c.JSON(fiber.Map{"message": "Conversation deleted"})
}
