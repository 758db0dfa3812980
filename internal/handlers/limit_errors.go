package handlers

import (
	"errors"

	"github.com/chatlens/chatlens-backend/internal/dto"
	"github.com/chatlens/chatlens-backend/internal/entitlement"
	"github.com/gofiber/fiber/v2"
)

// limitErrorResponse maps entitlement limit errors to the 402 envelope.
// Returns false when err is not a limit error.
func limitErrorResponse(c *fiber.Ctx, err error) (bool, error) {
	var convErr *entitlement.ConversationLimitError
	if errors.As(err, &convErr) {
		return true, c.Status(fiber.StatusPaymentRequired).JSON(dto.LimitErrorResponse{
			Error: convErr.Error(),
			Code:  convErr.Code(),
			Details: dto.LimitDetails{
				Limit: convErr.Limit,
				Used:  convErr.Used,
			},
		})
	}

	var subErr *entitlement.SubmissionLimitError
	if errors.As(err, &subErr) {
		resets := subErr.ResetsAt
		return true, c.Status(fiber.StatusPaymentRequired).JSON(dto.LimitErrorResponse{
			Error: subErr.Error(),
			Code:  subErr.Code(),
			Details: dto.LimitDetails{
				Limit:    subErr.Limit,
				Used:     subErr.Used,
				ResetsAt: &resets,
			},
		})
	}

	var credErr *entitlement.CreditLimitError
	if errors.As(err, &credErr) {
		resets := credErr.ResetsAt
		return true, c.Status(fiber.StatusPaymentRequired).JSON(dto.LimitErrorResponse{
			Error: credErr.Error(),
			Code:  credErr.Code(),
			Details: dto.LimitDetails{
				Limit:    credErr.Limit,
				Used:     credErr.Used,
				ResetsAt: &resets,
			},
		})
	}

	return false, nil
}
