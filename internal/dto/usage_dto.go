package dto

import (
	"time"

	"github.com/chatlens/chatlens-backend/internal/entitlement"
)

// UsageResponse is the display aggregate for the account screen. Dimensions
// that do not apply to the user's effective plan are null.
type UsageResponse struct {
	Plan          string     `json:"plan"`
	PlanExpiresAt *time.Time `json:"plan_expires_at"`
	entitlement.UsageSnapshot
}

// LimitDetails carries the machine-readable payload of a 402 response.
type LimitDetails struct {
	Limit    int        `json:"limit"`
	Used     int        `json:"used"`
	ResetsAt *time.Time `json:"resets_at,omitempty"`
}

// LimitErrorResponse is the envelope for every allowance failure.
type LimitErrorResponse struct {
	Error   string       `json:"error"`
	Code    string       `json:"code"`
	Details LimitDetails `json:"details"`
}
