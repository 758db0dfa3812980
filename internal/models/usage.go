package models

import (
	"time"

	"github.com/google/uuid"
)

// DailyUsage is one row per (user, UTC day). Created on first submission of
// the day, incremented thereafter, never deleted.
type DailyUsage struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_daily_usage_user_date" json:"user_id"`
	UsageDate       string    `gorm:"size:10;not null;uniqueIndex:idx_daily_usage_user_date" json:"usage_date"`
	SubmissionCount int       `gorm:"not null;default:0" json:"submission_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MonthlyCredit is one row per (user, UTC month); only written while the user
// is on the pro plan.
type MonthlyCredit struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_monthly_credit_user_month" json:"user_id"`
	UsageMonth  string    `gorm:"size:7;not null;uniqueIndex:idx_monthly_credit_user_month" json:"usage_month"`
	CreditsUsed int       `gorm:"not null;default:0" json:"credits_used"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
