package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Plan values stored on the user row.
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

type User struct {
	ID                  uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email               string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password            string         `gorm:"not null" json:"-"`
	Role                string         `gorm:"size:20;default:'user'" json:"role"`
	Plan                string         `gorm:"size:20;not null;default:'free'" json:"plan"`
	PlanExpiresAt       *time.Time     `json:"plan_expires_at"`
	PaymentCustomerCode string         `gorm:"size:100;index" json:"-"`
	RenewalRemindedAt   *time.Time     `json:"-"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}
