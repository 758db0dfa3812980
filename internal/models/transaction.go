package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Transaction statuses. A reference moves pending -> success (or failed)
// exactly once; success is terminal.
const (
	TxPending = "pending"
	TxSuccess = "success"
	TxFailed  = "failed"
)

// Transaction records one payment-provider charge. Reference is the
// provider-issued idempotency key; the unique index is what makes duplicate
// webhook deliveries safe under concurrency.
type Transaction struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Reference string         `gorm:"size:100;not null;uniqueIndex" json:"reference"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Status    string         `gorm:"size:20;not null;default:'pending'" json:"status"`
	Amount    int64          `json:"amount"`
	Currency  string         `gorm:"size:10" json:"currency"`
	Payload   datatypes.JSON `gorm:"type:jsonb" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
