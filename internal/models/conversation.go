package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation stores a user-submitted conversation and its latest AI commentary.
type Conversation struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Title      string         `gorm:"size:120" json:"title"`
	Content    string         `gorm:"type:text;not null" json:"content"`
	Persona    string         `gorm:"size:30;not null" json:"persona"`
	Commentary string         `gorm:"type:text" json:"commentary"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// ValidPersonas lists the commentary personas users can pick.
var ValidPersonas = map[string]bool{
	"wingman": true, "therapist": true, "comedian": true,
	"bestie": true, "coach": true, "poet": true,
}
