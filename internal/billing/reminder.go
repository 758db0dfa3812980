package billing

import (
	"log/slog"
	"time"

	"github.com/chatlens/chatlens-backend/internal/config"
	"github.com/chatlens/chatlens-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReminderService selects pro users whose plan is about to lapse and emails
// them once per grant. The reminder marker is cleared on every new grant, so
// each paid period gets at most one reminder.
type ReminderService struct {
	db     *gorm.DB
	cfg    *config.Config
	mailer Mailer
}

func NewReminderService(db *gorm.DB, cfg *config.Config, mailer Mailer) *ReminderService {
	return &ReminderService{db: db, cfg: cfg, mailer: mailer}
}

// DueForReminder returns at most ReminderBatchSize pro users whose expiry
// falls inside the reminder window and who have not been reminded yet.
func (s *ReminderService) DueForReminder(now time.Time) ([]models.User, error) {
	windowEnd := now.AddDate(0, 0, s.cfg.ReminderWindowDays)
	var users []models.User
	err := s.db.
		Where("plan = ? AND plan_expires_at IS NOT NULL AND plan_expires_at BETWEEN ? AND ? AND renewal_reminded_at IS NULL",
			models.PlanPro, now, windowEnd).
		Order("plan_expires_at ASC").
		Limit(s.cfg.ReminderBatchSize).
		Find(&users).Error
	return users, err
}

// MarkReminded records that a reminder went out.
func (s *ReminderService) MarkReminded(userID uuid.UUID, now time.Time) error {
	return s.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("renewal_reminded_at", now).Error
}

// Run performs one bounded scheduler pass. Users are marked only after the
// send succeeds, so a failed send stays eligible for the next pass; there is
// no retry inside a pass.
func (s *ReminderService) Run(now time.Time) (int, error) {
	users, err := s.DueForReminder(now)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, u := range users {
		if u.PlanExpiresAt == nil {
			continue
		}
		if err := s.mailer.SendRenewalReminder(u.Email, *u.PlanExpiresAt); err != nil {
			slog.Warn("renewal reminder failed", "user_id", u.ID, "error", err)
			continue
		}
		if err := s.MarkReminded(u.ID, now); err != nil {
			slog.Error("failed to mark user reminded", "user_id", u.ID, "error", err)
			continue
		}
		sent++
	}

	if sent > 0 {
		slog.Info("renewal reminders sent", "count", sent, "selected", len(users))
	}
	return sent, nil
}
