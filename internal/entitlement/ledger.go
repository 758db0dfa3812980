package entitlement

import (
	"errors"
	"fmt"
	"time"

	"github.com/chatlens/chatlens-backend/internal/config"
	"github.com/chatlens/chatlens-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UsageLedger maintains the per-user period counters behind the allowance
// checks. Increments go through a single conditional UPDATE with the ceiling
// in the WHERE clause, so two concurrent submissions cannot push a counter
// past its limit; the unique (user, period) index settles first-use races.
type UsageLedger struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewUsageLedger(db *gorm.DB, cfg *config.Config) *UsageLedger {
	return &UsageLedger{db: db, cfg: cfg}
}

// ConversationCount counts the conversations a user currently stores.
func (l *UsageLedger) ConversationCount(userID uuid.UUID) (int, error) {
	var n int64
	err := l.db.Model(&models.Conversation{}).Where("user_id = ?", userID).Count(&n).Error
	return int(n), err
}

// ConsumeDaily records one free-plan submission for the UTC day of now.
// A failed attempt never changes the stored count.
func (l *UsageLedger) ConsumeDaily(userID uuid.UUID, now time.Time) error {
	day := DayKey(now)
	limit := l.cfg.FreeDailySubmissions

	for attempt := 0; attempt < 2; attempt++ {
		res := l.db.Model(&models.DailyUsage{}).
			Where("user_id = ? AND usage_date = ? AND submission_count < ?", userID, day, limit).
			UpdateColumn("submission_count", gorm.Expr("submission_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		// Zero rows: either no row for today yet, or the ceiling is hit.
		var row models.DailyUsage
		err := l.db.Where("user_id = ? AND usage_date = ?", userID, day).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = models.DailyUsage{ID: uuid.New(), UserID: userID, UsageDate: day, SubmissionCount: 1}
			err = l.db.Create(&row).Error
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Lost the first-use-of-day race; the row exists now.
				continue
			}
			return err
		}
		if err != nil {
			return err
		}
		return &SubmissionLimitError{Limit: limit, Used: row.SubmissionCount, ResetsAt: NextMidnight(now)}
	}
	return fmt.Errorf("daily usage increment did not settle for user %s", userID)
}

// ConsumeMonthly records one pro-plan credit for the UTC month of now.
func (l *UsageLedger) ConsumeMonthly(userID uuid.UUID, now time.Time) error {
	month := MonthKey(now)
	limit := l.cfg.ProMonthlyCredits

	for attempt := 0; attempt < 2; attempt++ {
		res := l.db.Model(&models.MonthlyCredit{}).
			Where("user_id = ? AND usage_month = ? AND credits_used < ?", userID, month, limit).
			UpdateColumn("credits_used", gorm.Expr("credits_used + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		var row models.MonthlyCredit
		err := l.db.Where("user_id = ? AND usage_month = ?", userID, month).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = models.MonthlyCredit{ID: uuid.New(), UserID: userID, UsageMonth: month, CreditsUsed: 1}
			err = l.db.Create(&row).Error
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return err
		}
		if err != nil {
			return err
		}
		return &CreditLimitError{Limit: limit, Used: row.CreditsUsed, ResetsAt: NextMonthStart(now)}
	}
	return fmt.Errorf("monthly credit increment did not settle for user %s", userID)
}

// DailyCount reads today's submission count without mutating anything.
func (l *UsageLedger) DailyCount(userID uuid.UUID, now time.Time) (int, error) {
	var row models.DailyUsage
	err := l.db.Where("user_id = ? AND usage_date = ?", userID, DayKey(now)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.SubmissionCount, nil
}

// MonthlyCount reads this month's credit count without mutating anything.
func (l *UsageLedger) MonthlyCount(userID uuid.UUID, now time.Time) (int, error) {
	var row models.MonthlyCredit
	err := l.db.Where("user_id = ? AND usage_month = ?", userID, MonthKey(now)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.CreditsUsed, nil
}
