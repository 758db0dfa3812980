package entitlement

import (
	"time"

	"github.com/chatlens/chatlens-backend/internal/config"
	"github.com/chatlens/chatlens-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AllowanceGuard decides, for every inbound request, whether the user may
// consume a unit of service, and records the consumption in the same call.
type AllowanceGuard struct {
	db     *gorm.DB
	cfg    *config.Config
	ledger *UsageLedger
}

func NewAllowanceGuard(db *gorm.DB, cfg *config.Config) *AllowanceGuard {
	return &AllowanceGuard{db: db, cfg: cfg, ledger: NewUsageLedger(db, cfg)}
}

// EffectivePlan resolves the user's plan and persists the lazy downgrade when
// a stored pro plan has expired. Racing callers all write the same target
// state (plan = free), so the write is idempotent and needs no locking.
// The in-memory user is updated to match.
func (g *AllowanceGuard) EffectivePlan(user *models.User, now time.Time) (Effective, error) {
	eff := Resolve(user.Plan, user.PlanExpiresAt, now)
	if eff.NeedsDowngrade {
		err := g.db.Model(&models.User{}).
			Where("id = ? AND plan = ?", user.ID, models.PlanPro).
			Updates(map[string]interface{}{"plan": models.PlanFree, "plan_expires_at": nil}).Error
		if err != nil {
			return eff, err
		}
		user.Plan = models.PlanFree
		user.PlanExpiresAt = nil
	}
	return eff, nil
}

// EnsureConversationAllowance checks the lifetime stored-conversation quota.
// Pro users are unlimited; free users are capped at FreeMaxConversations.
func (g *AllowanceGuard) EnsureConversationAllowance(userID uuid.UUID, isPro bool) error {
	if isPro {
		return nil
	}
	used, err := g.ledger.ConversationCount(userID)
	if err != nil {
		return err
	}
	if used >= g.cfg.FreeMaxConversations {
		return &ConversationLimitError{Limit: g.cfg.FreeMaxConversations, Used: used}
	}
	return nil
}

// ConsumeSubmission checks and records one unit of usage in a single call;
// there is no separate check-then-commit step. Pro users draw from monthly
// credits, free users from the daily submission allowance.
func (g *AllowanceGuard) ConsumeSubmission(userID uuid.UUID, isPro bool, now time.Time) error {
	if isPro {
		return g.ledger.ConsumeMonthly(userID, now)
	}
	return g.ledger.ConsumeDaily(userID, now)
}

// Snapshot returns the read-only usage aggregate for display.
func (g *AllowanceGuard) Snapshot(userID uuid.UUID, isPro bool, now time.Time) (*UsageSnapshot, error) {
	return g.ledger.Snapshot(userID, isPro, now)
}
