package entitlement

import (
	"time"

	"github.com/chatlens/chatlens-backend/internal/models"
)

// Effective is a user's plan after lazy expiry has been applied.
type Effective struct {
	Plan      string
	IsPro     bool
	ExpiresAt *time.Time
	// NeedsDowngrade is set when the stored row still says pro but the
	// expiry has passed. The caller decides when to persist the downgrade;
	// resolution itself never touches storage.
	NeedsDowngrade bool
}

// Resolve computes the effective plan from the stored plan fields. A pro plan
// with a nil expiry is a lifetime grant; a pro plan whose expiry has passed is
// effectively free no matter how long ago it expired.
func Resolve(rawPlan string, rawExpiry *time.Time, now time.Time) Effective {
	if rawPlan != models.PlanPro {
		return Effective{Plan: models.PlanFree}
	}
	if rawExpiry == nil {
		return Effective{Plan: models.PlanPro, IsPro: true}
	}
	if !rawExpiry.After(now) {
		return Effective{Plan: models.PlanFree, NeedsDowngrade: true}
	}
	exp := *rawExpiry
	return Effective{Plan: models.PlanPro, IsPro: true, ExpiresAt: &exp}
}
