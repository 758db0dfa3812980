package entitlement

import (
	"time"

	"github.com/google/uuid"
)

// UsageSnapshot aggregates a user's current usage across every metered
// dimension. Fields for dimensions that do not apply to the user's plan stay
// nil. Read-only; building a snapshot never mutates counters.
type UsageSnapshot struct {
	ConversationLimit *int       `json:"conversation_limit"`
	ConversationsUsed *int       `json:"conversations_used"`
	SubmissionsLimit  *int       `json:"submissions_limit"`
	SubmissionsUsed   *int       `json:"submissions_used"`
	ResetsAt          *time.Time `json:"resets_at"`
	CreditLimit       *int       `json:"credit_limit"`
	CreditsUsed       *int       `json:"credits_used"`
	CreditResetsAt    *time.Time `json:"credit_resets_at"`
}

// Snapshot assembles the usage view for a user. Free users see conversation
// and daily-submission dimensions; pro users see monthly credits.
func (l *UsageLedger) Snapshot(userID uuid.UUID, isPro bool, now time.Time) (*UsageSnapshot, error) {
	snap := &UsageSnapshot{}

	if isPro {
		used, err := l.MonthlyCount(userID, now)
		if err != nil {
			return nil, err
		}
		limit := l.cfg.ProMonthlyCredits
		resets := NextMonthStart(now)
		snap.CreditLimit = &limit
		snap.CreditsUsed = &used
		snap.CreditResetsAt = &resets
		return snap, nil
	}

	convUsed, err := l.ConversationCount(userID)
	if err != nil {
		return nil, err
	}
	subUsed, err := l.DailyCount(userID, now)
	if err != nil {
		return nil, err
	}
	convLimit := l.cfg.FreeMaxConversations
	subLimit := l.cfg.FreeDailySubmissions
	resets := NextMidnight(now)
	snap.ConversationLimit = &convLimit
	snap.ConversationsUsed = &convUsed
	snap.SubmissionsLimit = &subLimit
	snap.SubmissionsUsed = &subUsed
	snap.ResetsAt = &resets
	return snap, nil
}
