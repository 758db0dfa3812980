package entitlement

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/chatlens/chatlens-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureConversationAllowanceProIsUnlimited(t *testing.T) {
	db, mock := newMockDB(t)
	guard := NewAllowanceGuard(db, testConfig())

	// No queries at all for pro users.
	err := guard.EnsureConversationAllowance(uuid.New(), true)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureConversationAllowanceUnderLimit(t *testing.T) {
	db, mock := newMockDB(t)
	guard := NewAllowanceGuard(db, testConfig())

	mock.ExpectQuery(`SELECT count\(\*\) FROM "conversations"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	err := guard.EnsureConversationAllowance(uuid.New(), false)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureConversationAllowanceAtLimit(t *testing.T) {
	db, mock := newMockDB(t)
	guard := NewAllowanceGuard(db, testConfig())

	mock.ExpectQuery(`SELECT count\(\*\) FROM "conversations"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	err := guard.EnsureConversationAllowance(uuid.New(), false)

	var limitErr *ConversationLimitError
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, 5, limitErr.Limit)
	assert.Equal(t, 5, limitErr.Used)
	assert.Equal(t, CodeConversationLimit, limitErr.Code())
}

func TestEffectivePlanPersistsLazyDowngrade(t *testing.T) {
	db, mock := newMockDB(t)
	guard := NewAllowanceGuard(db, testConfig())

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	expired := now.Add(-48 * time.Hour)
	user := &models.User{ID: uuid.New(), Plan: models.PlanPro, PlanExpiresAt: &expired}

	// Conditional on plan = 'pro' so racing downgrades are idempotent.
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	eff, err := guard.EffectivePlan(user, now)
	require.NoError(t, err)
	assert.False(t, eff.IsPro)
	assert.Equal(t, models.PlanFree, eff.Plan)
	assert.Equal(t, models.PlanFree, user.Plan)
	assert.Nil(t, user.PlanExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEffectivePlanActiveProDoesNotWrite(t *testing.T) {
	db, mock := newMockDB(t)
	guard := NewAllowanceGuard(db, testConfig())

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	exp := now.Add(10 * 24 * time.Hour)
	user := &models.User{ID: uuid.New(), Plan: models.PlanPro, PlanExpiresAt: &exp}

	eff, err := guard.EffectivePlan(user, now)
	require.NoError(t, err)
	assert.True(t, eff.IsPro)
	assert.Equal(t, models.PlanPro, user.Plan)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotFreeUser(t *testing.T) {
	db, mock := newMockDB(t)
	guard := NewAllowanceGuard(db, testConfig())
	userID := uuid.New()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "conversations"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT .* FROM "daily_usages"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "usage_date", "submission_count"}).
			AddRow(uuid.New(), userID, "2026-03-10", 1))

	snap, err := guard.Snapshot(userID, false, now)
	require.NoError(t, err)

	require.NotNil(t, snap.ConversationLimit)
	assert.Equal(t, 5, *snap.ConversationLimit)
	require.NotNil(t, snap.ConversationsUsed)
	assert.Equal(t, 2, *snap.ConversationsUsed)
	require.NotNil(t, snap.SubmissionsUsed)
	assert.Equal(t, 1, *snap.SubmissionsUsed)
	require.NotNil(t, snap.ResetsAt)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), *snap.ResetsAt)

	// Pro dimensions stay null for free users.
	assert.Nil(t, snap.CreditLimit)
	assert.Nil(t, snap.CreditsUsed)
	assert.Nil(t, snap.CreditResetsAt)
}

func TestSnapshotProUser(t *testing.T) {
	db, mock := newMockDB(t)
	guard := NewAllowanceGuard(db, testConfig())
	userID := uuid.New()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM "monthly_credits"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "usage_month", "credits_used"}).
			AddRow(uuid.New(), userID, "2026-03", 42))

	snap, err := guard.Snapshot(userID, true, now)
	require.NoError(t, err)

	require.NotNil(t, snap.CreditLimit)
	assert.Equal(t, 200, *snap.CreditLimit)
	require.NotNil(t, snap.CreditsUsed)
	assert.Equal(t, 42, *snap.CreditsUsed)
	require.NotNil(t, snap.CreditResetsAt)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), *snap.CreditResetsAt)

	// Free dimensions stay null for pro users.
	assert.Nil(t, snap.ConversationLimit)
	assert.Nil(t, snap.SubmissionsLimit)
	assert.Nil(t, snap.ResetsAt)
}
