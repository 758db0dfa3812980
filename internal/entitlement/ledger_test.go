package entitlement

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/chatlens/chatlens-backend/internal/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
		TranslateError:         true,
	})
	require.NoError(t, err)
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		FreeMaxConversations: 5,
		FreeDailySubmissions: 3,
		ProMonthlyCredits:    200,
		ProDurationDays:      30,
	}
}

func TestConsumeDailyIncrementsBelowCeiling(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := NewUsageLedger(db, testConfig())
	userID := uuid.New()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE "daily_usages" SET "submission_count"=submission_count \+ 1`).
		WithArgs(userID, "2026-03-10", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := ledger.ConsumeDaily(userID, now)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeDailyCreatesRowOnFirstUse(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := NewUsageLedger(db, testConfig())
	userID := uuid.New()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE "daily_usages"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT .* FROM "daily_usages"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "daily_usages"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))

	err := ledger.ConsumeDaily(userID, now)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeDailyFailsAtCeilingWithoutMutation(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := NewUsageLedger(db, testConfig())
	userID := uuid.New()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE "daily_usages"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT .* FROM "daily_usages"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "usage_date", "submission_count"}).
			AddRow(uuid.New(), userID, "2026-03-10", 3))

	err := ledger.ConsumeDaily(userID, now)

	var limitErr *SubmissionLimitError
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, 3, limitErr.Limit)
	assert.Equal(t, 3, limitErr.Used)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), limitErr.ResetsAt)
	assert.Equal(t, CodeSubmissionLimit, limitErr.Code())
	// No INSERT or further UPDATE was attempted.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeDailyNewDayStartsFresh(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := NewUsageLedger(db, testConfig())
	userID := uuid.New()

	// Yesterday's row is irrelevant: the new UTC day keys a new row.
	now := time.Date(2026, 3, 11, 0, 0, 1, 0, time.UTC)

	mock.ExpectExec(`UPDATE "daily_usages"`).
		WithArgs(userID, "2026-03-11", 3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT .* FROM "daily_usages"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "daily_usages"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))

	err := ledger.ConsumeDaily(userID, now)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeMonthlySucceedsAtTheLastCredit(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := NewUsageLedger(db, testConfig())
	userID := uuid.New()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// creditsUsed=199 with cap 200: the conditional update still matches.
	mock.ExpectExec(`UPDATE "monthly_credits" SET "credits_used"=credits_used \+ 1`).
		WithArgs(userID, "2026-03", 200).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := ledger.ConsumeMonthly(userID, now)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeMonthlyFailsAtCeiling(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := NewUsageLedger(db, testConfig())
	userID := uuid.New()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE "monthly_credits"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT .* FROM "monthly_credits"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "usage_month", "credits_used"}).
			AddRow(uuid.New(), userID, "2026-03", 200))

	err := ledger.ConsumeMonthly(userID, now)

	var limitErr *CreditLimitError
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, 200, limitErr.Limit)
	assert.Equal(t, 200, limitErr.Used)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), limitErr.ResetsAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDailyCountMissingRowIsZero(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := NewUsageLedger(db, testConfig())

	mock.ExpectQuery(`SELECT .* FROM "daily_usages"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	count, err := ledger.DailyCount(uuid.New(), time.Now().UTC())
	assert.NoError(t, err)
	assert.Equal(t, 0, count)
}
