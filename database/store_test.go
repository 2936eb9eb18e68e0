package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Benru1503/kazzaz-hours-log/models"
	"github.com/Benru1503/kazzaz-hours-log/shiftlogic"
)

// newTestStore opens an in-memory sqlite database with the same schema,
// including the one-active-shift-per-user partial index. Postgres-specific
// paths (checkout duration SQL, the summary aggregate) are not covered here.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Shift{}, &models.ManualLog{}, &models.Invite{}))
	require.NoError(t, db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_shifts_one_active_per_user
		 ON shifts (user_id) WHERE status = 'active' AND deleted_at IS NULL`,
	).Error)

	return NewStore(db)
}

func TestActiveShiftNoneIsNil(t *testing.T) {
	store := newTestStore(t)

	shift, err := store.ActiveShift(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, shift)
}

func TestActiveShiftReturnsOnlyActive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	completed := &models.Shift{UserID: 1, Category: models.CategoryTutoring, Description: "done", StartTime: time.Now().UTC().Add(-3 * time.Hour), Status: models.ShiftCompleted}
	require.NoError(t, store.CreateShift(ctx, completed))

	active := &models.Shift{UserID: 1, Category: models.CategoryMentoring, Description: "ongoing", StartTime: time.Now().UTC(), Status: models.ShiftActive}
	require.NoError(t, store.CreateShift(ctx, active))

	got, err := store.ActiveShift(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, active.ID, got.ID)
}

func TestCreateShiftSecondActiveIsRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := &models.Shift{UserID: 1, Category: models.CategoryTutoring, Description: "first", StartTime: time.Now().UTC(), Status: models.ShiftActive}
	require.NoError(t, store.CreateShift(ctx, first))

	second := &models.Shift{UserID: 1, Category: models.CategoryTutoring, Description: "second", StartTime: time.Now().UTC(), Status: models.ShiftActive}
	err := store.CreateShift(ctx, second)
	require.ErrorIs(t, err, shiftlogic.ErrActiveShiftExists)

	// A different user is unaffected.
	other := &models.Shift{UserID: 2, Category: models.CategoryTutoring, Description: "other", StartTime: time.Now().UTC(), Status: models.ShiftActive}
	require.NoError(t, store.CreateShift(ctx, other))
}

func TestShiftsByUserEmptyAndOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	shifts, err := store.ShiftsByUser(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, shifts)
	assert.Empty(t, shifts)

	older := &models.Shift{UserID: 1, Category: models.CategoryTutoring, Description: "older", StartTime: time.Now().UTC().Add(-2 * time.Hour), Status: models.ShiftCompleted}
	newer := &models.Shift{UserID: 1, Category: models.CategoryTutoring, Description: "newer", StartTime: time.Now().UTC(), Status: models.ShiftActive}
	require.NoError(t, store.CreateShift(ctx, older))
	require.NoError(t, store.CreateShift(ctx, newer))

	shifts, err = store.ShiftsByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, shifts, 2)
	assert.Equal(t, "newer", shifts[0].Description)
	assert.Equal(t, "older", shifts[1].Description)
}

func TestManualLogsByUserOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	logs, err := store.ManualLogsByUser(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, logs)
	assert.Empty(t, logs)

	older := &models.ManualLog{UserID: 1, Date: time.Now().UTC(), DurationMinutes: 60, Description: "older", Category: models.CategoryOther, Status: models.LogPending}
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := &models.ManualLog{UserID: 1, Date: time.Now().UTC(), DurationMinutes: 30, Description: "newer", Category: models.CategoryOther, Status: models.LogPending}
	newer.CreatedAt = time.Now().UTC()
	require.NoError(t, store.CreateManualLog(ctx, older))
	require.NoError(t, store.CreateManualLog(ctx, newer))

	logs, err = store.ManualLogsByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "newer", logs[0].Description)
	assert.Equal(t, "older", logs[1].Description)
}

func TestReviewManualLog(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	log := &models.ManualLog{UserID: 1, Date: time.Now().UTC(), DurationMinutes: 60, Description: "help", Category: models.CategoryOther, Status: models.LogPending}
	require.NoError(t, store.CreateManualLog(ctx, log))

	reviewedAt := time.Now().UTC().Truncate(time.Second)
	got, err := store.ReviewManualLog(ctx, log.ID, models.LogApproved, 9, reviewedAt)
	require.NoError(t, err)
	assert.Equal(t, models.LogApproved, got.Status)
	require.NotNil(t, got.ReviewedBy)
	assert.Equal(t, uint(9), *got.ReviewedBy)
	require.NotNil(t, got.ReviewedAt)
}

func TestReviewManualLogNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.ReviewManualLog(context.Background(), 42, models.LogApproved, 9, time.Now().UTC())
	var notFound *shiftlogic.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, uint(42), notFound.ID)
}

func TestPendingLogsJoinAndFallback(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.db.Create(&models.User{
		Username:     "dana",
		FullName:     "Dana Levi",
		PasswordHash: "x",
		Role:         models.RoleStudent,
	}).Error)
	var dana models.User
	require.NoError(t, store.db.Where("username = ?", "dana").First(&dana).Error)

	known := &models.ManualLog{UserID: dana.ID, Date: time.Now().UTC(), DurationMinutes: 60, Description: "known", Category: models.CategoryOther, Status: models.LogPending}
	known.CreatedAt = time.Now().UTC().Add(-time.Hour)
	orphan := &models.ManualLog{UserID: 999, Date: time.Now().UTC(), DurationMinutes: 30, Description: "orphan", Category: models.CategoryOther, Status: models.LogPending}
	orphan.CreatedAt = time.Now().UTC()
	reviewed := &models.ManualLog{UserID: dana.ID, Date: time.Now().UTC(), DurationMinutes: 15, Description: "done", Category: models.CategoryOther, Status: models.LogApproved}
	require.NoError(t, store.CreateManualLog(ctx, known))
	require.NoError(t, store.CreateManualLog(ctx, orphan))
	require.NoError(t, store.CreateManualLog(ctx, reviewed))

	rows, err := store.PendingLogs(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2, "only pending logs appear")

	// Oldest first, and the orphaned log falls back to the placeholder.
	assert.Equal(t, "known", rows[0].Description)
	assert.Equal(t, "Dana Levi", rows[0].UserName)
	assert.Equal(t, "orphan", rows[1].Description)
	assert.Equal(t, "unknown", rows[1].UserName)
}

func TestPendingLogsEmptyIsNotNil(t *testing.T) {
	store := newTestStore(t)

	rows, err := store.PendingLogs(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rows)
	assert.Empty(t, rows)
}
