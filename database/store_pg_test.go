//go:build integration

package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Benru1503/kazzaz-hours-log/models"
	"github.com/Benru1503/kazzaz-hours-log/shiftlogic"
)

// newPostgresStore opens the database named by TEST_DATABASE_URL, migrates
// the schema, and wipes all rows. These tests cover the store paths that
// run Postgres-only SQL and are skipped by the sqlite harness.
func newPostgresStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Shift{}, &models.ManualLog{}, &models.Invite{}))
	require.NoError(t, db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_shifts_one_active_per_user
		 ON shifts (user_id) WHERE status = 'active' AND deleted_at IS NULL`,
	).Error)
	require.NoError(t, db.Exec(`TRUNCATE users, shifts, manual_logs, invites RESTART IDENTITY CASCADE`).Error)

	return NewStore(db)
}

func createStudent(t *testing.T, store *Store, username, fullName string, goal float64) models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		FullName:     fullName,
		PasswordHash: "x",
		Role:         models.RoleStudent,
		HourGoal:     goal,
	}
	require.NoError(t, store.db.Create(&user).Error)
	if goal <= 0 {
		require.NoError(t, store.db.Model(&user).UpdateColumn("hour_goal", goal).Error)
	}
	return user
}

func TestCompleteShiftComputesDurationPostgres(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()

	dana := createStudent(t, store, "dana", "Dana Levi", 150)

	start := time.Now().UTC().Add(-90 * time.Minute)
	shift := &models.Shift{UserID: dana.ID, Category: models.CategoryTutoring, Description: "math help", StartTime: start, Status: models.ShiftActive}
	require.NoError(t, store.CreateShift(ctx, shift))

	got, err := store.CompleteShift(ctx, shift.ID, dana.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, models.ShiftCompleted, got.Status)
	require.NotNil(t, got.EndTime)
	require.NotNil(t, got.DurationMinutes)
	assert.InDelta(t, 90, *got.DurationMinutes, 1)
}

func TestCompleteShiftScopedToOwnerPostgres(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()

	dana := createStudent(t, store, "dana", "Dana Levi", 150)
	lior := createStudent(t, store, "lior", "Lior Katz", 150)

	shift := &models.Shift{UserID: dana.ID, Category: models.CategoryTutoring, Description: "math help", StartTime: time.Now().UTC().Add(-time.Hour), Status: models.ShiftActive}
	require.NoError(t, store.CreateShift(ctx, shift))

	_, err := store.CompleteShift(ctx, shift.ID, lior.ID, time.Now().UTC())
	var notFound *shiftlogic.NotFoundError
	require.ErrorAs(t, err, &notFound)

	// Dana's shift is still active and untouched.
	active, err := store.ActiveShift(ctx, dana.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, shift.ID, active.ID)
	assert.Nil(t, active.EndTime)
}

func TestStudentSummariesPostgres(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()

	dana := createStudent(t, store, "dana", "Dana Levi", 150)
	lior := createStudent(t, store, "lior", "Lior Katz", 100)
	noam := createStudent(t, store, "noam", "Noam Bar", 0)

	// Admins never appear in the summary.
	admin := models.User{Username: "admin2", FullName: "Administrator", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, store.db.Create(&admin).Error)

	completed := func(userID uint, minutes *float64) models.Shift {
		return models.Shift{
			UserID:          userID,
			Category:        models.CategoryTutoring,
			Description:     "work",
			StartTime:       time.Now().UTC().Add(-5 * time.Hour),
			Status:          models.ShiftCompleted,
			DurationMinutes: minutes,
		}
	}
	mins := func(m float64) *float64 { return &m }

	require.NoError(t, store.db.Create(&[]models.Shift{
		completed(dana.ID, mins(120)),
		completed(dana.ID, mins(180)),
		completed(dana.ID, nil), // missing duration, dropped from the sum
		completed(lior.ID, mins(10000)),
		completed(noam.ID, mins(60)),
	}).Error)

	require.NoError(t, store.db.Create(&[]models.ManualLog{
		{UserID: dana.ID, Date: time.Now().UTC(), DurationMinutes: 60, Description: "x", Category: models.CategoryOther, Status: models.LogApproved},
		{UserID: dana.ID, Date: time.Now().UTC(), DurationMinutes: 120, Description: "x", Category: models.CategoryOther, Status: models.LogPending},
		{UserID: dana.ID, Date: time.Now().UTC(), DurationMinutes: 90, Description: "x", Category: models.CategoryOther, Status: models.LogRejected},
	}).Error)

	summaries, err := store.StudentSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	// Ordered by full name.
	assert.Equal(t, "Dana Levi", summaries[0].FullName)
	assert.Equal(t, "Lior Katz", summaries[1].FullName)
	assert.Equal(t, "Noam Bar", summaries[2].FullName)

	danaRow := summaries[0]
	assert.Equal(t, 5.0, danaRow.ShiftHours)
	assert.Equal(t, 1.0, danaRow.ApprovedManualHours)
	assert.Equal(t, 6.0, danaRow.TotalHours)
	assert.Equal(t, 1, danaRow.PendingLogs)
	assert.InDelta(t, 4.0, danaRow.ProgressPercent, 0.001)

	liorRow := summaries[1]
	assert.Greater(t, liorRow.TotalHours, 100.0)
	assert.Equal(t, 100.0, liorRow.ProgressPercent, "percent is clamped at the goal")

	// A zero goal reports zero progress even with hours banked, not a
	// division error or a full bar.
	noamRow := summaries[2]
	assert.Equal(t, 1.0, noamRow.TotalHours)
	assert.Equal(t, 0.0, noamRow.ProgressPercent)
}
