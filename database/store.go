package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Benru1503/kazzaz-hours-log/models"
	"github.com/Benru1503/kazzaz-hours-log/shiftlogic"
)

// Store implements shiftlogic.Store on GORM/Postgres.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ shiftlogic.Store = (*Store)(nil)

func (s *Store) ActiveShift(ctx context.Context, userID uint) (*models.Shift, error) {
	var shift models.Shift
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.ShiftActive).
		First(&shift).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (s *Store) CreateShift(ctx context.Context, shift *models.Shift) error {
	err := s.db.WithContext(ctx).Create(shift).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// The partial unique index on (user_id) WHERE status = 'active'
		// fired: the user raced a second check-in past the precondition
		// read.
		return shiftlogic.ErrActiveShiftExists
	}
	return err
}

// CompleteShift stamps the end time and lets the database compute the
// duration from its own timestamps, so the figure the caller gets back is
// the stored one, not a client-side recomputation. The update is scoped to
// the owning user; a shift belonging to someone else reports not found.
func (s *Store) CompleteShift(ctx context.Context, shiftID, userID uint, endTime time.Time) (*models.Shift, error) {
	result := s.db.WithContext(ctx).Model(&models.Shift{}).
		Where("id = ? AND user_id = ?", shiftID, userID).
		Updates(map[string]interface{}{
			"status":           models.ShiftCompleted,
			"end_time":         endTime,
			"duration_minutes": gorm.Expr("EXTRACT(EPOCH FROM (?::timestamptz - start_time)) / 60", endTime),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, &shiftlogic.NotFoundError{Kind: "shift", ID: shiftID}
	}

	var shift models.Shift
	if err := s.db.WithContext(ctx).First(&shift, shiftID).Error; err != nil {
		return nil, err
	}
	return &shift, nil
}

func (s *Store) ShiftsByUser(ctx context.Context, userID uint) ([]models.Shift, error) {
	shifts := make([]models.Shift, 0)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_time desc").
		Find(&shifts).Error
	if err != nil {
		return nil, err
	}
	return shifts, nil
}

func (s *Store) CreateManualLog(ctx context.Context, log *models.ManualLog) error {
	return s.db.WithContext(ctx).Create(log).Error
}

func (s *Store) ManualLogsByUser(ctx context.Context, userID uint) ([]models.ManualLog, error) {
	logs := make([]models.ManualLog, 0)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *Store) ReviewManualLog(ctx context.Context, logID uint, status models.LogStatus, adminID uint, reviewedAt time.Time) (*models.ManualLog, error) {
	result := s.db.WithContext(ctx).Model(&models.ManualLog{}).
		Where("id = ?", logID).
		Updates(map[string]interface{}{
			"status":      status,
			"reviewed_by": adminID,
			"reviewed_at": reviewedAt,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, &shiftlogic.NotFoundError{Kind: "manual log", ID: logID}
	}

	var log models.ManualLog
	if err := s.db.WithContext(ctx).First(&log, logID).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

// StudentSummaries runs the cross-student aggregate in one query. The
// per-stream duration filters mirror shiftlogic.CalculateProgress.
func (s *Store) StudentSummaries(ctx context.Context) ([]models.StudentSummary, error) {
	summaries := make([]models.StudentSummary, 0)
	err := s.db.WithContext(ctx).Raw(`
		SELECT u.id AS student_id,
		       u.full_name,
		       u.hour_goal AS total_goal,
		       COALESCE(sh.shift_minutes, 0) / 60 AS shift_hours,
		       COALESCE(ml.approved_minutes, 0) / 60 AS approved_manual_hours,
		       COALESCE(ml.pending_logs, 0) AS pending_logs,
		       (COALESCE(sh.shift_minutes, 0) + COALESCE(ml.approved_minutes, 0)) / 60 AS total_hours,
		       LEAST(COALESCE((COALESCE(sh.shift_minutes, 0) + COALESCE(ml.approved_minutes, 0)) / 60 / NULLIF(u.hour_goal, 0) * 100, 0), 100) AS progress_percent
		FROM users u
		LEFT JOIN (
			SELECT user_id, SUM(duration_minutes) AS shift_minutes
			FROM shifts
			WHERE status = 'completed'
			  AND duration_minutes IS NOT NULL AND duration_minutes <> 0
			  AND deleted_at IS NULL
			GROUP BY user_id
		) sh ON sh.user_id = u.id
		LEFT JOIN (
			SELECT user_id,
			       SUM(duration_minutes) FILTER (WHERE status = 'approved' AND duration_minutes <> 0) AS approved_minutes,
			       COUNT(*) FILTER (WHERE status = 'pending') AS pending_logs
			FROM manual_logs
			WHERE deleted_at IS NULL
			GROUP BY user_id
		) ml ON ml.user_id = u.id
		WHERE u.role = ? AND u.deleted_at IS NULL
		ORDER BY u.full_name ASC
	`, models.RoleStudent).Scan(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

func (s *Store) PendingLogs(ctx context.Context) ([]models.PendingLogRow, error) {
	logs := make([]models.ManualLog, 0)
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("status = ?", models.LogPending).
		Order("created_at asc").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}

	rows := make([]models.PendingLogRow, 0, len(logs))
	for _, log := range logs {
		name := "unknown"
		if log.User != nil && log.User.DisplayName() != "" {
			name = log.User.DisplayName()
		}
		rows = append(rows, models.PendingLogRow{ManualLog: log, UserName: name})
	}
	return rows, nil
}
