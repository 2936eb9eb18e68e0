// Package shiftlogic implements the progress accounting rules of the
// scholarship hours program: the single-active-shift invariant, manual-log
// review, and the derived progress figures shown to students and admins.
//
// The package holds no state of its own. Every operation is a thin sequence
// of calls against a Store, so tests substitute an in-memory fake without a
// mocking framework.
package shiftlogic

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Benru1503/kazzaz-hours-log/models"
)

// ErrActiveShiftExists is returned by Store.CreateShift when the database
// rejects a second active shift for the same user. It backs the check-in
// precondition at the storage level, closing the read-then-write race.
var ErrActiveShiftExists = errors.New("active shift already exists")

// Store is the record-access collaborator. Lookups that can miss return
// (nil, nil) for an empty result and a *NotFoundError only when an explicit
// id does not resolve; list methods never return a nil slice.
type Store interface {
	ActiveShift(ctx context.Context, userID uint) (*models.Shift, error)
	CreateShift(ctx context.Context, shift *models.Shift) error
	CompleteShift(ctx context.Context, shiftID, userID uint, endTime time.Time) (*models.Shift, error)
	ShiftsByUser(ctx context.Context, userID uint) ([]models.Shift, error)

	CreateManualLog(ctx context.Context, log *models.ManualLog) error
	ManualLogsByUser(ctx context.Context, userID uint) ([]models.ManualLog, error)
	ReviewManualLog(ctx context.Context, logID uint, status models.LogStatus, adminID uint, reviewedAt time.Time) (*models.ManualLog, error)

	StudentSummaries(ctx context.Context) ([]models.StudentSummary, error)
	PendingLogs(ctx context.Context) ([]models.PendingLogRow, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// ActiveShift returns the caller's single active shift, or nil when they are
// not clocked in.
func (s *Service) ActiveShift(ctx context.Context, userID uint) (*models.Shift, error) {
	return s.store.ActiveShift(ctx, userID)
}

// CheckIn opens a new active shift for the user. It fails with a
// *ConflictError when the user already has one, either seen by the
// precondition read or reported by the store's uniqueness constraint.
func (s *Service) CheckIn(ctx context.Context, userID uint, category models.Category, description string) (*models.Shift, error) {
	if !category.Valid() {
		return nil, &ValidationError{Field: "category", Message: "unknown category"}
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, &ValidationError{Field: "description", Message: "must not be empty"}
	}

	active, err := s.store.ActiveShift(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, &ConflictError{Message: "an active shift already exists: check out before starting another"}
	}

	shift := &models.Shift{
		UserID:      userID,
		Category:    category,
		Description: description,
		StartTime:   time.Now().UTC(),
		Status:      models.ShiftActive,
	}
	if err := s.store.CreateShift(ctx, shift); err != nil {
		if errors.Is(err, ErrActiveShiftExists) {
			return nil, &ConflictError{Message: "an active shift already exists: check out before starting another"}
		}
		return nil, err
	}
	return shift, nil
}

// CheckOut closes the identified shift, stamping the end time now. The shift
// must belong to userID; the update is scoped to the owner, so another
// user's shift id reads as not found. The store computes the duration from
// its own timestamps; whatever it reports back is authoritative. Calling
// twice simply moves the end time: last checkout wins.
func (s *Service) CheckOut(ctx context.Context, shiftID, userID uint) (*models.Shift, error) {
	return s.store.CompleteShift(ctx, shiftID, userID, time.Now().UTC())
}

// Shifts returns every shift the user has recorded, newest start first.
func (s *Service) Shifts(ctx context.Context, userID uint) ([]models.Shift, error) {
	return s.store.ShiftsByUser(ctx, userID)
}

// ManualLogInput carries the caller-supplied fields of a manual log
// submission. There is deliberately no status field: submissions are always
// created pending.
type ManualLogInput struct {
	Date            time.Time
	DurationMinutes float64
	Description     string
	Category        models.Category
}

// SubmitManualLog records a retroactive hours claim for admin review.
func (s *Service) SubmitManualLog(ctx context.Context, userID uint, input ManualLogInput) (*models.ManualLog, error) {
	if !input.Category.Valid() {
		return nil, &ValidationError{Field: "category", Message: "unknown category"}
	}
	if input.DurationMinutes <= 0 {
		return nil, &ValidationError{Field: "duration_minutes", Message: "must be positive"}
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, &ValidationError{Field: "description", Message: "must not be empty"}
	}

	log := &models.ManualLog{
		UserID:          userID,
		Date:            input.Date,
		DurationMinutes: input.DurationMinutes,
		Description:     description,
		Category:        input.Category,
		Status:          models.LogPending,
	}
	if err := s.store.CreateManualLog(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

// ManualLogs returns every manual log the user has submitted, newest first.
func (s *Service) ManualLogs(ctx context.Context, userID uint) ([]models.ManualLog, error) {
	return s.store.ManualLogsByUser(ctx, userID)
}

// ApproveLog marks the log approved and stamps the reviewer and review time.
// A previously reviewed log is overwritten; admins may correct a mistaken
// review.
func (s *Service) ApproveLog(ctx context.Context, logID, adminID uint) (*models.ManualLog, error) {
	return s.store.ReviewManualLog(ctx, logID, models.LogApproved, adminID, time.Now().UTC())
}

// RejectLog marks the log rejected and stamps the reviewer and review time.
func (s *Service) RejectLog(ctx context.Context, logID, adminID uint) (*models.ManualLog, error) {
	return s.store.ReviewManualLog(ctx, logID, models.LogRejected, adminID, time.Now().UTC())
}

// AllStudentsSummary returns the database-side per-student aggregation
// verbatim. The aggregate query is the source of truth for the admin view;
// recomputing progress per student from here would cost one round-trip per
// row.
func (s *Service) AllStudentsSummary(ctx context.Context) ([]models.StudentSummary, error) {
	return s.store.StudentSummaries(ctx)
}

// AllPendingLogs returns every pending manual log across all students,
// oldest first, each joined with its submitter's display name.
func (s *Service) AllPendingLogs(ctx context.Context) ([]models.PendingLogRow, error) {
	return s.store.PendingLogs(ctx)
}
