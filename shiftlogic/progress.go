package shiftlogic

import (
	"context"

	"github.com/Benru1503/kazzaz-hours-log/models"
)

// CalculateProgress computes a fresh progress snapshot for the user from
// their full shift and manual-log history. A goal of zero or less falls back
// to the program default. If either fetch fails the whole computation fails;
// there is no partial result.
//
// Completed shifts with a missing or zero duration are dropped from the sum
// rather than counted as zero, and the same filter applies to approved
// manual logs so a bad duration in either stream cannot poison the total.
func (s *Service) CalculateProgress(ctx context.Context, userID uint, goal float64) (*models.ProgressSnapshot, error) {
	if goal <= 0 {
		goal = models.DefaultHourGoal
	}

	shifts, err := s.store.ShiftsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	logs, err := s.store.ManualLogsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var shiftMinutes float64
	for _, shift := range shifts {
		if shift.Status != models.ShiftCompleted {
			continue
		}
		if shift.DurationMinutes == nil || *shift.DurationMinutes == 0 {
			continue
		}
		shiftMinutes += *shift.DurationMinutes
	}

	var approvedMinutes float64
	pending := 0
	for _, log := range logs {
		switch log.Status {
		case models.LogApproved:
			if log.DurationMinutes != 0 {
				approvedMinutes += log.DurationMinutes
			}
		case models.LogPending:
			pending++
		}
	}

	totalHours := (shiftMinutes + approvedMinutes) / 60
	percent := totalHours / goal * 100
	if percent > 100 {
		percent = 100
	}

	return &models.ProgressSnapshot{
		ShiftHours:          shiftMinutes / 60,
		ApprovedManualHours: approvedMinutes / 60,
		TotalHours:          totalHours,
		ProgressPercent:     percent,
		PendingLogs:         pending,
		Goal:                goal,
	}, nil
}
