package models

// ProgressSnapshot is the derived summary of one user's accumulated hours.
// It is computed on demand from shifts and manual logs and never stored.
type ProgressSnapshot struct {
	ShiftHours          float64 `json:"shift_hours"`
	ApprovedManualHours float64 `json:"approved_manual_hours"`
	TotalHours          float64 `json:"total_hours"`
	ProgressPercent     float64 `json:"progress_percent"`
	PendingLogs         int     `json:"pending_logs"`
	Goal                float64 `json:"goal"`
}

// StudentSummary is one row of the cross-student aggregation used by the
// admin overview. The figures come straight from the database-side
// aggregate; nothing is recomputed client-side.
type StudentSummary struct {
	StudentID           uint    `json:"student_id"`
	FullName            string  `json:"full_name"`
	TotalGoal           float64 `json:"total_goal"`
	ShiftHours          float64 `json:"shift_hours"`
	ApprovedManualHours float64 `json:"approved_manual_hours"`
	PendingLogs         int     `json:"pending_logs"`
	TotalHours          float64 `json:"total_hours"`
	ProgressPercent     float64 `json:"progress_percent"`
}

// PendingLogRow is a pending manual log joined with its submitter's display
// name for the review queue.
type PendingLogRow struct {
	ManualLog
	UserName string `json:"user_name"`
}
