package models

import (
	"time"

	"gorm.io/gorm"
)

type LogStatus string

const (
	LogPending  LogStatus = "pending"
	LogApproved LogStatus = "approved"
	LogRejected LogStatus = "rejected"
)

// ManualLog is a retroactively reported block of hours. Every log is created
// pending and reviewed exactly once by an admin, who stamps ReviewedBy and
// ReviewedAt.
type ManualLog struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	User            *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Date            time.Time      `gorm:"not null;type:date" json:"date"`
	DurationMinutes float64        `gorm:"not null" json:"duration_minutes"`
	Description     string         `gorm:"size:500" json:"description"`
	Category        Category       `gorm:"not null;size:50" json:"category"`
	Status          LogStatus      `gorm:"not null;size:20;index" json:"status"`
	ReviewedBy      *uint          `json:"reviewed_by"`
	Reviewer        *User          `gorm:"foreignKey:ReviewedBy" json:"reviewer,omitempty"`
	ReviewedAt      *time.Time     `json:"reviewed_at"`
}

func (l *ManualLog) IsPending() bool {
	return l.Status == LogPending
}
