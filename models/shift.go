package models

import (
	"time"

	"gorm.io/gorm"
)

type ShiftStatus string

const (
	ShiftActive    ShiftStatus = "active"
	ShiftCompleted ShiftStatus = "completed"
)

type Category string

const (
	CategoryTutoring         Category = "tutoring"
	CategoryMentoring        Category = "mentoring"
	CategoryCommunityService Category = "community_service"
	CategoryOfficeWork       Category = "office_work"
	CategoryEventSupport     Category = "event_support"
	CategoryOther            Category = "other"
)

// Categories lists every valid work category, in display order.
var Categories = []Category{
	CategoryTutoring,
	CategoryMentoring,
	CategoryCommunityService,
	CategoryOfficeWork,
	CategoryEventSupport,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Shift is one clocked block of volunteer work. EndTime and DurationMinutes
// stay nil while the shift is active; both are filled in by the store when
// the shift is checked out.
type Shift struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	User            *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Category        Category       `gorm:"not null;size:50" json:"category"`
	Description     string         `gorm:"size:500" json:"description"`
	StartTime       time.Time      `gorm:"not null" json:"start_time"`
	EndTime         *time.Time     `json:"end_time"`
	Status          ShiftStatus    `gorm:"not null;size:20;index" json:"status"`
	DurationMinutes *float64       `json:"duration_minutes"`
}

func (s *Shift) IsActive() bool {
	return s.Status == ShiftActive
}
