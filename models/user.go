package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleStudent Role = "STUDENT"
)

// DefaultHourGoal is the scholarship hour target applied when a user has no
// explicit goal set.
const DefaultHourGoal = 150

type User struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
	Username           string         `gorm:"uniqueIndex;not null;size:100" json:"username"`
	FullName           string         `gorm:"not null;size:200" json:"full_name"`
	PasswordHash       string         `gorm:"not null" json:"-"`
	Role               Role           `gorm:"not null;size:20" json:"role"`
	HourGoal           float64        `gorm:"not null;default:150" json:"hour_goal"`
	MustChangePassword bool           `gorm:"default:true" json:"must_change_password"`
	Shifts             []Shift        `gorm:"foreignKey:UserID" json:"shifts,omitempty"`
	ManualLogs         []ManualLog    `gorm:"foreignKey:UserID" json:"manual_logs,omitempty"`
}

func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// Goal returns the user's hour goal, falling back to the program default
// when unset.
func (u *User) Goal() float64 {
	if u.HourGoal <= 0 {
		return DefaultHourGoal
	}
	return u.HourGoal
}

func (u *User) CanReviewLogs() bool {
	return u.IsAdmin()
}

func (u *User) CanViewAllStudents() bool {
	return u.IsAdmin()
}

func (u *User) CanCreateInvites() bool {
	return u.IsAdmin()
}
