package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Role values a user account may hold. Exactly one role per user.
const (
	RoleAdmin     = "admin"
	RoleCommittee = "committee"
	RoleStudent   = "student"
)

// User represents an account in the portal: administrators, committee
// reviewers, and student applicants.
type User struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	Name          string            `gorm:"size:255;not null" json:"name"`
	Email         string            `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash  string            `gorm:"size:255;not null" json:"-"`
	Role          string            `gorm:"size:32;not null;default:student" json:"role"`
	ScholarshipID *uint             `gorm:"index" json:"scholarship_id"`
	ProfileData   datatypes.JSONMap `gorm:"type:json" json:"profile_data"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	DeletedAt     gorm.DeletedAt    `gorm:"index" json:"-"`
	Scholarship   *Scholarship      `json:"scholarship,omitempty"`
	Applications  []Application     `json:"applications,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsCommittee reports whether the user is a committee reviewer.
func (u User) IsCommittee() bool {
	return u.Role == RoleCommittee
}

// IsStudent reports whether the user is a student applicant.
func (u User) IsStudent() bool {
	return u.Role == RoleStudent
}

// IsSuperAdmin reports whether the user is an admin with no scholarship
// affiliation, which grants unrestricted access across all programs.
func (u User) IsSuperAdmin() bool {
	return u.Role == RoleAdmin && u.ScholarshipID == nil
}
