package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Application status values.
const (
	StatusDraft       = "draft"
	StatusSubmitted   = "submitted"
	StatusUnderReview = "under_review"
	StatusApproved    = "approved"
	StatusRejected    = "rejected"
)

// ApplicationStatuses enumerates every status in display order. Reporting
// buckets are zero-filled over this list.
var ApplicationStatuses = []string{
	StatusDraft,
	StatusSubmitted,
	StatusUnderReview,
	StatusApproved,
	StatusRejected,
}

// Application represents a student's application to a scholarship program.
// A user has at most one application per program.
type Application struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	ScholarshipID   uint              `gorm:"not null;uniqueIndex:idx_applications_scholarship_user" json:"scholarship_id"`
	UserID          uint              `gorm:"not null;uniqueIndex:idx_applications_scholarship_user" json:"user_id"`
	ApplicationData datatypes.JSONMap `gorm:"type:json" json:"application_data"`
	Status          string            `gorm:"size:32;not null;default:draft" json:"status"`
	CommitteeNotes  string            `gorm:"type:text" json:"committee_notes"`
	SubmittedAt     *time.Time        `json:"submitted_at"`
	ReviewedAt      *time.Time        `json:"reviewed_at"`
	ReviewedBy      *uint             `json:"reviewed_by"`
	Score           *float64          `json:"score"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	DeletedAt       gorm.DeletedAt    `gorm:"index" json:"-"`
	Scholarship     Scholarship       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"scholarship,omitempty"`
	User            User              `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"`
	Documents       []Document        `json:"documents,omitempty"`
}

// IsValidStatus reports whether the given value is a known status.
func IsValidStatus(status string) bool {
	for _, s := range ApplicationStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsSubmitted reports whether the application has left draft.
func (a Application) IsSubmitted() bool {
	switch a.Status {
	case StatusSubmitted, StatusUnderReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CanBeEdited reports whether the applicant may still change the form.
func (a Application) CanBeEdited() bool {
	return a.Status == StatusDraft
}

// IsApproved reports whether the application has been approved.
func (a Application) IsApproved() bool {
	return a.Status == StatusApproved
}
