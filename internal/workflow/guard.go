// Package workflow validates and augments application writes before they
// are persisted. It owns the status transition rules: a review note is
// required to approve or reject, and submitted_at is stamped exactly once
// when an application first enters submitted.
package workflow

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/iskolarhub/iskolar-api/internal/models"
)

// FieldError is a validation failure tied to a single named field. The
// handler layer maps it to a 422 response carrying the field name.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Change is a proposed set of application field updates. Nil fields are
// left untouched; non-nil fields overwrite the current value.
type Change struct {
	Status          *string
	ApplicationData datatypes.JSONMap
	CommitteeNotes  *string
	SubmittedAt     *time.Time
	ReviewedAt      *time.Time
	ReviewedBy      *uint
	Score           *float64
}

// Apply merges the change into the current record and enforces the
// transition rules. It returns the augmented record, or a FieldError when
// the resulting state is invalid. The current record is not modified.
//
// reviewed_at and reviewed_by are caller-supplied and never derived here.
func Apply(current models.Application, change Change, now time.Time) (models.Application, error) {
	result := current

	if change.Status != nil {
		if !models.IsValidStatus(*change.Status) {
			return models.Application{}, &FieldError{Field: "status", Message: fmt.Sprintf("unknown status %q", *change.Status)}
		}
		result.Status = *change.Status
	}
	if change.ApplicationData != nil {
		result.ApplicationData = change.ApplicationData
	}
	if change.CommitteeNotes != nil {
		result.CommitteeNotes = *change.CommitteeNotes
	}
	if change.SubmittedAt != nil {
		result.SubmittedAt = change.SubmittedAt
	}
	if change.ReviewedAt != nil {
		result.ReviewedAt = change.ReviewedAt
	}
	if change.ReviewedBy != nil {
		result.ReviewedBy = change.ReviewedBy
	}
	if change.Score != nil {
		result.Score = change.Score
	}

	// First entry into submitted stamps the timestamp, unless the caller
	// supplied one explicitly. Resubmitting never moves it.
	if result.Status == models.StatusSubmitted && current.SubmittedAt == nil && change.SubmittedAt == nil {
		stamp := now
		result.SubmittedAt = &stamp
	}

	// The requirement applies to the resulting note, not just the delta: a
	// previously recorded note satisfies it.
	if result.Status == models.StatusApproved || result.Status == models.StatusRejected {
		if strings.TrimSpace(result.CommitteeNotes) == "" {
			return models.Application{}, &FieldError{
				Field:   "committee_notes",
				Message: "a short review note is required when approving or rejecting",
			}
		}
	}

	return result, nil
}
