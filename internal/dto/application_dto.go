package dto

import (
	"time"

	"github.com/iskolarhub/iskolar-api/internal/models"
)

// ApplicationCreateRequest describes the payload for starting a draft.
type ApplicationCreateRequest struct {
	ScholarshipID   uint                   `json:"scholarship_id" validate:"required,gt=0"`
	ApplicationData map[string]interface{} `json:"application_data"`
}

// ApplicationUpdateRequest describes a partial application update,
// including status transitions.
type ApplicationUpdateRequest struct {
	Status          *string                `json:"status" validate:"omitempty,oneof=draft submitted under_review approved rejected"`
	ApplicationData map[string]interface{} `json:"application_data"`
	CommitteeNotes  *string                `json:"committee_notes"`
	SubmittedAt     *time.Time             `json:"submitted_at"`
	ReviewedAt      *time.Time             `json:"reviewed_at"`
	ReviewedBy      *uint                  `json:"reviewed_by" validate:"omitempty,gt=0"`
	Score           *float64               `json:"score" validate:"omitempty,gte=0,lte=100"`
}

// ApplicationFilter describes query string filters for listing applications.
type ApplicationFilter struct {
	ScholarshipID *uint   `query:"scholarship_id"`
	UserID        *uint   `query:"user_id"`
	Status        *string `query:"status" validate:"omitempty,oneof=draft submitted under_review approved rejected"`
	Deleted       bool    `query:"deleted"`
}

// ApplicationResponse is returned to API clients when viewing applications.
type ApplicationResponse struct {
	ID              uint                   `json:"id"`
	ScholarshipID   uint                   `json:"scholarship_id"`
	UserID          uint                   `json:"user_id"`
	ApplicationData map[string]interface{} `json:"application_data"`
	Status          string                 `json:"status"`
	CommitteeNotes  string                 `json:"committee_notes"`
	SubmittedAt     *time.Time             `json:"submitted_at"`
	ReviewedAt      *time.Time             `json:"reviewed_at"`
	ReviewedBy      *uint                  `json:"reviewed_by"`
	Score           *float64               `json:"score"`
	CanBeEdited     bool                   `json:"can_be_edited"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
	Scholarship     *ScholarshipLite       `json:"scholarship,omitempty"`
	Applicant       *UserLite              `json:"applicant,omitempty"`
	Documents       []DocumentResponse     `json:"documents,omitempty"`
}

// UserLite summarizes an applicant in application responses.
type UserLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewApplicationResponse converts an Application model into a DTO.
func NewApplicationResponse(model models.Application) ApplicationResponse {
	response := ApplicationResponse{
		ID:              model.ID,
		ScholarshipID:   model.ScholarshipID,
		UserID:          model.UserID,
		ApplicationData: model.ApplicationData,
		Status:          model.Status,
		CommitteeNotes:  model.CommitteeNotes,
		SubmittedAt:     model.SubmittedAt,
		ReviewedAt:      model.ReviewedAt,
		ReviewedBy:      model.ReviewedBy,
		Score:           model.Score,
		CanBeEdited:     model.CanBeEdited(),
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}

	if model.Scholarship.ID != 0 {
		response.Scholarship = &ScholarshipLite{
			ID:   model.Scholarship.ID,
			Name: model.Scholarship.Name,
			Slug: model.Scholarship.Slug,
		}
	}

	if model.User.ID != 0 {
		response.Applicant = &UserLite{
			ID:    model.User.ID,
			Name:  model.User.Name,
			Email: model.User.Email,
		}
	}

	if len(model.Documents) > 0 {
		response.Documents = NewDocumentResponseSlice(model.Documents)
	}

	return response
}

// NewApplicationResponseSlice converts a slice of models.
func NewApplicationResponseSlice(applications []models.Application) []ApplicationResponse {
	responses := make([]ApplicationResponse, 0, len(applications))
	for _, application := range applications {
		responses = append(responses, NewApplicationResponse(application))
	}
	return responses
}
