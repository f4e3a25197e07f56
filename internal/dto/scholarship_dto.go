package dto

import (
	"time"

	"github.com/iskolarhub/iskolar-api/internal/models"
)

// ScholarshipCreateRequest describes the payload for creating a program.
type ScholarshipCreateRequest struct {
	Name                string                 `json:"name" validate:"required,min=2,max=255"`
	Slug                string                 `json:"slug" validate:"required,min=2,max=255"`
	Description         string                 `json:"description"`
	Type                string                 `json:"type" validate:"omitempty,max=64"`
	Settings            map[string]interface{} `json:"settings"`
	IsActive            *bool                  `json:"is_active"`
	ApplicationDeadline *time.Time             `json:"application_deadline"`
	StartDate           *time.Time             `json:"start_date"`
	EndDate             *time.Time             `json:"end_date"`
}

// ScholarshipUpdateRequest describes a partial program update.
type ScholarshipUpdateRequest struct {
	Name                *string                `json:"name" validate:"omitempty,min=2,max=255"`
	Slug                *string                `json:"slug" validate:"omitempty,min=2,max=255"`
	Description         *string                `json:"description"`
	Type                *string                `json:"type" validate:"omitempty,max=64"`
	Settings            map[string]interface{} `json:"settings"`
	IsActive            *bool                  `json:"is_active"`
	ApplicationDeadline *time.Time             `json:"application_deadline"`
	StartDate           *time.Time             `json:"start_date"`
	EndDate             *time.Time             `json:"end_date"`
}

// ScholarshipFilter describes query string filters for listing programs.
type ScholarshipFilter struct {
	Active  bool    `query:"active"`
	Type    *string `query:"type"`
	Deleted bool    `query:"deleted"`
}

// ScholarshipResponse is returned to API clients when viewing programs.
type ScholarshipResponse struct {
	ID                  uint                   `json:"id"`
	Name                string                 `json:"name"`
	Slug                string                 `json:"slug"`
	Description         string                 `json:"description"`
	Type                string                 `json:"type"`
	Settings            map[string]interface{} `json:"settings"`
	IsActive            bool                   `json:"is_active"`
	AcceptsApplications bool                   `json:"accepts_applications"`
	ApplicationDeadline *time.Time             `json:"application_deadline"`
	StartDate           *time.Time             `json:"start_date"`
	EndDate             *time.Time             `json:"end_date"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

// NewScholarshipResponse converts a Scholarship model into a DTO.
func NewScholarshipResponse(model models.Scholarship, reference time.Time) ScholarshipResponse {
	return ScholarshipResponse{
		ID:                  model.ID,
		Name:                model.Name,
		Slug:                model.Slug,
		Description:         model.Description,
		Type:                model.Type,
		Settings:            model.Settings,
		IsActive:            model.IsActive,
		AcceptsApplications: model.AcceptsApplications(reference),
		ApplicationDeadline: model.ApplicationDeadline,
		StartDate:           model.StartDate,
		EndDate:             model.EndDate,
		CreatedAt:           model.CreatedAt,
		UpdatedAt:           model.UpdatedAt,
	}
}

// NewScholarshipResponseSlice converts a slice of models.
func NewScholarshipResponseSlice(scholarships []models.Scholarship, reference time.Time) []ScholarshipResponse {
	responses := make([]ScholarshipResponse, 0, len(scholarships))
	for _, scholarship := range scholarships {
		responses = append(responses, NewScholarshipResponse(scholarship, reference))
	}
	return responses
}
