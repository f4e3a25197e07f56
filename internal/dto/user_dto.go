package dto

import (
	"time"

	"gorm.io/datatypes"

	"github.com/iskolarhub/iskolar-api/internal/models"
)

// UserCreateRequest describes the payload for creating an account. Only
// administrators may create accounts this way.
type UserCreateRequest struct {
	Name          string                 `json:"name" validate:"required,min=2,max=255"`
	Email         string                 `json:"email" validate:"required,email"`
	Password      string                 `json:"password" validate:"required,min=8"`
	Role          string                 `json:"role" validate:"required,oneof=admin committee student"`
	ScholarshipID *uint                  `json:"scholarship_id" validate:"omitempty,gt=0"`
	ProfileData   map[string]interface{} `json:"profile_data"`
}

// UserUpdateRequest describes a partial account update.
type UserUpdateRequest struct {
	Name          *string                `json:"name" validate:"omitempty,min=2,max=255"`
	Email         *string                `json:"email" validate:"omitempty,email"`
	Password      *string                `json:"password" validate:"omitempty,min=8"`
	Role          *string                `json:"role" validate:"omitempty,oneof=admin committee student"`
	ScholarshipID *uint                  `json:"scholarship_id" validate:"omitempty,gt=0"`
	ProfileData   map[string]interface{} `json:"profile_data"`
}

// UserFilter describes query string filters for listing users.
type UserFilter struct {
	Role          *string `query:"role" validate:"omitempty,oneof=admin committee student"`
	ScholarshipID *uint   `query:"scholarship_id"`
	Search        string  `query:"search"`
	Deleted       bool    `query:"deleted"`
}

// UserResponse is returned to API clients when viewing accounts.
type UserResponse struct {
	ID            uint                   `json:"id"`
	Name          string                 `json:"name"`
	Email         string                 `json:"email"`
	Role          string                 `json:"role"`
	ScholarshipID *uint                  `json:"scholarship_id"`
	Scholarship   *ScholarshipLite       `json:"scholarship,omitempty"`
	ProfileData   map[string]interface{} `json:"profile_data"`
	SuperAdmin    bool                   `json:"super_admin"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// ScholarshipLite summarizes a program in account responses.
type ScholarshipLite struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// NewUserResponse converts a User model into a DTO.
func NewUserResponse(model models.User) UserResponse {
	response := UserResponse{
		ID:            model.ID,
		Name:          model.Name,
		Email:         model.Email,
		Role:          model.Role,
		ScholarshipID: model.ScholarshipID,
		ProfileData:   model.ProfileData,
		SuperAdmin:    model.IsSuperAdmin(),
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}

	if model.Scholarship != nil {
		response.Scholarship = &ScholarshipLite{
			ID:   model.Scholarship.ID,
			Name: model.Scholarship.Name,
			Slug: model.Scholarship.Slug,
		}
	}

	return response
}

// NewUserResponseSlice converts a slice of models.
func NewUserResponseSlice(users []models.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, NewUserResponse(user))
	}
	return responses
}

// ToJSONMap converts an open request map into the storage representation.
func ToJSONMap(data map[string]interface{}) datatypes.JSONMap {
	if data == nil {
		return nil
	}
	return datatypes.JSONMap(data)
}
