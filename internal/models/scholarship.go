package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Scholarship represents a scholarship program. Each program owns its
// applications and committee members; settings is an open map holding
// program-specific configuration such as required_documents and form_schema.
type Scholarship struct {
	ID                  uint              `gorm:"primaryKey" json:"id"`
	Name                string            `gorm:"size:255;not null" json:"name"`
	Slug                string            `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description         string            `gorm:"type:text" json:"description"`
	Type                string            `gorm:"size:64" json:"type"`
	Settings            datatypes.JSONMap `gorm:"type:json" json:"settings"`
	IsActive            bool              `gorm:"not null;default:true" json:"is_active"`
	ApplicationDeadline *time.Time        `json:"application_deadline"`
	StartDate           *time.Time        `json:"start_date"`
	EndDate             *time.Time        `json:"end_date"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
	DeletedAt           gorm.DeletedAt    `gorm:"index" json:"-"`
	Users               []User            `json:"users,omitempty"`
	Applications        []Application     `json:"applications,omitempty"`
}

// AcceptsApplications reports whether the program is open for new
// applications at the given reference time.
func (s Scholarship) AcceptsApplications(reference time.Time) bool {
	if !s.IsActive {
		return false
	}
	if s.ApplicationDeadline != nil && reference.After(*s.ApplicationDeadline) {
		return false
	}
	return true
}

// FormSchema returns the JSON schema configured for application forms,
// or nil when the program does not define one.
func (s Scholarship) FormSchema() map[string]interface{} {
	if s.Settings == nil {
		return nil
	}
	if raw, ok := s.Settings["form_schema"]; ok {
		if schema, ok := raw.(map[string]interface{}); ok {
			return schema
		}
	}
	return nil
}

// RequiredDocuments lists the document types the program expects
// applicants to attach.
func (s Scholarship) RequiredDocuments() []string {
	if s.Settings == nil {
		return nil
	}
	raw, ok := s.Settings["required_documents"]
	if !ok {
		return nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	types := make([]string, 0, len(items))
	for _, item := range items {
		if value, ok := item.(string); ok && value != "" {
			types = append(types, value)
		}
	}
	return types
}
