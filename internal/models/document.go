package models

import (
	"fmt"
	"time"
)

// Document represents a file attached to an application, such as a
// transcript or proof of enrollment. Verification is recorded by a
// committee member or admin: verified_at and verified_by are set together
// exactly when is_verified is true.
type Document struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	ApplicationID uint        `gorm:"not null;index" json:"application_id"`
	DocumentType  string      `gorm:"size:64;not null" json:"document_type"`
	FilePath      string      `gorm:"size:512;not null" json:"file_path"`
	OriginalName  string      `gorm:"size:255" json:"original_name"`
	MimeType      string      `gorm:"size:128" json:"mime_type"`
	FileSize      int64       `json:"file_size"`
	IsVerified    bool        `gorm:"not null;default:false" json:"is_verified"`
	VerifiedAt    *time.Time  `json:"verified_at"`
	VerifiedBy    *uint       `json:"verified_by"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	Application   Application `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"application,omitempty"`
	Verifier      *User       `gorm:"foreignKey:VerifiedBy" json:"verifier,omitempty"`
}

// FileSizeHuman renders the file size with a binary unit suffix.
func (d Document) FileSizeHuman() string {
	size := float64(d.FileSize)
	units := []string{"B", "KB", "MB", "GB"}
	index := 0
	for size > 1024 && index < len(units)-1 {
		size /= 1024
		index++
	}
	return fmt.Sprintf("%.2f %s", size, units[index])
}
