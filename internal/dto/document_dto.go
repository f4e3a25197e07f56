package dto

import (
	"time"

	"github.com/iskolarhub/iskolar-api/internal/models"
)

// DocumentUploadRequest carries the multipart form fields that accompany
// an uploaded file.
type DocumentUploadRequest struct {
	ApplicationID uint   `form:"application_id" validate:"required,gt=0"`
	DocumentType  string `form:"document_type" validate:"required,min=2,max=100"`
}

// DocumentVerifyRequest toggles a document's verification state.
type DocumentVerifyRequest struct {
	Verified bool `json:"verified"`
}

// DocumentResponse is returned to API clients when viewing documents.
type DocumentResponse struct {
	ID            uint       `json:"id"`
	ApplicationID uint       `json:"application_id"`
	DocumentType  string     `json:"document_type"`
	FilePath      string     `json:"file_path"`
	OriginalName  string     `json:"original_name"`
	MimeType      string     `json:"mime_type"`
	FileSize      int64      `json:"file_size"`
	FileSizeHuman string     `json:"file_size_human"`
	IsVerified    bool       `json:"is_verified"`
	VerifiedAt    *time.Time `json:"verified_at"`
	VerifiedBy    *uint      `json:"verified_by"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewDocumentResponse converts a Document model into a DTO.
func NewDocumentResponse(model models.Document) DocumentResponse {
	return DocumentResponse{
		ID:            model.ID,
		ApplicationID: model.ApplicationID,
		DocumentType:  model.DocumentType,
		FilePath:      model.FilePath,
		OriginalName:  model.OriginalName,
		MimeType:      model.MimeType,
		FileSize:      model.FileSize,
		FileSizeHuman: model.FileSizeHuman(),
		IsVerified:    model.IsVerified,
		VerifiedAt:    model.VerifiedAt,
		VerifiedBy:    model.VerifiedBy,
		CreatedAt:     model.CreatedAt,
	}
}

// NewDocumentResponseSlice converts a slice of models.
func NewDocumentResponseSlice(documents []models.Document) []DocumentResponse {
	responses := make([]DocumentResponse, 0, len(documents))
	for _, document := range documents {
		responses = append(responses, NewDocumentResponse(document))
	}
	return responses
}
