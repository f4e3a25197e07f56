package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/iskolarhub/iskolar-api/internal/dto"
	"github.com/iskolarhub/iskolar-api/internal/models"
	"github.com/iskolarhub/iskolar-api/internal/repository"
	"github.com/iskolarhub/iskolar-api/internal/tenancy"
)

var (
	// ErrDocumentNotFound indicates the document does not exist or belongs
	// to an application outside the caller's scope.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrUnsupportedFileType indicates the uploaded file type is not
	// accepted for application documents.
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// FileUploader stores an uploaded file and returns its location.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// DocumentService manages application documents: upload and verification.
type DocumentService interface {
	ListByApplication(ctx context.Context, scope tenancy.Scope, applicationID uint) ([]dto.DocumentResponse, error)
	Get(ctx context.Context, scope tenancy.Scope, id uint) (dto.DocumentResponse, error)
	Upload(ctx context.Context, scope tenancy.Scope, payload dto.DocumentUploadRequest, file *multipart.FileHeader) (dto.DocumentResponse, error)
	Verify(ctx context.Context, scope tenancy.Scope, id uint, verified bool) (dto.DocumentResponse, error)
	Delete(ctx context.Context, scope tenancy.Scope, id uint) error
}

type documentService struct {
	documents    repository.DocumentRepository
	applications repository.ApplicationRepository
	validator    *validator.Validate
	uploader     FileUploader
	logger       zerolog.Logger
	now          func() time.Time
}

// NewDocumentService constructs a DocumentService instance.
func NewDocumentService(documents repository.DocumentRepository, applications repository.ApplicationRepository, validate *validator.Validate, uploader FileUploader, logger zerolog.Logger) DocumentService {
	return &documentService{
		documents:    documents,
		applications: applications,
		validator:    validate,
		uploader:     uploader,
		logger:       logger.With().Str("component", "document_service").Logger(),
		now:          time.Now,
	}
}

func (s *documentService) ListByApplication(ctx context.Context, scope tenancy.Scope, applicationID uint) ([]dto.DocumentResponse, error) {
	if _, err := s.applications.GetByID(ctx, scope, applicationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	documents, err := s.documents.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	return dto.NewDocumentResponseSlice(documents), nil
}

func (s *documentService) Get(ctx context.Context, scope tenancy.Scope, id uint) (dto.DocumentResponse, error) {
	document, err := s.documents.GetByID(ctx, scope, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DocumentResponse{}, ErrDocumentNotFound
		}
		return dto.DocumentResponse{}, err
	}
	return dto.NewDocumentResponse(document), nil
}

func (s *documentService) Upload(ctx context.Context, scope tenancy.Scope, payload dto.DocumentUploadRequest, file *multipart.FileHeader) (dto.DocumentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.DocumentResponse{}, err
	}
	if file == nil {
		return dto.DocumentResponse{}, fmt.Errorf("document file is required")
	}

	application, err := s.applications.GetByID(ctx, scope, payload.ApplicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DocumentResponse{}, ErrApplicationNotFound
		}
		return dto.DocumentResponse{}, err
	}

	actor := scope.Identity()
	if actor.IsStudent() && application.UserID != actor.UserID {
		return dto.DocumentResponse{}, ErrNotOwner
	}

	mime, err := detectDocumentType(file)
	if err != nil {
		return dto.DocumentResponse{}, err
	}

	reader, err := file.Open()
	if err != nil {
		return dto.DocumentResponse{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	location, err := s.uploader.Upload(ctx, file.Filename, reader)
	if err != nil {
		return dto.DocumentResponse{}, fmt.Errorf("failed to store file: %w", err)
	}

	document := models.Document{
		ApplicationID: application.ID,
		DocumentType:  payload.DocumentType,
		FilePath:      location,
		OriginalName:  file.Filename,
		MimeType:      mime,
		FileSize:      file.Size,
	}

	if err := s.documents.Create(ctx, &document); err != nil {
		return dto.DocumentResponse{}, err
	}

	s.logger.Info().Uint("document_id", document.ID).Uint("application_id", application.ID).Msg("document uploaded")

	return dto.NewDocumentResponse(document), nil
}

// Verify stamps verified_at and verified_by together when marking a
// document verified, and clears both when the verification is withdrawn.
func (s *documentService) Verify(ctx context.Context, scope tenancy.Scope, id uint, verified bool) (dto.DocumentResponse, error) {
	actor := scope.Identity()
	if !actor.CanReview() {
		return dto.DocumentResponse{}, ErrStatusNotAllowed
	}

	document, err := s.documents.GetByID(ctx, scope, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DocumentResponse{}, ErrDocumentNotFound
		}
		return dto.DocumentResponse{}, err
	}

	if verified {
		stamp := s.now()
		verifier := actor.UserID
		document.IsVerified = true
		document.VerifiedAt = &stamp
		document.VerifiedBy = &verifier
	} else {
		document.IsVerified = false
		document.VerifiedAt = nil
		document.VerifiedBy = nil
	}

	if err := s.documents.Update(ctx, &document); err != nil {
		return dto.DocumentResponse{}, err
	}

	return dto.NewDocumentResponse(document), nil
}

func (s *documentService) Delete(ctx context.Context, scope tenancy.Scope, id uint) error {
	document, err := s.documents.GetByID(ctx, scope, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}

	actor := scope.Identity()
	if actor.IsStudent() && document.Application.UserID != actor.UserID {
		return ErrNotOwner
	}

	return s.documents.Delete(ctx, document.ID)
}

func detectDocumentType(file *multipart.FileHeader) (string, error) {
	reader, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	mime, err := mimetype.DetectReader(reader)
	if err != nil {
		return "", fmt.Errorf("failed to detect file type: %w", err)
	}

	allowed := []string{"application/pdf", "image/jpeg", "image/png", "application/zip", "application/x-zip-compressed"}
	for _, a := range allowed {
		if mime.Is(a) {
			return mime.String(), nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, mime.String())
}
