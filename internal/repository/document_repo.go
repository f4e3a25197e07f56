package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/iskolarhub/iskolar-api/internal/models"
	"github.com/iskolarhub/iskolar-api/internal/tenancy"
)

// DocumentRepository defines data operations for application documents.
// Documents inherit their visibility from the owning application, so
// scoped reads join against the application scope.
type DocumentRepository interface {
	ListByApplication(ctx context.Context, applicationID uint) ([]models.Document, error)
	GetByID(ctx context.Context, scope tenancy.Scope, id uint) (models.Document, error)
	Create(ctx context.Context, document *models.Document) error
	Update(ctx context.Context, document *models.Document) error
	Delete(ctx context.Context, id uint) error
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository constructs a document repository.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) ListByApplication(ctx context.Context, applicationID uint) ([]models.Document, error) {
	var documents []models.Document
	if err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at DESC").
		Find(&documents).Error; err != nil {
		return nil, err
	}
	return documents, nil
}

func (r *documentRepository) GetByID(ctx context.Context, scope tenancy.Scope, id uint) (models.Document, error) {
	var document models.Document
	if err := r.db.WithContext(ctx).Preload("Application").First(&document, id).Error; err != nil {
		return models.Document{}, err
	}
	if !scope.AllowsApplication(document.Application) {
		return models.Document{}, gorm.ErrRecordNotFound
	}
	return document, nil
}

func (r *documentRepository) Create(ctx context.Context, document *models.Document) error {
	return r.db.WithContext(ctx).Create(document).Error
}

func (r *documentRepository) Update(ctx context.Context, document *models.Document) error {
	return r.db.WithContext(ctx).Save(document).Error
}

func (r *documentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Document{}, id).Error
}
