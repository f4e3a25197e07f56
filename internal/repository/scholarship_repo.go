package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/iskolarhub/iskolar-api/internal/models"
)

// ScholarshipFilter narrows scholarship listings.
type ScholarshipFilter struct {
	ActiveOnly bool
	Type       *string
	Deleted    bool
}

// ScholarshipRepository provides access to scholarship programs.
// Scholarships are not tenant-scoped themselves; visibility of their
// applications and members is handled by the application and user scopes.
type ScholarshipRepository interface {
	List(ctx context.Context, filter ScholarshipFilter) ([]models.Scholarship, error)
	GetByID(ctx context.Context, id uint) (models.Scholarship, error)
	GetBySlug(ctx context.Context, slug string) (models.Scholarship, error)
	Create(ctx context.Context, scholarship *models.Scholarship) error
	Update(ctx context.Context, scholarship *models.Scholarship) error
	SoftDelete(ctx context.Context, id uint) error
	Restore(ctx context.Context, id uint) error
	ForceDelete(ctx context.Context, id uint) error
}

type scholarshipRepository struct {
	db *gorm.DB
}

// NewScholarshipRepository constructs a scholarship repository.
func NewScholarshipRepository(db *gorm.DB) ScholarshipRepository {
	return &scholarshipRepository{db: db}
}

func (r *scholarshipRepository) List(ctx context.Context, filter ScholarshipFilter) ([]models.Scholarship, error) {
	query := r.db.WithContext(ctx).Model(&models.Scholarship{})

	if filter.Deleted {
		query = query.Unscoped().Where("deleted_at IS NOT NULL")
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}

	var scholarships []models.Scholarship
	if err := query.Order("name ASC").Find(&scholarships).Error; err != nil {
		return nil, err
	}

	return scholarships, nil
}

func (r *scholarshipRepository) GetByID(ctx context.Context, id uint) (models.Scholarship, error) {
	var scholarship models.Scholarship
	if err := r.db.WithContext(ctx).First(&scholarship, id).Error; err != nil {
		return models.Scholarship{}, err
	}
	return scholarship, nil
}

func (r *scholarshipRepository) GetBySlug(ctx context.Context, slug string) (models.Scholarship, error) {
	var scholarship models.Scholarship
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&scholarship).Error; err != nil {
		return models.Scholarship{}, err
	}
	return scholarship, nil
}

func (r *scholarshipRepository) Create(ctx context.Context, scholarship *models.Scholarship) error {
	return r.db.WithContext(ctx).Create(scholarship).Error
}

func (r *scholarshipRepository) Update(ctx context.Context, scholarship *models.Scholarship) error {
	return r.db.WithContext(ctx).Save(scholarship).Error
}

func (r *scholarshipRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Scholarship{}, id).Error
}

func (r *scholarshipRepository) Restore(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Unscoped().Model(&models.Scholarship{}).
		Where("id = ?", id).Update("deleted_at", nil).Error
}

// ForceDelete permanently removes the program, its applications, and every
// document attached to those applications.
func (r *scholarshipRepository) ForceDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var applicationIDs []uint
		if err := tx.Unscoped().Model(&models.Application{}).
			Where("scholarship_id = ?", id).Pluck("id", &applicationIDs).Error; err != nil {
			return err
		}
		if len(applicationIDs) > 0 {
			if err := tx.Unscoped().Where("application_id IN ?", applicationIDs).
				Delete(&models.Document{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("scholarship_id = ?", id).
				Delete(&models.Application{}).Error; err != nil {
				return err
			}
		}
		return tx.Unscoped().Delete(&models.Scholarship{}, id).Error
	})
}
