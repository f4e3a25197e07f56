package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/iskolarhub/iskolar-api/internal/models"
	"github.com/iskolarhub/iskolar-api/internal/tenancy"
)

// ApplicationFilter narrows application queries.
type ApplicationFilter struct {
	ScholarshipID *uint
	UserID        *uint
	Status        *string
	Deleted       bool
}

// ApplicationRepository defines data operations for applications. Every
// read goes through the caller's scope.
type ApplicationRepository interface {
	List(ctx context.Context, scope tenancy.Scope, filter ApplicationFilter) ([]models.Application, error)
	GetByID(ctx context.Context, scope tenancy.Scope, id uint) (models.Application, error)
	GetByScholarshipAndUser(ctx context.Context, scholarshipID, userID uint) (models.Application, error)
	Create(ctx context.Context, application *models.Application) error
	Update(ctx context.Context, application *models.Application) error
	SoftDelete(ctx context.Context, id uint) error
	Restore(ctx context.Context, id uint) error
	ForceDelete(ctx context.Context, id uint) error
}

type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository constructs an application repository.
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) baseQuery(ctx context.Context, scope tenancy.Scope) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Application{}).
		Scopes(scope.Applications()).
		Preload("Scholarship").
		Preload("User")
}

func (r *applicationRepository) List(ctx context.Context, scope tenancy.Scope, filter ApplicationFilter) ([]models.Application, error) {
	query := r.baseQuery(ctx, scope)

	if filter.Deleted {
		query = query.Unscoped().Where("applications.deleted_at IS NOT NULL")
	}
	if filter.ScholarshipID != nil {
		query = query.Where("scholarship_id = ?", *filter.ScholarshipID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var applications []models.Application
	if err := query.Order("created_at DESC").Find(&applications).Error; err != nil {
		return nil, err
	}

	return applications, nil
}

func (r *applicationRepository) GetByID(ctx context.Context, scope tenancy.Scope, id uint) (models.Application, error) {
	var application models.Application
	if err := r.baseQuery(ctx, scope).Preload("Documents").First(&application, id).Error; err != nil {
		return models.Application{}, err
	}
	return application, nil
}

func (r *applicationRepository) GetByScholarshipAndUser(ctx context.Context, scholarshipID, userID uint) (models.Application, error) {
	var application models.Application
	if err := r.db.WithContext(ctx).
		Where("scholarship_id = ?", scholarshipID).
		Where("user_id = ?", userID).
		First(&application).Error; err != nil {
		return models.Application{}, err
	}
	return application, nil
}

func (r *applicationRepository) Create(ctx context.Context, application *models.Application) error {
	return r.db.WithContext(ctx).Create(application).Error
}

func (r *applicationRepository) Update(ctx context.Context, application *models.Application) error {
	return r.db.WithContext(ctx).Save(application).Error
}

func (r *applicationRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Application{}, id).Error
}

func (r *applicationRepository) Restore(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Unscoped().Model(&models.Application{}).
		Where("id = ?", id).Update("deleted_at", nil).Error
}

// ForceDelete permanently removes the application and its documents.
func (r *applicationRepository) ForceDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("application_id = ?", id).
			Delete(&models.Document{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.Application{}, id).Error
	})
}
