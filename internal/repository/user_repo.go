package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/iskolarhub/iskolar-api/internal/models"
	"github.com/iskolarhub/iskolar-api/internal/tenancy"
)

// UserFilter narrows user listings.
type UserFilter struct {
	Role          *string
	ScholarshipID *uint
	Search        string
	Deleted       bool
}

// UserRepository provides access to user accounts. Listing and lookup
// methods take the caller's scope so row-level visibility is enforced at
// the query.
type UserRepository interface {
	List(ctx context.Context, scope tenancy.Scope, filter UserFilter) ([]models.User, error)
	GetByID(ctx context.Context, scope tenancy.Scope, id uint) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetForSession(ctx context.Context, id uint) (models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	SoftDelete(ctx context.Context, id uint) error
	Restore(ctx context.Context, id uint) error
	HardDelete(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) List(ctx context.Context, scope tenancy.Scope, filter UserFilter) ([]models.User, error) {
	query := r.db.WithContext(ctx).Model(&models.User{}).Scopes(scope.Users())

	if filter.Deleted {
		query = query.Unscoped().Where("deleted_at IS NOT NULL")
	}
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.ScholarshipID != nil {
		query = query.Where("scholarship_id = ?", *filter.ScholarshipID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", pattern, pattern)
	}

	var users []models.User
	if err := query.Preload("Scholarship").Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userRepository) GetByID(ctx context.Context, scope tenancy.Scope, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Scopes(scope.Users()).Preload("Scholarship").First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

// GetForSession looks up an active account by primary key without a
// caller scope. Used when re-establishing a session from a stored
// token, where no request identity exists yet.
func (r *userRepository) GetForSession(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.User{}, id).Error
}

func (r *userRepository) Restore(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Unscoped().Model(&models.User{}).
		Where("id = ?", id).Update("deleted_at", nil).Error
}

// HardDelete permanently removes the user together with their applications
// and the documents attached to those applications.
func (r *userRepository) HardDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var applicationIDs []uint
		if err := tx.Unscoped().Model(&models.Application{}).
			Where("user_id = ?", id).Pluck("id", &applicationIDs).Error; err != nil {
			return err
		}
		if len(applicationIDs) > 0 {
			if err := tx.Unscoped().Where("application_id IN ?", applicationIDs).
				Delete(&models.Document{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("user_id = ?", id).
				Delete(&models.Application{}).Error; err != nil {
				return err
			}
		}
		return tx.Unscoped().Delete(&models.User{}, id).Error
	})
}
