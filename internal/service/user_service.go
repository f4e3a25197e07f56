package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/iskolarhub/iskolar-api/internal/dto"
	"github.com/iskolarhub/iskolar-api/internal/models"
	"github.com/iskolarhub/iskolar-api/internal/repository"
	"github.com/iskolarhub/iskolar-api/internal/tenancy"
)

var (
	// ErrUserNotFound indicates the account does not exist or is outside the
	// caller's scope.
	ErrUserNotFound = errors.New("user not found")
	// ErrAdminOnly indicates an account management operation reserved for
	// admins.
	ErrAdminOnly = errors.New("operation requires an admin")
)

// UserService manages accounts. Listing and lookup run through the
// caller's scope, so committee members only see their own program's
// members plus admins, and students only see themselves. Account
// creation and updates are reserved for admins; deletion and recovery
// for the super admin.
type UserService interface {
	List(ctx context.Context, scope tenancy.Scope, filter dto.UserFilter) ([]dto.UserResponse, error)
	Get(ctx context.Context, scope tenancy.Scope, id uint) (dto.UserResponse, error)
	Create(ctx context.Context, scope tenancy.Scope, payload dto.UserCreateRequest) (dto.UserResponse, error)
	Update(ctx context.Context, scope tenancy.Scope, id uint, payload dto.UserUpdateRequest) (dto.UserResponse, error)
	SoftDelete(ctx context.Context, scope tenancy.Scope, id uint) error
	Restore(ctx context.Context, scope tenancy.Scope, id uint) error
	HardDelete(ctx context.Context, scope tenancy.Scope, id uint) error
}

type userService struct {
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		users:     users,
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) List(ctx context.Context, scope tenancy.Scope, filter dto.UserFilter) ([]dto.UserResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	users, err := s.users.List(ctx, scope, repository.UserFilter{
		Role:          filter.Role,
		ScholarshipID: filter.ScholarshipID,
		Search:        filter.Search,
		Deleted:       filter.Deleted,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewUserResponseSlice(users), nil
}

func (s *userService) Get(ctx context.Context, scope tenancy.Scope, id uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, scope, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) Create(ctx context.Context, scope tenancy.Scope, payload dto.UserCreateRequest) (dto.UserResponse, error) {
	if !scope.Identity().IsAdmin() {
		return dto.UserResponse{}, ErrAdminOnly
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return dto.UserResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcryptCost)
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Name:          strings.TrimSpace(payload.Name),
		Email:         email,
		PasswordHash:  string(hash),
		Role:          payload.Role,
		ScholarshipID: payload.ScholarshipID,
		ProfileData:   dto.ToJSONMap(payload.ProfileData),
	}

	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.UserResponse{}, ErrEmailTaken
		}
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("user created")

	return dto.NewUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, scope tenancy.Scope, id uint, payload dto.UserUpdateRequest) (dto.UserResponse, error) {
	if !scope.Identity().IsAdmin() {
		return dto.UserResponse{}, ErrAdminOnly
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.users.GetByID(ctx, scope, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	if payload.Name != nil {
		user.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*payload.Email))
	}
	if payload.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*payload.Password), bcryptCost)
		if err != nil {
			return dto.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	if payload.Role != nil {
		user.Role = *payload.Role
	}
	if payload.ScholarshipID != nil {
		user.ScholarshipID = payload.ScholarshipID
	}
	if payload.ProfileData != nil {
		user.ProfileData = dto.ToJSONMap(payload.ProfileData)
	}

	if err := s.users.Update(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.UserResponse{}, ErrEmailTaken
		}
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func (s *userService) SoftDelete(ctx context.Context, scope tenancy.Scope, id uint) error {
	if !scope.Identity().IsSuperAdmin() {
		return ErrSuperAdminOnly
	}
	if _, err := s.users.GetByID(ctx, scope, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return s.users.SoftDelete(ctx, id)
}

func (s *userService) Restore(ctx context.Context, scope tenancy.Scope, id uint) error {
	if !scope.Identity().IsSuperAdmin() {
		return ErrSuperAdminOnly
	}
	return s.users.Restore(ctx, id)
}

func (s *userService) HardDelete(ctx context.Context, scope tenancy.Scope, id uint) error {
	if !scope.Identity().IsSuperAdmin() {
		return ErrSuperAdminOnly
	}
	s.logger.Warn().Uint("user_id", id).Msg("user hard deleted")
	return s.users.HardDelete(ctx, id)
}
