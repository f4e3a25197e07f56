package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/iskolarhub/iskolar-api/internal/dto"
	"github.com/iskolarhub/iskolar-api/internal/models"
	"github.com/iskolarhub/iskolar-api/internal/repository"
	"github.com/iskolarhub/iskolar-api/internal/tenancy"
)

var (
	// ErrScholarshipNotFound indicates the program does not exist.
	ErrScholarshipNotFound = errors.New("scholarship not found")
	// ErrSlugTaken indicates the slug is already in use.
	ErrSlugTaken = errors.New("slug is already in use")
	// ErrSuperAdminOnly indicates an operation reserved for the super admin.
	ErrSuperAdminOnly = errors.New("operation requires super admin")
)

// ScholarshipService manages scholarship programs.
type ScholarshipService interface {
	List(ctx context.Context, filter dto.ScholarshipFilter) ([]dto.ScholarshipResponse, error)
	Get(ctx context.Context, id uint) (dto.ScholarshipResponse, error)
	GetBySlug(ctx context.Context, slug string) (dto.ScholarshipResponse, error)
	Create(ctx context.Context, payload dto.ScholarshipCreateRequest) (dto.ScholarshipResponse, error)
	Update(ctx context.Context, id uint, payload dto.ScholarshipUpdateRequest) (dto.ScholarshipResponse, error)
	SoftDelete(ctx context.Context, scope tenancy.Scope, id uint) error
	Restore(ctx context.Context, scope tenancy.Scope, id uint) error
	ForceDelete(ctx context.Context, scope tenancy.Scope, id uint) error
}

type scholarshipService struct {
	scholarships repository.ScholarshipRepository
	validator    *validator.Validate
	sanitizer    *bluemonday.Policy
	logger       zerolog.Logger
	now          func() time.Time
}

// NewScholarshipService constructs a ScholarshipService instance.
func NewScholarshipService(scholarships repository.ScholarshipRepository, validate *validator.Validate, logger zerolog.Logger) ScholarshipService {
	return &scholarshipService{
		scholarships: scholarships,
		validator:    validate,
		sanitizer:    bluemonday.UGCPolicy(),
		logger:       logger.With().Str("component", "scholarship_service").Logger(),
		now:          time.Now,
	}
}

func (s *scholarshipService) List(ctx context.Context, filter dto.ScholarshipFilter) ([]dto.ScholarshipResponse, error) {
	scholarships, err := s.scholarships.List(ctx, repository.ScholarshipFilter{
		ActiveOnly: filter.Active,
		Type:       filter.Type,
		Deleted:    filter.Deleted,
	})
	if err != nil {
		return nil, err
	}
	return dto.NewScholarshipResponseSlice(scholarships, s.now()), nil
}

func (s *scholarshipService) Get(ctx context.Context, id uint) (dto.ScholarshipResponse, error) {
	scholarship, err := s.scholarships.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScholarshipResponse{}, ErrScholarshipNotFound
		}
		return dto.ScholarshipResponse{}, err
	}
	return dto.NewScholarshipResponse(scholarship, s.now()), nil
}

func (s *scholarshipService) GetBySlug(ctx context.Context, slug string) (dto.ScholarshipResponse, error) {
	scholarship, err := s.scholarships.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScholarshipResponse{}, ErrScholarshipNotFound
		}
		return dto.ScholarshipResponse{}, err
	}
	return dto.NewScholarshipResponse(scholarship, s.now()), nil
}

func (s *scholarshipService) Create(ctx context.Context, payload dto.ScholarshipCreateRequest) (dto.ScholarshipResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ScholarshipResponse{}, err
	}

	slug := normalizeSlug(payload.Slug)
	if _, err := s.scholarships.GetBySlug(ctx, slug); err == nil {
		return dto.ScholarshipResponse{}, ErrSlugTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ScholarshipResponse{}, err
	}

	scholarship := models.Scholarship{
		Name:                strings.TrimSpace(payload.Name),
		Slug:                slug,
		Description:         s.sanitizer.Sanitize(payload.Description),
		Type:                payload.Type,
		Settings:            dto.ToJSONMap(payload.Settings),
		IsActive:            true,
		ApplicationDeadline: payload.ApplicationDeadline,
		StartDate:           payload.StartDate,
		EndDate:             payload.EndDate,
	}
	if payload.IsActive != nil {
		scholarship.IsActive = *payload.IsActive
	}

	if err := s.scholarships.Create(ctx, &scholarship); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.ScholarshipResponse{}, ErrSlugTaken
		}
		return dto.ScholarshipResponse{}, err
	}

	s.logger.Info().Uint("scholarship_id", scholarship.ID).Str("slug", scholarship.Slug).Msg("scholarship created")

	return dto.NewScholarshipResponse(scholarship, s.now()), nil
}

func (s *scholarshipService) Update(ctx context.Context, id uint, payload dto.ScholarshipUpdateRequest) (dto.ScholarshipResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ScholarshipResponse{}, err
	}

	scholarship, err := s.scholarships.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScholarshipResponse{}, ErrScholarshipNotFound
		}
		return dto.ScholarshipResponse{}, err
	}

	if payload.Slug != nil {
		slug := normalizeSlug(*payload.Slug)
		if slug != scholarship.Slug {
			if _, err := s.scholarships.GetBySlug(ctx, slug); err == nil {
				return dto.ScholarshipResponse{}, ErrSlugTaken
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.ScholarshipResponse{}, err
			}
			scholarship.Slug = slug
		}
	}
	if payload.Name != nil {
		scholarship.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Description != nil {
		scholarship.Description = s.sanitizer.Sanitize(*payload.Description)
	}
	if payload.Type != nil {
		scholarship.Type = *payload.Type
	}
	if payload.Settings != nil {
		scholarship.Settings = dto.ToJSONMap(payload.Settings)
	}
	if payload.IsActive != nil {
		scholarship.IsActive = *payload.IsActive
	}
	if payload.ApplicationDeadline != nil {
		scholarship.ApplicationDeadline = payload.ApplicationDeadline
	}
	if payload.StartDate != nil {
		scholarship.StartDate = payload.StartDate
	}
	if payload.EndDate != nil {
		scholarship.EndDate = payload.EndDate
	}

	if err := s.scholarships.Update(ctx, &scholarship); err != nil {
		return dto.ScholarshipResponse{}, err
	}

	return dto.NewScholarshipResponse(scholarship, s.now()), nil
}

func (s *scholarshipService) SoftDelete(ctx context.Context, scope tenancy.Scope, id uint) error {
	if !scope.Identity().IsSuperAdmin() {
		return ErrSuperAdminOnly
	}
	return s.scholarships.SoftDelete(ctx, id)
}

func (s *scholarshipService) Restore(ctx context.Context, scope tenancy.Scope, id uint) error {
	if !scope.Identity().IsSuperAdmin() {
		return ErrSuperAdminOnly
	}
	return s.scholarships.Restore(ctx, id)
}

func (s *scholarshipService) ForceDelete(ctx context.Context, scope tenancy.Scope, id uint) error {
	if !scope.Identity().IsSuperAdmin() {
		return ErrSuperAdminOnly
	}
	s.logger.Warn().Uint("scholarship_id", id).Msg("scholarship force deleted")
	return s.scholarships.ForceDelete(ctx, id)
}

func normalizeSlug(slug string) string {
	slug = strings.ToLower(strings.TrimSpace(slug))
	return strings.ReplaceAll(slug, " ", "-")
}
