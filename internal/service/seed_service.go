package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/iskolarhub/iskolar-api/internal/models"
	"github.com/iskolarhub/iskolar-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates seeding is disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// SeedSummary reports what a seeding run created.
type SeedSummary struct {
	Scholarships int `json:"scholarships"`
	Users        int `json:"users"`
	Applications int `json:"applications"`
}

// SeedService provisions demo data: scholarship programs, a super admin,
// committee members and students per program, and sample applications.
type SeedService interface {
	Seed(ctx context.Context, token string) (SeedSummary, error)
}

type seedService struct {
	scholarships repository.ScholarshipRepository
	users        repository.UserRepository
	applications repository.ApplicationRepository
	enabled      bool
	token        string
	logger       zerolog.Logger
	now          func() time.Time
}

// NewSeedService constructs a seeding service.
func NewSeedService(scholarships repository.ScholarshipRepository, users repository.UserRepository, applications repository.ApplicationRepository, enabled bool, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		scholarships: scholarships,
		users:        users,
		applications: applications,
		enabled:      enabled,
		token:        token,
		logger:       logger.With().Str("component", "seed_service").Logger(),
		now:          time.Now,
	}
}

func (s *seedService) Seed(ctx context.Context, token string) (SeedSummary, error) {
	if !s.enabled {
		return SeedSummary{}, ErrSeedDisabled
	}
	if s.token == "" || subtle.ConstantTimeCompare([]byte(s.token), []byte(token)) != 1 {
		return SeedSummary{}, ErrSeedUnauthorized
	}

	summary := SeedSummary{}

	programs := []models.Scholarship{
		{
			Name:        "Merit Scholarship",
			Slug:        "merit-scholarship",
			Description: "Awarded to students with outstanding academic records.",
			Type:        "merit",
			Settings: datatypes.JSONMap{
				"required_documents": []interface{}{"transcript", "recommendation_letter"},
			},
			IsActive: true,
		},
		{
			Name:        "Sports Scholarship",
			Slug:        "sports-scholarship",
			Description: "Supports student athletes representing the municipality.",
			Type:        "sports",
			Settings: datatypes.JSONMap{
				"required_documents": []interface{}{"athletic_certificate", "medical_clearance"},
			},
			IsActive: true,
		},
		{
			Name:        "Need-Based Scholarship",
			Slug:        "need-based-scholarship",
			Description: "Financial assistance for students from low-income households.",
			Type:        "need_based",
			Settings: datatypes.JSONMap{
				"required_documents": []interface{}{"income_certificate", "barangay_clearance"},
			},
			IsActive: true,
		},
	}

	seeded := make([]models.Scholarship, 0, len(programs))
	for i := range programs {
		existing, err := s.scholarships.GetBySlug(ctx, programs[i].Slug)
		if err == nil {
			seeded = append(seeded, existing)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return summary, err
		}
		if err := s.scholarships.Create(ctx, &programs[i]); err != nil {
			return summary, err
		}
		seeded = append(seeded, programs[i])
		summary.Scholarships++
	}

	if _, created, err := s.ensureUser(ctx, models.User{
		Name:  "Municipal Administrator",
		Email: "superadmin@iskolar.local",
		Role:  models.RoleAdmin,
	}, "superadmin123"); err != nil {
		return summary, err
	} else if created {
		summary.Users++
	}

	for index, scholarship := range seeded {
		scholarshipID := scholarship.ID

		if _, created, err := s.ensureUser(ctx, models.User{
			Name:          fmt.Sprintf("%s Committee Chair", scholarship.Name),
			Email:         fmt.Sprintf("committee.%s@iskolar.local", scholarship.Slug),
			Role:          models.RoleCommittee,
			ScholarshipID: &scholarshipID,
		}, "committee123"); err != nil {
			return summary, err
		} else if created {
			summary.Users++
		}

		student, created, err := s.ensureUser(ctx, models.User{
			Name:          fmt.Sprintf("Sample Student %d", index+1),
			Email:         fmt.Sprintf("student.%s@iskolar.local", scholarship.Slug),
			Role:          models.RoleStudent,
			ScholarshipID: &scholarshipID,
		}, "student123")
		if err != nil {
			return summary, err
		}
		if created {
			summary.Users++
		}

		if _, err := s.applications.GetByScholarshipAndUser(ctx, scholarshipID, student.ID); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return summary, err
		}

		submittedAt := s.now().AddDate(0, 0, -index)
		application := models.Application{
			ScholarshipID: scholarshipID,
			UserID:        student.ID,
			ApplicationData: datatypes.JSONMap{
				"gpa":        3.5,
				"school":     "Daanbantayan National High School",
				"year_level": "Grade 12",
			},
			Status:      models.StatusSubmitted,
			SubmittedAt: &submittedAt,
		}
		if err := s.applications.Create(ctx, &application); err != nil {
			return summary, err
		}
		summary.Applications++
	}

	s.logger.Info().
		Int("scholarships", summary.Scholarships).
		Int("users", summary.Users).
		Int("applications", summary.Applications).
		Msg("demo data seeded")

	return summary, nil
}

func (s *seedService) ensureUser(ctx context.Context, user models.User, password string) (models.User, bool, error) {
	existing, err := s.users.GetByEmail(ctx, user.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return models.User{}, false, err
	}
	user.PasswordHash = string(hash)

	if err := s.users.Create(ctx, &user); err != nil {
		return models.User{}, false, err
	}
	return user, true, nil
}
