package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/gorm"

	"github.com/iskolarhub/iskolar-api/internal/dto"
	"github.com/iskolarhub/iskolar-api/internal/models"
	"github.com/iskolarhub/iskolar-api/internal/repository"
	"github.com/iskolarhub/iskolar-api/internal/tenancy"
	"github.com/iskolarhub/iskolar-api/internal/workflow"
)

var (
	// ErrApplicationNotFound indicates the application does not exist or is
	// outside the caller's scope.
	ErrApplicationNotFound = errors.New("application not found")
	// ErrScholarshipClosed indicates the program is inactive or past its
	// deadline.
	ErrScholarshipClosed = errors.New("scholarship is not accepting applications")
	// ErrDuplicateApplication indicates the user already has an application
	// for this program.
	ErrDuplicateApplication = errors.New("an application for this scholarship already exists")
	// ErrStatusNotAllowed indicates the caller's role may not perform the
	// requested transition.
	ErrStatusNotAllowed = errors.New("status change not allowed for this role")
	// ErrApplicationLocked indicates the application has left draft and the
	// applicant may no longer edit it.
	ErrApplicationLocked = errors.New("application can no longer be edited")
	// ErrNotOwner indicates a student acting on someone else's application.
	ErrNotOwner = errors.New("application belongs to another user")
)

// ApplicationService orchestrates the application workflow: drafting,
// submission, review, and deletion. Role gates live here; the transition
// rules themselves live in the workflow package.
type ApplicationService interface {
	List(ctx context.Context, scope tenancy.Scope, filter dto.ApplicationFilter) ([]dto.ApplicationResponse, error)
	Get(ctx context.Context, scope tenancy.Scope, id uint) (dto.ApplicationResponse, error)
	Create(ctx context.Context, scope tenancy.Scope, payload dto.ApplicationCreateRequest) (dto.ApplicationResponse, error)
	Update(ctx context.Context, scope tenancy.Scope, id uint, payload dto.ApplicationUpdateRequest) (dto.ApplicationResponse, error)
	SoftDelete(ctx context.Context, scope tenancy.Scope, id uint) error
	Restore(ctx context.Context, scope tenancy.Scope, id uint) error
	ForceDelete(ctx context.Context, scope tenancy.Scope, id uint) error
}

type applicationService struct {
	applications repository.ApplicationRepository
	scholarships repository.ScholarshipRepository
	validator    *validator.Validate
	sanitizer    *bluemonday.Policy
	events       StatusEventPublisher
	logger       zerolog.Logger
	now          func() time.Time
}

// NewApplicationService constructs an ApplicationService instance.
func NewApplicationService(applications repository.ApplicationRepository, scholarships repository.ScholarshipRepository, validate *validator.Validate, events StatusEventPublisher, logger zerolog.Logger) ApplicationService {
	return &applicationService{
		applications: applications,
		scholarships: scholarships,
		validator:    validate,
		sanitizer:    bluemonday.StrictPolicy(),
		events:       events,
		logger:       logger.With().Str("component", "application_service").Logger(),
		now:          time.Now,
	}
}

func (s *applicationService) List(ctx context.Context, scope tenancy.Scope, filter dto.ApplicationFilter) ([]dto.ApplicationResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	// Students only ever see their own applications in listings.
	repoFilter := repository.ApplicationFilter{
		ScholarshipID: filter.ScholarshipID,
		UserID:        filter.UserID,
		Status:        filter.Status,
		Deleted:       filter.Deleted,
	}
	if scope.Identity().IsStudent() {
		userID := scope.Identity().UserID
		repoFilter.UserID = &userID
	}

	applications, err := s.applications.List(ctx, scope, repoFilter)
	if err != nil {
		return nil, err
	}

	return dto.NewApplicationResponseSlice(applications), nil
}

func (s *applicationService) Get(ctx context.Context, scope tenancy.Scope, id uint) (dto.ApplicationResponse, error) {
	application, err := s.getScoped(ctx, scope, id)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}
	return dto.NewApplicationResponse(application), nil
}

func (s *applicationService) Create(ctx context.Context, scope tenancy.Scope, payload dto.ApplicationCreateRequest) (dto.ApplicationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ApplicationResponse{}, err
	}

	actor := scope.Identity()

	scholarship, err := s.scholarships.GetByID(ctx, payload.ScholarshipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ApplicationResponse{}, ErrScholarshipNotFound
		}
		return dto.ApplicationResponse{}, err
	}

	if !scholarship.AcceptsApplications(s.now()) {
		return dto.ApplicationResponse{}, ErrScholarshipClosed
	}

	if _, err := s.applications.GetByScholarshipAndUser(ctx, payload.ScholarshipID, actor.UserID); err == nil {
		return dto.ApplicationResponse{}, ErrDuplicateApplication
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ApplicationResponse{}, err
	}

	application := models.Application{
		ScholarshipID:   payload.ScholarshipID,
		UserID:          actor.UserID,
		ApplicationData: dto.ToJSONMap(payload.ApplicationData),
		Status:          models.StatusDraft,
	}

	if err := s.applications.Create(ctx, &application); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.ApplicationResponse{}, ErrDuplicateApplication
		}
		return dto.ApplicationResponse{}, err
	}

	created, err := s.applications.GetByID(ctx, scope, application.ID)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}

	s.logger.Info().Uint("application_id", created.ID).Uint("scholarship_id", created.ScholarshipID).Msg("application drafted")

	return dto.NewApplicationResponse(created), nil
}

func (s *applicationService) Update(ctx context.Context, scope tenancy.Scope, id uint, payload dto.ApplicationUpdateRequest) (dto.ApplicationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ApplicationResponse{}, err
	}

	application, err := s.getScoped(ctx, scope, id)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}

	actor := scope.Identity()
	if err := s.authorizeChange(actor, application, payload); err != nil {
		return dto.ApplicationResponse{}, err
	}

	change := workflow.Change{
		Status:          payload.Status,
		ApplicationData: dto.ToJSONMap(payload.ApplicationData),
		CommitteeNotes:  payload.CommitteeNotes,
		SubmittedAt:     payload.SubmittedAt,
		ReviewedAt:      payload.ReviewedAt,
		ReviewedBy:      payload.ReviewedBy,
		Score:           payload.Score,
	}
	if change.CommitteeNotes != nil {
		sanitized := s.sanitizer.Sanitize(*change.CommitteeNotes)
		change.CommitteeNotes = &sanitized
	}

	previousStatus := application.Status

	updated, err := workflow.Apply(application, change, s.now())
	if err != nil {
		return dto.ApplicationResponse{}, err
	}

	// A program may define a JSON schema for its form; the payload must
	// conform before the application leaves draft.
	if updated.Status == models.StatusSubmitted && previousStatus != models.StatusSubmitted {
		if err := s.validateFormData(ctx, updated); err != nil {
			return dto.ApplicationResponse{}, err
		}
	}

	if err := s.applications.Update(ctx, &updated); err != nil {
		return dto.ApplicationResponse{}, err
	}

	result, err := s.applications.GetByID(ctx, scope, updated.ID)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}

	if result.Status != previousStatus {
		s.events.PublishStatusChange(ctx, StatusEvent{
			ApplicationID: result.ID,
			ScholarshipID: result.ScholarshipID,
			UserID:        result.UserID,
			FromStatus:    previousStatus,
			ToStatus:      result.Status,
			ChangedBy:     actor.UserID,
			OccurredAt:    s.now(),
		})
		s.logger.Info().
			Uint("application_id", result.ID).
			Str("from", previousStatus).
			Str("to", result.Status).
			Msg("application status changed")
	}

	return dto.NewApplicationResponse(result), nil
}

func (s *applicationService) SoftDelete(ctx context.Context, scope tenancy.Scope, id uint) error {
	application, err := s.getScoped(ctx, scope, id)
	if err != nil {
		return err
	}

	actor := scope.Identity()
	if actor.IsStudent() && application.UserID != actor.UserID {
		return ErrNotOwner
	}
	if actor.IsCommittee() {
		return ErrStatusNotAllowed
	}

	return s.applications.SoftDelete(ctx, application.ID)
}

func (s *applicationService) Restore(ctx context.Context, scope tenancy.Scope, id uint) error {
	if !scope.Identity().IsSuperAdmin() {
		return ErrStatusNotAllowed
	}
	return s.applications.Restore(ctx, id)
}

func (s *applicationService) ForceDelete(ctx context.Context, scope tenancy.Scope, id uint) error {
	if !scope.Identity().IsSuperAdmin() {
		return ErrStatusNotAllowed
	}
	return s.applications.ForceDelete(ctx, id)
}

func (s *applicationService) getScoped(ctx context.Context, scope tenancy.Scope, id uint) (models.Application, error) {
	application, err := s.applications.GetByID(ctx, scope, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Application{}, ErrApplicationNotFound
		}
		return models.Application{}, err
	}
	return application, nil
}

// authorizeChange enforces the role gates layered on top of the workflow
// guard: students may only edit their own draft and move it to submitted;
// review verdicts require committee or admin.
func (s *applicationService) authorizeChange(actor tenancy.Identity, application models.Application, payload dto.ApplicationUpdateRequest) error {
	if actor.CanReview() {
		return nil
	}

	if application.UserID != actor.UserID {
		return ErrNotOwner
	}

	if !application.CanBeEdited() {
		return ErrApplicationLocked
	}

	if payload.Status != nil && *payload.Status != models.StatusDraft && *payload.Status != models.StatusSubmitted {
		return ErrStatusNotAllowed
	}

	// Review fields and the submission stamp are off limits to
	// applicants; submitted_at is derived for them on submission.
	if payload.CommitteeNotes != nil || payload.Score != nil || payload.ReviewedAt != nil || payload.ReviewedBy != nil {
		return ErrStatusNotAllowed
	}
	if payload.SubmittedAt != nil {
		return ErrStatusNotAllowed
	}

	return nil
}

func (s *applicationService) validateFormData(ctx context.Context, application models.Application) error {
	scholarship, err := s.scholarships.GetByID(ctx, application.ScholarshipID)
	if err != nil {
		return err
	}

	schemaMap := scholarship.FormSchema()
	if schemaMap == nil {
		return nil
	}

	schemaJSON, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("invalid form schema for scholarship %d: %w", scholarship.ID, err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("form_schema.json", strings.NewReader(string(schemaJSON))); err != nil {
		return fmt.Errorf("invalid form schema for scholarship %d: %w", scholarship.ID, err)
	}
	schema, err := compiler.Compile("form_schema.json")
	if err != nil {
		return fmt.Errorf("invalid form schema for scholarship %d: %w", scholarship.ID, err)
	}

	data := map[string]interface{}(application.ApplicationData)
	if data == nil {
		data = map[string]interface{}{}
	}

	if err := schema.Validate(data); err != nil {
		return &workflow.FieldError{Field: "application_data", Message: err.Error()}
	}

	return nil
}
