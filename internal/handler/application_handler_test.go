package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/iskolarhub/iskolar-api/internal/dto"
	"github.com/iskolarhub/iskolar-api/internal/handler"
	"github.com/iskolarhub/iskolar-api/internal/models"
	"github.com/iskolarhub/iskolar-api/internal/service"
	"github.com/iskolarhub/iskolar-api/internal/tenancy"
	"github.com/iskolarhub/iskolar-api/internal/workflow"
)

type mockApplicationService struct {
	lastScope  tenancy.Scope
	lastFilter dto.ApplicationFilter
	lastUpdate dto.ApplicationUpdateRequest
	response   dto.ApplicationResponse
	list       []dto.ApplicationResponse
	err        error
}

func (m *mockApplicationService) List(_ context.Context, scope tenancy.Scope, filter dto.ApplicationFilter) ([]dto.ApplicationResponse, error) {
	m.lastScope = scope
	m.lastFilter = filter
	return m.list, m.err
}

func (m *mockApplicationService) Get(_ context.Context, scope tenancy.Scope, _ uint) (dto.ApplicationResponse, error) {
	m.lastScope = scope
	return m.response, m.err
}

func (m *mockApplicationService) Create(_ context.Context, scope tenancy.Scope, _ dto.ApplicationCreateRequest) (dto.ApplicationResponse, error) {
	m.lastScope = scope
	return m.response, m.err
}

func (m *mockApplicationService) Update(_ context.Context, scope tenancy.Scope, _ uint, payload dto.ApplicationUpdateRequest) (dto.ApplicationResponse, error) {
	m.lastScope = scope
	m.lastUpdate = payload
	return m.response, m.err
}

func (m *mockApplicationService) SoftDelete(_ context.Context, scope tenancy.Scope, _ uint) error {
	m.lastScope = scope
	return m.err
}

func (m *mockApplicationService) Restore(_ context.Context, scope tenancy.Scope, _ uint) error {
	m.lastScope = scope
	return m.err
}

func (m *mockApplicationService) ForceDelete(_ context.Context, scope tenancy.Scope, _ uint) error {
	m.lastScope = scope
	return m.err
}

// injectIdentity stands in for JWTProtected in handler tests.
func injectIdentity(identity tenancy.Identity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", identity.UserID)
		c.Locals("user_role", identity.Role)
		c.Locals("identity", identity)
		c.SetUserContext(tenancy.WithScope(c.UserContext(), tenancy.ScopeFor(identity)))
		return c.Next()
	}
}

func newApplicationTestApp(svc service.ApplicationService, identity tenancy.Identity) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/applications", injectIdentity(identity))
	handler.NewApplicationHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestApplicationHandlerListPassesScopeAndFilters(t *testing.T) {
	svc := &mockApplicationService{list: []dto.ApplicationResponse{{ID: 1, Status: models.StatusSubmitted}}}
	identity := tenancy.CommitteeMember(7, 3)
	app := newApplicationTestApp(svc, identity)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/applications?status=submitted&scholarship_id=3", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool                      `json:"success"`
		Data    []dto.ApplicationResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Len(t, body.Data, 1)

	require.Equal(t, identity, svc.lastScope.Identity())
	require.NotNil(t, svc.lastFilter.Status)
	require.Equal(t, models.StatusSubmitted, *svc.lastFilter.Status)
	require.NotNil(t, svc.lastFilter.ScholarshipID)
	require.EqualValues(t, 3, *svc.lastFilter.ScholarshipID)
}

func TestApplicationHandlerUpdateMapsFieldErrorsTo422(t *testing.T) {
	svc := &mockApplicationService{err: &workflow.FieldError{
		Field:   "committee_notes",
		Message: "a short review note is required when approving or rejecting",
	}}
	app := newApplicationTestApp(svc, tenancy.CommitteeMember(7, 3))

	payload := bytes.NewBufferString(`{"status":"approved"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/applications/1", payload)
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var body struct {
		Success bool `json:"success"`
		Errors  []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	decodeResponse(t, resp, &body)
	require.False(t, body.Success)
	require.Len(t, body.Errors, 1)
	require.Equal(t, "committee_notes", body.Errors[0].Field)
}

func TestApplicationHandlerScopedMissingRowsAre404(t *testing.T) {
	svc := &mockApplicationService{err: service.ErrApplicationNotFound}
	app := newApplicationTestApp(svc, tenancy.CommitteeMember(7, 3))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/applications/99", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestApplicationHandlerDuplicateIs409(t *testing.T) {
	svc := &mockApplicationService{err: service.ErrDuplicateApplication}
	app := newApplicationTestApp(svc, tenancy.Student(7, 3))

	payload := bytes.NewBufferString(`{"scholarship_id":3}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/applications", payload)
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestApplicationHandlerForbiddenTransitionsAre403(t *testing.T) {
	svc := &mockApplicationService{err: service.ErrStatusNotAllowed}
	app := newApplicationTestApp(svc, tenancy.Student(7, 3))

	payload := bytes.NewBufferString(`{"status":"approved"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/applications/1", payload)
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestApplicationHandlerRejectsBadIDs(t *testing.T) {
	svc := &mockApplicationService{}
	app := newApplicationTestApp(svc, tenancy.SuperAdmin(1))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/applications/abc", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
