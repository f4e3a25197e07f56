package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/iskolarhub/iskolar-api/internal/dto"
	"github.com/iskolarhub/iskolar-api/internal/middleware"
	"github.com/iskolarhub/iskolar-api/internal/service"
	"github.com/iskolarhub/iskolar-api/internal/utils"
)

// ScholarshipHandler wires scholarship program HTTP routes.
type ScholarshipHandler struct {
	service service.ScholarshipService
	logger  zerolog.Logger
}

// NewScholarshipHandler constructs the handler.
func NewScholarshipHandler(service service.ScholarshipService, logger zerolog.Logger) *ScholarshipHandler {
	return &ScholarshipHandler{
		service: service,
		logger:  logger.With().Str("component", "scholarship_handler").Logger(),
	}
}

// Register attaches scholarship endpoints to the router group. Read
// endpoints are open to every authenticated role; writes are gated by
// the router.
func (h *ScholarshipHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/slug/:slug", h.getBySlug)
	router.Get("/:id", h.get)
}

// RegisterAdmin attaches the administrative scholarship endpoints.
func (h *ScholarshipHandler) RegisterAdmin(router fiber.Router) {
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/restore", h.restore)
	router.Delete("/:id/force", h.forceDelete)
}

func (h *ScholarshipHandler) list(c *fiber.Ctx) error {
	filter := dto.ScholarshipFilter{
		Active:  c.QueryBool("active"),
		Deleted: c.QueryBool("deleted"),
	}
	if programType := strings.TrimSpace(c.Query("type")); programType != "" {
		filter.Type = &programType
	}

	scholarships, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "scholarships retrieved", scholarships)
}

func (h *ScholarshipHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	scholarship, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "scholarship retrieved", scholarship)
}

func (h *ScholarshipHandler) getBySlug(c *fiber.Ctx) error {
	slug := strings.TrimSpace(c.Params("slug"))
	if slug == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid slug")
	}

	scholarship, err := h.service.GetBySlug(c.UserContext(), slug)
	if err != nil {
		return respondError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "scholarship retrieved", scholarship)
}

func (h *ScholarshipHandler) create(c *fiber.Ctx) error {
	var payload dto.ScholarshipCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	scholarship, err := h.service.Create(c.UserContext(), payload)
	if err != nil {
		return respondError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "scholarship created", scholarship)
}

func (h *ScholarshipHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ScholarshipUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	scholarship, err := h.service.Update(c.UserContext(), id, payload)
	if err != nil {
		return respondError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "scholarship updated", scholarship)
}

func (h *ScholarshipHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.SoftDelete(c.UserContext(), middleware.ScopeFromRequest(c), id); err != nil {
		return respondError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "scholarship deleted", nil)
}

func (h *ScholarshipHandler) restore(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Restore(c.UserContext(), middleware.ScopeFromRequest(c), id); err != nil {
		return respondError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "scholarship restored", nil)
}

func (h *ScholarshipHandler) forceDelete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.ForceDelete(c.UserContext(), middleware.ScopeFromRequest(c), id); err != nil {
		return respondError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "scholarship permanently deleted", nil)
}
