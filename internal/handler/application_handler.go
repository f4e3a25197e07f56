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

// ApplicationHandler wires application HTTP routes.
type ApplicationHandler struct {
	service service.ApplicationService
	logger  zerolog.Logger
}

// NewApplicationHandler constructs the handler.
func NewApplicationHandler(service service.ApplicationService, logger zerolog.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		service: service,
		logger:  logger.With().Str("component", "application_handler").Logger(),
	}
}

// Register attaches application endpoints to the router group.
func (h *ApplicationHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

// RegisterAdmin attaches the super-admin-only recovery endpoints.
func (h *ApplicationHandler) RegisterAdmin(router fiber.Router) {
	router.Post("/:id/restore", h.restore)
	router.Delete("/:id/force", h.forceDelete)
}

func (h *ApplicationHandler) list(c *fiber.Ctx) error {
	filter := dto.ApplicationFilter{Deleted: c.QueryBool("deleted")}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		filter.Status = &status
	}

	scholarshipID, err := parseQueryUint(c, "scholarship_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	filter.ScholarshipID = scholarshipID

	userID, err := parseQueryUint(c, "user_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	filter.UserID = userID

	applications, err := h.service.List(c.UserContext(), middleware.ScopeFromRequest(c), filter)
	if err != nil {
		return respondError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "applications retrieved", applications)
}

func (h *ApplicationHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	application, err := h.service.Get(c.UserContext(), middleware.ScopeFromRequest(c), id)
	if err != nil {
		return respondError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "application retrieved", application)
}

func (h *ApplicationHandler) create(c *fiber.Ctx) error {
	var payload dto.ApplicationCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	application, err := h.service.Create(c.UserContext(), middleware.ScopeFromRequest(c), payload)
	if err != nil {
		return respondError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "application created", application)
}

func (h *ApplicationHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ApplicationUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	application, err := h.service.Update(c.UserContext(), middleware.ScopeFromRequest(c), id, payload)
	if err != nil {
		return respondError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "application updated", application)
}

func (h *ApplicationHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.SoftDelete(c.UserContext(), middleware.ScopeFromRequest(c), id); err != nil {
		return respondError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "application deleted", nil)
}

func (h *ApplicationHandler) restore(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Restore(c.UserContext(), middleware.ScopeFromRequest(c), id); err != nil {
		return respondError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "application restored", nil)
}

func (h *ApplicationHandler) forceDelete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.ForceDelete(c.UserContext(), middleware.ScopeFromRequest(c), id); err != nil {
		return respondError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "application permanently deleted", nil)
}
