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

// DocumentHandler wires document HTTP routes.
type DocumentHandler struct {
	service service.DocumentService
	logger  zerolog.Logger
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(service service.DocumentService, logger zerolog.Logger) *DocumentHandler {
	return &DocumentHandler{
		service: service,
		logger:  logger.With().Str("component", "document_handler").Logger(),
	}
}

// Register attaches document endpoints to the router group.
func (h *DocumentHandler) Register(router fiber.Router) {
	router.Get("", h.listByApplication)
	router.Get("/:id", h.get)
	router.Post("", h.upload)
	router.Delete("/:id", h.delete)
}

// RegisterReview attaches the reviewer-only verification endpoint.
func (h *DocumentHandler) RegisterReview(router fiber.Router) {
	router.Patch("/:id/verify", h.verify)
}

func (h *DocumentHandler) listByApplication(c *fiber.Ctx) error {
	applicationID, err := parseQueryUint(c, "application_id")
	if err != nil || applicationID == nil {
		return utils.SendError(c, fiber.StatusBadRequest, "application_id is required")
	}

	documents, err := h.service.ListByApplication(c.UserContext(), middleware.ScopeFromRequest(c), *applicationID)
	if err != nil {
		return respondError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "documents retrieved", documents)
}

func (h *DocumentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	document, err := h.service.Get(c.UserContext(), middleware.ScopeFromRequest(c), id)
	if err != nil {
		return respondError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "document retrieved", document)
}

func (h *DocumentHandler) upload(c *fiber.Ctx) error {
	applicationID, err := parseFormUint(c, "application_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload := dto.DocumentUploadRequest{
		ApplicationID: applicationID,
		DocumentType:  strings.TrimSpace(c.FormValue("document_type")),
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	document, err := h.service.Upload(c.UserContext(), middleware.ScopeFromRequest(c), payload, file)
	if err != nil {
		return respondError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "document uploaded", document)
}

func (h *DocumentHandler) verify(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.DocumentVerifyRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	document, err := h.service.Verify(c.UserContext(), middleware.ScopeFromRequest(c), id, payload.Verified)
	if err != nil {
		return respondError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "document verification updated", document)
}

func (h *DocumentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), middleware.ScopeFromRequest(c), id); err != nil {
		return respondError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "document deleted", nil)
}
