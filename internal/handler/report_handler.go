package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/iskolarhub/iskolar-api/internal/middleware"
	"github.com/iskolarhub/iskolar-api/internal/service"
	"github.com/iskolarhub/iskolar-api/internal/utils"
)

// ReportHandler wires reporting HTTP routes.
type ReportHandler struct {
	service service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler constructs the handler.
func NewReportHandler(service service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("component", "report_handler").Logger(),
	}
}

// Register attaches reporting endpoints to the router group.
func (h *ReportHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.dashboard)
}

func (h *ReportHandler) dashboard(c *fiber.Ctx) error {
	dashboard, err := h.service.Dashboard(c.UserContext(), middleware.ScopeFromRequest(c))
	if err != nil {
		return respondError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "dashboard retrieved", dashboard)
}
