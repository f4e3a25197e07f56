package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/iskolarhub/iskolar-api/internal/middleware"
	"github.com/iskolarhub/iskolar-api/internal/service"
	"github.com/iskolarhub/iskolar-api/internal/utils"
	"github.com/iskolarhub/iskolar-api/internal/workflow"
)

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	raw := strings.TrimSpace(c.Params(name))
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return uint(parsed), nil
}

func parseQueryUint(c *fiber.Ctx, key string) (*uint, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", key)
	}
	value := uint(parsed)
	return &value, nil
}

func parseFormUint(c *fiber.Ctx, key string) (uint, error) {
	raw := strings.TrimSpace(c.FormValue(key))
	if raw == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(parsed), nil
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// respondError translates service errors into API responses shared by
// every handler in the package.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var fieldErr *workflow.FieldError
	if errors.As(err, &fieldErr) {
		return utils.SendFieldError(c, fieldErr.Field, fieldErr.Message)
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return utils.SendValidationErrors(c, validationErrs)
	}

	switch {
	case errors.Is(err, service.ErrApplicationNotFound),
		errors.Is(err, service.ErrScholarshipNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrDocumentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDuplicateApplication),
		errors.Is(err, service.ErrSlugTaken),
		errors.Is(err, service.ErrEmailTaken):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrStatusNotAllowed),
		errors.Is(err, service.ErrNotOwner),
		errors.Is(err, service.ErrAdminOnly),
		errors.Is(err, service.ErrSuperAdminOnly):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrScholarshipClosed),
		errors.Is(err, service.ErrApplicationLocked),
		errors.Is(err, service.ErrUnsupportedFileType):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidRefreshToken):
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	logger.Error().Err(err).Msg("request failed")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
