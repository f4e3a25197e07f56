package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// APIResponse describes the common structure for API responses.
type APIResponse struct {
	Success bool         `json:"success"`
	Data    interface{}  `json:"data,omitempty"`
	Message string       `json:"message"`
	Errors  []FieldIssue `json:"errors,omitempty"`
}

// FieldIssue names a single invalid field so the client can surface the
// error next to the form input.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SendSuccess sends a successful JSON response with a message.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}

	return SendSuccessWithStatus(c, fiber.StatusOK, message, data)
}

// SendSuccessWithStatus sends a success payload using the provided HTTP status code.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}
	if status == 0 {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// SendError sends an error JSON response with the given status code.
func SendError(c *fiber.Ctx, status int, message string) error {
	if message == "" {
		message = "error"
	}

	return c.Status(status).JSON(APIResponse{
		Success: false,
		Message: message,
	})
}

// SendFieldError sends a 422 response naming the invalid field.
func SendFieldError(c *fiber.Ctx, field, message string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(APIResponse{
		Success: false,
		Message: "validation failed",
		Errors:  []FieldIssue{{Field: field, Message: message}},
	})
}

// SendValidationErrors maps validator errors onto a 422 response with one
// entry per offending field.
func SendValidationErrors(c *fiber.Ctx, errs validator.ValidationErrors) error {
	issues := make([]FieldIssue, 0, len(errs))
	for _, err := range errs {
		issues = append(issues, FieldIssue{
			Field:   strings.ToLower(err.Field()),
			Message: "failed validation rule: " + err.Tag(),
		})
	}

	return c.Status(fiber.StatusUnprocessableEntity).JSON(APIResponse{
		Success: false,
		Message: "validation failed",
		Errors:  issues,
	})
}
