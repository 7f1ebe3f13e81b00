package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"watchshop/internal/services"
)

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	var (
		txErr      *services.TransactionError
		validation *services.ValidationError
		status     *services.InvalidStatusError
		transition *services.InvalidTransitionError
	)
	switch {
	case errors.As(err, &txErr):
		return fiber.StatusInternalServerError
	case errors.As(err, &validation), errors.As(err, &status):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrInsufficientStock),
		errors.As(err, &transition),
		errors.Is(err, services.ErrDuplicateRequest),
		errors.Is(err, services.ErrDuplicate),
		errors.Is(err, services.ErrUserExists):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// respondError writes err as {"message", "error"} with the status matching its kind.
// Validation failures also carry the offending fields under "errors".
func respondError(c *fiber.Ctx, logger *zap.Logger, message string, err error) error {
	code := statusFor(err)
	if code == fiber.StatusInternalServerError {
		logger.Error(message, zap.String("path", c.Path()), zap.Error(err))
	} else {
		logger.Debug(message, zap.String("path", c.Path()), zap.Error(err))
	}

	body := fiber.Map{
		"message": message,
		"error":   err.Error(),
	}
	var validation *services.ValidationError
	if errors.As(err, &validation) {
		body["message"] = "Validation failed"
		body["errors"] = validation.Fields
	}
	return c.Status(code).JSON(body)
}

func badRequestBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}
