package handlers

import (
	"errors"
	"strconv"

	"github.com/amaumene/gowatchlist/internal/api/middleware"
	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AuthResponse is the envelope returned by register and login
type AuthResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	User    *models.UserView `json:"user"`
}

// ErrorResponse is the body of every non-auth error
type ErrorResponse struct {
	Error string `json:"error"`
}

var errMissingUserID = errors.New("userId is required")

// statusFor maps a workflow error onto an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrDuplicateUsername),
		errors.Is(err, models.ErrDuplicateEmail),
		errors.Is(err, models.ErrUnauthenticated),
		errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, errMissingUserID):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError answers with the mapped status. Internal errors are logged and
// their detail is not exposed.
func writeError(c *fiber.Ctx, logger *logrus.Logger, err error) error {
	status := statusFor(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": middleware.RequestID(c),
			"method":     c.Method(),
			"path":       c.Path(),
		}).Error("Request failed")
		message = "internal server error"
	}
	return c.Status(status).JSON(ErrorResponse{Error: message})
}

// parseID reads a numeric path parameter
func parseID(c *fiber.Ctx, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, models.ErrInvalidInput
	}
	return id, nil
}

// queryUserID reads the mandatory userId query parameter
func queryUserID(c *fiber.Ctx) (uint64, error) {
	raw := c.Query("userId")
	if raw == "" {
		return 0, errMissingUserID
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errMissingUserID
	}
	return id, nil
}
