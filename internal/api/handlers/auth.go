package handlers

import (
	"errors"

	"github.com/amaumene/gowatchlist/internal/controllers"
	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthHandler serves the /auth routes
type AuthHandler struct {
	authCtrl *controllers.AuthController
	logger   *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authCtrl *controllers.AuthController, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		authCtrl: authCtrl,
		logger:   logger,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req controllers.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(AuthResponse{Message: "invalid request body"})
	}

	user, err := h.authCtrl.Register(c.UserContext(), req)
	if err != nil {
		if statusFor(err) == fiber.StatusInternalServerError {
			return writeError(c, h.logger, err)
		}
		return c.Status(fiber.StatusBadRequest).JSON(AuthResponse{Message: err.Error()})
	}

	view := user.View()
	return c.JSON(AuthResponse{Success: true, Message: "Registration successful", User: &view})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(AuthResponse{Message: "invalid request body"})
	}

	user, err := h.authCtrl.Login(c.UserContext(), req.Username, req.Password)
	if errors.Is(err, models.ErrUnauthenticated) {
		return c.Status(fiber.StatusBadRequest).JSON(AuthResponse{Message: "Invalid credentials"})
	}
	if err != nil {
		return writeError(c, h.logger, err)
	}

	view := user.View()
	return c.JSON(AuthResponse{Success: true, Message: "Login successful", User: &view})
}

// GetUser handles GET /auth/user/:id
func (h *AuthHandler) GetUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, h.logger, err)
	}

	user, err := h.authCtrl.GetUser(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(user.View())
}

// UpdateUser handles PUT /auth/user/:id
func (h *AuthHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, h.logger, err)
	}

	var req controllers.ProfileUpdate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(AuthResponse{Message: "invalid request body"})
	}

	user, err := h.authCtrl.UpdateProfile(c.UserContext(), id, req)
	if err != nil {
		if statusFor(err) == fiber.StatusInternalServerError {
			return writeError(c, h.logger, err)
		}
		return c.Status(fiber.StatusBadRequest).JSON(AuthResponse{Message: err.Error()})
	}
	return c.JSON(user.View())
}

// DeleteUser handles DELETE /auth/user/:id
func (h *AuthHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, h.logger, err)
	}

	deleted, err := h.authCtrl.DeleteUser(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(deleted)
}
