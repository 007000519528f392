package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// RegisterRequest carries the fields of a new account
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// ProfileUpdate carries the editable profile fields
type ProfileUpdate struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// AuthController handles registration, login and profile maintenance
type AuthController struct {
	db        *models.Database
	hashCost  int
	dummyHash []byte
	logger    *logrus.Logger
}

// NewAuthController creates a new auth controller
func NewAuthController(db *models.Database, logger *logrus.Logger) *AuthController {
	return newAuthController(db, bcrypt.DefaultCost, logger)
}

func newAuthController(db *models.Database, hashCost int, logger *logrus.Logger) *AuthController {
	// Compared against on unknown usernames so both login failures cost the same
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("gowatchlist"), hashCost)
	if err != nil {
		logger.WithError(err).Warn("Failed to prepare login timing hash, unknown usernames will fail faster")
	}

	return &AuthController{
		db:        db,
		hashCost:  hashCost,
		dummyHash: dummyHash,
		logger:    logger,
	}
}

// Register creates a new account. The username is checked before the email,
// so a request colliding on both reports the username.
func (c *AuthController) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", models.ErrInvalidInput)
	}

	taken, err := c.db.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, models.ErrDuplicateUsername
	}

	registered, err := c.db.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if registered {
		return nil, models.ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), c.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}
	if err := c.db.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered")

	return user, nil
}

// Login verifies credentials and records the login time. Unknown usernames
// and wrong passwords both return ErrUnauthenticated.
func (c *AuthController) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := c.db.GetUserByUsername(ctx, username)
	if errors.Is(err, models.ErrNotFound) {
		bcrypt.CompareHashAndPassword(c.dummyHash, []byte(password))
		c.logger.WithField("username", username).Debug("Login failed")
		return nil, models.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		c.logger.WithField("username", username).Debug("Login failed")
		return nil, models.ErrUnauthenticated
	}

	now := time.Now()
	if err := c.db.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLogin = &now

	c.logger.WithField("user_id", user.ID).Info("User logged in")
	return user, nil
}

// GetUser retrieves a user by ID
func (c *AuthController) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	return c.db.GetUserByID(ctx, id)
}

// UpdateProfile overwrites first name, last name and email.
// The email is not checked for uniqueness here; the store's unique index
// still rejects a collision.
func (c *AuthController) UpdateProfile(ctx context.Context, id uint64, update ProfileUpdate) (*models.User, error) {
	if err := c.db.UpdateUserProfile(ctx, id, update.FirstName, update.LastName, update.Email); err != nil {
		return nil, err
	}

	c.logger.WithField("user_id", id).Info("Profile updated")
	return c.db.GetUserByID(ctx, id)
}

// DeleteUser removes an account together with its watchlist.
// Returns false if the user did not exist.
func (c *AuthController) DeleteUser(ctx context.Context, id uint64) (bool, error) {
	deleted, err := c.db.DeleteUser(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	if deleted {
		c.logger.WithField("user_id", id).Info("User deleted")
	}
	return deleted, nil
}
