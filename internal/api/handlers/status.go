package handlers

import (
	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// StatusHandler handles status requests
type StatusHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(db *models.Database, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		db:     db,
		logger: logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	TotalEntries   int            `json:"total_entries"`
	Watched        int            `json:"watched"`
	Unwatched      int            `json:"unwatched"`
	MissingPosters int            `json:"missing_posters"`
	EntriesByType  map[string]int `json:"entries_by_type"`
}

// Handle summarizes the watchlist across all users
func (h *StatusHandler) Handle(c *fiber.Ctx) error {
	entries, err := h.db.GetAllEntries(c.UserContext())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get entries")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "internal server error"})
	}

	response := StatusResponse{
		TotalEntries:  len(entries),
		EntriesByType: make(map[string]int),
	}

	for i := range entries {
		entry := &entries[i]
		if entry.Watched {
			response.Watched++
		} else {
			response.Unwatched++
		}
		if entry.MissingPoster() {
			response.MissingPosters++
		}
		response.EntriesByType[entry.Type]++
	}

	return c.JSON(response)
}
