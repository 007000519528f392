package handlers

import (
	"github.com/amaumene/gowatchlist/internal/controllers"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// BackfillStartedMessage is the body returned by the refresh-all route
const BackfillStartedMessage = "Poster refresh started for all entries"

// EntryRequest is the body of POST and PUT /Watchlist
type EntryRequest struct {
	Title     string  `json:"title"`
	Type      string  `json:"type"`
	Genre     string  `json:"genre"`
	Watched   bool    `json:"watched"`
	Rating    int     `json:"rating"`
	PosterURL *string `json:"posterUrl"`
	UserID    uint64  `json:"userId"`
}

func (r EntryRequest) values() controllers.EntryValues {
	return controllers.EntryValues{
		Title:     r.Title,
		Type:      r.Type,
		Genre:     r.Genre,
		Watched:   r.Watched,
		Rating:    r.Rating,
		PosterURL: r.PosterURL,
	}
}

// WatchlistHandler serves the /Watchlist routes
type WatchlistHandler struct {
	watchlistCtrl *controllers.WatchlistController
	logger        *logrus.Logger
}

// NewWatchlistHandler creates a new watchlist handler
func NewWatchlistHandler(watchlistCtrl *controllers.WatchlistController, logger *logrus.Logger) *WatchlistHandler {
	return &WatchlistHandler{
		watchlistCtrl: watchlistCtrl,
		logger:        logger,
	}
}

// List handles GET /Watchlist. Without userId every entry is returned.
func (h *WatchlistHandler) List(c *fiber.Ctx) error {
	if c.Query("userId") == "" {
		entries, err := h.watchlistCtrl.ListAll(c.UserContext())
		if err != nil {
			return writeError(c, h.logger, err)
		}
		return c.JSON(entries)
	}

	userID, err := queryUserID(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	entries, err := h.watchlistCtrl.ListByUser(c.UserContext(), userID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(entries)
}

// Create handles POST /Watchlist
func (h *WatchlistHandler) Create(c *fiber.Ctx) error {
	var req EntryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if req.UserID == 0 {
		return writeError(c, h.logger, errMissingUserID)
	}

	entry, err := h.watchlistCtrl.Create(c.UserContext(), req.UserID, req.values())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(entry)
}

// Get handles GET /Watchlist/:id
func (h *WatchlistHandler) Get(c *fiber.Ctx) error {
	userID, err := queryUserID(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, h.logger, err)
	}

	entry, err := h.watchlistCtrl.GetOne(c.UserContext(), id, userID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(entry)
}

// Update handles PUT /Watchlist/:id
func (h *WatchlistHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, h.logger, err)
	}

	var req EntryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if req.UserID == 0 {
		return writeError(c, h.logger, errMissingUserID)
	}

	entry, err := h.watchlistCtrl.Update(c.UserContext(), id, req.UserID, req.values())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(entry)
}

// Delete handles DELETE /Watchlist/:id and answers true or false
func (h *WatchlistHandler) Delete(c *fiber.Ctx) error {
	userID, err := queryUserID(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, h.logger, err)
	}

	deleted, err := h.watchlistCtrl.Delete(c.UserContext(), id, userID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(deleted)
}

// RefreshPoster handles POST /Watchlist/:id/refresh-poster
func (h *WatchlistHandler) RefreshPoster(c *fiber.Ctx) error {
	userID, err := queryUserID(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, h.logger, err)
	}

	entry, err := h.watchlistCtrl.RefreshPoster(c.UserContext(), id, userID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(entry)
}

// RefreshAllPosters handles POST /Watchlist/refresh-all-posters. The backfill
// runs to completion before the response is written.
func (h *WatchlistHandler) RefreshAllPosters(c *fiber.Ctx) error {
	userID, err := queryUserID(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	if _, err := h.watchlistCtrl.RefreshAllMissingPosters(c.UserContext(), userID); err != nil {
		return writeError(c, h.logger, err)
	}
	return c.SendString(BackfillStartedMessage)
}
