package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amaumene/gowatchlist/internal/metrics"
	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/amaumene/gowatchlist/internal/services/omdb"
	"github.com/amaumene/gowatchlist/internal/tracing"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PosterLookup resolves a poster URL for a title and a media type hint.
// Implementations never fail; a missing poster is a Result with Success false.
// Lookup may answer from a cache, Refresh always asks upstream.
type PosterLookup interface {
	Lookup(ctx context.Context, title, mediaType string) omdb.Result
	Refresh(ctx context.Context, title, mediaType string) omdb.Result
}

// EntryValues carries the fields a caller may set on an entry
type EntryValues struct {
	Title     string
	Type      string
	Genre     string
	Watched   bool
	Rating    int
	PosterURL *string
}

// BackfillReport summarizes one run of RefreshAllMissingPosters
type BackfillReport struct {
	UserID       uint64
	Looked       int  // entries a lookup was issued for
	Updated      int  // entries that received a poster
	StoppedEarly bool // the run was cancelled before every entry was processed
}

// WatchlistController manages watchlist entries and their posters
type WatchlistController struct {
	db            *models.Database
	lookup        PosterLookup
	backfillDelay time.Duration
	metrics       *metrics.Metrics
	tracer        trace.Tracer
	logger        *logrus.Logger
}

// NewWatchlistController creates a new watchlist controller
func NewWatchlistController(
	db *models.Database,
	lookup PosterLookup,
	backfillDelay time.Duration,
	m *metrics.Metrics,
	tp trace.TracerProvider,
	logger *logrus.Logger,
) *WatchlistController {
	return &WatchlistController{
		db:            db,
		lookup:        lookup,
		backfillDelay: backfillDelay,
		metrics:       m,
		tracer:        tp.Tracer(tracing.InstrumentationName),
		logger:        logger,
	}
}

// ListAll returns every entry of every user
func (c *WatchlistController) ListAll(ctx context.Context) ([]models.WatchlistEntry, error) {
	return c.db.GetAllEntries(ctx)
}

// ListByUser returns the entries owned by a user
func (c *WatchlistController) ListByUser(ctx context.Context, userID uint64) ([]models.WatchlistEntry, error) {
	return c.db.GetEntriesByUser(ctx, userID)
}

// Create stores a new entry for the user. When no poster is supplied one is
// looked up, and the lookup result is stored even when nothing was found.
func (c *WatchlistController) Create(ctx context.Context, userID uint64, values EntryValues) (*models.WatchlistEntry, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: userId is required", models.ErrInvalidInput)
	}
	if strings.TrimSpace(values.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", models.ErrInvalidInput)
	}
	if _, err := c.db.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "watchlist.create", trace.WithAttributes(
		attribute.Int64("user.id", int64(userID)),
	))
	defer span.End()

	entry := &models.WatchlistEntry{
		Title:     values.Title,
		Type:      values.Type,
		Genre:     values.Genre,
		Watched:   values.Watched,
		Rating:    values.Rating,
		PosterURL: values.PosterURL,
		UserID:    userID,
	}

	if entry.MissingPoster() {
		entry.PosterURL = c.lookup.Lookup(ctx, entry.Title, entry.Type).PosterURL
	}

	if err := c.db.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"entry_id":   entry.ID,
		"user_id":    userID,
		"title":      entry.Title,
		"has_poster": !entry.MissingPoster(),
	}).Info("Watchlist entry created")

	return entry, nil
}

// GetOne returns an entry owned by the user
func (c *WatchlistController) GetOne(ctx context.Context, id, userID uint64) (*models.WatchlistEntry, error) {
	return c.db.GetEntryForUser(ctx, id, userID)
}

// Update overwrites the entry's fields. A changed title or type re-fetches the
// poster; otherwise a supplied poster replaces the stored one and an absent
// poster leaves it untouched.
func (c *WatchlistController) Update(ctx context.Context, id, userID uint64, values EntryValues) (*models.WatchlistEntry, error) {
	if strings.TrimSpace(values.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", models.ErrInvalidInput)
	}

	entry, err := c.db.GetEntryForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "watchlist.update", trace.WithAttributes(
		attribute.Int64("entry.id", int64(id)),
		attribute.Int64("user.id", int64(userID)),
	))
	defer span.End()

	identityChanged := entry.Title != values.Title || entry.Type != values.Type

	entry.Title = values.Title
	entry.Type = values.Type
	entry.Genre = values.Genre
	entry.Watched = values.Watched
	entry.Rating = values.Rating

	switch {
	case identityChanged:
		entry.PosterURL = c.lookup.Refresh(ctx, entry.Title, entry.Type).PosterURL
	case values.PosterURL != nil:
		entry.PosterURL = values.PosterURL
	}

	if err := c.db.UpdateEntryForUser(ctx, entry); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"entry_id":         id,
		"user_id":          userID,
		"poster_refetched": identityChanged,
	}).Info("Watchlist entry updated")

	return entry, nil
}

// Delete removes an entry owned by the user. Returns false if no such entry exists.
func (c *WatchlistController) Delete(ctx context.Context, id, userID uint64) (bool, error) {
	deleted, err := c.db.DeleteEntryForUser(ctx, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete entry: %w", err)
	}
	if deleted {
		c.logger.WithFields(logrus.Fields{
			"entry_id": id,
			"user_id":  userID,
		}).Info("Watchlist entry deleted")
	}
	return deleted, nil
}

// RefreshPoster looks the poster up again and overwrites the stored one,
// even when the entry already had a poster
func (c *WatchlistController) RefreshPoster(ctx context.Context, id, userID uint64) (*models.WatchlistEntry, error) {
	entry, err := c.db.GetEntryForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "watchlist.refresh_poster", trace.WithAttributes(
		attribute.Int64("entry.id", int64(id)),
	))
	defer span.End()

	entry.PosterURL = c.lookup.Refresh(ctx, entry.Title, entry.Type).PosterURL
	if err := c.db.SetPosterForUser(ctx, id, userID, entry.PosterURL); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"entry_id":   id,
		"has_poster": !entry.MissingPoster(),
	}).Info("Poster refreshed")

	return entry, nil
}

// RefreshAllMissingPosters looks up a poster for every entry of the user that
// has none, pausing between lookups. Cancelling ctx ends the run early without
// an error; the report says how far it got.
func (c *WatchlistController) RefreshAllMissingPosters(ctx context.Context, userID uint64) (BackfillReport, error) {
	report := BackfillReport{UserID: userID}

	entries, err := c.db.GetEntriesByUser(ctx, userID)
	if err != nil {
		return report, fmt.Errorf("failed to list entries: %w", err)
	}

	ctx, span := c.tracer.Start(ctx, "watchlist.backfill", trace.WithAttributes(
		attribute.Int64("user.id", int64(userID)),
	))
	defer span.End()

	logger := c.logger.WithField("user_id", userID)

	for i := range entries {
		entry := &entries[i]
		if !entry.MissingPoster() {
			continue
		}

		if report.Looked > 0 {
			if err := c.pause(ctx); err != nil {
				logger.WithField("processed", report.Looked).Info("Poster backfill interrupted")
				report.StoppedEarly = true
				break
			}
		}

		report.Looked++
		result := c.lookup.Lookup(ctx, entry.Title, entry.Type)
		if !result.Success {
			continue
		}

		err := c.db.SetPosterForUser(ctx, entry.ID, userID, result.PosterURL)
		if errors.Is(err, models.ErrNotFound) {
			// Deleted while the backfill was running
			continue
		}
		if err != nil {
			return report, fmt.Errorf("failed to store poster for entry %d: %w", entry.ID, err)
		}

		report.Updated++
		c.metrics.ObserveBackfillUpdate()
	}

	span.SetAttributes(
		attribute.Int("backfill.looked", report.Looked),
		attribute.Int("backfill.updated", report.Updated),
	)
	logger.WithFields(logrus.Fields{
		"looked":  report.Looked,
		"updated": report.Updated,
	}).Info("Poster backfill finished")

	return report, nil
}

// pause waits for the backfill delay or until ctx is done
func (c *WatchlistController) pause(ctx context.Context) error {
	if c.backfillDelay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(c.backfillDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
