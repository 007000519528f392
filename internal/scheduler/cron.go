package scheduler

import (
	"context"
	"fmt"

	"github.com/amaumene/gowatchlist/internal/config"
	"github.com/amaumene/gowatchlist/internal/controllers"
	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Backfiller fills in missing posters for one user
type Backfiller interface {
	RefreshAllMissingPosters(ctx context.Context, userID uint64) (controllers.BackfillReport, error)
}

// Summary totals one backfill run across all users
type Summary struct {
	Users   int
	Looked  int
	Updated int
	Failed  int
}

// Scheduler runs the poster backfill on a cron schedule
type Scheduler struct {
	cron       *cron.Cron
	schedule   string
	backfiller Backfiller
	db         *models.Database
	logger     *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a new scheduler
func NewScheduler(cfg *config.Config, backfiller Backfiller, db *models.Database, logger *logrus.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cronLogger := cron.PrintfLogger(logger)

	return &Scheduler{
		cron:       cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger))),
		schedule:   cfg.PosterBackfillSchedule,
		backfiller: backfiller,
		db:         db,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start starts the scheduler. An empty schedule disables it.
func (s *Scheduler) Start() error {
	if s.schedule == "" {
		s.logger.Info("Poster backfill schedule is empty, scheduler disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.runBackfill()
	})
	if err != nil {
		return fmt.Errorf("failed to add backfill job: %w", err)
	}

	s.cron.Start()
	s.logger.WithField("schedule", s.schedule).Info("Scheduler started")
	return nil
}

// Stop cancels a running backfill and waits for it to return
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cancel()
	<-s.cron.Stop().Done()
}

// runBackfill executes the scheduled backfill job
func (s *Scheduler) runBackfill() {
	s.logger.Info("Running scheduled poster backfill")

	summary, err := s.RunBackfill(s.ctx)
	if err != nil {
		s.logger.WithError(err).Error("Poster backfill job failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"users":   summary.Users,
		"looked":  summary.Looked,
		"updated": summary.Updated,
		"failed":  summary.Failed,
	}).Info("Poster backfill job completed")
}

// RunBackfill backfills every user's missing posters, one user at a time.
// A failure for one user is logged and does not stop the others.
func (s *Scheduler) RunBackfill(ctx context.Context) (Summary, error) {
	var summary Summary

	userIDs, err := s.db.ListUserIDs(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list users: %w", err)
	}

	for _, userID := range userIDs {
		if ctx.Err() != nil {
			s.logger.Info("Poster backfill cancelled")
			break
		}

		report, err := s.backfiller.RefreshAllMissingPosters(ctx, userID)
		summary.Looked += report.Looked
		summary.Updated += report.Updated
		if err != nil {
			summary.Failed++
			s.logger.WithError(err).WithField("user_id", userID).Error("Poster backfill failed for user")
			continue
		}
		summary.Users++
	}

	return summary, nil
}
