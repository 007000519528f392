package app

import (
	"context"
	"path/filepath"
	"time"

	"github.com/amaumene/gowatchlist/internal/api"
	"github.com/amaumene/gowatchlist/internal/config"
	"github.com/amaumene/gowatchlist/internal/controllers"
	"github.com/amaumene/gowatchlist/internal/metrics"
	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/amaumene/gowatchlist/internal/scheduler"
	"github.com/amaumene/gowatchlist/internal/services/omdb"
	"github.com/amaumene/gowatchlist/internal/tracing"
	"github.com/amaumene/gowatchlist/internal/utils"
	"github.com/google/wire"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// App holds the fully wired application
type App struct {
	Config        *config.Config
	Logger        *logrus.Logger
	DB            *models.Database
	OMDb          *omdb.Client
	AuthCtrl      *controllers.AuthController
	WatchlistCtrl *controllers.WatchlistController
	Server        *api.Server
	Scheduler     *scheduler.Scheduler
}

// InfraSet provides logging, observability and storage
var InfraSet = wire.NewSet(
	ProvideLogger,
	metrics.New,
	ProvideTracerProvider,
	ProvideDatabase,
)

// AppSet provides everything built on top of InfraSet
var AppSet = wire.NewSet(
	InfraSet,
	omdb.NewClient,
	ProvidePosterLookup,
	controllers.NewAuthController,
	ProvideWatchlistController,
	wire.Bind(new(scheduler.Backfiller), new(*controllers.WatchlistController)),
	scheduler.NewScheduler,
	api.NewServer,
	wire.Struct(new(App), "*"),
)

// ProvideLogger builds the process logger from the configuration
func ProvideLogger(cfg *config.Config) *logrus.Logger {
	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	logger.WithField("config_dir", filepath.Dir(cfg.DatabaseFile)).Debug("Configuration loaded")
	return logger
}

// ProvideTracerProvider installs the tracer provider and flushes it on cleanup
func ProvideTracerProvider(cfg *config.Config, logger *logrus.Logger) (trace.TracerProvider, func()) {
	tp, shutdown := tracing.NewTracerProvider(cfg, logger)
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			logger.WithError(err).Warn("Failed to flush traces")
		}
	}
	return tp, cleanup
}

// ProvideDatabase opens the configured store and closes it on cleanup
func ProvideDatabase(cfg *config.Config, logger *logrus.Logger) (*models.Database, func(), error) {
	db, err := models.NewDatabase(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.WithField("type", cfg.DatabaseType).Info("Database initialized")

	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close database")
		}
	}
	return db, cleanup, nil
}

// ProvidePosterLookup puts the result cache in front of the OMDb client
// unless the cache TTL disables it
func ProvidePosterLookup(cfg *config.Config, client *omdb.Client, m *metrics.Metrics) controllers.PosterLookup {
	if cfg.PosterCacheTTL <= 0 {
		return client
	}
	return omdb.NewCachedClient(client, cfg.PosterCacheTTL, m)
}

// ProvideWatchlistController builds the watchlist controller with the configured backfill delay
func ProvideWatchlistController(
	cfg *config.Config,
	db *models.Database,
	lookup controllers.PosterLookup,
	m *metrics.Metrics,
	tp trace.TracerProvider,
	logger *logrus.Logger,
) *controllers.WatchlistController {
	return controllers.NewWatchlistController(db, lookup, cfg.PosterBackfillDelay, m, tp, logger)
}
