package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amaumene/gowatchlist/internal/config"
	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// connectAttempts bounds how often opening the store is retried at startup
const connectAttempts = 5

// Database wraps the gorm handle shared by the user and watchlist stores
type Database struct {
	gorm   *gorm.DB
	logger *logrus.Logger
}

// NewDatabase opens the configured database and migrates the schema
func NewDatabase(cfg *config.Config, logger *logrus.Logger) (*Database, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseType {
	case config.DatabasePostgres:
		dialector = postgres.Open(cfg.PostgresDSN)
	default:
		// Foreign keys are off by default in SQLite; cascades need them
		dialector = sqlite.Open(cfg.DatabaseFile + "?_foreign_keys=on")
	}

	db, err := Open(dialector, logger)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Open connects through the given dialector, retrying while the server is not ready
func Open(dialector gorm.Dialector, logger *logrus.Logger) (*Database, error) {
	gormConfig := &gorm.Config{
		Logger:                 newGormLogger(logger),
		TranslateError:         true,
		SkipDefaultTransaction: true,
	}

	var gdb *gorm.DB
	connect := func() error {
		var err error
		gdb, err = gorm.Open(dialector, gormConfig)
		if err != nil {
			return err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return backoff.Permanent(err)
		}
		return sqlDB.Ping()
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), connectAttempts)
	notify := func(err error, wait time.Duration) {
		logger.WithError(err).WithField("retry_in", wait).Warn("Database not ready, retrying")
	}
	if err := backoff.RetryNotify(connect, policy, notify); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{gorm: gdb, logger: logger}, nil
}

// Migrate creates or updates the schema
func (db *Database) Migrate() error {
	if err := db.gorm.AutoMigrate(&User{}, &WatchlistEntry{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close closes the database connection
func (db *Database) Close() error {
	sqlDB, err := db.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the database is reachable
func (db *Database) Ping(ctx context.Context) error {
	sqlDB, err := db.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// translateError maps gorm errors onto the package's sentinel errors
func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// newGormLogger routes gorm's query log through logrus
func newGormLogger(logger *logrus.Logger) gormlogger.Interface {
	level := gormlogger.Warn
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		level = gormlogger.Info
	}

	return gormlogger.New(logger, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}
