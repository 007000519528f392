package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported database backends
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	// Database
	DatabaseType string // "sqlite" or "postgres"
	DatabaseFile string // $CONFIG_DIR/gowatchlist.db
	PostgresDSN  string

	// OMDb
	OMDbURL     string
	OMDbAPIKey  string
	OMDbTimeout time.Duration

	// Posters
	PosterCacheTTL         time.Duration // 0 disables the lookup cache
	PosterBackfillDelay    time.Duration // Pause between lookups in a backfill (default: 200ms)
	PosterBackfillSchedule string        // Cron spec for the scheduled backfill, empty disables it

	// Server
	ServerPort         string
	CORSAllowedOrigins string

	// Observability
	MetricsEnabled     bool
	TracingEnabled     bool
	TracingSampleRatio float64

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	setDefaults(viper.GetViper())

	return fromViper(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DATABASE_TYPE", DatabaseSQLite)
	v.SetDefault("OMDB_URL", "http://www.omdbapi.com/")
	v.SetDefault("OMDB_TIMEOUT_SECONDS", 10)
	v.SetDefault("POSTER_CACHE_TTL", "1h")
	v.SetDefault("POSTER_BACKFILL_DELAY", "200ms")
	v.SetDefault("POSTER_BACKFILL_SCHEDULE", "0 3 * * *")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_SAMPLE_RATIO", 1.0)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
}

// fromViper builds a Config from an already populated viper instance
func fromViper(v *viper.Viper) (*Config, error) {
	configDir := v.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "gowatchlist")
	} else {
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		// Database
		DatabaseType: strings.ToLower(v.GetString("DATABASE_TYPE")),
		DatabaseFile: filepath.Join(configDir, "gowatchlist.db"),
		PostgresDSN:  v.GetString("POSTGRES_DSN"),

		// OMDb
		OMDbURL:     v.GetString("OMDB_URL"),
		OMDbAPIKey:  v.GetString("OMDB_API_KEY"),
		OMDbTimeout: time.Duration(v.GetInt("OMDB_TIMEOUT_SECONDS")) * time.Second,

		// Posters
		PosterCacheTTL:         v.GetDuration("POSTER_CACHE_TTL"),
		PosterBackfillDelay:    v.GetDuration("POSTER_BACKFILL_DELAY"),
		PosterBackfillSchedule: v.GetString("POSTER_BACKFILL_SCHEDULE"),

		// Server
		ServerPort:         v.GetString("SERVER_PORT"),
		CORSAllowedOrigins: v.GetString("CORS_ALLOWED_ORIGINS"),

		// Observability
		MetricsEnabled:     v.GetBool("METRICS_ENABLED"),
		TracingEnabled:     v.GetBool("TRACING_ENABLED"),
		TracingSampleRatio: v.GetFloat64("TRACING_SAMPLE_RATIO"),

		// Logging
		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks field combinations that cannot work at runtime
func (c *Config) Validate() error {
	switch c.DatabaseType {
	case DatabaseSQLite:
	case DatabasePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when DATABASE_TYPE is postgres")
		}
	default:
		return fmt.Errorf("unsupported DATABASE_TYPE: %s", c.DatabaseType)
	}
	if c.OMDbURL == "" {
		return fmt.Errorf("OMDB_URL is required")
	}
	if c.PosterBackfillDelay < 0 {
		return fmt.Errorf("POSTER_BACKFILL_DELAY must not be negative")
	}
	if c.TracingSampleRatio < 0 || c.TracingSampleRatio > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATIO must be between 0 and 1")
	}
	return nil
}
