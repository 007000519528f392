package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	setDefaults(v)
	v.Set("CONFIG_DIR", t.TempDir())
	return v
}

func TestDefaults(t *testing.T) {
	v := newTestViper(t)

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, DatabaseSQLite, cfg.DatabaseType)
	assert.Equal(t, "gowatchlist.db", filepath.Base(cfg.DatabaseFile))
	assert.Equal(t, "http://www.omdbapi.com/", cfg.OMDbURL)
	assert.Equal(t, 10*time.Second, cfg.OMDbTimeout)
	assert.Equal(t, time.Hour, cfg.PosterCacheTTL)
	assert.Equal(t, 200*time.Millisecond, cfg.PosterBackfillDelay)
	assert.Equal(t, "0 3 * * *", cfg.PosterBackfillSchedule)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "http://localhost:5173", cfg.CORSAllowedOrigins)
	assert.True(t, cfg.MetricsEnabled)
	assert.False(t, cfg.TracingEnabled)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestPostgresRequiresDSN(t *testing.T) {
	v := newTestViper(t)
	v.Set("DATABASE_TYPE", "Postgres")

	_, err := fromViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_DSN")

	v.Set("POSTGRES_DSN", "host=localhost user=watch dbname=watch")
	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, DatabasePostgres, cfg.DatabaseType)
}

func TestUnsupportedDatabaseType(t *testing.T) {
	v := newTestViper(t)
	v.Set("DATABASE_TYPE", "mongo")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestSampleRatioBounds(t *testing.T) {
	v := newTestViper(t)
	v.Set("TRACING_SAMPLE_RATIO", 1.5)

	_, err := fromViper(v)
	assert.Error(t, err)
}
