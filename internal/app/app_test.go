package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/amaumene/gowatchlist/internal/config"
	"github.com/amaumene/gowatchlist/internal/metrics"
	"github.com/amaumene/gowatchlist/internal/services/omdb"
	"github.com/amaumene/gowatchlist/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DatabaseType:        config.DatabaseSQLite,
		DatabaseFile:        filepath.Join(t.TempDir(), "gowatchlist.db"),
		OMDbURL:             "http://127.0.0.1:1/",
		OMDbTimeout:         time.Second,
		PosterCacheTTL:      time.Minute,
		PosterBackfillDelay: time.Millisecond,
		ServerPort:          "0",
		LogLevel:            "error",
	}
}

func TestProvidePosterLookup(t *testing.T) {
	cfg := testConfig(t)
	client, err := omdb.NewClient(cfg, noop.NewTracerProvider(), nil, testutil.NewLogger())
	require.NoError(t, err)

	lookup := ProvidePosterLookup(cfg, client, metrics.New())
	assert.IsType(t, &omdb.CachedClient{}, lookup)

	cfg.PosterCacheTTL = 0
	lookup = ProvidePosterLookup(cfg, client, nil)
	assert.Same(t, client, lookup)
}

func TestInitialize(t *testing.T) {
	app, cleanup, err := Initialize(testConfig(t))
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, app.Server)
	assert.NotNil(t, app.Scheduler)
	assert.NotNil(t, app.WatchlistCtrl)
	assert.NotNil(t, app.OMDb)
}

func TestInitializeDatabase(t *testing.T) {
	db, cleanup, err := InitializeDatabase(testConfig(t))
	require.NoError(t, err)
	defer cleanup()

	ids, err := db.ListUserIDs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
