package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/amaumene/gowatchlist/internal/api/handlers"
	"github.com/amaumene/gowatchlist/internal/config"
	"github.com/amaumene/gowatchlist/internal/controllers"
	"github.com/amaumene/gowatchlist/internal/metrics"
	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/amaumene/gowatchlist/internal/services/omdb"
	"github.com/amaumene/gowatchlist/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

// stubLookup answers every lookup with the same poster
type stubLookup struct {
	poster string
}

func (s stubLookup) Refresh(ctx context.Context, title, mediaType string) omdb.Result {
	return s.Lookup(ctx, title, mediaType)
}

func (s stubLookup) Lookup(context.Context, string, string) omdb.Result {
	if s.poster == "" {
		return omdb.Result{}
	}
	poster := s.poster
	return omdb.Result{Success: true, PosterURL: &poster}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := testutil.NewLogger()
	db := testutil.NewDatabase(t)
	m := metrics.New()

	cfg := &config.Config{
		ServerPort:         "0",
		CORSAllowedOrigins: "http://localhost:5173",
		MetricsEnabled:     true,
	}
	authCtrl := controllers.NewAuthController(db, logger)
	watchlistCtrl := controllers.NewWatchlistController(db, stubLookup{poster: "http://p/1.jpg"}, 0, m, noop.NewTracerProvider(), logger)

	return NewServer(cfg, db, authCtrl, watchlistCtrl, m, logger)
}

func do(t *testing.T, s *Server, method, target, body string) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func registerUser(t *testing.T, s *Server, username string) uint64 {
	t.Helper()
	resp, body := do(t, s, http.MethodPost, "/auth/register",
		`{"username":"`+username+`","email":"`+username+`@x.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	var auth handlers.AuthResponse
	require.NoError(t, json.Unmarshal([]byte(body), &auth))
	require.True(t, auth.Success)
	require.NotNil(t, auth.User)
	return auth.User.ID
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)
	id := registerUser(t, s, "a1")

	resp, body := do(t, s, http.MethodPost, "/auth/register", `{"username":"a1","email":"other@x.com","password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, `"success":false`)
	assert.Contains(t, body, models.ErrDuplicateUsername.Error())

	resp, wrongPassword := do(t, s, http.MethodPost, "/auth/login", `{"username":"a1","password":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, wrongPassword, "Invalid credentials")

	resp, unknownUser := do(t, s, http.MethodPost, "/auth/login", `{"username":"ghost","password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, wrongPassword, unknownUser)

	resp, body = do(t, s, http.MethodPost, "/auth/login", `{"username":"a1","password":"pw"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "password")

	userPath := "/auth/user/" + strconv.FormatUint(id, 10)
	resp, body = do(t, s, http.MethodPut, userPath, `{"firstName":"Ada","lastName":"L","email":"ada@x.com"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"firstName":"Ada"`)

	resp, _ = do(t, s, http.MethodGet, "/auth/user/9999", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = do(t, s, http.MethodDelete, userPath, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", body)
}

func TestWatchlistRoutes(t *testing.T) {
	s := newTestServer(t)
	alice := registerUser(t, s, "alice")
	bob := registerUser(t, s, "bob")
	aliceQuery := "?userId=" + strconv.FormatUint(alice, 10)
	bobQuery := "?userId=" + strconv.FormatUint(bob, 10)

	resp, body := do(t, s, http.MethodPost, "/Watchlist",
		`{"title":"Inception","type":"Film","watched":false,"rating":0,"userId":`+strconv.FormatUint(alice, 10)+`}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	var entry models.WatchlistEntry
	require.NoError(t, json.Unmarshal([]byte(body), &entry))
	require.NotNil(t, entry.PosterURL)
	assert.Equal(t, "http://p/1.jpg", *entry.PosterURL)
	entryPath := "/Watchlist/" + strconv.FormatUint(entry.ID, 10)

	resp, _ = do(t, s, http.MethodPost, "/Watchlist", `{"title":"Orphan"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, s, http.MethodGet, entryPath, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, s, http.MethodGet, entryPath+bobQuery, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = do(t, s, http.MethodGet, entryPath+aliceQuery, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"posterUrl":"http://p/1.jpg"`)

	resp, _ = do(t, s, http.MethodPut, entryPath,
		`{"title":"Hijack","userId":`+strconv.FormatUint(bob, 10)+`}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, s, http.MethodPost, entryPath+"/refresh-poster"+aliceQuery, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = do(t, s, http.MethodPost, "/Watchlist/refresh-all-posters"+aliceQuery, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, handlers.BackfillStartedMessage, body)

	resp, _ = do(t, s, http.MethodDelete, entryPath, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = do(t, s, http.MethodDelete, entryPath+bobQuery, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "false", body)

	resp, body = do(t, s, http.MethodDelete, entryPath+aliceQuery, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", body)

	resp, body = do(t, s, http.MethodGet, "/Watchlist"+aliceQuery, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]", body)
}

func TestOperationalRoutes(t *testing.T) {
	s := newTestServer(t)

	resp, body := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "healthy")
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, body = do(t, s, http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"total_entries":0`)

	do(t, s, http.MethodGet, "/Watchlist", "")
	resp, body = do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "gowatchlist_http_requests_total")
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/Watchlist", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}
