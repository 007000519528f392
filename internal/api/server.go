package api

import (
	"context"
	"fmt"
	"time"

	"github.com/amaumene/gowatchlist/internal/api/handlers"
	"github.com/amaumene/gowatchlist/internal/api/middleware"
	"github.com/amaumene/gowatchlist/internal/config"
	"github.com/amaumene/gowatchlist/internal/controllers"
	"github.com/amaumene/gowatchlist/internal/metrics"
	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	app           *fiber.App
	addr          string
	db            *models.Database
	authCtrl      *controllers.AuthController
	watchlistCtrl *controllers.WatchlistController
	metrics       *metrics.Metrics
	logger        *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(
	cfg *config.Config,
	db *models.Database,
	authCtrl *controllers.AuthController,
	watchlistCtrl *controllers.WatchlistController,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *Server {
	s := &Server{
		addr:          ":" + cfg.ServerPort,
		db:            db,
		authCtrl:      authCtrl,
		watchlistCtrl: watchlistCtrl,
		logger:        logger,
	}
	if cfg.MetricsEnabled {
		s.metrics = m
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "gowatchlist",
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
		IdleTimeout:           60 * time.Second,
	})
	s.setupRoutes(cfg)

	return s
}

// App returns the fiber application, mainly for tests
func (s *Server) App() *fiber.App {
	return s.app
}

// setupRoutes configures middleware and all HTTP routes
func (s *Server) setupRoutes(cfg *config.Config) {
	s.app.Use(recover.New())
	s.app.Use(middleware.Logging(s.logger))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, " + middleware.RequestIDHeader,
	}))

	// Health, status and metrics
	healthHandler := handlers.NewHealthHandler(s.db, s.logger)
	s.app.Get("/health", healthHandler.Handle)

	statusHandler := handlers.NewStatusHandler(s.db, s.logger)
	s.app.Get("/status", statusHandler.Handle)

	if s.metrics != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))
		s.app.Use(middleware.Metrics(s.metrics))
	}

	// Auth
	authHandler := handlers.NewAuthHandler(s.authCtrl, s.logger)
	auth := s.app.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/user/:id", authHandler.GetUser)
	auth.Put("/user/:id", authHandler.UpdateUser)
	auth.Delete("/user/:id", authHandler.DeleteUser)

	// Watchlist
	watchlistHandler := handlers.NewWatchlistHandler(s.watchlistCtrl, s.logger)
	watchlist := s.app.Group("/Watchlist")
	watchlist.Get("/", watchlistHandler.List)
	watchlist.Post("/", watchlistHandler.Create)
	watchlist.Post("/refresh-all-posters", watchlistHandler.RefreshAllPosters)
	watchlist.Get("/:id", watchlistHandler.Get)
	watchlist.Put("/:id", watchlistHandler.Update)
	watchlist.Delete("/:id", watchlistHandler.Delete)
	watchlist.Post("/:id/refresh-poster", watchlistHandler.RefreshPoster)
}

// Start starts the HTTP server and blocks until ctx is cancelled or the listener fails
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.app.Listen(s.addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.app.ShutdownWithContext(shutdownCtx)
}
