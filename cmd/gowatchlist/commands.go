package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/amaumene/gowatchlist/internal/app"
	"github.com/amaumene/gowatchlist/internal/config"
	"github.com/amaumene/gowatchlist/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gowatchlist",
		Short:         "Personal watchlist backend with OMDb poster enrichment",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(viper.GetViper(), cmd.Root().PersistentFlags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("port", "", "HTTP port")
	flags.String("config-dir", "", "directory holding the SQLite database")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server and the backfill scheduler",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate()
			},
		},
		newBackfillCmd(),
		newLookupCmd(),
	)

	return root
}

// flagKeys maps persistent flags onto configuration keys
var flagKeys = map[string]string{
	"log-level":  "LOG_LEVEL",
	"port":       "SERVER_PORT",
	"config-dir": "CONFIG_DIR",
}

// bindFlags lets persistent flags override the environment and .env values
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return nil
}

func newBackfillCmd() *cobra.Command {
	var userID uint64

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Look up missing posters for one user, or for every user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackfill(cmd.Context(), userID)
		},
	}
	cmd.Flags().Uint64Var(&userID, "user-id", 0, "only backfill this user (default: all users)")
	return cmd
}

func newLookupCmd() *cobra.Command {
	var title, mediaType string
	var year int

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Query OMDb for a poster without touching the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd.Context(), title, mediaType, year)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "title to look up, a trailing \"(YYYY)\" is used as the year")
	cmd.Flags().StringVar(&mediaType, "type", "", "media type hint (movie, series, documentary, anime, ...)")
	cmd.Flags().IntVar(&year, "year", 0, "release year")
	cmd.MarkFlagRequired("title")
	return cmd
}

// signalContext returns a context cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func loadApp() (*app.App, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	application, cleanup, err := app.Initialize(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return application, cleanup, nil
}

func runServe(parent context.Context) error {
	application, cleanup, err := loadApp()
	if err != nil {
		return err
	}
	defer cleanup()
	logger := application.Logger
	logger.Info("Starting gowatchlist")

	if err := application.Scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer application.Scheduler.Stop()

	ctx, stop := signalContext(parent)
	defer stop()

	logger.Info("gowatchlist is running")
	if err := application.Server.Start(ctx); err != nil {
		return err
	}

	logger.Info("gowatchlist stopped")
	return nil
}

func runMigrate() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Opening the store migrates it
	_, cleanup, err := app.InitializeDatabase(cfg)
	if err != nil {
		return err
	}
	cleanup()

	fmt.Println("Database schema is up to date")
	return nil
}

func runBackfill(parent context.Context, userID uint64) error {
	application, cleanup, err := loadApp()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signalContext(parent)
	defer stop()

	if userID != 0 {
		report, err := application.WatchlistCtrl.RefreshAllMissingPosters(ctx, userID)
		if err != nil {
			return err
		}
		fmt.Printf("user %d: looked up %d, updated %d", report.UserID, report.Looked, report.Updated)
		if report.StoppedEarly {
			fmt.Print(" (interrupted)")
		}
		fmt.Println()
		return nil
	}

	summary, err := application.Scheduler.RunBackfill(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%d users: looked up %d, updated %d, failed %d\n",
		summary.Users, summary.Looked, summary.Updated, summary.Failed)
	return nil
}

func runLookup(parent context.Context, title, mediaType string, year int) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	client, cleanup, err := app.InitializeLookup(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize OMDb client: %w", err)
	}
	defer cleanup()

	if year == 0 {
		title, year = utils.SplitTitleYear(title)
	}

	ctx, stop := signalContext(parent)
	defer stop()

	result := client.LookupWithYear(ctx, title, mediaType, year)
	if !result.Success {
		fmt.Printf("no poster found: %v\n", result.Err)
		return nil
	}

	fmt.Println(*result.PosterURL)
	if result.MatchedTitle != "" {
		fmt.Printf("matched %q (distance %d)\n", result.MatchedTitle, result.Distance)
	}
	return nil
}
