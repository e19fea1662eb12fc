package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cardvault/cardvault/internal/config"
	"github.com/cardvault/cardvault/internal/domain/billing"
	"github.com/cardvault/cardvault/internal/domain/card"
	"github.com/cardvault/cardvault/internal/platform/db"
	"github.com/cardvault/cardvault/internal/platform/jobs"
	"github.com/cardvault/cardvault/internal/platform/middleware"
	"github.com/cardvault/cardvault/internal/platform/render"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cardvault-server",
		Short: "Warranty card and billing API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(renderCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the card API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

// renderCmd renders a card to PNG files without touching the database, for
// previewing layouts and printing one-off cards.
func renderCmd() *cobra.Command {
	fields := map[string]*string{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a card to PNG files",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			baseURL, _ := cmd.Flags().GetString("base-url")
			assetDir, _ := cmd.Flags().GetString("assets")

			draft := card.NewDraft()
			for name, value := range fields {
				if *value == "" {
					continue
				}
				if err := draft.Set(name, *value); err != nil {
					return err
				}
			}
			c := draft.Snapshot()

			renderer, err := render.New(baseURL, assetDir)
			if err != nil {
				return err
			}
			for _, side := range []string{"front", "back"} {
				data, err := renderer.RenderPNG(&c, side)
				if err != nil {
					return err
				}
				path := out + "/" + renderer.FileName(&c, side)
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return err
				}
				fmt.Println("wrote", path)
			}
			return nil
		},
	}

	for _, name := range []string{
		"card_id", "patient", "doctor", "lab", "case_id",
		"doctor_mobile", "lab_mobile", "valid_from", "valid_to",
	} {
		fields[name] = cmd.Flags().String(name, "", "Card "+name+" field")
	}
	cmd.Flags().String("out", ".", "Output directory")
	cmd.Flags().String("base-url", "http://localhost:8000", "Public origin for the QR payload")
	cmd.Flags().String("assets", "", "Directory with card-front.png and card-back.png")
	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
	}))

	// Services
	renderer, err := render.New(cfg.PublicBaseURL, cfg.AssetDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build renderer")
	}

	cardSvc := card.NewService(card.NewRepoPG(pool))
	cardHandler := card.NewHandler(cardSvc, renderer)

	billingSvc := billing.NewService(billing.NewRepoPG(pool), cardSvc)
	billingHandler := billing.NewHandler(billingSvc)

	// API group with rate limiting
	apiV1 := e.Group("/api/v1")
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	cardHandler.RegisterRoutes(apiV1)
	billingHandler.RegisterRoutes(apiV1)

	// Public verification endpoints, the QR landing targets
	cardHandler.RegisterPublicRoutes(e)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":  "ok",
			"version": "0.1.0",
			"db":      db.GetPoolStats(pool),
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Overdue sweep
	sweep, err := jobs.NewOverdueRunner(cfg.OverdueSweepSpec, billingSvc)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid overdue sweep spec")
	}
	sweep.Start()
	defer sweep.Stop()

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
