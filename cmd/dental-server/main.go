package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/danbennett239/CI601-sub000/internal/config"
	"github.com/danbennett239/CI601-sub000/internal/domain/appointment"
	"github.com/danbennett239/CI601-sub000/internal/domain/practice"
	"github.com/danbennett239/CI601-sub000/internal/domain/review"
	"github.com/danbennett239/CI601-sub000/internal/platform/auth"
	"github.com/danbennett239/CI601-sub000/internal/platform/cache"
	"github.com/danbennett239/CI601-sub000/internal/platform/db"
	"github.com/danbennett239/CI601-sub000/internal/platform/geo"
	"github.com/danbennett239/CI601-sub000/internal/platform/middleware"
	"github.com/danbennett239/CI601-sub000/internal/platform/notify"
)

// SlotSourceAdapter adapts the appointment repository to the
// practice.SlotSource interface, avoiding a circular import between the
// practice and appointment packages.
type SlotSourceAdapter struct {
	repo appointment.Repository
}

// NewSlotSourceAdapter creates a new adapter.
func NewSlotSourceAdapter(repo appointment.Repository) *SlotSourceAdapter {
	return &SlotSourceAdapter{repo: repo}
}

// ListByPractice implements practice.SlotSource.
func (a *SlotSourceAdapter) ListByPractice(ctx context.Context, practiceID uuid.UUID) ([]practice.BookedSlot, error) {
	appts, err := a.repo.ListByPractice(ctx, practiceID)
	if err != nil {
		return nil, err
	}
	slots := make([]practice.BookedSlot, 0, len(appts))
	for _, appt := range appts {
		slots = append(slots, practice.BookedSlot{
			ID:        appt.ID,
			StartTime: appt.StartTime,
			EndTime:   appt.EndTime,
		})
	}
	return slots, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "dental-server",
		Short: "Dental marketplace booking API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the booking API server",
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
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Geocoding, optionally backed by a Redis cache
	var geoCache cache.Cache
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, geocode caching disabled")
		} else {
			defer redisCache.Close()
			geoCache = redisCache
			logger.Info().Msg("connected to redis")
		}
	}
	geocoder := geo.NewClient(cfg.GeocoderURL, geoCache)

	// Email
	var sender notify.EmailSender
	if cfg.SMTPHost != "" {
		sender = notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	} else {
		logger.Warn().Msg("SMTP_HOST not set, confirmation emails will be dropped")
		sender = &notify.MockEmailSender{}
	}
	mailer := notify.NewMailer(sender)

	// Repositories
	practiceRepo := practice.NewRepoPG(pool)
	preferencesRepo := practice.NewPreferencesRepoPG(pool)
	appointmentRepo := appointment.NewRepoPG(pool)
	reviewRepo := review.NewRepoPG(pool)

	// Services
	practiceSvc := practice.NewService(practiceRepo, preferencesRepo,
		NewSlotSourceAdapter(appointmentRepo), geocoder)
	appointmentSvc := appointment.NewService(appointmentRepo, practiceRepo, geocoder, mailer, logger)
	reviewSvc := review.NewService(reviewRepo, appointmentRepo)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.SanitizeWithLogger(logger))
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	// Public routes need no token; api routes carry one.
	public := e.Group("/api")
	public.Use(middleware.RateLimit(rateLimitCfg))

	api := e.Group("/api")
	api.Use(auth.Middleware(cfg.JWTSecret))
	api.Use(middleware.RateLimit(rateLimitCfg))

	practice.NewHandler(practiceSvc).RegisterRoutes(public, api)
	appointment.NewHandler(appointmentSvc).RegisterRoutes(public, api)
	review.NewHandler(reviewSvc).RegisterRoutes(public, api)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

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
