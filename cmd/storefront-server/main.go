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
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/drlist/drlist/internal/config"
	"github.com/drlist/drlist/internal/domain/account"
	"github.com/drlist/drlist/internal/domain/cart"
	"github.com/drlist/drlist/internal/domain/catalog"
	"github.com/drlist/drlist/internal/domain/clinic"
	"github.com/drlist/drlist/internal/domain/order"
	"github.com/drlist/drlist/internal/platform/auth"
	"github.com/drlist/drlist/internal/platform/db"
	"github.com/drlist/drlist/internal/platform/live"
	"github.com/drlist/drlist/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "storefront-server",
		Short: "Headless storefront API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the storefront API server",
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
			for _, s := range statuses {
				state := "pending"
				appliedAt := "-"
				if s.Applied {
					state = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format(time.RFC3339)
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, state, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample catalog data",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			repo := catalog.NewRepo(pool)
			svc := catalog.NewService(repo)
			for _, p := range seedProducts() {
				sp := p
				if err := svc.CreateProduct(ctx, &sp); err != nil {
					return fmt.Errorf("seeding %q failed: %w", p.Name, err)
				}
				fmt.Printf("seeded %s\n", p.Name)
			}
			return nil
		},
	}
}

func seedProducts() []catalog.Product {
	return []catalog.Product{
		{
			Name: "Classic Oxford Shirt", Description: "Button-down cotton shirt",
			Price: decimal.RequireFromString("39.90"), Category: "shirts", Brand: "Northwind",
			Sizes: []string{"S", "M", "L", "XL"}, Colors: []string{"white", "blue"}, InStock: true,
		},
		{
			Name: "Slim Chino Trousers", Description: "Stretch-twill chinos",
			Price: decimal.RequireFromString("54.50"), Category: "trousers", Brand: "Northwind",
			Sizes: []string{"30", "32", "34", "36"}, Colors: []string{"khaki", "navy"}, InStock: true,
		},
		{
			Name: "Trail Running Shoes", Description: "Lightweight trail runners",
			Price: decimal.RequireFromString("89.00"), Category: "shoes", Brand: "Peakline",
			Sizes: []string{"41", "42", "43", "44"}, Colors: []string{"black", "red"}, InStock: true,
		},
		{
			Name: "Merino Crew Sweater", Description: "Mid-weight merino knit",
			Price: decimal.RequireFromString("74.00"), Category: "sweaters", Brand: "Peakline",
			Sizes: []string{"S", "M", "L"}, Colors: []string{"grey"}, InStock: false,
		},
	}
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
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:   cfg.AuthIssuer,
			Audience: cfg.AuthAudience,
			JWKSURL:  cfg.AuthJWKSURL,
		}))
	}

	// API group
	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Live feed hub
	hub := live.NewHub()
	liveHandler := live.NewHandler(hub)
	liveHandler.RegisterRoutes(apiV1)

	// Domain wiring
	catalogRepo := catalog.NewRepo(pool)
	catalogSvc := catalog.NewService(catalogRepo)
	catalogSvc.SetPublisher(hub)
	catalog.NewHandler(catalogSvc).RegisterRoutes(apiV1)

	cartRepo := cart.NewRepo(pool)
	cartSvc := cart.NewService(cartRepo, catalogRepo)
	cartSvc.SetPublisher(hub)
	cart.NewHandler(cartSvc).RegisterRoutes(apiV1)

	orderRepo := order.NewRepo(pool)
	orderSvc := order.NewService(orderRepo, cartRepo, pool)
	orderSvc.SetPublisher(hub)
	order.NewHandler(orderSvc).RegisterRoutes(apiV1)

	accountRepo := account.NewRepo(pool)
	accountSvc := account.NewService(accountRepo)
	account.NewHandler(accountSvc).RegisterRoutes(apiV1)

	clinicRepo := clinic.NewRepo(pool)
	clinicSvc := clinic.NewService(clinicRepo)
	clinic.NewHandler(clinicSvc).RegisterRoutes(apiV1)

	// Order tracking auto-refresh: republish the derived orders snapshot
	// on a fixed interval while the server runs.
	tracker := order.NewTracker(orderSvc, time.Duration(cfg.TrackerPoll)*time.Second)
	tracker.Start(ctx)
	defer tracker.Stop()

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
