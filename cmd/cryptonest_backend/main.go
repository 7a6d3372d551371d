package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cryptonest/cryptonest_backend/internal/core/services"
	"github.com/cryptonest/cryptonest_backend/internal/handlers"
	"github.com/cryptonest/cryptonest_backend/internal/middleware"
	"github.com/cryptonest/cryptonest_backend/internal/platform/config"
	"github.com/cryptonest/cryptonest_backend/internal/repositories/database/pgsql"
	"github.com/cryptonest/cryptonest_backend/internal/scheduler"
	"github.com/cryptonest/cryptonest_backend/internal/utils"
	"github.com/cryptonest/cryptonest_backend/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title CryptoNest Backend API
// @version 1.0
// @description Bookkeeping backend for ledger accounts, fixed-return investment plans and daily interest accrual.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established")

	if err := runMigrations(cfg, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Wire repositories and services
	repos := pgsql.NewRepositoryProvider(dbPool)
	serviceContainer := services.NewServiceContainer(repos, cfg)

	// The built-in tier catalog is upserted on every startup; existing
	// rows keep their admin edits.
	seedCtx := middleware.WithLogger(context.Background(), logger)
	if err := serviceContainer.Plan.SeedDefaultPlans(seedCtx); err != nil {
		logger.Error("Failed to seed plan catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Background accrual trigger
	schedCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	if cfg.AccrualDisabled {
		logger.Info("Accrual scheduler disabled by configuration")
	} else {
		scheduler.NewAccrualScheduler(serviceContainer.Accrual, serviceContainer.Auth, logger, cfg.AccrualHourUTC).Start(schedCtx)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	// The refresh token travels as a cookie, so the browser needs
	// credentialed CORS against the frontend origin.
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = []string{cfg.FrontendBaseURL}
	corsCfg.AllowCredentials = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	handlers.RegisterCustomValidations(logger)
	if cfg.PosthogAPIKey != "" {
		posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, logger)
		defer posthogClient.Close()
		r.Use(middleware.PosthogMiddleware(posthogClient))
	}

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	// Stop the scheduler cleanly on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		stopScheduler()
	}()

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies all pending "up" migrations using a short-lived
// database/sql connection over the pgx stdlib driver.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := migrationDB.Ping(); err != nil {
		migrationDB.Close()
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		migrationDB.Close()
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		migrationDB.Close()
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		m.Close()
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply")
	} else {
		logger.Info("Database migrations applied successfully")
	}
	return nil
}
