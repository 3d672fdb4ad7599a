package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	database "github.com/vanshjaggi/PIXs-Onboarding-Platform/app/db"
	appLogger "github.com/vanshjaggi/PIXs-Onboarding-Platform/app/logger"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/app/observability/metrics"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/config"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/api/auth"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/api/signing"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/api/user"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/router"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := appLogger.Setup(cfg.Mode)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}

	// Run migrations before initializing the main pool
	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if !database.WaitForDB(ctx, pool, logger) {
		logger.Error("Database not ready after waiting, exiting.")
		os.Exit(1)
	}

	appMetrics, err := metrics.Init()
	if err != nil {
		logger.Error("Failed to initialize metrics", slog.Any("error", err))
		os.Exit(1)
	}

	// --- Dependency Injection ---
	authRepo := auth.NewPostgresAuthRepo(pool, logger)
	authService := auth.NewAuthService(authRepo, cfg.JWT, logger, appMetrics)
	authHandler := auth.NewAuthHandler(authService, logger)

	userRepo := user.NewPostgresUserRepo(pool, logger)
	userService := user.NewUserService(userRepo, logger)
	userHandler := user.NewUserHandler(userService, logger)

	signingRepo := signing.NewPostgresSigningRepo(pool, logger)
	signingService := signing.NewSigningService(signingRepo, userRepo, appMetrics, logger)
	signingHandler := signing.NewSigningHandler(signingService, logger)

	mainRouter := router.SetupRouter(router.Config{
		Logger:         logger,
		JWT:            cfg.JWT,
		ServerTimeout:  cfg.Server.Timeout,
		AuthHandler:    authHandler,
		UserHandler:    userHandler,
		SigningHandler: signingHandler,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.HTTPPort,
		Handler:      mainRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", srv.Addr))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// The metrics listener has no shutdown hook; it dies with the process.
	go func() {
		if err := metrics.Serve(cfg.Handlers.Prometheus.Port, logger); err != nil {
			logger.Error("Metrics server error", slog.Any("error", err))
		}
	}()

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutdown signal received, starting graceful shutdown...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Application shut down complete.")
}
