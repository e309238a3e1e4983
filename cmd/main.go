package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexkachalkov/scootrate/config"
	"github.com/alexkachalkov/scootrate/db"
	"github.com/alexkachalkov/scootrate/handlers"
	"github.com/alexkachalkov/scootrate/live"
	"github.com/alexkachalkov/scootrate/migrations"
	"github.com/alexkachalkov/scootrate/ratelimit"
	"github.com/alexkachalkov/scootrate/repositories"
	"github.com/alexkachalkov/scootrate/routes"
	"github.com/alexkachalkov/scootrate/services"
	"github.com/alexkachalkov/scootrate/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	if err := db.RunMigrations(context.Background(), dbConn, migrations.FS); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("migrations applied")

	// Хранилище фото опционально: без R2-кредов сервис стартует,
	// а загрузка фотографий отвечает 503.
	var uploader storage.FileUploader
	if cfg.R2Enabled() {
		uploader, err = storage.NewR2Uploader(context.Background(), storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("R2 uploader initialized")
	} else {
		logger.Warn("R2 is not configured, photo uploads are disabled")
	}

	hub := live.NewHub(logger)
	go hub.Run()
	logger.Info("websocket hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	riderRepo := repositories.NewPostgresRiderRepository(dbConn)
	eventRepo := repositories.NewPostgresEventRepository(dbConn)
	resultRepo := repositories.NewPostgresResultRepository(dbConn)
	seasonRepo := repositories.NewPostgresSeasonRepository(dbConn)
	auditRepo := repositories.NewPostgresAuditRepository(dbConn)

	loginLimiter := ratelimit.NewFixedWindow(cfg.LoginRateWindow, cfg.LoginRateMaxAttempts)

	seasonService := services.NewSeasonService(dbConn, resultRepo, seasonRepo, services.SeasonConfig{
		WindowDays:    cfg.SeasonWindowDays,
		PointsCap:     cfg.SeasonPointsCap,
		PublishedOnly: cfg.SeasonPublishedOnly,
	}, hub, logger)
	authService := services.NewAuthService(userRepo, logger)
	ratingService := services.NewRatingService(riderRepo, resultRepo)
	riderService := services.NewRiderService(riderRepo, auditRepo, uploader, logger)
	eventService := services.NewEventService(eventRepo, resultRepo, auditRepo, seasonService, logger)
	resultService := services.NewResultService(resultRepo, eventRepo, auditRepo, seasonService, logger)
	importService := services.NewImportService(resultRepo, riderRepo, eventRepo, auditRepo, seasonService, logger)
	dashboardService := services.NewDashboardService(riderRepo, eventRepo, resultRepo)
	logger.Info("services initialized")

	router := routes.SetupRoutes(cfg, routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService, loginLimiter, cfg.JWTSecretKey),
		Rating:    handlers.NewRatingHandler(ratingService),
		Rider:     handlers.NewRiderHandler(riderService),
		Event:     handlers.NewEventHandler(eventService),
		Result:    handlers.NewResultHandler(resultService, importService, seasonService),
		Dashboard: handlers.NewDashboardHandler(dashboardService),
		WebSocket: handlers.NewWebSocketHandler(hub, logger),
	})
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
