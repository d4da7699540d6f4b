package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/pronoleague/pronostics/config"
	"github.com/pronoleague/pronostics/db"
	"github.com/pronoleague/pronostics/handlers"
	"github.com/pronoleague/pronostics/importer"
	"github.com/pronoleague/pronostics/live"
	"github.com/pronoleague/pronostics/middleware"
	"github.com/pronoleague/pronostics/repositories"
	api "github.com/pronoleague/pronostics/routes"
	"github.com/pronoleague/pronostics/services"
	"github.com/pronoleague/pronostics/storage"
)

const (
	matchesFileName = "matches.csv"
	usersFileName   = "users.csv"
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
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Logo storage is optional; without it the API still runs, uploads
	// are just rejected.
	var uploader storage.FileUploader
	if cfg.R2Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("Cloudflare R2 not configured, logo uploads disabled")
	}

	wsHub := live.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	seasonRepo := repositories.NewPostgresSeasonRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	predictionRepo := repositories.NewPostgresPredictionRepository(dbConn)
	logger.Info("repositories initialized")

	clock := clockwork.NewRealClock()

	authService := services.NewAuthService(userRepo, cfg.JWTSecretKey, clock)
	userService := services.NewUserService(userRepo)
	matchService := services.NewMatchService(matchRepo, seasonRepo, clock, uploader)
	predictionService := services.NewPredictionService(predictionRepo, matchRepo, clock, wsHub)
	leaderboardService := services.NewLeaderboardService(predictionRepo, userRepo, matchRepo, clock)
	teamService := services.NewTeamService(teamRepo, uploader, logger)
	logger.Info("services initialized")

	matchesPath := filepath.Join(cfg.ImportDir, matchesFileName)
	usersPath := filepath.Join(cfg.ImportDir, usersFileName)

	matchImporter := importer.NewMatchImporter(dbConn, teamRepo, seasonRepo, matchRepo, logger, wsHub, matchesPath)
	matchImporter.SkipBadRows = cfg.ImportSkipBadRows
	userImporter := importer.NewUserImporter(dbConn, userRepo, logger, wsHub, usersPath, cfg.ProtectedUsername)
	watcher := importer.NewWatcher(matchesPath, matchImporter, usersPath, userImporter, cfg.ImportPollInterval, clock, logger)

	authHandler := handlers.NewAuthHandler(authService)
	matchHandler := handlers.NewMatchHandler(matchService)
	predictionHandler := handlers.NewPredictionHandler(predictionService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)
	accountHandler := handlers.NewAccountHandler(userService, authService)
	teamHandler := handlers.NewTeamHandler(teamService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authenticator,
		authHandler,
		matchHandler,
		predictionHandler,
		leaderboardHandler,
		accountHandler,
		teamHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return watcher.Run(groupCtx)
	})

	group.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return err
		}
		logger.Info("server shutdown complete")
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}
