package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/talentboard/profiledir/internal/api"
	"github.com/talentboard/profiledir/internal/config"
	"github.com/talentboard/profiledir/internal/events"
	"github.com/talentboard/profiledir/internal/factory"
	"github.com/talentboard/profiledir/internal/services/auth"
	pgstorage "github.com/talentboard/profiledir/internal/storage/postgres"
	redisstorage "github.com/talentboard/profiledir/internal/storage/redis"
)

const sessionCleanupInterval = 10 * time.Minute

func main() {
	appCfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: appCfg.LogLevel,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Build factory config from environment
	cfg := factory.Config{
		Logger:      logger,
		StorageType: appCfg.StorageType,
		Policy:      appCfg.Policy(),
		AuthConfig:  auth.Config{SessionDuration: appCfg.SessionDuration},
		Events: events.Config{
			Brokers: strings.Join(appCfg.KafkaBrokers, ","),
			Topic:   appCfg.KafkaTopic,
			Enabled: appCfg.KafkaEnabled,
		},
	}

	switch appCfg.StorageType {
	case config.StorageRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = appCfg.RedisURL
		cfg.RedisConfig = &redisCfg
	case config.StoragePostgres:
		pgCfg := pgstorage.DefaultConfig()
		pgCfg.DSN = appCfg.DatabaseURL
		pgCfg.MaxConns = appCfg.DatabaseMaxConn
		cfg.PostgresConfig = &pgCfg
		cfg.Migrate = !appCfg.SkipMigrations
	}

	// Create application factory
	app, err := factory.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Load the club directory; saves still work without it
	if err := app.LoadDirectory(ctx, appCfg.ClubDirectoryPath); err != nil {
		logger.Warn("could not load club directory", slog.String("error", err.Error()))
	}

	// Create API router
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:           logger,
		AuthService:      app.AuthService,
		ProfileService:   app.ProfileService,
		DirectoryService: app.DirectoryService,
		Metrics:          app.Metrics,
		Ping:             app.Ping,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Addr = appCfg.Addr()
	server := api.NewServer(mux, serverConfig, logger)
	server.AfterShutdown(app.Close)

	go cleanSessions(ctx, app.AuthService)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", appCfg.StorageType),
		slog.String("incomplete_entries", appCfg.Policy().String()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			_ = app.Close()
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

// cleanSessions drops expired sessions until ctx is done
func cleanSessions(ctx context.Context, authService *auth.Service) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			authService.CleanExpiredSessions()
		}
	}
}
