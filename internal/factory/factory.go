package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/talentboard/profiledir/internal/dependencies/clock"
	"github.com/talentboard/profiledir/internal/events"
	"github.com/talentboard/profiledir/internal/metrics"
	"github.com/talentboard/profiledir/internal/services/auth"
	"github.com/talentboard/profiledir/internal/services/clubhistory"
	"github.com/talentboard/profiledir/internal/services/commit"
	"github.com/talentboard/profiledir/internal/services/directory"
	"github.com/talentboard/profiledir/internal/services/profile"
	"github.com/talentboard/profiledir/internal/services/reconcile"
	"github.com/talentboard/profiledir/internal/storage"
	"github.com/talentboard/profiledir/internal/storage/memory"
	pgstorage "github.com/talentboard/profiledir/internal/storage/postgres"
	redisstorage "github.com/talentboard/profiledir/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// pinger is implemented by backends that hold a network connection
type pinger interface {
	Ping(ctx context.Context) error
}

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock     clock.Clock
	Metrics   *metrics.Metrics
	Publisher events.Publisher

	// Services
	DirectoryService *directory.Service
	Reconciler       *reconcile.Reconciler
	Coordinator      *commit.Coordinator
	ProfileService   *profile.Service
	AuthService      *auth.Service

	logger  *slog.Logger
	closers []func() error
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds database settings (required if StorageType is "postgres")
	PostgresConfig *pgstorage.Config
	// Migrate applies the embedded schema migrations before connecting to postgres
	Migrate bool
	// Policy decides what happens to incomplete club history entries
	Policy clubhistory.Policy
	// Events configures the commit outcome publisher. Disabled by default.
	Events events.Config
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	var closers []func() error
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
		closers = append(closers, redisStore.Close)
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		if cfg.Migrate {
			if err := pgstorage.Migrate(cfg.PostgresConfig.DSN, logger); err != nil {
				return nil, err
			}
		}
		pgStore, err := pgstorage.New(ctx, *cfg.PostgresConfig)
		if err != nil {
			return nil, err
		}
		store = pgStore
		closers = append(closers, func() error {
			pgStore.Close()
			return nil
		})
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}

	publisher := events.NewKafkaPublisher(cfg.Events, logger)
	closers = append(closers, publisher.Close)

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}

	app := newWithDependencies(store, clock.New(), publisher, cfg.Policy, authCfg, logger)
	app.closers = closers
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	publisher events.Publisher,
	policy clubhistory.Policy,
	authCfg auth.Config,
	logger *slog.Logger,
) *App {
	m := metrics.New()

	// Create services
	directoryService := directory.New(store, logger)
	reconciler := reconcile.New(policy, logger)
	coordinator := commit.New(store, publisher, m, clk, logger)
	profileService := profile.New(store, directoryService, reconciler, coordinator, m, clk, logger)
	authService := auth.New(store, profileService, clk, authCfg, logger)

	return &App{
		Storage:          store,
		Clock:            clk,
		Metrics:          m,
		Publisher:        publisher,
		DirectoryService: directoryService,
		Reconciler:       reconciler,
		Coordinator:      coordinator,
		ProfileService:   profileService,
		AuthService:      authService,
		logger:           logger,
	}
}

// LoadDirectory loads the club directory from a JSON file when a path is given,
// otherwise from whatever storage already holds. A missing directory is not fatal:
// club history is then kept as free text.
func (a *App) LoadDirectory(ctx context.Context, path string) error {
	if path != "" {
		return a.DirectoryService.LoadFromFile(ctx, path)
	}
	err := a.DirectoryService.LoadFromStorage(ctx)
	if err != nil {
		a.logger.Warn("club directory not loaded", slog.String("error", err.Error()))
	}
	return nil
}

// Ping checks that the storage backend is reachable
func (a *App) Ping(ctx context.Context) error {
	if p, ok := a.Storage.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close releases storage connections and flushes the publisher
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
