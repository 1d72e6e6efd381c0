package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/talentboard/profiledir/internal/api/apierr"
	"github.com/talentboard/profiledir/internal/api/handler"
	"github.com/talentboard/profiledir/internal/api/middleware"
	"github.com/talentboard/profiledir/internal/api/response"
	"github.com/talentboard/profiledir/internal/metrics"
	basemiddleware "github.com/talentboard/profiledir/internal/middleware"
	"github.com/talentboard/profiledir/internal/services/auth"
	"github.com/talentboard/profiledir/internal/services/directory"
	"github.com/talentboard/profiledir/internal/services/profile"
)

const healthTimeout = 3 * time.Second

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger           *slog.Logger
	AuthService      *auth.Service
	ProfileService   *profile.Service
	DirectoryService *directory.Service
	Metrics          *metrics.Metrics
	// Ping checks backing storage for the health endpoint (optional)
	Ping func(ctx context.Context) error
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	accountHandler := handler.NewAccountHandler(cfg.AuthService)
	profileHandler := handler.NewProfileHandler(cfg.ProfileService, cfg.Logger)
	clubHandler := handler.NewClubHandler(cfg.DirectoryService)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := basemiddleware.Logging(cfg.Logger)
	recoveryMiddleware := basemiddleware.Recovery(cfg.Logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)
	if cfg.Metrics != nil {
		api.Use(basemiddleware.Metrics(cfg.Metrics))
	}

	// Account routes (no auth required for registering/logging in)
	api.HandleFunc("/accounts/register", accountHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/accounts/login", accountHandler.Login).Methods(http.MethodPost)

	// Protected account routes
	accounts := api.PathPrefix("/accounts").Subrouter()
	accounts.Use(authMiddleware)
	accounts.HandleFunc("/me", accountHandler.GetMe).Methods(http.MethodGet)

	// Profile routes (all require auth)
	profiles := api.PathPrefix("/profile").Subrouter()
	profiles.Use(authMiddleware)
	profiles.HandleFunc("", profileHandler.Get).Methods(http.MethodGet)
	profiles.HandleFunc("", profileHandler.Edit).Methods(http.MethodPut)
	profiles.HandleFunc("/validate", profileHandler.Validate).Methods(http.MethodPost)
	profiles.HandleFunc("/promote", profileHandler.Promote).Methods(http.MethodPost)

	// Club directory (public, used for autocomplete)
	api.HandleFunc("/clubs", clubHandler.Search).Methods(http.MethodGet)
	api.HandleFunc("/clubs/{id}", clubHandler.Get).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler(cfg.Ping, cfg.DirectoryService)).Methods(http.MethodGet)

	if cfg.Metrics != nil {
		api.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	return r
}

func healthHandler(ping func(ctx context.Context) error, dir *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			if err := ping(ctx); err != nil {
				apierr.WriteError(w, apierr.NewUnavailableError("storage unreachable"))
				return
			}
		}
		response.JSON(w, http.StatusOK, response.Health{
			Status:          "ok",
			DirectoryLoaded: dir != nil && dir.IsLoaded(),
		})
	}
}
