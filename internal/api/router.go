package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/codingworldcup/internal/api/apierr"
	"github.com/mcoot/codingworldcup/internal/api/handler"
	"github.com/mcoot/codingworldcup/internal/api/response"
	"github.com/mcoot/codingworldcup/internal/middleware"
	"github.com/mcoot/codingworldcup/internal/storage"
	"github.com/mcoot/codingworldcup/internal/web/sse"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger     *slog.Logger
	Storage    storage.Storage
	HubManager *sse.HubManager

	// Agents serves agent websocket connections on /agents/{slot}.
	// The route is not registered when nil.
	Agents http.Handler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	matchHandler := handler.NewMatchHandler(cfg.Storage, cfg.HubManager, cfg.Logger)

	recoveryMiddleware := middleware.Recovery(cfg.Logger, apiPanicHandler)
	loggingMiddleware := middleware.Logging(cfg.Logger)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", healthHandler(cfg.Storage, cfg.Logger)).Methods(http.MethodGet)
	api.HandleFunc("/matches", matchHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/matches/{id}", matchHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/matches/{id}/events", matchHandler.Events).Methods(http.MethodGet)

	if cfg.Agents != nil {
		agents := r.PathPrefix("/agents").Subrouter()
		agents.Use(recoveryMiddleware)
		agents.Use(loggingMiddleware)
		agents.Handle("/{slot}", cfg.Agents).Methods(http.MethodGet)
	}

	return r
}

// healthHandler reports the server unavailable when the status store cannot
// be read, since spectators would see nothing
func healthHandler(store storage.Storage, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := store.ListMatchIDs(r.Context())
		if err != nil {
			logger.Error("health check failed", slog.String("error", err.Error()))
			response.JSON(w, http.StatusServiceUnavailable, response.Health{Status: "unavailable"})
			return
		}
		response.JSON(w, http.StatusOK, response.Health{Status: "ok", Matches: len(ids)})
	}
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
