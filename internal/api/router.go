package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/dicegame/internal/api/handler"
	"github.com/mcoot/dicegame/internal/api/middleware"
	"github.com/mcoot/dicegame/internal/events/feed"
	"github.com/mcoot/dicegame/internal/services/game"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	GameController *game.Controller
	Feed           *feed.Feed // Optional; enables the websocket event feed
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	gameHandler := handler.NewGameHandler(cfg.GameController, cfg.Feed)
	accountHandler := handler.NewAccountHandler(cfg.GameController)

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Game routes (queries need no sender)
	api.HandleFunc("/games", gameHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}", gameHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}/winner", gameHandler.Winner).Methods(http.MethodGet)
	if cfg.Feed != nil {
		api.HandleFunc("/games/{id}/events", gameHandler.Events).Methods(http.MethodGet)
	}

	// Message routes (all require a sender)
	messages := api.PathPrefix("/games/{id}").Subrouter()
	messages.Use(middleware.RequireSender)
	messages.HandleFunc("/join", gameHandler.Join).Methods(http.MethodPost)
	messages.HandleFunc("/roll", gameHandler.Roll).Methods(http.MethodPost)
	messages.HandleFunc("/leave", gameHandler.Leave).Methods(http.MethodPost)

	// Account routes
	api.HandleFunc("/accounts/{addr}/balance", accountHandler.Balance).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
