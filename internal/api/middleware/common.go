package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/dicegame/internal/api/apierr"
	"github.com/mcoot/dicegame/internal/middleware"
)

// SenderHeader carries the caller identity. The transport trusts it as given.
const SenderHeader = middleware.SenderHeader

// Logging creates request logging middleware for the API
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger)
}

// Recovery creates panic recovery middleware that answers with a JSON
// INTERNAL_ERROR
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
