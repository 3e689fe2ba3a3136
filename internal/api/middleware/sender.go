package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/dicegame/internal/api/apierr"
	"github.com/mcoot/dicegame/internal/model"
)

type contextKey string

const senderContextKey contextKey = "sender"

// RequireSender binds the sender identity to the request context and rejects
// requests without one
func RequireSender(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sender := strings.TrimSpace(r.Header.Get(SenderHeader))
		if sender == "" {
			apierr.WriteError(w, apierr.NewMissingSenderError())
			return
		}

		ctx := context.WithValue(r.Context(), senderContextKey, model.Address(sender))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSender returns the sender from the request context
func GetSender(ctx context.Context) model.Address {
	sender, _ := ctx.Value(senderContextKey).(model.Address)
	return sender
}

// MustGetSender returns the sender or panics
func MustGetSender(ctx context.Context) model.Address {
	sender := GetSender(ctx)
	if sender == "" {
		panic("no sender in context - sender middleware not applied?")
	}
	return sender
}
