// Package feed streams committed game events to websocket subscribers,
// one hub per game.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/mcoot/dicegame/internal/events"
	"github.com/mcoot/dicegame/internal/model"
)

var errFeedClosed = errors.New("feed closed")

// Feed manages hubs for all games and publishes events to them
type Feed struct {
	hubs     map[model.GameID]*Hub
	closed   bool
	mu       sync.RWMutex
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// Ensure Feed implements Publisher
var _ events.Publisher = (*Feed)(nil)

// New creates a Feed. An empty allowedOrigins list, or one containing "*",
// accepts every origin.
func New(logger *slog.Logger, allowedOrigins []string) *Feed {
	return &Feed{
		hubs:   make(map[model.GameID]*Hub),
		logger: logger.With(slog.String("component", "feed")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 || slices.Contains(allowed, "*") {
			return true
		}
		return slices.Contains(allowed, origin)
	}
}

// Serve upgrades the request and subscribes it to a game's events. If the
// upgrade fails the upgrader has already written an HTTP error response; if the
// feed is closed the connection is closed with a going-away frame.
func (f *Feed) Serve(w http.ResponseWriter, r *http.Request, gameID model.GameID) error {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("feed upgrade failed",
			slog.String("game_id", string(gameID)),
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("error", err.Error()))
		return err
	}

	client, ok := f.subscribe(gameID, conn)
	if !ok {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"))
		_ = conn.Close()
		return errFeedClosed
	}

	go client.writePump()
	go client.readPump()
	return nil
}

// subscribe registers a client under the feed lock so hub cleanup cannot
// close the hub between lookup and registration
func (f *Feed) subscribe(gameID model.GameID, conn *websocket.Conn) (*Client, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, false
	}
	hub := f.hubLocked(gameID)
	client := newClient(hub, conn)
	if !hub.Register(client) {
		return nil, false
	}
	return client, true
}

// Publish broadcasts an event to everyone watching its game
func (f *Feed) Publish(_ context.Context, event model.Event) error {
	f.mu.RLock()
	hub := f.hubs[event.GameID]
	f.mu.RUnlock()
	if hub == nil {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	hub.Broadcast(data)
	return nil
}

// ClientCount returns the number of clients watching a game
func (f *Feed) ClientCount(gameID model.GameID) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if hub, ok := f.hubs[gameID]; ok {
		return hub.ClientCount()
	}
	return 0
}

// hubLocked returns the game's hub, creating it if needed. f.mu must be held.
func (f *Feed) hubLocked(gameID model.GameID) *Hub {
	if hub, ok := f.hubs[gameID]; ok {
		return hub
	}

	hub := NewHub(gameID, f.logger)
	f.hubs[gameID] = hub
	go hub.Run()
	return hub
}

// CleanupEmptyHubs removes hubs with no clients
func (f *Feed) CleanupEmptyHubs() {
	f.mu.Lock()
	defer f.mu.Unlock()

	removed := 0
	for id, hub := range f.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(f.hubs, id)
			removed++
		}
	}
	if removed > 0 {
		f.logger.Info("feed empty hubs cleaned up", slog.Int("removed", removed))
	}
}

// Close disconnects every client and refuses new subscribers
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true

	for id, hub := range f.hubs {
		hub.Close()
		delete(f.hubs, id)
	}
}
