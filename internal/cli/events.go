package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	var (
		jsonOutput bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "events <game-id>",
		Short: "Stream live events from a game",
		Long: `Connect to the game's websocket feed and stream events in real-time.

Events include:
  - player_joined: A player joined and escrowed their deposit
  - player_left: The waiting player left and was refunded
  - dice_rolled: The game resolved and the pot was paid out

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return streamEvents(ctx, cmd.OutOrStdout(), args[0], jsonOutput, limit)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().IntVar(&limit, "limit", 0, "Disconnect after this many events (0 streams until interrupted)")

	return cmd
}

// GameEvent is an event received from the feed
type GameEvent struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	GameID    string          `json:"game_id"`
	Sender    string          `json:"sender,omitempty"`
	Version   int64           `json:"version"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func feedURL(baseURL, gameID string) string {
	wsURL := baseURL
	switch {
	case strings.HasPrefix(wsURL, "https://"):
		wsURL = "wss://" + strings.TrimPrefix(wsURL, "https://")
	case strings.HasPrefix(wsURL, "http://"):
		wsURL = "ws://" + strings.TrimPrefix(wsURL, "http://")
	}
	return wsURL + gamePath(gameID, "/events")
}

func streamEvents(ctx context.Context, w io.Writer, gameID string, jsonOutput bool, limit int) error {
	url := feedURL(client.BaseURL(), gameID)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connection failed: unexpected status %d", resp.StatusCode)
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	// Unblock the read loop on cancellation
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	if !jsonOutput {
		fmt.Fprintf(w, "Connected to game %s\n", gameID)
	}

	received := 0
	for limit <= 0 || received < limit {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				break
			}
			return fmt.Errorf("stream error: %w", err)
		}

		var event GameEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return fmt.Errorf("invalid event: %w", err)
		}
		printEvent(w, event, jsonOutput)
		received++
	}

	if !jsonOutput {
		fmt.Fprintln(w, "Disconnected")
	}
	return nil
}

func printEvent(w io.Writer, event GameEvent, jsonOutput bool) {
	if jsonOutput {
		data, _ := json.Marshal(event)
		fmt.Fprintln(w, string(data))
		return
	}

	timestamp := event.Timestamp.Local().Format("2006-01-02 15:04:05")
	sender := event.Sender
	if sender == "" {
		sender = "-"
	}
	fmt.Fprintf(w, "[%s] v%d %s by %s: %s\n", timestamp, event.Version, event.Type, sender, string(event.Payload))
}
