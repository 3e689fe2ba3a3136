package api_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/dicegame/internal/api"
	"github.com/mcoot/dicegame/internal/api/apierr"
	"github.com/mcoot/dicegame/internal/api/response"
	"github.com/mcoot/dicegame/internal/factory"
	"github.com/mcoot/dicegame/internal/model"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	app := factory.NewTestApp()
	t.Cleanup(func() { _ = app.Close() })

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		GameController: app.GameController,
		Feed:           app.Feed,
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any, sender string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if sender != "" {
		req.Header.Set("X-Sender-Address", sender)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) createGame(t *testing.T) response.Game {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/games", nil, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	var game response.Game
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &game))
	return game
}

func joinBody(name, secret string, amount uint64) map[string]any {
	return map[string]any{
		"name":   name,
		"secret": secret,
		"funds":  []map[string]any{{"denom": "uscrt", "amount": amount}},
	}
}

func (ts *testServer) join(t *testing.T, gameID, sender, name, secret string) response.TransactionResult {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/games/"+gameID+"/join", joinBody(name, secret, 1_000_000), sender)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var result response.TransactionResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	return result
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.APIError {
	t.Helper()
	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestCreateGame(t *testing.T) {
	ts := newTestServer(t)

	game := ts.createGame(t)
	assert.NotEmpty(t, game.ID)
	assert.Equal(t, "open", game.Phase)
	assert.Empty(t, game.Players)
	assert.Equal(t, response.Coin{Denom: "uscrt", Amount: 0}, game.Pot)
	assert.Equal(t, response.Coin{Denom: "uscrt", Amount: 1_000_000}, game.Stake)

	rr := ts.request(http.MethodGet, "/api/v1/games/"+game.ID, nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestFullGameFlow(t *testing.T) {
	ts := newTestServer(t)
	game := ts.createGame(t)

	// Nobody has won yet
	rr := ts.request(http.MethodGet, "/api/v1/games/"+game.ID+"/winner", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeNotResolved, decodeError(t, rr).Code)

	first := ts.join(t, game.ID, "secret1alice", "alice", "alice-secret")
	assert.Equal(t, "join", first.Action)
	assert.Equal(t, "open", first.Game.Phase)
	assert.Empty(t, first.Payouts)

	second := ts.join(t, game.ID, "secret1bob", "bob", "bob-secret")
	assert.Equal(t, "full", second.Game.Phase)
	assert.Equal(t, uint64(2_000_000), second.Game.Pot.Amount)
	require.Len(t, second.Game.Players, 2)
	assert.Equal(t, "alice", second.Game.Players[0].Name)
	assert.Equal(t, "bob", second.Game.Players[1].Name)

	rr = ts.request(http.MethodPost, "/api/v1/games/"+game.ID+"/roll", nil, "secret1alice")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.NotContains(t, rr.Body.String(), "alice-secret")
	assert.NotContains(t, rr.Body.String(), "bob-secret")

	var rolled response.TransactionResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rolled))
	assert.Equal(t, "roll_dice", rolled.Action)
	assert.Equal(t, "resolved", rolled.Game.Phase)
	assert.Zero(t, rolled.Game.Pot.Amount)
	require.NotNil(t, rolled.Game.Winner)
	require.Len(t, rolled.Payouts, 1)
	assert.Equal(t, rolled.Game.Winner.Addr, rolled.Payouts[0].Recipient)
	assert.Equal(t, uint64(2_000_000), rolled.Payouts[0].Amount)

	// Who won is stable and matches the roll
	for i := 0; i < 2; i++ {
		rr = ts.request(http.MethodGet, "/api/v1/games/"+game.ID+"/winner", nil, "")
		require.Equal(t, http.StatusOK, rr.Code)
		var winner response.Winner
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &winner))
		assert.Equal(t, *rolled.Game.Winner, winner)
		assert.GreaterOrEqual(t, winner.DiceRoll, 1)
		assert.LessOrEqual(t, winner.DiceRoll, 6)
	}

	// Winner's balance holds the pot
	rr = ts.request(http.MethodGet, "/api/v1/accounts/"+rolled.Game.Winner.Addr+"/balance", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var balance response.Balance
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &balance))
	assert.Equal(t, response.Balance{Address: rolled.Game.Winner.Addr, Denom: "uscrt", Amount: 2_000_000}, balance)

	// The game is over
	rr = ts.request(http.MethodPost, "/api/v1/games/"+game.ID+"/leave", nil, "secret1bob")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeGameOver, decodeError(t, rr).Code)
}

func TestLeaveRefund(t *testing.T) {
	ts := newTestServer(t)
	game := ts.createGame(t)
	ts.join(t, game.ID, "alice", "alice", "a")

	rr := ts.request(http.MethodPost, "/api/v1/games/"+game.ID+"/leave", nil, "alice")
	require.Equal(t, http.StatusOK, rr.Code)

	var result response.TransactionResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, "leave", result.Action)
	assert.Empty(t, result.Game.Players)
	assert.Equal(t, []response.Payout{{Recipient: "alice", Denom: "uscrt", Amount: 1_000_000}}, result.Payouts)
}

func TestMessageErrors(t *testing.T) {
	ts := newTestServer(t)
	game := ts.createGame(t)
	base := "/api/v1/games/" + game.ID

	tests := []struct {
		name       string
		setup      func()
		path       string
		body       any
		sender     string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing sender",
			path:       base + "/join",
			body:       joinBody("alice", "a", 1_000_000),
			wantStatus: http.StatusUnauthorized,
			wantCode:   apierr.CodeMissingSender,
		},
		{
			name:       "wrong deposit",
			path:       base + "/join",
			body:       joinBody("alice", "a", 5),
			sender:     "alice",
			wantStatus: http.StatusBadRequest,
			wantCode:   apierr.CodeWrongDepositAmount,
		},
		{
			name:       "empty name",
			path:       base + "/join",
			body:       joinBody("", "a", 1_000_000),
			sender:     "alice",
			wantStatus: http.StatusBadRequest,
			wantCode:   apierr.CodeMalformedMessage,
		},
		{
			name:       "invalid body",
			path:       base + "/join",
			body:       "not an object",
			sender:     "alice",
			wantStatus: http.StatusBadRequest,
			wantCode:   apierr.CodeInvalidRequest,
		},
		{
			name:       "empty body",
			path:       base + "/join",
			sender:     "alice",
			wantStatus: http.StatusBadRequest,
			wantCode:   apierr.CodeInvalidRequest,
		},
		{
			name: "negative amount",
			path: base + "/join",
			body: map[string]any{
				"name": "alice", "secret": "a",
				"funds": []map[string]any{{"denom": "uscrt", "amount": -1}},
			},
			sender:     "alice",
			wantStatus: http.StatusBadRequest,
			wantCode:   apierr.CodeMalformedMessage,
		},
		{
			name: "string amount",
			path: base + "/join",
			body: map[string]any{
				"name": "alice", "secret": "a",
				"funds": []map[string]any{{"denom": "uscrt", "amount": "1000000"}},
			},
			sender:     "alice",
			wantStatus: http.StatusBadRequest,
			wantCode:   apierr.CodeMalformedMessage,
		},
		{
			name:       "numeric name",
			path:       base + "/join",
			body:       map[string]any{"name": 7, "secret": "a"},
			sender:     "alice",
			wantStatus: http.StatusBadRequest,
			wantCode:   apierr.CodeMalformedMessage,
		},
		{
			name:       "nothing to leave",
			path:       base + "/leave",
			sender:     "alice",
			wantStatus: http.StatusConflict,
			wantCode:   apierr.CodeNothingToLeave,
		},
		{
			name:       "roll before full",
			path:       base + "/roll",
			sender:     "alice",
			wantStatus: http.StatusConflict,
			wantCode:   apierr.CodeGameNotFull,
		},
		{
			name:       "unknown game",
			path:       "/api/v1/games/does-not-exist/roll",
			sender:     "alice",
			wantStatus: http.StatusNotFound,
			wantCode:   apierr.CodeGameNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, tt.path, tt.body, tt.sender)
			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rr).Code)
		})
	}

	// None of the rejections changed the game
	rr := ts.request(http.MethodGet, base, nil, "")
	var after response.Game
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &after))
	assert.Equal(t, game, after)
}

func TestLockInAndCapacity(t *testing.T) {
	ts := newTestServer(t)
	game := ts.createGame(t)
	base := "/api/v1/games/" + game.ID
	ts.join(t, game.ID, "alice", "alice", "a")
	ts.join(t, game.ID, "bob", "bob", "b")

	rr := ts.request(http.MethodPost, base+"/join", joinBody("carol", "c", 1_000_000), "carol")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeGameFull, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, base+"/leave", nil, "alice")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeGameFull, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, base+"/roll", nil, "carol")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, apierr.CodeNotAPlayer, decodeError(t, rr).Code)
}

func TestGetUnknownGame(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{
		"/api/v1/games/missing",
		"/api/v1/games/missing/winner",
		"/api/v1/games/missing/events",
	} {
		rr := ts.request(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusNotFound, rr.Code, path)
		assert.Equal(t, apierr.CodeGameNotFound, decodeError(t, rr).Code, path)
	}
}

func TestEventFeed(t *testing.T) {
	ts := newTestServer(t)
	server := httptest.NewServer(ts.handler)
	defer server.Close()

	game := ts.createGame(t)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/games/" + game.ID + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return ts.app.Feed.ClientCount(model.GameID(game.ID)) == 1
	}, time.Second, 10*time.Millisecond)

	ts.join(t, game.ID, "alice", "alice", "alice-secret")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "alice-secret")

	var event map[string]any
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, "player_joined", event["type"])
	assert.Equal(t, game.ID, event["game_id"])
	assert.Equal(t, "alice", event["sender"])
}
