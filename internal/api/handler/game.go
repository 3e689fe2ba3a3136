package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/dicegame/internal/api/apierr"
	"github.com/mcoot/dicegame/internal/api/middleware"
	"github.com/mcoot/dicegame/internal/api/request"
	"github.com/mcoot/dicegame/internal/api/response"
	"github.com/mcoot/dicegame/internal/events/feed"
	"github.com/mcoot/dicegame/internal/model"
	"github.com/mcoot/dicegame/internal/services/game"
)

// GameHandler handles game endpoints
type GameHandler struct {
	gameController *game.Controller
	feed           *feed.Feed
}

// NewGameHandler creates a new game handler. feed may be nil, in which case
// the events endpoint is unavailable.
func NewGameHandler(gameController *game.Controller, feed *feed.Feed) *GameHandler {
	return &GameHandler{
		gameController: gameController,
		feed:           feed,
	}
}

func (h *GameHandler) gameView(g *model.Game) response.Game {
	terms := h.gameController.Terms()
	return response.GameFromModel(g, terms.Denom, terms.RequiredDeposit)
}

func (h *GameHandler) writeResult(w http.ResponseWriter, result *game.Result) {
	resp := response.TransactionResult{
		Action:  string(result.Action),
		Game:    h.gameView(result.Game),
		Payouts: response.PayoutsFromModel(result.Payouts, h.gameController.Terms().Denom),
	}
	response.JSON(w, http.StatusOK, resp)
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	g, err := h.gameController.Instantiate(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, h.gameView(g))
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.GameID(mux.Vars(r)["id"])

	g, err := h.gameController.GetGame(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, h.gameView(g))
}

// Join handles POST /api/v1/games/{id}/join
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	sender := middleware.MustGetSender(r.Context())
	id := model.GameID(mux.Vars(r)["id"])

	var req request.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, decodeError(err))
		return
	}

	funds := make([]model.Coin, len(req.Funds))
	for i, c := range req.Funds {
		funds[i] = model.Coin{Denom: c.Denom, Amount: model.Amount(c.Amount)}
	}

	result, err := h.gameController.Join(r.Context(), id, sender, req.Name, req.Secret, funds)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	h.writeResult(w, result)
}

// decodeError reports a well-formed object with a mistyped field as a malformed
// message; anything that is not a JSON object is an invalid request
func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Errorf("%w: %s must be %s", model.ErrMalformedMessage, typeErr.Field, typeErr.Type)
	}
	return apierr.NewInvalidRequestError("invalid request body")
}

// Roll handles POST /api/v1/games/{id}/roll
func (h *GameHandler) Roll(w http.ResponseWriter, r *http.Request) {
	sender := middleware.MustGetSender(r.Context())
	id := model.GameID(mux.Vars(r)["id"])

	result, err := h.gameController.RollDice(r.Context(), id, sender)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	h.writeResult(w, result)
}

// Leave handles POST /api/v1/games/{id}/leave
func (h *GameHandler) Leave(w http.ResponseWriter, r *http.Request) {
	sender := middleware.MustGetSender(r.Context())
	id := model.GameID(mux.Vars(r)["id"])

	result, err := h.gameController.Leave(r.Context(), id, sender)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	h.writeResult(w, result)
}

// Winner handles GET /api/v1/games/{id}/winner
func (h *GameHandler) Winner(w http.ResponseWriter, r *http.Request) {
	id := model.GameID(mux.Vars(r)["id"])

	winner, err := h.gameController.WhoWon(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.WinnerFromModel(*winner))
}

// Events handles GET /api/v1/games/{id}/events, upgrading to a websocket
func (h *GameHandler) Events(w http.ResponseWriter, r *http.Request) {
	id := model.GameID(mux.Vars(r)["id"])

	if _, err := h.gameController.GetGame(r.Context(), id); err != nil {
		apierr.WriteError(w, err)
		return
	}

	// Serve writes its own error response if the upgrade fails
	_ = h.feed.Serve(w, r, id)
}
