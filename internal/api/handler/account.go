package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/dicegame/internal/api/apierr"
	"github.com/mcoot/dicegame/internal/api/response"
	"github.com/mcoot/dicegame/internal/model"
	"github.com/mcoot/dicegame/internal/services/game"
)

// AccountHandler handles balance queries
type AccountHandler struct {
	gameController *game.Controller
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(gameController *game.Controller) *AccountHandler {
	return &AccountHandler{gameController: gameController}
}

// Balance handles GET /api/v1/accounts/{addr}/balance
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	addr := model.Address(mux.Vars(r)["addr"])

	amount, err := h.gameController.Balance(r.Context(), addr)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Balance{
		Address: string(addr),
		Denom:   h.gameController.Terms().Denom,
		Amount:  uint64(amount),
	})
}
