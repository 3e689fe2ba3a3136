package response

import (
	"time"

	"github.com/mcoot/dicegame/internal/model"
)

// Player represents a seated player in API responses. The join secret is
// never exposed.
type Player struct {
	Addr     string    `json:"addr"`
	Name     string    `json:"name"`
	Deposit  uint64    `json:"deposit"`
	JoinedAt time.Time `json:"joined_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p model.Player) Player {
	return Player{
		Addr:     string(p.Addr),
		Name:     p.Name,
		Deposit:  uint64(p.Deposit),
		JoinedAt: p.JoinedAt,
	}
}

// Winner is the answer to who_won
type Winner struct {
	Name     string `json:"name"`
	Addr     string `json:"addr"`
	DiceRoll int    `json:"dice_roll"`
}

// WinnerFromModel converts model.Winner
func WinnerFromModel(w model.Winner) Winner {
	return Winner{
		Name:     w.Name,
		Addr:     string(w.Addr),
		DiceRoll: w.DiceRoll,
	}
}

// Coin is an amount of a single denomination
type Coin struct {
	Denom  string `json:"denom"`
	Amount uint64 `json:"amount"`
}

// Game represents the public state of a game
type Game struct {
	ID        string    `json:"id"`
	Phase     string    `json:"phase"`
	Players   []Player  `json:"players"`
	Pot       Coin      `json:"pot"`
	Stake     Coin      `json:"stake"`
	Winner    *Winner   `json:"winner,omitempty"`
	Rolls     []int     `json:"rolls,omitempty"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GameFromModel converts model.Game to a response Game
func GameFromModel(g *model.Game, denom string, stake model.Amount) Game {
	players := make([]Player, len(g.Players))
	for i, p := range g.Players {
		players[i] = PlayerFromModel(p)
	}

	var winner *Winner
	if g.Winner != nil {
		w := WinnerFromModel(*g.Winner)
		winner = &w
	}

	return Game{
		ID:        string(g.ID),
		Phase:     string(g.Phase),
		Players:   players,
		Pot:       Coin{Denom: denom, Amount: uint64(g.Pot)},
		Stake:     Coin{Denom: denom, Amount: uint64(stake)},
		Winner:    winner,
		Rolls:     g.Rolls,
		Version:   g.Version,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

// Payout is a release of escrowed funds
type Payout struct {
	Recipient string `json:"recipient"`
	Denom     string `json:"denom"`
	Amount    uint64 `json:"amount"`
}

// PayoutsFromModel converts model payouts
func PayoutsFromModel(payouts []model.Payout, denom string) []Payout {
	result := make([]Payout, len(payouts))
	for i, p := range payouts {
		result[i] = Payout{
			Recipient: string(p.Recipient),
			Denom:     denom,
			Amount:    uint64(p.Amount),
		}
	}
	return result
}

// TransactionResult is the response to an accepted message
type TransactionResult struct {
	Action  string   `json:"action"`
	Game    Game     `json:"game"`
	Payouts []Payout `json:"payouts"`
}

// Balance is an address's credited balance
type Balance struct {
	Address string `json:"address"`
	Denom   string `json:"denom"`
	Amount  uint64 `json:"amount"`
}
