package model

import "time"

// GameID uniquely identifies a deployed game instance
type GameID string

// Phase is the coarse state of a game
type Phase string

const (
	PhaseOpen     Phase = "open"     // Waiting for players (0 or 1 joined)
	PhaseFull     Phase = "full"     // Both players in, waiting for a roll
	PhaseResolved Phase = "resolved" // Dice rolled, pot paid out
)

// MaxPlayers is the number of seats at a game
const MaxPlayers = 2

// Winner records the outcome of a resolved game
type Winner struct {
	Name     string  `json:"name"`
	Addr     Address `json:"addr"`
	DiceRoll int     `json:"dice_roll"`
}

// Game is the persistent state of one game instance
type Game struct {
	ID      GameID   `json:"id"`
	Players []Player `json:"players"` // Join order
	Phase   Phase    `json:"phase"`
	Pot     Amount   `json:"pot"`
	Winner  *Winner  `json:"winner,omitempty"`
	Rolls   []int    `json:"rolls,omitempty"` // Dice used per player, set on resolution

	// Version is bumped on every accepted message
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewGame returns an empty open game
func NewGame(id GameID, now time.Time) *Game {
	return &Game{
		ID:        id,
		Players:   []Player{},
		Phase:     PhaseOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy so a transition can be discarded on failure
func (g *Game) Clone() *Game {
	c := *g
	c.Players = append([]Player{}, g.Players...)
	if g.Winner != nil {
		w := *g.Winner
		c.Winner = &w
	}
	if g.Rolls != nil {
		c.Rolls = append([]int{}, g.Rolls...)
	}
	return &c
}

// PlayerIndex returns the first seat held by addr, or -1
func (g *Game) PlayerIndex(addr Address) int {
	for i, p := range g.Players {
		if p.Addr == addr {
			return i
		}
	}
	return -1
}

// IsPlayer returns true if addr holds any seat
func (g *Game) IsPlayer(addr Address) bool {
	return g.PlayerIndex(addr) >= 0
}

// Escrowed returns the sum of deposits held for seated players
func (g *Game) Escrowed() Amount {
	var total Amount
	for _, p := range g.Players {
		total += p.Deposit
	}
	return total
}
