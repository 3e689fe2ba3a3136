package storage

import (
	"context"

	"github.com/mcoot/dicegame/internal/model"
)

// UpdateFunc mutates a copy of the stored game and returns the payouts to
// credit alongside it. Returning an error discards the copy and writes nothing.
type UpdateFunc func(game *model.Game) ([]model.Payout, error)

// Storage defines the interface for data persistence
type Storage interface {
	// Game operations
	CreateGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)

	// UpdateGame runs fn against the current game and, if it succeeds, commits
	// the new game state (with Version bumped) and the payouts in one atomic
	// step. It returns the committed game.
	UpdateGame(ctx context.Context, id model.GameID, fn UpdateFunc) (*model.Game, error)

	// Balance operations
	Balance(ctx context.Context, addr model.Address) (model.Amount, error)

	Close() error
}
