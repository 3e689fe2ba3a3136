package memory

import (
	"context"
	"sync"

	"github.com/mcoot/dicegame/internal/model"
	"github.com/mcoot/dicegame/internal/services/escrow"
	"github.com/mcoot/dicegame/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	games    map[model.GameID]*model.Game
	balances map[model.Address]model.Amount
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		games:    make(map[model.GameID]*model.Game),
		balances: make(map[model.Address]model.Amount),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[game.ID]; ok {
		return model.ErrGameExists
	}
	s.games[game.ID] = game.Clone()
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game.Clone(), nil
}

func (s *Storage) UpdateGame(ctx context.Context, id model.GameID, fn storage.UpdateFunc) (*model.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}

	next := current.Clone()
	payouts, err := fn(next)
	if err != nil {
		return nil, err
	}
	if err := escrow.Credit(s.balances, payouts); err != nil {
		return nil, err
	}

	next.Version = current.Version + 1
	s.games[id] = next
	return next.Clone(), nil
}

// Balance operations

func (s *Storage) Balance(ctx context.Context, addr model.Address) (model.Amount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[addr], nil
}

func (s *Storage) Close() error {
	return nil
}
