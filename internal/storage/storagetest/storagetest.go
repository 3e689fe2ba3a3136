// Package storagetest holds the behaviour every storage backend must share.
// Backend packages run it from their own tests.
package storagetest

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/dicegame/internal/model"
	"github.com/mcoot/dicegame/internal/storage"
)

var errAbort = errors.New("abort")

// Suite is embedded by backend tests. NewStorage must return an empty store.
type Suite struct {
	suite.Suite
	NewStorage func(t *testing.T) storage.Storage

	storage storage.Storage
	ctx     context.Context
	now     time.Time
}

func (s *Suite) SetupTest() {
	s.storage = s.NewStorage(s.T())
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *Suite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

func (s *Suite) createGame(id model.GameID) *model.Game {
	game := model.NewGame(id, s.now)
	s.Require().NoError(s.storage.CreateGame(s.ctx, game))
	return game
}

func (s *Suite) seatPlayer(g *model.Game, addr model.Address) {
	g.Players = append(g.Players, model.Player{
		Addr:     addr,
		Name:     string(addr),
		Secret:   "secret-" + string(addr),
		Deposit:  1_000_000,
		JoinedAt: s.now,
	})
	g.Pot += 1_000_000
}

// Game tests

func (s *Suite) TestCreateAndGetGame() {
	game := s.createGame("game-1")

	retrieved, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(game, retrieved)
}

func (s *Suite) TestCreateGameTwice() {
	s.createGame("game-1")

	err := s.storage.CreateGame(s.ctx, model.NewGame("game-1", s.now))
	s.ErrorIs(err, model.ErrGameExists)
}

func (s *Suite) TestGetGameNotFound() {
	_, err := s.storage.GetGame(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestGetGameReturnsCopy() {
	s.createGame("game-1")

	retrieved, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.seatPlayer(retrieved, "alice")

	again, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Empty(again.Players)
	s.Zero(again.Pot)
}

func (s *Suite) TestUpdateGameCommitsStateAndPayouts() {
	s.createGame("game-1")

	updated, err := s.storage.UpdateGame(s.ctx, "game-1", func(g *model.Game) ([]model.Payout, error) {
		s.seatPlayer(g, "alice")
		s.seatPlayer(g, "bob")
		g.Phase = model.PhaseResolved
		g.Winner = &model.Winner{Name: "bob", Addr: "bob", DiceRoll: 6}
		g.Rolls = []int{2, 6}
		g.Pot = 0
		return []model.Payout{{Recipient: "bob", Amount: 2_000_000}}, nil
	})
	s.Require().NoError(err)
	s.Equal(int64(1), updated.Version)

	retrieved, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(updated, retrieved)
	s.Equal(model.PhaseResolved, retrieved.Phase)
	s.Len(retrieved.Players, 2)
	s.Equal([]int{2, 6}, retrieved.Rolls)

	balance, err := s.storage.Balance(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal(model.Amount(2_000_000), balance)

	balance, err = s.storage.Balance(s.ctx, "alice")
	s.Require().NoError(err)
	s.Zero(balance)
}

func (s *Suite) TestUpdateGameBumpsVersion() {
	s.createGame("game-1")

	for i := 1; i <= 3; i++ {
		updated, err := s.storage.UpdateGame(s.ctx, "game-1", func(g *model.Game) ([]model.Payout, error) {
			return nil, nil
		})
		s.Require().NoError(err)
		s.Equal(int64(i), updated.Version)
	}
}

func (s *Suite) TestUpdateGameErrorWritesNothing() {
	s.createGame("game-1")

	_, err := s.storage.UpdateGame(s.ctx, "game-1", func(g *model.Game) ([]model.Payout, error) {
		s.seatPlayer(g, "alice")
		return []model.Payout{{Recipient: "alice", Amount: 5}}, errAbort
	})
	s.ErrorIs(err, errAbort)

	retrieved, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Empty(retrieved.Players)
	s.Zero(retrieved.Version)

	balance, err := s.storage.Balance(s.ctx, "alice")
	s.Require().NoError(err)
	s.Zero(balance)
}

func (s *Suite) TestUpdateGameNotFound() {
	called := false
	_, err := s.storage.UpdateGame(s.ctx, "nonexistent", func(g *model.Game) ([]model.Payout, error) {
		called = true
		return nil, nil
	})
	s.ErrorIs(err, model.ErrGameNotFound)
	s.False(called)
}

// Balance tests

func (s *Suite) TestBalanceUnknownAddress() {
	balance, err := s.storage.Balance(s.ctx, "nobody")
	s.Require().NoError(err)
	s.Zero(balance)
}

func (s *Suite) TestBalancesAccumulate() {
	s.createGame("game-1")
	s.createGame("game-2")

	for _, id := range []model.GameID{"game-1", "game-2"} {
		_, err := s.storage.UpdateGame(s.ctx, id, func(g *model.Game) ([]model.Payout, error) {
			return []model.Payout{
				{Recipient: "alice", Amount: 1_000_000},
				{Recipient: "alice", Amount: 500},
				{Recipient: "bob", Amount: 7},
			}, nil
		})
		s.Require().NoError(err)
	}

	alice, err := s.storage.Balance(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.Amount(2_001_000), alice)

	bob, err := s.storage.Balance(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal(model.Amount(14), bob)
}

func (s *Suite) TestBalanceOverflowWritesNothing() {
	s.createGame("game-1")

	_, err := s.storage.UpdateGame(s.ctx, "game-1", func(g *model.Game) ([]model.Payout, error) {
		return []model.Payout{{Recipient: "alice", Amount: math.MaxInt64}}, nil
	})
	s.Require().NoError(err)

	_, err = s.storage.UpdateGame(s.ctx, "game-1", func(g *model.Game) ([]model.Payout, error) {
		g.Pot = 42
		return []model.Payout{
			{Recipient: "bob", Amount: 1},
			{Recipient: "alice", Amount: math.MaxUint64},
		}, nil
	})
	s.ErrorIs(err, model.ErrBalanceOverflow)

	retrieved, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(int64(1), retrieved.Version)
	s.Zero(retrieved.Pot)

	bob, err := s.storage.Balance(s.ctx, "bob")
	s.Require().NoError(err)
	s.Zero(bob)

	alice, err := s.storage.Balance(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.Amount(math.MaxInt64), alice)
}

// Concurrency tests

func (s *Suite) TestConcurrentUpdatesDoNotLoseWrites() {
	s.createGame("game-1")

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.storage.UpdateGame(s.ctx, "game-1", func(g *model.Game) ([]model.Payout, error) {
				g.Pot++
				return []model.Payout{{Recipient: "alice", Amount: 1}}, nil
			})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Positive(successes)

	retrieved, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(model.Amount(successes), retrieved.Pot)
	s.Equal(int64(successes), retrieved.Version)

	balance, err := s.storage.Balance(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.Amount(successes), balance)
}
