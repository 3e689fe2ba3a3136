package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/dicegame/internal/model"
	"github.com/mcoot/dicegame/internal/storage"
	"github.com/mcoot/dicegame/internal/storage/storagetest"
)

func openTempStore(t *testing.T) *Storage {
	t.Helper()

	cfg := DefaultConfig()
	cfg.DSN = filepath.Join(t.TempDir(), "dicegame.db")
	store, err := Open(cfg)
	require.NoError(t, err)
	return store
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, &storagetest.Suite{
		NewStorage: func(t *testing.T) storage.Storage { return openTempStore(t) },
	})
}

func TestOpenRequiresDSN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DSN = " "
	_, err := Open(cfg)
	assert.Error(t, err)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Driver = "oracle"
	_, err := Open(cfg)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestOpenInMemory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DSN = ":memory:"
	store, err := Open(cfg)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.CreateGame(ctx, model.NewGame("game-1", time.Now())))
	_, err = store.GetGame(ctx, "game-1")
	assert.NoError(t, err)
}

func TestReopenKeepsState(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DSN = filepath.Join(t.TempDir(), "dicegame.db")
	ctx := context.Background()

	store, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, store.CreateGame(ctx, model.NewGame("game-1", time.Now())))
	_, err = store.UpdateGame(ctx, "game-1", func(g *model.Game) ([]model.Payout, error) {
		return []model.Payout{{Recipient: "alice", Amount: 1_000_000}}, nil
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(cfg)
	require.NoError(t, err)
	defer store.Close()

	game, err := store.GetGame(ctx, "game-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), game.Version)

	balance, err := store.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, model.Amount(1_000_000), balance)
}

func TestVersionColumnTracksState(t *testing.T) {
	store := openTempStore(t)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.CreateGame(ctx, model.NewGame("game-1", time.Now())))
	_, err := store.UpdateGame(ctx, "game-1", func(g *model.Game) ([]model.Payout, error) {
		g.Phase = model.PhaseFull
		return nil, nil
	})
	require.NoError(t, err)

	var (
		version int64
		phase   string
	)
	err = store.db.QueryRowContext(ctx, `SELECT version, phase FROM games WHERE id = ?`, "game-1").Scan(&version, &phase)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
	assert.Equal(t, "full", phase)
}

func TestRebind(t *testing.T) {
	sqlite := &Storage{cfg: Config{Driver: DriverSQLite}}
	postgres := &Storage{cfg: Config{Driver: DriverPostgres}}

	query := `UPDATE games SET version = ? WHERE id = ? AND version = ?`
	assert.Equal(t, query, sqlite.rebind(query))
	assert.Equal(t, `UPDATE games SET version = $1 WHERE id = $2 AND version = $3`, postgres.rebind(query))
}
