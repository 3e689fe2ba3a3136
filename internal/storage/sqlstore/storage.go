// Package sqlstore is a database/sql implementation of the storage interface
// for sqlite and postgres. Each game is a JSON document guarded by a version
// column; payouts are credited to the balances table in the same transaction.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/mcoot/dicegame/internal/model"
	"github.com/mcoot/dicegame/internal/storage"
)

// errVersionConflict signals that another writer committed first
var errVersionConflict = errors.New("version conflict")

// Storage is a SQL-backed implementation of the storage interface
type Storage struct {
	db  *sql.DB
	cfg Config
}

// Open connects to the database and creates the schema if needed
func Open(cfg Config) (*Storage, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("database dsn is required")
	}

	var dsn string
	switch cfg.Driver {
	case DriverSQLite:
		dsn = sqliteDSN(cfg.DSN)
	case DriverPostgres:
		dsn = cfg.DSN
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", cfg.Driver, err)
	}

	if cfg.Driver == DriverSQLite {
		// An in-memory database exists per connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", cfg.Driver, err)
	}

	s := &Storage{db: db, cfg: cfg}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return s, nil
}

func sqliteDSN(path string) string {
	if path == ":memory:" || strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Close closes the database handle
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO games (id, version, phase, state, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO NOTHING`),
		string(game.ID), game.Version, string(game.Phase), string(data), game.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	if n == 0 {
		return model.ErrGameExists
	}
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return loadGame(ctx, s.db, s.rebind, id)
}

// UpdateGame runs fn inside a transaction and writes the result with a
// version-checked UPDATE. A conflicting writer causes a retry.
func (s *Storage) UpdateGame(ctx context.Context, id model.GameID, fn storage.UpdateFunc) (*model.Game, error) {
	attempts := max(s.cfg.MaxTxRetries, 1)
	for i := 0; i < attempts; i++ {
		game, err := s.updateOnce(ctx, id, fn)
		if err == nil {
			return game, nil
		}
		if !errors.Is(err, errVersionConflict) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("update game %s: %w", id, model.ErrConcurrentUpdate)
}

func (s *Storage) updateOnce(ctx context.Context, id model.GameID, fn storage.UpdateFunc) (*model.Game, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := loadGame(ctx, tx, s.rebind, id)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	payouts, err := fn(next)
	if err != nil {
		return nil, err
	}
	next.Version = current.Version + 1

	data, err := json.Marshal(next)
	if err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, s.rebind(
		`UPDATE games SET version = ?, phase = ?, state = ?, updated_at = ?
		 WHERE id = ? AND version = ?`),
		next.Version, string(next.Phase), string(data), next.UpdatedAt.UnixMilli(),
		string(id), current.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("update game: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update game: %w", err)
	}
	if n == 0 {
		return nil, errVersionConflict
	}

	for _, p := range payouts {
		if err := s.credit(ctx, tx, p); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return next, nil
}

func (s *Storage) credit(ctx context.Context, tx *sql.Tx, p model.Payout) error {
	current, err := loadBalance(ctx, tx, s.rebind, p.Recipient)
	if err != nil {
		return err
	}
	if uint64(p.Amount) > math.MaxInt64-uint64(current) {
		return fmt.Errorf("credit %s: %w", p.Recipient, model.ErrBalanceOverflow)
	}

	_, err = tx.ExecContext(ctx, s.rebind(
		`INSERT INTO balances (address, amount) VALUES (?, ?)
		 ON CONFLICT (address) DO UPDATE SET amount = balances.amount + excluded.amount`),
		string(p.Recipient), int64(p.Amount),
	)
	if err != nil {
		return fmt.Errorf("credit %s: %w", p.Recipient, err)
	}
	return nil
}

// Balance operations

func (s *Storage) Balance(ctx context.Context, addr model.Address) (model.Amount, error) {
	return loadBalance(ctx, s.db, s.rebind, addr)
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadGame(ctx context.Context, q querier, rebind func(string) string, id model.GameID) (*model.Game, error) {
	var data string
	err := q.QueryRowContext(ctx, rebind(`SELECT state FROM games WHERE id = ?`), string(id)).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrGameNotFound
		}
		return nil, fmt.Errorf("get game: %w", err)
	}

	var game model.Game
	if err := json.Unmarshal([]byte(data), &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func loadBalance(ctx context.Context, q querier, rebind func(string) string, addr model.Address) (model.Amount, error) {
	var amount int64
	err := q.QueryRowContext(ctx, rebind(`SELECT amount FROM balances WHERE address = ?`), string(addr)).Scan(&amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return model.Amount(amount), nil
}

// rebind rewrites ? placeholders as $1, $2, ... for postgres
func (s *Storage) rebind(query string) string {
	if s.cfg.Driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
