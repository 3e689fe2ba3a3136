package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/dicegame/internal/model"
	"github.com/mcoot/dicegame/internal/services/escrow"
	"github.com/mcoot/dicegame/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// getter is satisfied by both the client and a WATCH transaction
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	created, err := s.client.SetNX(ctx, gameKey(game.ID), data, s.cfg.GameTTL).Result()
	if err != nil {
		return err
	}
	if !created {
		return model.ErrGameExists
	}
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return loadGame(ctx, s.client, id)
}

// UpdateGame watches the game key, runs fn on the loaded game, then watches the
// balance keys its payouts touch before writing everything in one MULTI/EXEC.
// A lost race is retried up to MaxTxRetries times.
func (s *Storage) UpdateGame(ctx context.Context, id model.GameID, fn storage.UpdateFunc) (*model.Game, error) {
	key := gameKey(id)

	var committed *model.Game
	txf := func(tx *redis.Tx) error {
		current, err := loadGame(ctx, tx, id)
		if err != nil {
			return err
		}

		next := current.Clone()
		payouts, err := fn(next)
		if err != nil {
			return err
		}
		next.Version = current.Version + 1

		data, err := json.Marshal(next)
		if err != nil {
			return err
		}

		credited, err := s.creditedBalances(ctx, tx, payouts)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.cfg.GameTTL)
			for addr, amount := range credited {
				pipe.Set(ctx, balanceKey(addr), strconv.FormatUint(uint64(amount), 10), 0)
			}
			return nil
		})
		if err != nil {
			return err
		}

		committed = next
		return nil
	}

	attempts := max(s.cfg.MaxTxRetries, 1)
	for i := 0; i < attempts; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return committed, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("update game %s: %w", id, model.ErrConcurrentUpdate)
}

// creditedBalances watches and reads the balance of every payout recipient and
// returns the balances after the payouts are applied
func (s *Storage) creditedBalances(ctx context.Context, tx *redis.Tx, payouts []model.Payout) (map[model.Address]model.Amount, error) {
	if len(payouts) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(payouts))
	for _, p := range payouts {
		keys = append(keys, balanceKey(p.Recipient))
	}
	if err := tx.Watch(ctx, keys...).Err(); err != nil {
		return nil, err
	}

	balances := make(map[model.Address]model.Amount, len(payouts))
	for _, p := range payouts {
		if _, ok := balances[p.Recipient]; ok {
			continue
		}
		amount, err := loadBalance(ctx, tx, p.Recipient)
		if err != nil {
			return nil, err
		}
		balances[p.Recipient] = amount
	}

	if err := escrow.Credit(balances, payouts); err != nil {
		return nil, err
	}
	return balances, nil
}

// Balance operations

func (s *Storage) Balance(ctx context.Context, addr model.Address) (model.Amount, error) {
	return loadBalance(ctx, s.client, addr)
}

func loadGame(ctx context.Context, g getter, id model.GameID) (*model.Game, error) {
	data, err := g.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func loadBalance(ctx context.Context, g getter, addr model.Address) (model.Amount, error) {
	raw, err := g.Get(ctx, balanceKey(addr)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}

	amount, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse balance for %s: %w", addr, err)
	}
	return model.Amount(amount), nil
}
