package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/dicegame/internal/dependencies/clock"
	"github.com/mcoot/dicegame/internal/dependencies/random"
	"github.com/mcoot/dicegame/internal/events"
	"github.com/mcoot/dicegame/internal/model"
	"github.com/mcoot/dicegame/internal/services/escrow"
	"github.com/mcoot/dicegame/internal/services/rules"
	"github.com/mcoot/dicegame/internal/storage"
)

// Action names the message a Result answers
type Action string

const (
	ActionJoin     Action = "join"
	ActionRollDice Action = "roll_dice"
	ActionLeave    Action = "leave"
)

// Result is the outcome of an accepted message
type Result struct {
	Action  Action
	Game    *model.Game
	Payouts []model.Payout
}

// Controller runs game messages against storage. Each message is validated and
// applied inside one storage update, so the new state and its payouts commit
// together or not at all.
type Controller struct {
	storage   storage.Storage
	machine   *rules.Machine
	publisher events.Publisher
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger
}

// NewController creates a new game Controller
func NewController(
	storage storage.Storage,
	machine *rules.Machine,
	publisher events.Publisher,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Controller{
		storage:   storage,
		machine:   machine,
		publisher: publisher,
		clock:     clock,
		random:    random,
		logger:    logger,
	}
}

// Terms returns the stake terms players must meet
func (c *Controller) Terms() escrow.Terms {
	return c.machine.Terms()
}

// Instantiate creates a new empty game instance
func (c *Controller) Instantiate(ctx context.Context) (*model.Game, error) {
	now := c.clock.Now()
	game := model.NewGame(model.GameID(uuid.NewString()), now)

	if err := c.storage.CreateGame(ctx, game); err != nil {
		c.logger.Error("failed to create game",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("game created", slog.String("game_id", string(game.ID)))

	c.publish(ctx, model.Event{
		Type:      model.EventGameCreated,
		Timestamp: now,
		GameID:    game.ID,
		Version:   game.Version,
	})
	return game, nil
}

// GetGame retrieves a game by ID
func (c *Controller) GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, gameID)
}

// Join seats the sender with the attached funds as their deposit
func (c *Controller) Join(ctx context.Context, gameID model.GameID, sender model.Address, name, secret string, funds []model.Coin) (*Result, error) {
	now := c.clock.Now()
	msg := rules.JoinMsg{
		Sender: sender,
		Name:   name,
		Secret: secret,
		Funds:  funds,
		At:     now,
	}
	return c.apply(ctx, gameID, ActionJoin, sender, now, func(g *model.Game) (*rules.Outcome, error) {
		return c.machine.Join(g, msg)
	})
}

// Leave refunds the sender if they are the only player in an open game
func (c *Controller) Leave(ctx context.Context, gameID model.GameID, sender model.Address) (*Result, error) {
	now := c.clock.Now()
	return c.apply(ctx, gameID, ActionLeave, sender, now, func(g *model.Game) (*rules.Outcome, error) {
		return c.machine.Leave(g, sender)
	})
}

// RollDice resolves a full game and pays the pot to the winner
func (c *Controller) RollDice(ctx context.Context, gameID model.GameID, sender model.Address) (*Result, error) {
	// Rejected rolls never draw entropy; the guards run again inside the update
	current, err := c.storage.GetGame(ctx, gameID)
	if err == nil {
		err = c.machine.CheckRoll(current, sender)
	}
	if err != nil {
		c.logFailure(gameID, ActionRollDice, sender, err)
		return nil, err
	}

	entropy, err := c.random.Bytes(random.EntropySize)
	if err != nil {
		c.logger.Error("failed to draw entropy",
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("draw entropy: %w", err)
	}

	now := c.clock.Now()
	return c.apply(ctx, gameID, ActionRollDice, sender, now, func(g *model.Game) (*rules.Outcome, error) {
		return c.machine.RollDice(g, sender, entropy)
	})
}

// WhoWon returns the winner of a resolved game
func (c *Controller) WhoWon(ctx context.Context, gameID model.GameID) (*model.Winner, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return rules.WhoWon(game)
}

// Balance returns the total paid out to an address
func (c *Controller) Balance(ctx context.Context, addr model.Address) (model.Amount, error) {
	return c.storage.Balance(ctx, addr)
}

// apply runs a transition inside a storage update and publishes its event once
// the update has committed
func (c *Controller) apply(
	ctx context.Context,
	gameID model.GameID,
	action Action,
	sender model.Address,
	now time.Time,
	transition func(g *model.Game) (*rules.Outcome, error),
) (*Result, error) {
	var outcome *rules.Outcome
	game, err := c.storage.UpdateGame(ctx, gameID, func(g *model.Game) ([]model.Payout, error) {
		out, err := transition(g)
		if err != nil {
			return nil, err
		}
		g.UpdatedAt = now
		outcome = out
		return out.Payouts, nil
	})
	if err != nil {
		c.logFailure(gameID, action, sender, err)
		return nil, err
	}

	c.logger.Info("message applied",
		slog.String("game_id", string(gameID)),
		slog.String("action", string(action)),
		slog.String("sender", string(sender)),
		slog.String("phase", string(game.Phase)),
		slog.Uint64("pot", uint64(game.Pot)),
		slog.Uint64("paid_out", uint64(escrow.Total(outcome.Payouts))),
		slog.Int64("version", game.Version),
	)
	if game.Winner != nil && action == ActionRollDice {
		c.logger.Info("game resolved",
			slog.String("game_id", string(gameID)),
			slog.String("winner", string(game.Winner.Addr)),
			slog.Int("dice_roll", game.Winner.DiceRoll),
		)
	}

	event := outcome.Event
	event.Timestamp = now
	event.Version = game.Version
	c.publish(ctx, event)

	return &Result{
		Action:  action,
		Game:    game,
		Payouts: outcome.Payouts,
	}, nil
}

func (c *Controller) logFailure(gameID model.GameID, action Action, sender model.Address, err error) {
	attrs := []any{
		slog.String("game_id", string(gameID)),
		slog.String("action", string(action)),
		slog.String("sender", string(sender)),
		slog.String("error", err.Error()),
	}
	if IsRejection(err) {
		c.logger.Info("message rejected", attrs...)
	} else {
		c.logger.Error("failed to apply message", attrs...)
	}
}

// publish delivers an event for a message that has already committed, so a
// delivery failure is logged rather than returned
func (c *Controller) publish(ctx context.Context, event model.Event) {
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warn("failed to publish event",
			slog.String("game_id", string(event.GameID)),
			slog.String("event_type", string(event.Type)),
			slog.String("error", err.Error()),
		)
	}
}

// IsRejection reports whether err is a game rule refusing a message, as
// opposed to an infrastructure failure
func IsRejection(err error) bool {
	for _, target := range []error{
		model.ErrWrongDepositAmount,
		model.ErrGameFull,
		model.ErrGameNotFull,
		model.ErrGameOver,
		model.ErrNotAPlayer,
		model.ErrNothingToLeave,
		model.ErrMalformedMessage,
		model.ErrGameNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
