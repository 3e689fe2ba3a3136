// Package rules is the game state machine. Every transition validates all of
// its guards before it touches the game, so a rejected message leaves the game
// exactly as it was.
package rules

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mcoot/dicegame/internal/model"
	"github.com/mcoot/dicegame/internal/services/escrow"
)

const (
	MaxNameLength   = 64
	MaxSecretLength = 256
)

// ErrNoEntropy is returned when a roll is attempted without host entropy
var ErrNoEntropy = errors.New("no entropy supplied for resolution")

// JoinMsg is a join request bound to its authenticated sender
type JoinMsg struct {
	Sender model.Address
	Name   string
	Secret string
	Funds  []model.Coin
	At     time.Time
}

// Outcome is the effect of an accepted message: the payouts to release and the
// event describing it. The caller commits payouts together with the game.
type Outcome struct {
	Payouts []model.Payout
	Event   model.Event
}

// Machine applies messages to a game
type Machine struct {
	terms      escrow.Terms
	maxRerolls int
}

// New creates a Machine with the given stake terms
func New(terms escrow.Terms) *Machine {
	return &Machine{
		terms:      terms,
		maxRerolls: DefaultMaxRerolls,
	}
}

// Terms returns the stake terms in force
func (m *Machine) Terms() escrow.Terms {
	return m.terms
}

// Join seats the sender if the game is open and the exact stake is attached
func (m *Machine) Join(g *model.Game, msg JoinMsg) (*Outcome, error) {
	name := strings.TrimSpace(msg.Name)
	if err := validateJoin(msg.Sender, name, msg.Secret); err != nil {
		return nil, err
	}

	switch g.Phase {
	case model.PhaseResolved:
		return nil, model.ErrGameOver
	case model.PhaseFull:
		return nil, model.ErrGameFull
	}
	if len(g.Players) >= model.MaxPlayers {
		return nil, model.ErrGameFull
	}

	deposit, err := m.terms.RequireStake(msg.Funds)
	if err != nil {
		return nil, err
	}

	seat := len(g.Players)
	g.Players = append(g.Players, model.Player{
		Addr:     msg.Sender,
		Name:     name,
		Secret:   msg.Secret,
		Deposit:  deposit,
		JoinedAt: msg.At,
	})
	g.Pot += deposit
	if len(g.Players) == model.MaxPlayers {
		g.Phase = model.PhaseFull
	}

	return &Outcome{
		Event: model.Event{
			Type:   model.EventPlayerJoined,
			GameID: g.ID,
			Sender: msg.Sender,
			Payload: model.PlayerJoinedPayload{
				Name:    name,
				Seat:    seat,
				Deposit: deposit,
				Pot:     g.Pot,
			},
		},
	}, nil
}

// Leave refunds a lone player. Once both players are in, nobody may leave.
func (m *Machine) Leave(g *model.Game, sender model.Address) (*Outcome, error) {
	if sender == "" {
		return nil, fmt.Errorf("%w: sender is required", model.ErrMalformedMessage)
	}

	switch g.Phase {
	case model.PhaseResolved:
		return nil, model.ErrGameOver
	case model.PhaseFull:
		return nil, model.ErrGameFull
	}
	if len(g.Players) == 0 {
		return nil, model.ErrNothingToLeave
	}
	if g.Players[0].Addr != sender {
		return nil, model.ErrNotAPlayer
	}

	refund := g.Players[0].Deposit
	g.Players = []model.Player{}
	g.Pot -= refund

	return &Outcome{
		Payouts: escrow.Release(sender, refund),
		Event: model.Event{
			Type:    model.EventPlayerLeft,
			GameID:  g.ID,
			Sender:  sender,
			Payload: model.PlayerLeftPayload{Refund: refund},
		},
	}, nil
}

// CheckRoll reports whether sender may roll the dice in g, without needing
// entropy
func (m *Machine) CheckRoll(g *model.Game, sender model.Address) error {
	if sender == "" {
		return fmt.Errorf("%w: sender is required", model.ErrMalformedMessage)
	}

	switch g.Phase {
	case model.PhaseResolved:
		return model.ErrGameOver
	case model.PhaseOpen:
		return model.ErrGameNotFull
	}
	if !g.IsPlayer(sender) {
		return model.ErrNotAPlayer
	}
	return nil
}

// RollDice resolves a full game and pays the whole pot to the winner
func (m *Machine) RollDice(g *model.Game, sender model.Address, entropy []byte) (*Outcome, error) {
	if err := m.CheckRoll(g, sender); err != nil {
		return nil, err
	}
	if len(entropy) == 0 {
		return nil, ErrNoEntropy
	}

	secrets := make([]string, len(g.Players))
	for i, p := range g.Players {
		secrets[i] = p.Secret
	}
	rolls, seat := Resolve(entropy, secrets, m.maxRerolls)
	winner := g.Players[seat]

	payouts := escrow.Release(winner.Addr, g.Pot)
	g.Pot = 0
	g.Rolls = rolls
	g.Winner = &model.Winner{
		Name:     winner.Name,
		Addr:     winner.Addr,
		DiceRoll: rolls[seat],
	}
	g.Phase = model.PhaseResolved

	var payout model.Payout
	if len(payouts) > 0 {
		payout = payouts[0]
	}
	return &Outcome{
		Payouts: payouts,
		Event: model.Event{
			Type:   model.EventDiceRolled,
			GameID: g.ID,
			Sender: sender,
			Payload: model.DiceRolledPayload{
				Rolls:  append([]int{}, rolls...),
				Winner: *g.Winner,
				Payout: payout,
			},
		},
	}, nil
}

// WhoWon returns the recorded winner of a resolved game
func WhoWon(g *model.Game) (*model.Winner, error) {
	if g.Phase != model.PhaseResolved || g.Winner == nil {
		return nil, model.ErrNotResolved
	}
	w := *g.Winner
	return &w, nil
}

func validateJoin(sender model.Address, name, secret string) error {
	switch {
	case sender == "":
		return fmt.Errorf("%w: sender is required", model.ErrMalformedMessage)
	case name == "":
		return fmt.Errorf("%w: name is required", model.ErrMalformedMessage)
	case utf8.RuneCountInString(name) > MaxNameLength:
		return fmt.Errorf("%w: name exceeds %d characters", model.ErrMalformedMessage, MaxNameLength)
	case secret == "":
		return fmt.Errorf("%w: secret is required", model.ErrMalformedMessage)
	case len(secret) > MaxSecretLength:
		return fmt.Errorf("%w: secret exceeds %d bytes", model.ErrMalformedMessage, MaxSecretLength)
	}
	return nil
}
