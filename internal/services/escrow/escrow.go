// Package escrow represents funds attached to a message and funds released
// from a game's pot. It makes no game decisions.
package escrow

import (
	"context"
	"fmt"
	"math"

	"github.com/mcoot/dicegame/internal/model"
)

// Terms fixes the stake a player must attach to join
type Terms struct {
	Denom           string
	RequiredDeposit model.Amount
}

// DefaultTerms returns the observed configuration: exactly 1,000,000 uscrt
func DefaultTerms() Terms {
	return Terms{
		Denom:           model.DefaultDenom,
		RequiredDeposit: model.DefaultRequiredDeposit,
	}
}

// Ledger is the host balance ledger that payouts are credited to
type Ledger interface {
	Balance(ctx context.Context, addr model.Address) (model.Amount, error)
}

// DepositOf returns the amount of denom attached to a message, zero if none.
// Non-zero funds in any other denomination are rejected.
func DepositOf(funds []model.Coin, denom string) (model.Amount, error) {
	var total model.Amount
	for _, c := range funds {
		if c.Amount == 0 {
			continue
		}
		if c.Denom != denom {
			return 0, fmt.Errorf("%w: unexpected denom %q", model.ErrWrongDepositAmount, c.Denom)
		}
		if total > math.MaxUint64-c.Amount {
			return 0, fmt.Errorf("%w: amount overflows", model.ErrWrongDepositAmount)
		}
		total += c.Amount
	}
	return total, nil
}

// RequireStake returns the attached deposit if it is exactly the required stake
func (t Terms) RequireStake(funds []model.Coin) (model.Amount, error) {
	amount, err := DepositOf(funds, t.Denom)
	if err != nil {
		return 0, err
	}
	if amount != t.RequiredDeposit {
		return 0, fmt.Errorf("%w: must deposit %d%s, got %d%s",
			model.ErrWrongDepositAmount, t.RequiredDeposit, t.Denom, amount, t.Denom)
	}
	return amount, nil
}

// Release schedules amount to be paid to recipient. A zero release yields no payout.
func Release(recipient model.Address, amount model.Amount) []model.Payout {
	if amount == 0 {
		return nil
	}
	return []model.Payout{{Recipient: recipient, Amount: amount}}
}

// Total sums a set of payouts
func Total(payouts []model.Payout) model.Amount {
	var total model.Amount
	for _, p := range payouts {
		total += p.Amount
	}
	return total
}

// Credit applies payouts to an in-memory balance map. It validates every credit
// before touching the map so a failure leaves balances unchanged.
func Credit(balances map[model.Address]model.Amount, payouts []model.Payout) error {
	next := make(map[model.Address]model.Amount, len(payouts))
	for _, p := range payouts {
		current, ok := next[p.Recipient]
		if !ok {
			current = balances[p.Recipient]
		}
		if current > math.MaxUint64-p.Amount {
			return fmt.Errorf("credit %s: %w", p.Recipient, model.ErrBalanceOverflow)
		}
		next[p.Recipient] = current + p.Amount
	}
	for addr, amount := range next {
		balances[addr] = amount
	}
	return nil
}
