package escrow

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/dicegame/internal/model"
)

func TestDepositOf(t *testing.T) {
	tests := []struct {
		name    string
		funds   []model.Coin
		want    model.Amount
		wantErr error
	}{
		{name: "no funds", funds: nil, want: 0},
		{name: "single coin", funds: []model.Coin{{Denom: "uscrt", Amount: 1_000_000}}, want: 1_000_000},
		{name: "split coins", funds: []model.Coin{{Denom: "uscrt", Amount: 400_000}, {Denom: "uscrt", Amount: 600_000}}, want: 1_000_000},
		{name: "zero foreign coin ignored", funds: []model.Coin{{Denom: "uatom", Amount: 0}, {Denom: "uscrt", Amount: 5}}, want: 5},
		{name: "foreign denom", funds: []model.Coin{{Denom: "uatom", Amount: 1_000_000}}, wantErr: model.ErrWrongDepositAmount},
		{name: "overflow", funds: []model.Coin{{Denom: "uscrt", Amount: math.MaxUint64}, {Denom: "uscrt", Amount: 1}}, wantErr: model.ErrWrongDepositAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DepositOf(tt.funds, "uscrt")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequireStake(t *testing.T) {
	terms := DefaultTerms()

	for _, amount := range []model.Amount{0, 500, 999_999, 1_000_001, 5_000_000} {
		_, err := terms.RequireStake([]model.Coin{{Denom: "uscrt", Amount: amount}})
		assert.ErrorIs(t, err, model.ErrWrongDepositAmount, "amount %d", amount)
	}

	_, err := terms.RequireStake(nil)
	assert.ErrorIs(t, err, model.ErrWrongDepositAmount)

	got, err := terms.RequireStake([]model.Coin{{Denom: "uscrt", Amount: 1_000_000}})
	require.NoError(t, err)
	assert.Equal(t, model.Amount(1_000_000), got)
}

func TestRelease(t *testing.T) {
	assert.Nil(t, Release("alice", 0))
	assert.Equal(t, []model.Payout{{Recipient: "alice", Amount: 7}}, Release("alice", 7))
}

func TestTotal(t *testing.T) {
	payouts := []model.Payout{{Recipient: "a", Amount: 2}, {Recipient: "b", Amount: 3}}
	assert.Equal(t, model.Amount(5), Total(payouts))
	assert.Equal(t, model.Amount(0), Total(nil))
}

func TestCredit(t *testing.T) {
	balances := map[model.Address]model.Amount{"alice": 10}

	err := Credit(balances, []model.Payout{
		{Recipient: "alice", Amount: 5},
		{Recipient: "bob", Amount: 2},
		{Recipient: "alice", Amount: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, model.Amount(16), balances["alice"])
	assert.Equal(t, model.Amount(2), balances["bob"])
}

func TestCreditOverflowLeavesBalancesUnchanged(t *testing.T) {
	balances := map[model.Address]model.Amount{"alice": math.MaxUint64}

	err := Credit(balances, []model.Payout{
		{Recipient: "bob", Amount: 1},
		{Recipient: "alice", Amount: 1},
	})
	assert.ErrorIs(t, err, model.ErrBalanceOverflow)
	assert.Equal(t, model.Amount(math.MaxUint64), balances["alice"])
	_, ok := balances["bob"]
	assert.False(t, ok)
}
