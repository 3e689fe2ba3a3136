package model

// Amount is a quantity of base units (e.g. uscrt)
type Amount uint64

// DefaultDenom is the stake denomination
const DefaultDenom = "uscrt"

// DefaultRequiredDeposit is the stake each player must attach: 1 SCRT
const DefaultRequiredDeposit Amount = 1_000_000

// Coin is an amount of a single denomination attached to a message
type Coin struct {
	Denom  string `json:"denom"`
	Amount Amount `json:"amount"`
}

// Payout releases escrowed funds to a recipient's external balance
type Payout struct {
	Recipient Address `json:"recipient"`
	Amount    Amount  `json:"amount"`
}
