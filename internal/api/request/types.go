package request

// Coin is an amount of one denomination attached to a message
type Coin struct {
	Denom  string `json:"denom"`
	Amount uint64 `json:"amount"`
}

// JoinRequest is the request body for joining a game. Funds are the coins sent
// with the message; exactly the required stake must be attached.
type JoinRequest struct {
	Name   string `json:"name"`
	Secret string `json:"secret"`
	Funds  []Coin `json:"funds"`
}
