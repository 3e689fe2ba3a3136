package model

import "time"

// Address is a caller identity, already authenticated by the transport
type Address string

// Player is a seat at a game, created by a successful join
type Player struct {
	Addr     Address   `json:"addr"`
	Name     string    `json:"name"`
	Secret   string    `json:"secret"` // Only used for resolution, never exposed
	Deposit  Amount    `json:"deposit"`
	JoinedAt time.Time `json:"joined_at"`
}
