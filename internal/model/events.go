package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventGameCreated  EventType = "game_created"
	EventPlayerJoined EventType = "player_joined"
	EventPlayerLeft   EventType = "player_left"
	EventDiceRolled   EventType = "dice_rolled"
)

// Event describes an accepted message, published after commit
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	GameID    GameID    `json:"game_id"`
	Sender    Address   `json:"sender,omitempty"`
	Version   int64     `json:"version"`
	Payload   any       `json:"payload,omitempty"`
}

// PlayerJoinedPayload contains data for player joined events
type PlayerJoinedPayload struct {
	Name    string `json:"name"`
	Seat    int    `json:"seat"`
	Deposit Amount `json:"deposit"`
	Pot     Amount `json:"pot"`
}

// PlayerLeftPayload contains data for player left events
type PlayerLeftPayload struct {
	Refund Amount `json:"refund"`
}

// DiceRolledPayload contains data for dice rolled events
type DiceRolledPayload struct {
	Rolls  []int  `json:"rolls"`
	Winner Winner `json:"winner"`
	Payout Payout `json:"payout"`
}
