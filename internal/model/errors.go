package model

import "errors"

// Common errors used across the application
var (
	// Message errors
	ErrWrongDepositAmount = errors.New("wrong deposit amount")
	ErrGameFull           = errors.New("the game is full")
	ErrGameNotFull        = errors.New("the game is still waiting for players")
	ErrGameOver           = errors.New("the game is already over")
	ErrNotAPlayer         = errors.New("you are not a player")
	ErrNothingToLeave     = errors.New("nothing to leave")
	ErrMalformedMessage   = errors.New("malformed message")

	// Query errors
	ErrNotResolved = errors.New("no winner yet")

	// Storage errors
	ErrGameNotFound     = errors.New("game not found")
	ErrGameExists       = errors.New("game already exists")
	ErrConcurrentUpdate = errors.New("game was modified concurrently")
	ErrBalanceOverflow  = errors.New("balance overflow")
)
