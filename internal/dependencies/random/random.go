package random

import (
	"crypto/rand"
	"fmt"
)

// EntropySize is the number of bytes drawn for a dice resolution
const EntropySize = 32

// Random supplies unpredictable input for resolving a game.
// Implementations must not let a caller predict the bytes before they are drawn.
type Random interface {
	// Bytes returns n fresh random bytes
	Bytes(n int) ([]byte, error)
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Bytes returns n cryptographically random bytes
func (r *CryptoRandom) Bytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid entropy size %d", n)
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("read entropy: %w", err)
	}
	return buf, nil
}
