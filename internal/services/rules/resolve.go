package rules

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

const (
	// DiceSides is the number of faces; rolls are in [1, DiceSides]
	DiceSides = 6

	// DefaultMaxRerolls bounds tie re-rolls before the first joiner wins
	DefaultMaxRerolls = 16

	rollDomain = "dicegame/roll/v1"
)

// Roll derives one player's dice value for a round. Every roll commits to the
// host entropy and to both players' secrets, so neither player alone can steer it.
func Roll(entropy []byte, secrets []string, round, seat int) int {
	buf := make([]byte, 0, len(rollDomain)+len(entropy)+64)
	buf = append(buf, rollDomain...)
	buf = appendField(buf, entropy)
	for _, s := range secrets {
		buf = appendField(buf, []byte(s))
	}
	buf = binary.BigEndian.AppendUint32(buf, uint32(round))
	buf = binary.BigEndian.AppendUint32(buf, uint32(seat))

	sum := blake2b.Sum256(buf)
	return int(binary.BigEndian.Uint64(sum[:8])%DiceSides) + 1
}

// Resolve rolls for every seat until one seat is strictly highest, at most
// maxRerolls rounds. If every round ties, seat 0 (the first joiner) wins.
// It returns the rolls of the deciding round and the winning seat.
func Resolve(entropy []byte, secrets []string, maxRerolls int) ([]int, int) {
	if maxRerolls < 1 {
		maxRerolls = 1
	}

	var rolls []int
	for round := 0; round < maxRerolls; round++ {
		rolls = make([]int, len(secrets))
		for seat := range secrets {
			rolls[seat] = Roll(entropy, secrets, round, seat)
		}
		if winner, ok := highest(rolls); ok {
			return rolls, winner
		}
	}
	return rolls, 0
}

// highest returns the seat with the strictly highest roll
func highest(rolls []int) (int, bool) {
	best, unique := 0, true
	for seat := 1; seat < len(rolls); seat++ {
		switch {
		case rolls[seat] > rolls[best]:
			best, unique = seat, true
		case rolls[seat] == rolls[best]:
			unique = false
		}
	}
	return best, unique
}

func appendField(buf, field []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(field)))
	return append(buf, field...)
}
