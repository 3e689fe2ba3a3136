package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entropyFor(i int) []byte {
	return []byte{byte(i), byte(i >> 8), 0xd1, 0xce}
}

func TestRollIsInRange(t *testing.T) {
	secrets := []string{"123", "321"}
	for i := 0; i < 500; i++ {
		for seat := range secrets {
			roll := Roll(entropyFor(i), secrets, 0, seat)
			assert.GreaterOrEqual(t, roll, 1)
			assert.LessOrEqual(t, roll, DiceSides)
		}
	}
}

func TestRollIsDeterministic(t *testing.T) {
	secrets := []string{"123", "321"}
	for i := 0; i < 50; i++ {
		assert.Equal(t, Roll(entropyFor(i), secrets, 0, 0), Roll(entropyFor(i), secrets, 0, 0))
	}
}

func TestRollCommitsToEverySecret(t *testing.T) {
	differs := false
	for i := 0; i < 64 && !differs; i++ {
		a := Roll(entropyFor(i), []string{"alice", "bob"}, 0, 0)
		b := Roll(entropyFor(i), []string{"alice", "mallory"}, 0, 0)
		differs = a != b
	}
	assert.True(t, differs, "seat 0's roll should depend on seat 1's secret")
}

func TestRollFieldsAreLengthPrefixed(t *testing.T) {
	differs := false
	for i := 0; i < 64 && !differs; i++ {
		a := Roll(entropyFor(i), []string{"ab", "c"}, 0, 0)
		b := Roll(entropyFor(i), []string{"a", "bc"}, 0, 0)
		differs = a != b
	}
	assert.True(t, differs)
}

func TestResolveEitherSeatCanWin(t *testing.T) {
	wins := map[int]int{}
	for i := 0; i < 200; i++ {
		rolls, winner := Resolve(entropyFor(i), []string{"123", "321"}, DefaultMaxRerolls)
		require.Len(t, rolls, 2)
		assert.Greater(t, rolls[winner], rolls[1-winner])
		wins[winner]++
	}
	assert.NotZero(t, wins[0])
	assert.NotZero(t, wins[1])
}

func TestResolveTieFallsBackToFirstJoiner(t *testing.T) {
	secrets := []string{"123", "321"}
	found := false
	for i := 0; i < 1000; i++ {
		if Roll(entropyFor(i), secrets, 0, 0) != Roll(entropyFor(i), secrets, 0, 1) {
			continue
		}
		found = true
		rolls, winner := Resolve(entropyFor(i), secrets, 1)
		assert.Equal(t, 0, winner)
		assert.Equal(t, rolls[0], rolls[1])
		break
	}
	require.True(t, found, "expected a tied first round within 1000 draws")
}

func TestResolveRerollsTies(t *testing.T) {
	secrets := []string{"123", "321"}
	found := false
	for i := 0; i < 1000; i++ {
		if Roll(entropyFor(i), secrets, 0, 0) != Roll(entropyFor(i), secrets, 0, 1) {
			continue
		}
		found = true
		rolls, winner := Resolve(entropyFor(i), secrets, DefaultMaxRerolls)
		assert.Greater(t, rolls[winner], rolls[1-winner])
		break
	}
	require.True(t, found, "expected a tied first round within 1000 draws")
}

func TestHighest(t *testing.T) {
	seat, ok := highest([]int{3, 5, 1})
	assert.True(t, ok)
	assert.Equal(t, 1, seat)

	_, ok = highest([]int{6, 2, 6})
	assert.False(t, ok)

	seat, ok = highest([]int{4})
	assert.True(t, ok)
	assert.Equal(t, 0, seat)
}
