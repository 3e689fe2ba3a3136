package redis

import (
	"fmt"

	"github.com/mcoot/dicegame/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "dicegame"

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// balanceKey returns the Redis key holding an address's credited balance
func balanceKey(addr model.Address) string {
	return fmt.Sprintf("%s:balance:%s", keyPrefix, addr)
}
