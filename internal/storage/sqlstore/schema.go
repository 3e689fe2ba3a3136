package sqlstore

// Balances are BIGINT in both dialects, so a single balance is capped at
// math.MaxInt64 base units.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS games (
	   id         TEXT PRIMARY KEY,
	   version    BIGINT NOT NULL,
	   phase      TEXT NOT NULL,
	   state      TEXT NOT NULL,
	   updated_at BIGINT NOT NULL
	 )`,
	`CREATE TABLE IF NOT EXISTS balances (
	   address TEXT PRIMARY KEY,
	   amount  BIGINT NOT NULL
	 )`,
}
