package sqlstore

import "time"

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds database connection and behavior settings
type Config struct {
	// Driver is one of DriverSQLite or DriverPostgres
	Driver string

	// DSN is a file path (or ":memory:") for sqlite and a connection string for postgres
	DSN string

	// Pool settings, ignored for sqlite which always uses a single connection
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// MaxTxRetries bounds how often an update is retried after a version conflict
	MaxTxRetries int
}

// DefaultConfig returns sensible defaults for database configuration
func DefaultConfig() Config {
	return Config{
		Driver:          DriverSQLite,
		DSN:             "dicegame.db",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		MaxTxRetries:    10,
	}
}
