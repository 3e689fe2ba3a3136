package cli

import (
	"errors"
	"os"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	Sender    string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("DICE_SERVER", "http://localhost:8080"),
		Sender:    os.Getenv("DICE_SENDER"),
		Output:    "text",
		Verbose:   false,
	}
}

// RequireSender returns the configured sender or an error if none is set
func (c *Config) RequireSender() (string, error) {
	if c.Sender == "" {
		return "", errors.New("a sender address is required: pass --sender or set DICE_SENDER")
	}
	return c.Sender, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
