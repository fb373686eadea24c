package devserver

import (
	"os"
	"path/filepath"
)

// Config holds dprd configuration, read from DPRD_* environment variables.
type Config struct {
	Addr         string
	DatabasePath string
	// SeedPath names an optional YAML file loaded into the database at start.
	SeedPath string
	Env      string // "development" or "production"
	// AuthToken, when set, must match the x-auth-token header of every request.
	AuthToken string
	LogLevel  string
}

// DefaultConfig returns the configuration used when no variables are set.
func DefaultConfig() *Config {
	dbPath := "dprd.db"
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, ".dpr", "dprd.db")
	}
	return &Config{
		Addr:         ":8089",
		DatabasePath: dbPath,
		Env:          "development",
		LogLevel:     "info",
	}
}

// LoadConfig applies DPRD_* environment variables over DefaultConfig.
func LoadConfig() *Config {
	cfg := DefaultConfig()
	if v := os.Getenv("DPRD_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("DPRD_DB"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("DPRD_SEED"); v != "" {
		cfg.SeedPath = v
	}
	if v := os.Getenv("DPRD_ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("DPRD_AUTH_TOKEN"); v != "" {
		cfg.AuthToken = v
	}
	if v := os.Getenv("DPR_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return cfg
}

// IsDevelopment returns true unless Env is "production".
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}
