// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port         int
	DatabasePath string // SQLite file; ":memory:" keeps games in memory only
	LogLevel     string
	LogPretty    bool

	// Stake bounds accepted by the API, in whole units.
	MinStake uint64
	MaxStake uint64

	// Quantum policy knobs. Zero keeps the built-in default.
	MaxSuperpositions int
	MaxEntanglements  int
}

// Load reads configuration from environment variables, honoring a .env
// file when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnvAsInt("PORT", 8080),
		DatabasePath:      getEnv("DATABASE_PATH", "data/quantum_chess.db"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogPretty:         getEnvAsBool("LOG_PRETTY", false),
		MinStake:          uint64(getEnvAsInt("MIN_STAKE", 1)),
		MaxStake:          uint64(getEnvAsInt("MAX_STAKE", 10000)),
		MaxSuperpositions: getEnvAsInt("MAX_SUPERPOSITIONS", 0),
		MaxEntanglements:  getEnvAsInt("MAX_ENTANGLEMENTS", 0),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.DatabasePath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MinStake > c.MaxStake {
		return fmt.Errorf("MIN_STAKE %d exceeds MAX_STAKE %d", c.MinStake, c.MaxStake)
	}
	if c.MaxSuperpositions < 0 || c.MaxEntanglements < 0 {
		return fmt.Errorf("policy caps must be non-negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
