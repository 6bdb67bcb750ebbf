// Package config loads the service's typed, validated configuration from
// environment variables prefixed FCAPTCHA_, generalizing the teacher's
// getEnv/getEnvInt/getEnvDuration helpers to the keys this service needs.
package config

import (
	"fmt"
	"os"
	"strconv"
)

const envPrefix = "FCAPTCHA_"

// Config holds the service's runtime configuration.
type Config struct {
	BindAddress string
	BindPort    uint16
	AccessTTL   uint64 // seconds
	PuzzleTTL   uint64 // seconds
	SecretKey   []byte
	APIKey      []byte
}

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load() Config {
	return Config{
		BindAddress: getEnv("BIND_ADDRESS", "0.0.0.0"),
		BindPort:    getEnvUint16("BIND_PORT", 8080),
		AccessTTL:   getEnvUint64("ACCESS_TTL", 1800),
		PuzzleTTL:   getEnvUint64("PUZZLE_TTL", 3600),
		SecretKey:   []byte(getEnv("SECRET_KEY", "NOT-A-SECRET-KEY")),
		APIKey:      []byte(getEnv("API_KEY", "NOT-AN-API-KEY")),
	}
}

// Validate rejects configurations that cannot serve traffic correctly.
func (c Config) Validate() error {
	if c.BindPort == 0 {
		return fmt.Errorf("BIND_PORT must be nonzero")
	}
	if c.AccessTTL == 0 {
		return fmt.Errorf("ACCESS_TTL must be positive, got: %d", c.AccessTTL)
	}
	if c.PuzzleTTL == 0 {
		return fmt.Errorf("PUZZLE_TTL must be positive, got: %d", c.PuzzleTTL)
	}
	if len(c.SecretKey) == 0 {
		return fmt.Errorf("SECRET_KEY must not be empty")
	}
	if len(c.APIKey) == 0 {
		return fmt.Errorf("API_KEY must not be empty")
	}
	return nil
}

// getEnv gets environment variable or returns default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvUint64 gets environment variable as uint64 or returns default value
func getEnvUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(envPrefix + key); value != "" {
		if parsed, err := strconv.ParseUint(value, 10, 64); err == nil {
			return parsed
		}
		fmt.Fprintf(os.Stderr, "warning: invalid value for %s%s, using default: %d\n", envPrefix, key, defaultValue)
	}
	return defaultValue
}

// getEnvUint16 gets environment variable as uint16 or returns default value
func getEnvUint16(key string, defaultValue uint16) uint16 {
	if value := os.Getenv(envPrefix + key); value != "" {
		if parsed, err := strconv.ParseUint(value, 10, 16); err == nil {
			return uint16(parsed)
		}
		fmt.Fprintf(os.Stderr, "warning: invalid value for %s%s, using default: %d\n", envPrefix, key, defaultValue)
	}
	return defaultValue
}
