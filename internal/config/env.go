package config

import (
	"fmt"
	"os"
	"strconv"
)

// applyEnv overrides cfg from environment variables
//
// Environment variables:
//   - PROJCTL_STORE_BACKEND: file, sqlite or mongo
//   - PROJCTL_STORE_PATH: snapshot file or database path
//   - PROJCTL_MONGO_URI: MongoDB connection string
//   - PROJCTL_MONGO_DATABASE: MongoDB database name
//   - PROJCTL_SNAPSHOT_HISTORY: snapshots kept by sqlite and mongo
//   - PROJCTL_LOG_LEVEL: debug, info, warn or error
//   - PROJCTL_LOG_FORMAT: text or json
//   - PROJCTL_AUTOSAVE: save after every mutating command
//   - PROJCTL_HTTP_ADDR: listen address for 'projctl serve'
//   - PROJCTL_HTTP_RATE: sustained requests per second
//   - PROJCTL_HTTP_BURST: request burst size
//   - PROJCTL_HISTORY_FILE: console history file
//   - PROJCTL_NO_COLOR: disable colored output
//
// Returns an error if any environment variable has an invalid value.
func applyEnv(cfg *Config) error {
	steps := []error{
		parseEnvString("PROJCTL_STORE_BACKEND", &cfg.Store.Backend),
		parseEnvString("PROJCTL_STORE_PATH", &cfg.Store.Path),
		parseEnvString("PROJCTL_MONGO_URI", &cfg.Store.MongoURI),
		parseEnvString("PROJCTL_MONGO_DATABASE", &cfg.Store.MongoDatabase),
		parseEnvInt("PROJCTL_SNAPSHOT_HISTORY", &cfg.Store.History),
		parseEnvString("PROJCTL_LOG_LEVEL", &cfg.Log.Level),
		parseEnvString("PROJCTL_LOG_FORMAT", &cfg.Log.Format),
		parseEnvBool("PROJCTL_AUTOSAVE", &cfg.Autosave),
		parseEnvString("PROJCTL_HTTP_ADDR", &cfg.HTTP.Addr),
		parseEnvFloat("PROJCTL_HTTP_RATE", &cfg.HTTP.Rate),
		parseEnvInt("PROJCTL_HTTP_BURST", &cfg.HTTP.Burst),
		parseEnvString("PROJCTL_HISTORY_FILE", &cfg.REPL.HistoryFile),
		parseEnvBool("PROJCTL_NO_COLOR", &cfg.REPL.NoColor),
	}
	for _, err := range steps {
		if err != nil {
			return err
		}
	}
	return nil
}

// parseEnvInt parses an int from an environment variable
func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvFloat parses a float from an environment variable
func parseEnvFloat(key string, dest *float64) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvBool parses a bool from an environment variable
func parseEnvBool(key string, dest *bool) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvString parses a string from an environment variable
func parseEnvString(key string, dest *string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	*dest = value
	return nil
}
