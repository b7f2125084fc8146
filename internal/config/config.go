// Package config loads projctl settings from defaults, the workspace config
// file and the environment, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/steveyegge/projctl/internal/storage"
)

// Config holds every projctl setting
type Config struct {
	Store StoreConfig `yaml:"store" toml:"store"`
	Log   LogConfig   `yaml:"log" toml:"log"`
	HTTP  HTTPConfig  `yaml:"http" toml:"http"`
	REPL  REPLConfig  `yaml:"repl" toml:"repl"`

	// Autosave saves the snapshot after every successful mutating command
	// Default: false (save on exit only)
	Autosave bool `yaml:"autosave" toml:"autosave"`
}

// StoreConfig selects and configures the snapshot backend
type StoreConfig struct {
	// Backend is one of file, sqlite or mongo
	// Default: "file"
	Backend string `yaml:"backend" toml:"backend"`

	// Path is the snapshot file or database, relative to the workspace
	// Default: "" (snapshot.json or projctl.db)
	Path string `yaml:"path,omitempty" toml:"path,omitempty"`

	MongoURI      string `yaml:"mongo_uri" toml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database" toml:"mongo_database"`

	// History is how many snapshots sqlite and mongo keep
	// Default: 5, Range: 1-1000
	History int `yaml:"history" toml:"history"`
}

// LogConfig controls structured logging
type LogConfig struct {
	// Level is one of debug, info, warn, error
	// Default: "warn"
	Level string `yaml:"level" toml:"level"`

	// Format is text or json
	// Default: "text"
	Format string `yaml:"format" toml:"format"`
}

// HTTPConfig controls 'projctl serve'
type HTTPConfig struct {
	// Addr is the listen address
	// Default: "127.0.0.1:8080"
	Addr string `yaml:"addr" toml:"addr"`

	// ReadTimeoutSeconds and WriteTimeoutSeconds bound request handling
	// Default: 10, Range: 1-300
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds" toml:"read_timeout_seconds"`
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds" toml:"write_timeout_seconds"`

	// Rate is the sustained request rate per second; Burst the bucket size
	// Default: 20 rps, burst 40
	Rate  float64 `yaml:"rate" toml:"rate"`
	Burst int     `yaml:"burst" toml:"burst"`
}

// REPLConfig controls the interactive console
type REPLConfig struct {
	// HistoryFile stores console history; relative paths are resolved
	// against the workspace
	// Default: "history"
	HistoryFile string `yaml:"history_file" toml:"history_file"`

	// NoColor disables colored output
	NoColor bool `yaml:"no_color" toml:"no_color"`
}

// Default returns the default configuration
func Default() Config {
	st := storage.DefaultConfig()
	return Config{
		Store: StoreConfig{
			Backend:       st.Backend,
			MongoURI:      st.MongoURI,
			MongoDatabase: st.MongoDatabase,
			History:       st.History,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		HTTP: HTTPConfig{
			Addr:                "127.0.0.1:8080",
			ReadTimeoutSeconds:  10,
			WriteTimeoutSeconds: 10,
			Rate:                20,
			Burst:               40,
		},
		REPL: REPLConfig{
			HistoryFile: "history",
		},
	}
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if err := c.Storage().Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if c.Store.History > 1000 {
		return fmt.Errorf("store.history too large (got %d, max 1000)", c.Store.History)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error (got %q)", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be 'text' or 'json' (got %q)", c.Log.Format)
	}

	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return fmt.Errorf("http.addr cannot be empty")
	}
	if c.HTTP.ReadTimeoutSeconds < 1 || c.HTTP.ReadTimeoutSeconds > 300 {
		return fmt.Errorf("http.read_timeout_seconds must be between 1 and 300 (got %d)", c.HTTP.ReadTimeoutSeconds)
	}
	if c.HTTP.WriteTimeoutSeconds < 1 || c.HTTP.WriteTimeoutSeconds > 300 {
		return fmt.Errorf("http.write_timeout_seconds must be between 1 and 300 (got %d)", c.HTTP.WriteTimeoutSeconds)
	}
	if c.HTTP.Rate <= 0 {
		return fmt.Errorf("http.rate must be positive (got %g)", c.HTTP.Rate)
	}
	if c.HTTP.Burst < 1 {
		return fmt.Errorf("http.burst must be at least 1 (got %d)", c.HTTP.Burst)
	}

	return nil
}

// String returns a human-readable representation of the config
func (c Config) String() string {
	return fmt.Sprintf(
		"Config{Store: %s path=%q history=%d, Log: %s/%s, HTTP: %s rate=%g burst=%d, "+
			"History: %q, NoColor: %t, Autosave: %t}",
		c.Store.Backend, c.Store.Path, c.Store.History, c.Log.Level, c.Log.Format,
		c.HTTP.Addr, c.HTTP.Rate, c.HTTP.Burst, c.REPL.HistoryFile, c.REPL.NoColor, c.Autosave,
	)
}

// Storage converts the store section into a storage config
func (c Config) Storage() *storage.Config {
	return &storage.Config{
		Backend:       c.Store.Backend,
		Path:          c.Store.Path,
		MongoURI:      c.Store.MongoURI,
		MongoDatabase: c.Store.MongoDatabase,
		History:       c.Store.History,
	}
}

// ReadTimeout returns the HTTP read timeout
func (c HTTPConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the HTTP write timeout
func (c HTTPConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// HistoryPath resolves the REPL history file against workspaceDir. Returns
// "" when history is disabled.
func (c REPLConfig) HistoryPath(workspaceDir string) string {
	if c.HistoryFile == "" || filepath.IsAbs(c.HistoryFile) || workspaceDir == "" {
		return c.HistoryFile
	}
	return filepath.Join(workspaceDir, c.HistoryFile)
}

// configNames are tried in order inside a workspace
var configNames = []string{"config.yaml", "config.yml", "config.toml"}

// FindFile returns the first config file present in workspaceDir, or ""
func FindFile(workspaceDir string) string {
	if workspaceDir == "" {
		return ""
	}
	for _, name := range configNames {
		p := filepath.Join(workspaceDir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load builds the configuration: defaults, then the file at path (skipped
// when path is empty), then environment variables. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty file decodes to io.EOF; keep the defaults
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config file type %q (expected .yaml, .yml or .toml)", path)
	}
	return nil
}

// MarshalYAML renders cfg as the YAML written by 'projctl init'
func MarshalYAML(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# projctl workspace configuration\n")
	buf.WriteString("# Environment variables (PROJCTL_*) override these values.\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}
