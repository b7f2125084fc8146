package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/steveyegge/projctl/internal/snapshot"
	"github.com/steveyegge/projctl/internal/storage/file"
	"github.com/steveyegge/projctl/internal/storage/mongo"
	"github.com/steveyegge/projctl/internal/storage/sqlite"
)

// Store defines the interface for snapshot storage backends. A store holds
// whole-graph snapshots; Load returns the most recent one.
type Store interface {
	// Load returns the latest snapshot, or snapshot.ErrNoSnapshot when the
	// store is empty
	Load(ctx context.Context) (*snapshot.Document, error)

	// Save persists doc as the latest snapshot
	Save(ctx context.Context, doc *snapshot.Document) error

	// Describe returns a short human-readable location, e.g. "sqlite:/x/projctl.db"
	Describe() string

	// Lifecycle
	Close() error
}

// HistoryStore is implemented by backends that keep older snapshots
type HistoryStore interface {
	Store
	History(ctx context.Context) ([]snapshot.Entry, error)
}

// Backend names accepted by Config.Backend
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// Default file names inside the workspace directory
const (
	DefaultFileName   = "snapshot.json"
	DefaultSQLiteName = "projctl.db"
)

// Config holds store configuration
type Config struct {
	// Backend is one of file, sqlite or mongo
	// Default: "file"
	Backend string

	// Path is the snapshot file or SQLite database path. Relative paths are
	// resolved against the workspace directory. Empty selects the backend's
	// default file name.
	Path string

	// MongoURI and MongoDatabase select the MongoDB deployment
	MongoURI      string
	MongoDatabase string

	// History is how many snapshots the sqlite and mongo backends retain
	History int
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Backend:       BackendFile,
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "projctl",
		History:       5,
	}
}

// Validate checks that the configuration names a usable backend
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendSQLite:
	case BackendMongo:
		if strings.TrimSpace(c.MongoURI) == "" {
			return fmt.Errorf("mongo backend requires a URI")
		}
		if strings.TrimSpace(c.MongoDatabase) == "" {
			return fmt.Errorf("mongo backend requires a database name")
		}
	default:
		return fmt.Errorf("unknown store backend %q (expected file, sqlite or mongo)", c.Backend)
	}
	if c.History < 1 {
		return fmt.Errorf("history must be at least 1 (got %d)", c.History)
	}
	return nil
}

// ResolvePath returns the store file path for the backend, anchored at
// workspaceDir when the configured path is relative.
func (c *Config) ResolvePath(workspaceDir string) string {
	p := c.Path
	if p == "" {
		switch c.Backend {
		case BackendSQLite:
			p = DefaultSQLiteName
		default:
			p = DefaultFileName
		}
	}
	if filepath.IsAbs(p) || workspaceDir == "" {
		return p
	}
	return filepath.Join(workspaceDir, p)
}

// UsesLocalFile reports whether the backend stores data under the workspace,
// which is when the exclusive lock applies
func (c *Config) UsesLocalFile() bool {
	return c.Backend == BackendFile || c.Backend == BackendSQLite
}

// NewStore creates the storage backend selected by cfg
func NewStore(ctx context.Context, cfg *Config, workspaceDir string) (Store, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case BackendSQLite:
		return sqlite.New(ctx, cfg.ResolvePath(workspaceDir), cfg.History)
	case BackendMongo:
		return mongo.New(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.History)
	default:
		return file.New(cfg.ResolvePath(workspaceDir))
	}
}
