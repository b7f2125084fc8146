package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/steveyegge/projctl/internal/snapshot"
)

// schemaVersion is recorded in the config table on first open
const schemaVersion = 1

// SQLiteStorage keeps the most recent snapshots in a SQLite database
type SQLiteStorage struct {
	db      *sql.DB
	path    string
	history int
}

// New opens (creating if needed) the database at path. history is how many
// snapshots are retained; older rows are pruned on save.
func New(ctx context.Context, path string, history int) (*SQLiteStorage, error) {
	if history < 1 {
		return nil, fmt.Errorf("history must be at least 1 (got %d)", history)
	}

	dsn := path
	if path != ":memory:" {
		// Ensure directory exists
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = abs
		dsn = "file:" + abs + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases coherent and serializes writers
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Initialize schema
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s := &SQLiteStorage{db: db, path: path, history: history}
	if err := s.checkSchemaVersion(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStorage) checkSchemaVersion(ctx context.Context) error {
	value, err := s.GetConfig(ctx, "schema_version")
	if err != nil {
		return err
	}
	if value == "" {
		return s.SetConfig(ctx, "schema_version", strconv.Itoa(schemaVersion))
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid schema_version %q in config: %w", value, err)
	}
	if v > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", v, schemaVersion)
	}
	return nil
}

// Path returns the database path
func (s *SQLiteStorage) Path() string { return s.path }

func (s *SQLiteStorage) Describe() string {
	return fmt.Sprintf("sqlite:%s (keeps %d)", s.path, s.history)
}

// Load returns the most recently saved snapshot
func (s *SQLiteStorage) Load(ctx context.Context) (*snapshot.Document, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM snapshots ORDER BY seq DESC LIMIT 1`).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, snapshot.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot: %w", err)
	}
	doc, err := snapshot.Decode([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return doc, nil
}

// Save inserts doc and prunes snapshots beyond the retention limit in one
// transaction
func (s *SQLiteStorage) Save(ctx context.Context, doc *snapshot.Document) error {
	data, err := doc.Encode()
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, version, saved_at, data)
		VALUES (?, ?, ?, ?)
	`, doc.ID, doc.Version, doc.SavedAt.UTC().Format(time.RFC3339Nano), string(data))
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM snapshots
		WHERE seq NOT IN (
			SELECT seq FROM snapshots ORDER BY seq DESC LIMIT ?
		)
	`, s.history)
	if err != nil {
		return fmt.Errorf("failed to prune snapshots: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// History lists retained snapshots, newest first
func (s *SQLiteStorage) History(ctx context.Context) ([]snapshot.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, version, saved_at FROM snapshots ORDER BY seq DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []snapshot.Entry
	for rows.Next() {
		var e snapshot.Entry
		var savedAt string
		if err := rows.Scan(&e.ID, &e.Version, &savedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		e.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid saved_at %q: %w", savedAt, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetConfig returns the value for key, or "" when unset
func (s *SQLiteStorage) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get config %s: %w", key, err)
	}
	return value, nil
}

// SetConfig stores value under key, replacing any previous value
func (s *SQLiteStorage) SetConfig(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set config %s: %w", key, err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
