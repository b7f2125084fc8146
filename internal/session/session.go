// Package session hosts one project manager for the lifetime of a front-end.
// It loads the latest snapshot on open, serializes every operation behind a
// single mutex and saves on close.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/steveyegge/projctl/internal/command"
	"github.com/steveyegge/projctl/internal/logging"
	"github.com/steveyegge/projctl/internal/snapshot"
	"github.com/steveyegge/projctl/internal/storage"
	"github.com/steveyegge/projctl/internal/tracker"
)

// Options configures Open
type Options struct {
	Store storage.Store

	// WorkspaceDir receives the exclusive lock file when Lock is set
	WorkspaceDir string
	Lock         bool

	// Autosave saves after every successful mutation
	Autosave bool

	Logger  *logging.Logger
	Version string
}

// Session owns a manager and the store it persists to
type Session struct {
	mu       sync.Mutex
	m        *tracker.Manager
	store    storage.Store
	log      *logging.Logger
	autosave bool
	dirty    bool
	lastID   string
	lockPath string
	closed   bool
}

// Open acquires the workspace lock (if requested) and loads the latest
// snapshot. A missing snapshot starts an empty manager. A snapshot that
// cannot be read or restored is logged and also starts empty; it is not
// overwritten until something changes.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	s := &Session{
		store:    opts.Store,
		log:      log.With("store", opts.Store.Describe()),
		autosave: opts.Autosave,
	}

	if opts.Lock {
		path, err := storage.AcquireExclusiveLock(opts.WorkspaceDir, opts.Version)
		if err != nil {
			return nil, err
		}
		s.lockPath = path
	}

	s.m = s.load(ctx)
	return s, nil
}

func (s *Session) load(ctx context.Context) *tracker.Manager {
	doc, err := s.store.Load(ctx)
	if errors.Is(err, snapshot.ErrNoSnapshot) {
		s.log.Debug("no snapshot stored, starting empty")
		return tracker.NewManager()
	}
	if err != nil {
		s.log.Error("failed to load snapshot, starting empty", "error", err)
		return tracker.NewManager()
	}
	m, err := doc.Restore()
	if err != nil {
		s.log.Error("failed to restore snapshot, starting empty", "snapshot", doc.ID, "error", err)
		return tracker.NewManager()
	}
	s.lastID = doc.ID
	s.log.Debug("snapshot loaded", "snapshot", doc.ID, "saved_at", doc.SavedAt,
		"users", m.UserCount(), "projects", m.ProjectCount())
	return m
}

// Exec runs one console command line
func (s *Session) Exec(ctx context.Context, line string) (command.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := command.Run(s.m, line)
	if err != nil {
		s.log.Debug("command failed", "command", line, "error", err)
		return res, err
	}
	if res.Mutated {
		s.mutated(ctx)
	}
	return res, nil
}

// View runs fn with the manager. fn must not modify it.
func (s *Session) View(fn func(m *tracker.Manager) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.m)
}

// Update runs fn with the manager and records a mutation when fn succeeds
func (s *Session) Update(ctx context.Context, fn func(m *tracker.Manager) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.m); err != nil {
		return err
	}
	s.mutated(ctx)
	return nil
}

// Replace swaps in a new manager, e.g. after an import
func (s *Session) Replace(ctx context.Context, m *tracker.Manager) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = m
	s.mutated(ctx)
}

func (s *Session) mutated(ctx context.Context) {
	s.dirty = true
	if s.autosave {
		// Failures are logged; the change stays in memory and dirty
		_ = s.saveLocked(ctx)
	}
}

// Snapshot captures the current state
func (s *Session) Snapshot() *snapshot.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot.New(s.m)
}

// Dirty reports whether there are unsaved changes
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// LastSnapshotID returns the ID of the snapshot last loaded or saved
func (s *Session) LastSnapshotID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastID
}

// Describe returns the store location
func (s *Session) Describe() string {
	return s.store.Describe()
}

// Store returns the underlying store
func (s *Session) Store() storage.Store {
	return s.store
}

// Save writes a snapshot of the current state
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

func (s *Session) saveLocked(ctx context.Context) error {
	doc := snapshot.New(s.m)
	if err := s.store.Save(ctx, doc); err != nil {
		s.log.Error("failed to save snapshot", "error", err)
		return fmt.Errorf("save snapshot: %w", err)
	}
	s.dirty = false
	s.lastID = doc.ID
	s.log.Debug("snapshot saved", "snapshot", doc.ID)
	return nil
}

// Close saves pending changes, closes the store and releases the lock. A
// failed save is logged and does not prevent shutdown; it is returned so the
// caller can report it.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var saveErr error
	if s.dirty {
		saveErr = s.saveLocked(ctx)
	}
	if err := s.store.Close(); err != nil {
		s.log.Warn("failed to close store", "error", err)
	}
	if err := storage.ReleaseExclusiveLock(s.lockPath); err != nil {
		s.log.Warn("failed to release lock", "error", err)
	}
	return saveErr
}
