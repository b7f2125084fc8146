package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/steveyegge/projctl/internal/snapshot"
	"github.com/steveyegge/projctl/internal/tracker"
)

func newDoc(t *testing.T, users ...string) *snapshot.Document {
	t.Helper()
	m := tracker.NewManager()
	for _, u := range users {
		if err := m.AddUser(u); err != nil {
			t.Fatalf("AddUser(%s) failed: %v", u, err)
		}
	}
	return snapshot.New(m)
}

func TestLoadEmptyDatabase(t *testing.T) {
	ctx := context.Background()
	db, err := New(ctx, ":memory:", 5)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	defer func() { _ = db.Close() }()

	_, err = db.Load(ctx)
	if !errors.Is(err, snapshot.ErrNoSnapshot) {
		t.Errorf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestSaveLoadLatest(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "projctl.db")

	db, err := New(ctx, path, 5)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}

	first := newDoc(t, "alice")
	second := newDoc(t, "alice", "bob")
	if err := db.Save(ctx, first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := db.Save(ctx, second); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	_ = db.Close()

	// Reopen to verify persistence
	db, err = New(ctx, path, 5)
	if err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	defer func() { _ = db.Close() }()

	doc, err := db.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if doc.ID != second.ID {
		t.Errorf("expected latest snapshot %s, got %s", second.ID, doc.ID)
	}
	if len(doc.State.Users) != 2 {
		t.Errorf("expected 2 users, got %d", len(doc.State.Users))
	}
}

func TestHistoryPruning(t *testing.T) {
	ctx := context.Background()
	db, err := New(ctx, ":memory:", 3)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	defer func() { _ = db.Close() }()

	var ids []string
	for i := 0; i < 5; i++ {
		doc := newDoc(t, fmt.Sprintf("user%d", i))
		ids = append(ids, doc.ID)
		if err := db.Save(ctx, doc); err != nil {
			t.Fatalf("Save %d failed: %v", i, err)
		}
	}

	entries, err := db.History(ctx)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 retained snapshots, got %d", len(entries))
	}
	// Newest first
	for i, e := range entries {
		want := ids[len(ids)-1-i]
		if e.ID != want {
			t.Errorf("entry %d: expected %s, got %s", i, want, e.ID)
		}
		if e.Version != snapshot.CurrentVersion {
			t.Errorf("entry %d: expected version %d, got %d", i, snapshot.CurrentVersion, e.Version)
		}
	}
}

func TestNewRejectsZeroHistory(t *testing.T) {
	if _, err := New(context.Background(), ":memory:", 0); err == nil {
		t.Error("expected error for history 0")
	}
}
