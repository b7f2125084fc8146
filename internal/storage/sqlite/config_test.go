package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func TestConfigMethods(t *testing.T) {
	ctx := context.Background()

	// Create in-memory database
	db, err := New(ctx, ":memory:", 5)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Test GetConfig on non-existent key (should return empty string)
	value, err := db.GetConfig(ctx, "nonexistent")
	if err != nil {
		t.Errorf("GetConfig on non-existent key should not error: %v", err)
	}
	if value != "" {
		t.Errorf("expected empty string for non-existent key, got %q", value)
	}

	if err := db.SetConfig(ctx, "test_key", "test_value"); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	value, err = db.GetConfig(ctx, "test_key")
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if value != "test_value" {
		t.Errorf("expected 'test_value', got %q", value)
	}

	// Test SetConfig updates existing value
	if err := db.SetConfig(ctx, "test_key", "new_value"); err != nil {
		t.Fatalf("SetConfig update failed: %v", err)
	}
	value, err = db.GetConfig(ctx, "test_key")
	if err != nil {
		t.Fatalf("GetConfig after update failed: %v", err)
	}
	if value != "new_value" {
		t.Errorf("expected 'new_value', got %q", value)
	}
}

func TestSchemaVersionRecorded(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "projctl.db")

	db, err := New(ctx, path, 5)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	value, err := db.GetConfig(ctx, "schema_version")
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if value != "1" {
		t.Errorf("expected schema_version 1, got %q", value)
	}

	// Simulate a database written by a newer build
	if err := db.SetConfig(ctx, "schema_version", "99"); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	_ = db.Close()

	if _, err := New(ctx, path, 5); err == nil {
		t.Error("expected error opening database with newer schema version")
	}
}
