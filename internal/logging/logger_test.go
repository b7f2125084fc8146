package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	charmlog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger("info", "json", &buf)
	require.NoError(t, err)

	log.With("component", "test").Info("saved", "store", "file")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "saved", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, "file", entry["store"])
}

func TestNewLoggerJSONFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger("info", "json", &buf)
	require.NoError(t, err)

	log.Debug("hidden")
	assert.Empty(t, buf.String())

	log.Error("failed", "op", "save")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "failed", entry["msg"])
	assert.Equal(t, "save", entry["op"])
}

func TestNewLoggerFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger("warn", "text", &buf)
	require.NoError(t, err)

	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown", "path", "tasks.json")
	out := buf.String()
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "path=tasks.json")
	assert.NotContains(t, out, "hidden")
}

func TestDiscardDropsEverything(t *testing.T) {
	log := Discard()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}

func TestCharmLevel(t *testing.T) {
	assert.Equal(t, charmlog.DebugLevel, charmLevel(slog.LevelDebug))
	assert.Equal(t, charmlog.InfoLevel, charmLevel(slog.LevelInfo))
	assert.Equal(t, charmlog.WarnLevel, charmLevel(slog.LevelWarn))
	assert.Equal(t, charmlog.ErrorLevel, charmLevel(slog.LevelError))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
	_, err = NewLogger("verbose", "text", &bytes.Buffer{})
	assert.Error(t, err)
}
