package mongo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/projctl/internal/snapshot"
	"github.com/steveyegge/projctl/internal/tracker"
)

// newTestStore connects to PROJCTL_TEST_MONGO_URI using a throwaway database
func newTestStore(t *testing.T, history int) *Store {
	t.Helper()
	uri := os.Getenv("PROJCTL_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("PROJCTL_TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	s, err := New(ctx, uri, "projctl_test_"+uuid.NewString()[:8], history)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Drop(context.Background())
		_ = s.Close()
	})
	return s
}

func TestLoadEmpty(t *testing.T) {
	s := newTestStore(t, 5)
	_, err := s.Load(context.Background())
	assert.True(t, errors.Is(err, snapshot.ErrNoSnapshot))
}

func TestSaveLoadAndPrune(t *testing.T) {
	s := newTestStore(t, 2)
	ctx := context.Background()

	var last *snapshot.Document
	for i := 0; i < 4; i++ {
		m := tracker.NewManager()
		require.NoError(t, m.AddUser(fmt.Sprintf("user%d", i)))
		last = snapshot.New(m)
		// Distinct timestamps keep the sort order stable
		last.SavedAt = time.Date(2024, 1, 1, 0, 0, i, 0, time.UTC)
		require.NoError(t, s.Save(ctx, last))
	}

	doc, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, last.ID, doc.ID)
	assert.Equal(t, []string{"user3"}, doc.State.Users)

	entries, err := s.History(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, last.ID, entries[0].ID)
}

func TestSameInstantSavesKeepInsertOrder(t *testing.T) {
	s := newTestStore(t, 2)
	ctx := context.Background()

	savedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 4; i++ {
		m := tracker.NewManager()
		require.NoError(t, m.AddUser(fmt.Sprintf("user%d", i)))
		doc := snapshot.New(m)
		doc.SavedAt = savedAt
		require.NoError(t, s.Save(ctx, doc))
		ids = append(ids, doc.ID)
	}

	doc, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, ids[3], doc.ID)
	assert.Equal(t, []string{"user3"}, doc.State.Users)

	entries, err := s.History(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ids[3], entries[0].ID)
	assert.Equal(t, ids[2], entries[1].ID)
}

func TestNewestFirstOrdersBySequence(t *testing.T) {
	sort := newestFirst()
	require.NotEmpty(t, sort)
	assert.Equal(t, "seq", sort[0].Key)
	assert.Equal(t, -1, sort[0].Value)
}

func TestNewRejectsZeroHistory(t *testing.T) {
	_, err := New(context.Background(), "mongodb://localhost:27017", "x", 0)
	assert.Error(t, err)
}
