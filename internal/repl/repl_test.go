package repl

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/projctl/internal/session"
	"github.com/steveyegge/projctl/internal/storage/file"
	"github.com/steveyegge/projctl/internal/tracker"
)

func setupREPL(t *testing.T) (*REPL, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true

	store, err := file.New(t.TempDir() + "/snapshot.json")
	require.NoError(t, err)
	sess, err := session.Open(context.Background(), session.Options{Store: store})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close(context.Background()) })

	var out bytes.Buffer
	r, err := New(&Config{Session: sess, Out: &out})
	require.NoError(t, err)
	return r, &out
}

func TestNewRequiresSession(t *testing.T) {
	_, err := New(&Config{})
	assert.Error(t, err)
}

func TestProcessInputRunsCommands(t *testing.T) {
	r, out := setupREPL(t)

	require.NoError(t, r.processInput("createuser alice"))
	require.NoError(t, r.processInput("userlist"))
	assert.Contains(t, out.String(), "User alice created.")
	assert.Contains(t, out.String(), "1. alice")

	// Blank lines are ignored
	require.NoError(t, r.processInput("   "))
}

func TestProcessInputReturnsErrors(t *testing.T) {
	r, _ := setupREPL(t)

	err := r.processInput("projectlist")
	assert.ErrorIs(t, err, tracker.ErrEmptyContainer)

	err = r.processInput("bogus")
	assert.Error(t, err)
}

func TestExitBuiltins(t *testing.T) {
	r, out := setupREPL(t)
	for _, name := range []string{"safexit", "exit", "quit"} {
		assert.ErrorIs(t, r.processInput(name), errExit)
	}
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestHelpAndStatus(t *testing.T) {
	r, out := setupREPL(t)

	require.NoError(t, r.processInput("help"))
	assert.Contains(t, out.String(), "createproject projectname maxtasksvalue")
	assert.Contains(t, out.String(), "safexit")

	out.Reset()
	require.NoError(t, r.processInput("createproject P 3"))
	require.NoError(t, r.processInput("addtasktoproject P T task"))
	require.NoError(t, r.processInput("status"))
	assert.Contains(t, out.String(), "Projects  1")
	assert.Contains(t, out.String(), "Unsaved changes")

	out.Reset()
	require.NoError(t, r.processInput("save"))
	assert.Contains(t, out.String(), "Saved to file:")
	assert.False(t, r.sess.Dirty())
}

func TestCompleter(t *testing.T) {
	r, _ := setupREPL(t)
	require.NoError(t, r.processInput("createproject Alpha 3"))
	require.NoError(t, r.processInput("createuser alice"))

	c := &completer{sess: r.sess, builtins: r.builtinNames()}

	prefix, got := c.getCompletions("create")
	assert.Equal(t, "create", prefix)
	assert.Equal(t, []string{"createproject", "createuser"}, got)

	_, got = c.getCompletions("sa")
	assert.Equal(t, []string{"safexit", "save"}, got)

	_, got = c.getCompletions("tasklist ")
	assert.Equal(t, []string{"Alpha"}, got)

	_, got = c.getCompletions("changetaskstatus Alpha T w")
	assert.Equal(t, []string{"workinprogress"}, got)

	suffixes, n := c.Do([]rune("addusertotask Alpha T al"), len("addusertotask Alpha T al"))
	assert.Equal(t, 2, n)
	require.Len(t, suffixes, 1)
	assert.Equal(t, "ice ", string(suffixes[0]))
}
