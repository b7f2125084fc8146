package tracker

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/projctl/internal/types"
)

// fixedClock pins task creation time for the duration of a test
func fixedClock(t *testing.T, ts time.Time) {
	t.Helper()
	orig := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = orig })
}

func TestNewTaskKinds(t *testing.T) {
	tests := []struct {
		level types.Level
		want  interface{}
	}{
		{types.LevelEpic, &EpicTask{}},
		{types.LevelStory, &StoryTask{}},
		{types.LevelTask, &SimpleTask{}},
		{types.LevelBug, &BugTask{}},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			task := newTask("T", tt.level)
			assert.IsType(t, tt.want, task)
			assert.Equal(t, tt.level, task.Level())
			assert.Equal(t, types.StatusOpened, task.Status())
			assert.Equal(t, "T", task.Name())
			assert.Empty(t, task.Executors())
		})
	}
}

func TestTaskCreationTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	fixedClock(t, ts)

	task := newTask("T", types.LevelTask)
	assert.Equal(t, ts, task.CreatedAt())
}

func TestTaskStatusAnyTransition(t *testing.T) {
	task := newTask("T", types.LevelStory)
	for _, from := range types.Statuses {
		for _, to := range types.Statuses {
			task.SetStatus(from)
			task.SetStatus(to)
			assert.Equal(t, to, task.Status())
		}
	}
}

func TestSimpleTaskSingleExecutor(t *testing.T) {
	task := newTask("T", types.LevelTask)

	require.NoError(t, task.AddExecutor("alice"))
	assert.Equal(t, []string{"alice"}, task.Executors())

	err := task.AddExecutor("bob")
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, []string{"alice"}, task.Executors())

	err = task.AddExecutor("alice")
	assert.ErrorIs(t, err, ErrDuplicateExecutor)
}

func TestSimpleTaskRemoveExecutor(t *testing.T) {
	task := newTask("T", types.LevelTask)

	assert.ErrorIs(t, task.RemoveExecutor("alice"), ErrNotFound)

	require.NoError(t, task.AddExecutor("alice"))
	assert.ErrorIs(t, task.RemoveExecutor("bob"), ErrNotFound)
	assert.Equal(t, []string{"alice"}, task.Executors())

	require.NoError(t, task.RemoveExecutor("alice"))
	assert.Empty(t, task.Executors())
}

func TestBugTaskSingleExecutor(t *testing.T) {
	task := newTask("B", types.LevelBug)

	require.NoError(t, task.AddExecutor("alice"))
	assert.ErrorIs(t, task.AddExecutor("bob"), ErrCapacityExceeded)
	assert.ErrorIs(t, task.AddExecutor("alice"), ErrDuplicateExecutor)
	assert.Equal(t, []string{"alice"}, task.Executors())
}

func TestStoryTaskExecutorLimit(t *testing.T) {
	task := newTask("S", types.LevelStory)

	for i := 0; i < MaxStoryExecutors; i++ {
		require.NoError(t, task.AddExecutor(fmt.Sprintf("user%d", i)))
	}
	assert.Len(t, task.Executors(), MaxStoryExecutors)

	err := task.AddExecutor("eleventh")
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, "Story task cannot contain more than 10 executors.", err.Error())
	assert.Len(t, task.Executors(), MaxStoryExecutors)
}

func TestStoryTaskExecutorOrderAndDuplicates(t *testing.T) {
	task := newTask("S", types.LevelStory)

	require.NoError(t, task.AddExecutor("carol"))
	require.NoError(t, task.AddExecutor("alice"))
	require.NoError(t, task.AddExecutor("bob"))
	assert.Equal(t, []string{"carol", "alice", "bob"}, task.Executors())

	assert.ErrorIs(t, task.AddExecutor("alice"), ErrDuplicateExecutor)

	require.NoError(t, task.RemoveExecutor("alice"))
	assert.Equal(t, []string{"carol", "bob"}, task.Executors())
	assert.ErrorIs(t, task.RemoveExecutor("alice"), ErrNotFound)
}

func TestExecutorRemoveThenReAdd(t *testing.T) {
	for _, level := range []types.Level{types.LevelTask, types.LevelStory, types.LevelBug} {
		t.Run(level.String(), func(t *testing.T) {
			task := newTask("T", level)
			require.NoError(t, task.AddExecutor("alice"))
			require.NoError(t, task.RemoveExecutor("alice"))
			require.NoError(t, task.AddExecutor("alice"))
			assert.Equal(t, []string{"alice"}, task.Executors())
		})
	}
}

func TestExecutorsReturnsCopy(t *testing.T) {
	task := newTask("S", types.LevelStory)
	require.NoError(t, task.AddExecutor("alice"))

	names := task.Executors()
	names[0] = "mallory"
	assert.Equal(t, []string{"alice"}, task.Executors())
}

func TestAsEpic(t *testing.T) {
	for _, level := range types.Levels {
		task := newTask("T", level)
		epic, ok := task.AsEpic()
		if level == types.LevelEpic {
			assert.True(t, ok)
			assert.Same(t, task, epic)
		} else {
			assert.False(t, ok)
			assert.Nil(t, epic)
		}
	}
}

func TestNewUser(t *testing.T) {
	u, err := NewUser("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Name())

	_, err = NewUser("  ")
	assert.Error(t, err)
}

func TestCode(t *testing.T) {
	task := newTask("E", types.LevelEpic)
	assert.Equal(t, CodeNotAssignable, Code(task.AddExecutor("a")))
	assert.Equal(t, CodeInternal, Code(fmt.Errorf("boom")))
	assert.Equal(t, CodeNotFound, Code(fmt.Errorf("wrapped: %w", newError(ErrNotFound, "x"))))
}
