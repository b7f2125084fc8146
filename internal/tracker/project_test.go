package tracker

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/projctl/internal/types"
)

func newTestProject(t *testing.T, maxTasks int) *Project {
	t.Helper()
	p, err := newProject("Alpha", maxTasks)
	require.NoError(t, err)
	return p
}

func TestNewProjectCapacityRange(t *testing.T) {
	for _, n := range []int{0, -1, 100} {
		_, err := newProject("P", n)
		assert.ErrorIs(t, err, ErrInvalidCapacity, "maxTasks=%d", n)
	}
	for _, n := range []int{1, 50, 99} {
		_, err := newProject("P", n)
		assert.NoError(t, err, "maxTasks=%d", n)
	}
}

func TestProjectTaskCap(t *testing.T) {
	p := newTestProject(t, 3)
	for i := 0; i < 3; i++ {
		require.NoError(t, p.CreateTask(fmt.Sprintf("T%d", i), types.LevelTask))
	}

	assert.ErrorIs(t, p.CreateTask("T3", types.LevelBug), ErrCapacityExceeded)
	assert.Equal(t, 3, p.TaskCount())
}

func TestProjectDuplicateTaskCheckedFirst(t *testing.T) {
	p := newTestProject(t, 1)
	require.NoError(t, p.CreateTask("T1", types.LevelTask))

	// Project is full, but the duplicate is reported first
	assert.ErrorIs(t, p.CreateTask("T1", types.LevelStory), ErrDuplicateName)
	assert.Equal(t, 1, p.TaskCount())
}

func TestProjectInvalidLevelCheckedBeforeCapacity(t *testing.T) {
	p := newTestProject(t, 1)
	require.NoError(t, p.CreateTask("T1", types.LevelTask))

	err := p.CreateTask("T2", types.Level(42))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.NotErrorIs(t, err, ErrInvalidSubtaskKind)
	assert.Equal(t, CodeInvalidArgument, Code(err))
	assert.Equal(t, "Task level is invalid.", err.Error())

	// an invalid level wins over a duplicate name too
	assert.ErrorIs(t, p.CreateTask("T1", types.Level(42)), ErrInvalidArgument)
	assert.Equal(t, 1, p.TaskCount())
}

func TestProjectInvalidStatus(t *testing.T) {
	p := newTestProject(t, 2)
	require.NoError(t, p.CreateTask("T1", types.LevelTask))

	err := p.ChangeTaskStatus("T1", types.Status(9))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, CodeInvalidArgument, Code(err))
}

func TestProjectCreateAllKinds(t *testing.T) {
	p := newTestProject(t, 10)
	for _, level := range types.Levels {
		require.NoError(t, p.CreateTask(level.String(), level))
	}

	records := p.Tasks()
	require.Len(t, records, 4)
	for i, level := range types.Levels {
		assert.Equal(t, level, records[i].Level)
		assert.Equal(t, i+1, records[i].Index)
	}
}

func TestProjectTaskExecutors(t *testing.T) {
	p := newTestProject(t, 10)
	require.NoError(t, p.CreateTask("T1", types.LevelTask))
	require.NoError(t, p.CreateTask("E1", types.LevelEpic))

	assert.ErrorIs(t, p.AssignUserToTask("nope", "alice"), ErrNotFound)
	require.NoError(t, p.AssignUserToTask("T1", "alice"))
	assert.ErrorIs(t, p.AssignUserToTask("T1", "bob"), ErrCapacityExceeded)
	assert.ErrorIs(t, p.AssignUserToTask("E1", "alice"), ErrNotAssignable)

	assert.ErrorIs(t, p.RemoveUserFromTask("nope", "alice"), ErrNotFound)
	assert.ErrorIs(t, p.RemoveUserFromTask("E1", "alice"), ErrNotAssignable)
	require.NoError(t, p.RemoveUserFromTask("T1", "alice"))
	assert.Empty(t, p.Tasks()[0].Executors)
}

func TestProjectChangeStatusAndRemove(t *testing.T) {
	p := newTestProject(t, 2)
	require.NoError(t, p.CreateTask("T1", types.LevelTask))
	require.NoError(t, p.CreateTask("T2", types.LevelStory))

	assert.ErrorIs(t, p.ChangeTaskStatus("nope", types.StatusCompleted), ErrNotFound)
	require.NoError(t, p.ChangeTaskStatus("T2", types.StatusCompleted))
	require.NoError(t, p.ChangeTaskStatus("T2", types.StatusOpened))
	assert.Equal(t, types.StatusOpened, p.Tasks()[1].Status)

	assert.ErrorIs(t, p.RemoveTask("nope"), ErrNotFound)
	require.NoError(t, p.RemoveTask("T1"))
	assert.Equal(t, 1, p.TaskCount())

	// Removal frees a slot
	require.NoError(t, p.CreateTask("T3", types.LevelBug))
	assert.Equal(t, 2, p.TaskCount())
}

func TestProjectListings(t *testing.T) {
	fixedClock(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	p := newTestProject(t, 5)

	_, err := p.ListTasks()
	assert.ErrorIs(t, err, ErrEmptyContainer)
	_, err = p.ListTasksGroupedByStatus()
	assert.ErrorIs(t, err, ErrEmptyContainer)

	require.NoError(t, p.CreateTask("T1", types.LevelTask))
	require.NoError(t, p.CreateTask("S1", types.LevelStory))
	require.NoError(t, p.CreateTask("B1", types.LevelBug))
	require.NoError(t, p.AssignUserToTask("S1", "alice"))
	require.NoError(t, p.AssignUserToTask("S1", "bob"))
	require.NoError(t, p.ChangeTaskStatus("T1", types.StatusWorkInProgress))

	lines, err := p.ListTasks()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"1. T1 2024-01-02 03:04:05 [] WorkInProgress",
		"2. S1 2024-01-02 03:04:05 [alice,bob] Opened",
		"3. B1 2024-01-02 03:04:05 [] Opened",
	}, lines)

	grouped, err := p.ListTasksGroupedByStatus()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Opened:",
		"0. S1 [alice,bob]",
		"1. B1 []",
		"Work in progress:",
		"0. T1 []",
		"Completed:",
	}, grouped)
}

func TestProjectEpicLookup(t *testing.T) {
	p := newTestProject(t, 5)
	require.NoError(t, p.CreateTask("E1", types.LevelEpic))
	require.NoError(t, p.CreateTask("T1", types.LevelTask))

	_, err := p.Epic("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = p.Epic("T1")
	assert.ErrorIs(t, err, ErrNotAnEpic)

	epic, err := p.Epic("E1")
	require.NoError(t, err)
	assert.Equal(t, "E1", epic.Name())
}

func TestProjectEpicSubtasks(t *testing.T) {
	p := newTestProject(t, 5)
	require.NoError(t, p.CreateTask("E1", types.LevelEpic))
	require.NoError(t, p.CreateTask("T1", types.LevelTask))

	assert.ErrorIs(t, p.AddSubtaskToEpic("nope", "S1", types.LevelTask), ErrNotFound)
	assert.ErrorIs(t, p.AddSubtaskToEpic("T1", "S1", types.LevelTask), ErrNotAnEpic)
	assert.ErrorIs(t, p.AddSubtaskToEpic("E1", "S1", types.LevelBug), ErrInvalidSubtaskKind)

	require.NoError(t, p.AddSubtaskToEpic("E1", "S1", types.LevelStory))
	// Subtask names only need to be unique within their epic
	require.NoError(t, p.AddSubtaskToEpic("E1", "T1", types.LevelTask))
	assert.Equal(t, 2, p.Tasks()[0].Subtasks)

	assert.ErrorIs(t, p.RemoveSubtaskFromEpic("T1", "S1"), ErrNotAnEpic)
	assert.ErrorIs(t, p.RemoveSubtaskFromEpic("E1", "nope"), ErrNotFound)
	require.NoError(t, p.RemoveSubtaskFromEpic("E1", "S1"))
	assert.Equal(t, 1, p.Tasks()[0].Subtasks)
}

func TestScenarioProjectCapOfTwo(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.CreateProject("Alpha", 2))
	p, err := m.Project("Alpha")
	require.NoError(t, err)

	require.NoError(t, p.CreateTask("T1", types.LevelTask))
	require.NoError(t, p.CreateTask("T2", types.LevelEpic))
	assert.ErrorIs(t, p.CreateTask("T3", types.LevelBug), ErrCapacityExceeded)

	lines, err := p.ListTasks()
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "1. T1 ")
	assert.Contains(t, lines[1], "2. T2 ")
}
