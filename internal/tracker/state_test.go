package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/projctl/internal/types"
)

// populatedManager builds a manager with mixed task kinds, epics with
// subtasks and assigned executors.
func populatedManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager()
	for _, u := range []string{"alice", "bob", "carol"} {
		require.NoError(t, m.AddUser(u))
	}
	require.NoError(t, m.CreateProject("Alpha", 10))
	require.NoError(t, m.CreateProject("Beta", 2))

	p, err := m.Project("Alpha")
	require.NoError(t, err)
	require.NoError(t, p.CreateTask("T1", types.LevelTask))
	require.NoError(t, p.CreateTask("S1", types.LevelStory))
	require.NoError(t, p.CreateTask("B1", types.LevelBug))
	require.NoError(t, p.CreateTask("E1", types.LevelEpic))
	require.NoError(t, m.AssignUserToTask("Alpha", "T1", "alice"))
	require.NoError(t, m.AssignUserToTask("Alpha", "S1", "bob"))
	require.NoError(t, m.AssignUserToTask("Alpha", "S1", "carol"))
	require.NoError(t, p.ChangeTaskStatus("S1", types.StatusWorkInProgress))
	require.NoError(t, p.AddSubtaskToEpic("E1", "Sub1", types.LevelStory))
	require.NoError(t, p.AddSubtaskToEpic("E1", "Sub2", types.LevelTask))
	require.NoError(t, m.AssignUserToSubtask("Alpha", "E1", "Sub1", "alice"))
	epic, err := p.Epic("E1")
	require.NoError(t, err)
	require.NoError(t, epic.ChangeSubtaskStatus("Sub2", types.StatusCompleted))
	return m
}

func TestExportImportRoundTrip(t *testing.T) {
	fixedClock(t, time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC))
	m := populatedManager(t)

	restored, err := Import(m.Export())
	require.NoError(t, err)

	assert.Equal(t, m.Export(), restored.Export())
	assert.Equal(t, m.Users(), restored.Users())
	assert.Equal(t, m.Projects(), restored.Projects())

	orig, err := m.Project("Alpha")
	require.NoError(t, err)
	got, err := restored.Project("Alpha")
	require.NoError(t, err)
	assert.Equal(t, orig.Tasks(), got.Tasks())

	origLines, err := orig.ListTasksGroupedByStatus()
	require.NoError(t, err)
	gotLines, err := got.ListTasksGroupedByStatus()
	require.NoError(t, err)
	assert.Equal(t, origLines, gotLines)

	origEpic, err := orig.Epic("E1")
	require.NoError(t, err)
	gotEpic, err := got.Epic("E1")
	require.NoError(t, err)
	assert.Equal(t, origEpic.Subtasks(), gotEpic.Subtasks())

	// Capacities survive the round trip
	beta, err := restored.Project("Beta")
	require.NoError(t, err)
	assert.Equal(t, 2, beta.MaxTasks())
}

func TestImportPreservesTimestampsAndStatus(t *testing.T) {
	created := time.Date(2020, 12, 31, 23, 59, 0, 0, time.UTC)
	s := State{
		Projects: []ProjectState{{
			Name:     "P",
			MaxTasks: 3,
			Tasks: []TaskState{{
				Name:      "T",
				Level:     types.LevelTask,
				CreatedAt: created,
				Status:    types.StatusCompleted,
			}},
		}},
	}

	m, err := Import(s)
	require.NoError(t, err)
	p, err := m.Project("P")
	require.NoError(t, err)
	rec := p.Tasks()[0]
	assert.Equal(t, created, rec.CreatedAt)
	assert.Equal(t, types.StatusCompleted, rec.Status)
}

func TestImportAllowsRenamedDuplicates(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.CreateProject("A", 1))
	require.NoError(t, m.CreateProject("B", 1))
	require.NoError(t, m.RenameProject("B", "A"))

	restored, err := Import(m.Export())
	require.NoError(t, err)
	assert.Equal(t, 2, restored.ProjectCount())
}

func TestImportRejectsInvariantViolations(t *testing.T) {
	tests := []struct {
		name  string
		state State
		kind  error
	}{
		{
			name:  "duplicate user",
			state: State{Users: []string{"a", "a"}},
			kind:  ErrDuplicateName,
		},
		{
			name:  "project cap out of range",
			state: State{Projects: []ProjectState{{Name: "P", MaxTasks: 100}}},
			kind:  ErrInvalidCapacity,
		},
		{
			name: "too many tasks",
			state: State{Projects: []ProjectState{{Name: "P", MaxTasks: 1, Tasks: []TaskState{
				{Name: "a", Level: types.LevelTask},
				{Name: "b", Level: types.LevelTask},
			}}}},
			kind: ErrCapacityExceeded,
		},
		{
			name: "duplicate task",
			state: State{Projects: []ProjectState{{Name: "P", MaxTasks: 5, Tasks: []TaskState{
				{Name: "a", Level: types.LevelTask},
				{Name: "a", Level: types.LevelBug},
			}}}},
			kind: ErrDuplicateName,
		},
		{
			name: "two executors on simple task",
			state: State{Projects: []ProjectState{{Name: "P", MaxTasks: 5, Tasks: []TaskState{
				{Name: "a", Level: types.LevelTask, Executors: []string{"x", "y"}},
			}}}},
			kind: ErrCapacityExceeded,
		},
		{
			name: "executor on epic",
			state: State{Projects: []ProjectState{{Name: "P", MaxTasks: 5, Tasks: []TaskState{
				{Name: "e", Level: types.LevelEpic, Executors: []string{"x"}},
			}}}},
			kind: ErrNotAssignable,
		},
		{
			name: "bug subtask",
			state: State{Projects: []ProjectState{{Name: "P", MaxTasks: 5, Tasks: []TaskState{
				{Name: "e", Level: types.LevelEpic, Subtasks: []TaskState{{Name: "s", Level: types.LevelBug}}},
			}}}},
			kind: ErrInvalidSubtaskKind,
		},
		{
			name: "subtasks on non-epic",
			state: State{Projects: []ProjectState{{Name: "P", MaxTasks: 5, Tasks: []TaskState{
				{Name: "t", Level: types.LevelStory, Subtasks: []TaskState{{Name: "s", Level: types.LevelTask}}},
			}}}},
			kind: ErrNotAnEpic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import(tt.state)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestExportOmitsEmptyCollections(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.CreateProject("P", 5))
	p, err := m.Project("P")
	require.NoError(t, err)
	require.NoError(t, p.CreateTask("E", types.LevelEpic))

	s := m.Export()
	require.Len(t, s.Projects, 1)
	assert.Nil(t, s.Projects[0].Tasks[0].Executors)
	assert.Nil(t, s.Projects[0].Tasks[0].Subtasks)
	assert.Empty(t, s.Users)
}
