package tracker

import (
	"fmt"
	"time"

	"github.com/steveyegge/projctl/internal/types"
)

// State is a plain-data copy of a manager's whole graph, suitable for
// serialization
type State struct {
	Users    []string       `json:"users"`
	Projects []ProjectState `json:"projects"`
}

// ProjectState is the serializable form of a project
type ProjectState struct {
	Name     string      `json:"name"`
	MaxTasks int         `json:"max_tasks"`
	Tasks    []TaskState `json:"tasks"`
}

// TaskState is the serializable form of a task or subtask
type TaskState struct {
	Name      string       `json:"name"`
	Level     types.Level  `json:"level"`
	CreatedAt time.Time    `json:"created_at"`
	Status    types.Status `json:"status"`
	Executors []string     `json:"executors,omitempty"`
	Subtasks  []TaskState  `json:"subtasks,omitempty"`
}

// Export copies the manager's state
func (m *Manager) Export() State {
	s := State{
		Users:    userNames(m.users),
		Projects: make([]ProjectState, len(m.projects)),
	}
	for i, p := range m.projects {
		s.Projects[i] = ProjectState{
			Name:     p.name,
			MaxTasks: p.maxTasks,
			Tasks:    exportTasks(p.tasks),
		}
	}
	return s
}

func exportTasks(tasks []Task) []TaskState {
	out := make([]TaskState, len(tasks))
	for i, t := range tasks {
		ts := TaskState{
			Name:      t.Name(),
			Level:     t.Level(),
			CreatedAt: t.CreatedAt(),
			Status:    t.Status(),
		}
		if names := t.Executors(); len(names) > 0 {
			ts.Executors = names
		}
		if epic, ok := t.AsEpic(); ok && len(epic.subtasks) > 0 {
			ts.Subtasks = exportTasks(epic.subtasks)
		}
		out[i] = ts
	}
	return out
}

// Import rebuilds a manager from state. Every element goes through the same
// checks as the live operations, so a state that violates an invariant is
// rejected as a whole.
func Import(s State) (*Manager, error) {
	m := NewManager()
	for _, name := range s.Users {
		if err := m.AddUser(name); err != nil {
			return nil, fmt.Errorf("user %q: %w", name, err)
		}
	}
	for _, ps := range s.Projects {
		// Renames can leave two projects sharing a name, so projects are
		// appended directly rather than through CreateProject.
		p, err := newProject(ps.Name, ps.MaxTasks)
		if err != nil {
			return nil, fmt.Errorf("project %q: %w", ps.Name, err)
		}
		for _, ts := range ps.Tasks {
			if err := importTask(p, ts); err != nil {
				return nil, fmt.Errorf("project %q: task %q: %w", ps.Name, ts.Name, err)
			}
		}
		m.projects = append(m.projects, p)
	}
	return m, nil
}

func importTask(p *Project, ts TaskState) error {
	if err := p.CreateTask(ts.Name, ts.Level); err != nil {
		return err
	}
	t := p.tasks[len(p.tasks)-1]
	if err := restoreTask(t, ts); err != nil {
		return err
	}
	epic, ok := t.AsEpic()
	if !ok {
		if len(ts.Subtasks) > 0 {
			return newError(ErrNotAnEpic, "only epic tasks have subtasks")
		}
		return nil
	}
	for _, ss := range ts.Subtasks {
		if err := epic.AddSubtask(ss.Name, ss.Level); err != nil {
			return fmt.Errorf("subtask %q: %w", ss.Name, err)
		}
		if err := restoreTask(epic.subtasks[len(epic.subtasks)-1], ss); err != nil {
			return fmt.Errorf("subtask %q: %w", ss.Name, err)
		}
		if len(ss.Subtasks) > 0 {
			return fmt.Errorf("subtask %q: %w", ss.Name, newError(ErrNotAnEpic, "only epic tasks have subtasks"))
		}
	}
	return nil
}

func restoreTask(t Task, ts TaskState) error {
	if err := checkStatus(ts.Status); err != nil {
		return err
	}
	b := t.base()
	b.createdAt = ts.CreatedAt
	b.status = ts.Status
	for _, name := range ts.Executors {
		if err := t.AddExecutor(name); err != nil {
			return err
		}
	}
	return nil
}
