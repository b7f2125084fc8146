package tracker

import (
	"github.com/steveyegge/projctl/internal/types"
)

const (
	// MinProjectTasks and MaxProjectTasks bound a project's task cap
	MinProjectTasks = 1
	MaxProjectTasks = 99
)

// Project owns an ordered list of uniquely named tasks, capped at maxTasks
type Project struct {
	name     string
	maxTasks int
	tasks    []Task
}

func newProject(name string, maxTasks int) (*Project, error) {
	if maxTasks < MinProjectTasks || maxTasks > MaxProjectTasks {
		return nil, newError(ErrInvalidCapacity, "Maximum number of tasks must belong to [%d,%d].", MinProjectTasks, MaxProjectTasks)
	}
	return &Project{name: name, maxTasks: maxTasks}, nil
}

// Name returns the project's current name
func (p *Project) Name() string { return p.name }

// MaxTasks returns the task cap fixed at creation
func (p *Project) MaxTasks() int { return p.maxTasks }

// TaskCount returns the number of tasks in the project
func (p *Project) TaskCount() int { return len(p.tasks) }

// CreateTask adds a new task of the given level
func (p *Project) CreateTask(name string, level types.Level) error {
	if !level.IsValid() {
		return newError(ErrInvalidArgument, "Task level is invalid.")
	}
	if findTask(p.tasks, name) >= 0 {
		return newError(ErrDuplicateName, "Task with such name already exists.")
	}
	if len(p.tasks) >= p.maxTasks {
		return newError(ErrCapacityExceeded, "Maximum number of tasks reached.")
	}
	p.tasks = append(p.tasks, newTask(name, level))
	return nil
}

func (p *Project) task(name string) (Task, error) {
	i := findTask(p.tasks, name)
	if i < 0 {
		return nil, newError(ErrNotFound, "Task with name %s not found.", name)
	}
	return p.tasks[i], nil
}

// AssignUserToTask adds userName to the named task's executors
func (p *Project) AssignUserToTask(taskName, userName string) error {
	t, err := p.task(taskName)
	if err != nil {
		return err
	}
	return t.AddExecutor(userName)
}

// RemoveUserFromTask removes userName from the named task's executors
func (p *Project) RemoveUserFromTask(taskName, userName string) error {
	t, err := p.task(taskName)
	if err != nil {
		return err
	}
	return t.RemoveExecutor(userName)
}

// ChangeTaskStatus sets a task's status. Any status may follow any other.
func (p *Project) ChangeTaskStatus(taskName string, status types.Status) error {
	if err := checkStatus(status); err != nil {
		return err
	}
	t, err := p.task(taskName)
	if err != nil {
		return err
	}
	t.SetStatus(status)
	return nil
}

// RemoveTask deletes the named task together with any subtasks it holds
func (p *Project) RemoveTask(taskName string) error {
	i := findTask(p.tasks, taskName)
	if i < 0 {
		return newError(ErrNotFound, "Task with name %s is not found.", taskName)
	}
	p.tasks = append(p.tasks[:i:i], p.tasks[i+1:]...)
	return nil
}

// Tasks returns task records in insertion order, indexed from 1
func (p *Project) Tasks() []TaskRecord {
	return taskRecords(p.tasks)
}

// GroupedTasks returns tasks grouped by status
func (p *Project) GroupedTasks() []StatusGroup {
	return groupRecords(p.tasks)
}

// ListTasks returns one formatted line per task
func (p *Project) ListTasks() ([]string, error) {
	if len(p.tasks) == 0 {
		return nil, newError(ErrEmptyContainer, "Project is empty.")
	}
	return FormatTaskLines(p.Tasks()), nil
}

// ListTasksGroupedByStatus returns formatted lines grouped by status
func (p *Project) ListTasksGroupedByStatus() ([]string, error) {
	if len(p.tasks) == 0 {
		return nil, newError(ErrEmptyContainer, "Project is empty.")
	}
	return FormatGroupLines(p.GroupedTasks()), nil
}

// Epic resolves taskName to an epic owned by this project
func (p *Project) Epic(taskName string) (*EpicTask, error) {
	i := findTask(p.tasks, taskName)
	if i < 0 {
		return nil, newError(ErrNotFound, "Task with name %s was not found.", taskName)
	}
	epic, ok := p.tasks[i].AsEpic()
	if !ok {
		return nil, newError(ErrNotAnEpic, "Task %s is not an epic task.", taskName)
	}
	return epic, nil
}

// AddSubtaskToEpic adds a subtask to the named epic
func (p *Project) AddSubtaskToEpic(taskName, subtaskName string, level types.Level) error {
	epic, err := p.Epic(taskName)
	if err != nil {
		return err
	}
	return epic.AddSubtask(subtaskName, level)
}

// RemoveSubtaskFromEpic removes a subtask from the named epic
func (p *Project) RemoveSubtaskFromEpic(taskName, subtaskName string) error {
	epic, err := p.Epic(taskName)
	if err != nil {
		return err
	}
	return epic.RemoveSubtask(subtaskName)
}
