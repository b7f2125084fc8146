package tracker

import (
	"github.com/steveyegge/projctl/internal/types"
)

// MaxSubtasks is how many subtasks an epic can hold
const MaxSubtasks = 15

// EpicTask groups story and simple subtasks. Epics have no executors of
// their own.
type EpicTask struct {
	taskBase
	subtasks []Task
}

func (t *EpicTask) Level() types.Level        { return types.LevelEpic }
func (t *EpicTask) AsEpic() (*EpicTask, bool) { return t, true }

// Executors always returns an empty list
func (t *EpicTask) Executors() []string { return []string{} }

func (t *EpicTask) AddExecutor(userName string) error {
	return newError(ErrNotAssignable, "Epic tasks have no executors.")
}

func (t *EpicTask) RemoveExecutor(userName string) error {
	return newError(ErrNotAssignable, "Epic tasks have no executors.")
}

// SubtaskCount returns the number of subtasks
func (t *EpicTask) SubtaskCount() int {
	return len(t.subtasks)
}

// AddSubtask appends a new story or simple task
func (t *EpicTask) AddSubtask(name string, level types.Level) error {
	if len(t.subtasks) >= MaxSubtasks {
		return newError(ErrCapacityExceeded, "Maximum number of subtasks reached.")
	}
	if findTask(t.subtasks, name) >= 0 {
		return newError(ErrDuplicateName, "Subtask with name %s already exists.", name)
	}
	if !level.CanBeSubtask() {
		return newError(ErrInvalidSubtaskKind, "Epic task can only contain stories and tasks.")
	}
	t.subtasks = append(t.subtasks, newTask(name, level))
	return nil
}

// RemoveSubtask deletes the subtask with the given name
func (t *EpicTask) RemoveSubtask(name string) error {
	i := findTask(t.subtasks, name)
	if i < 0 {
		return newError(ErrNotFound, "No subtask of %s with name %s.", t.name, name)
	}
	t.subtasks = append(t.subtasks[:i:i], t.subtasks[i+1:]...)
	return nil
}

func (t *EpicTask) subtask(name string) (Task, error) {
	i := findTask(t.subtasks, name)
	if i < 0 {
		return nil, newError(ErrNotFound, "Subtask with name %s not found.", name)
	}
	return t.subtasks[i], nil
}

// ChangeSubtaskStatus sets a subtask's status. Any status may follow any other.
func (t *EpicTask) ChangeSubtaskStatus(name string, status types.Status) error {
	if err := checkStatus(status); err != nil {
		return err
	}
	sub, err := t.subtask(name)
	if err != nil {
		return err
	}
	sub.SetStatus(status)
	return nil
}

// AssignUserToSubtask adds userName to the named subtask's executors
func (t *EpicTask) AssignUserToSubtask(subtaskName, userName string) error {
	sub, err := t.subtask(subtaskName)
	if err != nil {
		return err
	}
	return sub.AddExecutor(userName)
}

// RemoveUserFromSubtask removes userName from the named subtask's executors
func (t *EpicTask) RemoveUserFromSubtask(subtaskName, userName string) error {
	sub, err := t.subtask(subtaskName)
	if err != nil {
		return err
	}
	return sub.RemoveExecutor(userName)
}

// Subtasks returns subtask records in insertion order, indexed from 1
func (t *EpicTask) Subtasks() []TaskRecord {
	return taskRecords(t.subtasks)
}

// GroupedSubtasks returns subtasks grouped by status
func (t *EpicTask) GroupedSubtasks() []StatusGroup {
	return groupRecords(t.subtasks)
}

// ListSubtasks returns one formatted line per subtask
func (t *EpicTask) ListSubtasks() ([]string, error) {
	if len(t.subtasks) == 0 {
		return nil, newError(ErrEmptyContainer, "Epic task is empty.")
	}
	return FormatTaskLines(t.Subtasks()), nil
}

// ListSubtasksGroupedByStatus returns formatted lines grouped by status
func (t *EpicTask) ListSubtasksGroupedByStatus() ([]string, error) {
	if len(t.subtasks) == 0 {
		return nil, newError(ErrEmptyContainer, "Epic task is empty.")
	}
	return FormatGroupLines(t.GroupedSubtasks()), nil
}
