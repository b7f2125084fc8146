package tracker

import (
	"strings"
	"time"

	"github.com/steveyegge/projctl/internal/types"
)

const (
	// MaxStoryExecutors is how many executors a story task can hold
	MaxStoryExecutors = 10
	// MaxBugExecutors is how many executors a bug task can hold; bugs are
	// handled like simple tasks
	MaxBugExecutors = 1
)

// now is the clock used for task creation timestamps
var now = time.Now

// Assignable is the executor-management capability of a task
type Assignable interface {
	// Executors returns executor names in assignment order
	Executors() []string
	AddExecutor(userName string) error
	RemoveExecutor(userName string) error
}

// Task is one of *SimpleTask, *StoryTask, *BugTask or *EpicTask. Every kind
// implements Assignable; epics reject assignment with ErrNotAssignable.
type Task interface {
	Assignable

	Name() string
	Level() types.Level
	CreatedAt() time.Time
	Status() types.Status
	SetStatus(status types.Status)

	// AsEpic returns the task as an epic, or false for any other kind
	AsEpic() (*EpicTask, bool)

	base() *taskBase
}

type taskBase struct {
	name      string
	createdAt time.Time
	status    types.Status
}

func newTaskBase(name string) taskBase {
	return taskBase{
		name:      name,
		createdAt: now(),
		status:    types.StatusOpened,
	}
}

func (t *taskBase) Name() string                  { return t.name }
func (t *taskBase) CreatedAt() time.Time          { return t.createdAt }
func (t *taskBase) Status() types.Status          { return t.status }
func (t *taskBase) SetStatus(status types.Status) { t.status = status }
func (t *taskBase) AsEpic() (*EpicTask, bool)     { return nil, false }
func (t *taskBase) base() *taskBase               { return t }

// newTask instantiates the concrete kind for level
func newTask(name string, level types.Level) Task {
	switch level {
	case types.LevelEpic:
		return &EpicTask{taskBase: newTaskBase(name)}
	case types.LevelStory:
		return &StoryTask{taskBase: newTaskBase(name), executors: executorList{limit: MaxStoryExecutors, kind: "story"}}
	case types.LevelBug:
		return &BugTask{taskBase: newTaskBase(name), executors: executorList{limit: MaxBugExecutors, kind: "bug"}}
	default:
		return &SimpleTask{taskBase: newTaskBase(name)}
	}
}

func findTask(tasks []Task, name string) int {
	for i, t := range tasks {
		if t.Name() == name {
			return i
		}
	}
	return -1
}

// SimpleTask is a plain task with at most one executor
type SimpleTask struct {
	taskBase
	executor *User
}

func (t *SimpleTask) Level() types.Level { return types.LevelTask }

func (t *SimpleTask) Executors() []string {
	if t.executor == nil {
		return []string{}
	}
	return []string{t.executor.name}
}

func (t *SimpleTask) AddExecutor(userName string) error {
	if t.executor != nil {
		if t.executor.name == userName {
			return newError(ErrDuplicateExecutor, "User %s is already working on this task.", userName)
		}
		return newError(ErrCapacityExceeded, "This task already has an executor.")
	}
	t.executor = &User{name: userName}
	return nil
}

func (t *SimpleTask) RemoveExecutor(userName string) error {
	if t.executor == nil || t.executor.name != userName {
		return newError(ErrNotFound, "%s not found in this task.", userName)
	}
	t.executor = nil
	return nil
}

// StoryTask holds up to MaxStoryExecutors executors
type StoryTask struct {
	taskBase
	executors executorList
}

func (t *StoryTask) Level() types.Level                  { return types.LevelStory }
func (t *StoryTask) Executors() []string                 { return t.executors.names() }
func (t *StoryTask) AddExecutor(userName string) error    { return t.executors.add(userName) }
func (t *StoryTask) RemoveExecutor(userName string) error { return t.executors.remove(userName) }

// BugTask holds up to MaxBugExecutors executors
type BugTask struct {
	taskBase
	executors executorList
}

func (t *BugTask) Level() types.Level                  { return types.LevelBug }
func (t *BugTask) Executors() []string                 { return t.executors.names() }
func (t *BugTask) AddExecutor(userName string) error    { return t.executors.add(userName) }
func (t *BugTask) RemoveExecutor(userName string) error { return t.executors.remove(userName) }

// executorList is a bounded, ordered set of executors
type executorList struct {
	limit int
	kind  string
	users []User
}

func (l *executorList) names() []string {
	return userNames(l.users)
}

func (l *executorList) add(userName string) error {
	if findUser(l.users, userName) >= 0 {
		return newError(ErrDuplicateExecutor, "User %s is already working on this %s.", userName, l.kind)
	}
	if len(l.users) >= l.limit {
		return newError(ErrCapacityExceeded, "%s task cannot contain more than %d executors.", capitalize(l.kind), l.limit)
	}
	l.users = append(l.users, User{name: userName})
	return nil
}

func (l *executorList) remove(userName string) error {
	i := findUser(l.users, userName)
	if i < 0 {
		return newError(ErrNotFound, "User %s doesn't work on this %s.", userName, l.kind)
	}
	l.users = append(l.users[:i:i], l.users[i+1:]...)
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
