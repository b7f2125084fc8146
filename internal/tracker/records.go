package tracker

import (
	"fmt"
	"strings"
	"time"

	"github.com/steveyegge/projctl/internal/types"
)

// TimeFormat is the layout used for creation timestamps in listings
const TimeFormat = "2006-01-02 15:04:05"

// TaskRecord is a read-only view of a task for listings and API responses
type TaskRecord struct {
	Index     int          `json:"index"`
	Name      string       `json:"name"`
	Level     types.Level  `json:"level"`
	CreatedAt time.Time    `json:"created_at"`
	Status    types.Status `json:"status"`
	Executors []string     `json:"executors"`
	Subtasks  int          `json:"subtasks,omitempty"`
}

// StatusGroup holds the tasks sharing one status. Indexes restart at 0 in
// every group.
type StatusGroup struct {
	Status types.Status `json:"status"`
	Tasks  []TaskRecord `json:"tasks"`
}

// UserRecord is a read-only view of a registered user
type UserRecord struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// ProjectRecord is a read-only view of a project
type ProjectRecord struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	MaxTasks  int    `json:"max_tasks"`
	TaskCount int    `json:"task_count"`
}

func recordOf(t Task, index int) TaskRecord {
	rec := TaskRecord{
		Index:     index,
		Name:      t.Name(),
		Level:     t.Level(),
		CreatedAt: t.CreatedAt(),
		Status:    t.Status(),
		Executors: t.Executors(),
	}
	if epic, ok := t.AsEpic(); ok {
		rec.Subtasks = epic.SubtaskCount()
	}
	return rec
}

func taskRecords(tasks []Task) []TaskRecord {
	records := make([]TaskRecord, len(tasks))
	for i, t := range tasks {
		records[i] = recordOf(t, i+1)
	}
	return records
}

func groupRecords(tasks []Task) []StatusGroup {
	groups := make([]StatusGroup, 0, len(types.Statuses))
	for _, status := range types.Statuses {
		group := StatusGroup{Status: status, Tasks: []TaskRecord{}}
		for _, t := range tasks {
			if t.Status() == status {
				group.Tasks = append(group.Tasks, recordOf(t, len(group.Tasks)))
			}
		}
		groups = append(groups, group)
	}
	return groups
}

// FormatTaskLines renders records as "N. name created [a,b] Status"
func FormatTaskLines(records []TaskRecord) []string {
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = fmt.Sprintf("%d. %s %s [%s] %s",
			r.Index, r.Name, r.CreatedAt.Format(TimeFormat), strings.Join(r.Executors, ","), r.Status)
	}
	return lines
}

// FormatGroupLines renders a "Label:" heading per group followed by
// "N. name [a,b]" lines
func FormatGroupLines(groups []StatusGroup) []string {
	var lines []string
	for _, g := range groups {
		lines = append(lines, g.Status.Label()+":")
		for _, r := range g.Tasks {
			lines = append(lines, fmt.Sprintf("%d. %s [%s]", r.Index, r.Name, strings.Join(r.Executors, ",")))
		}
	}
	return lines
}

func checkStatus(status types.Status) error {
	if !status.IsValid() {
		return newError(ErrInvalidArgument, "Task status is invalid.")
	}
	return nil
}
