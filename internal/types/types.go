package types

import (
	"fmt"
	"strings"
)

// Status represents the current state of a task
type Status int

const (
	StatusOpened Status = iota
	StatusWorkInProgress
	StatusCompleted
)

// Statuses lists every status in display order
var Statuses = []Status{StatusOpened, StatusWorkInProgress, StatusCompleted}

// IsValid checks if the status value is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusOpened, StatusWorkInProgress, StatusCompleted:
		return true
	}
	return false
}

// String returns the status name as shown in flat task listings
func (s Status) String() string {
	switch s {
	case StatusOpened:
		return "Opened"
	case StatusWorkInProgress:
		return "WorkInProgress"
	case StatusCompleted:
		return "Completed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Label returns the section heading used by grouped listings
func (s Status) Label() string {
	switch s {
	case StatusOpened:
		return "Opened"
	case StatusWorkInProgress:
		return "Work in progress"
	case StatusCompleted:
		return "Completed"
	}
	return s.String()
}

// Keyword returns the command keyword for the status
func (s Status) Keyword() string {
	return strings.ToLower(s.String())
}

// ParseStatus converts a command keyword (opened, workinprogress, completed)
// into a Status. Matching is case-insensitive.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "opened":
		return StatusOpened, nil
	case "workinprogress":
		return StatusWorkInProgress, nil
	case "completed":
		return StatusCompleted, nil
	}
	return 0, fmt.Errorf("invalid task status: %q (expected opened, workinprogress or completed)", s)
}

// MarshalText implements encoding.TextMarshaler so snapshots store keywords
func (s Status) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid status: %d", int(s))
	}
	return []byte(s.Keyword()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Level is the kind of a task: epic, story, task or bug
type Level int

const (
	LevelEpic Level = iota
	LevelStory
	LevelTask
	LevelBug
)

// Levels lists every task level
var Levels = []Level{LevelEpic, LevelStory, LevelTask, LevelBug}

// IsValid checks if the level value is valid
func (l Level) IsValid() bool {
	switch l {
	case LevelEpic, LevelStory, LevelTask, LevelBug:
		return true
	}
	return false
}

// CanBeSubtask reports whether tasks of this level may live inside an epic.
// Only stories and simple tasks qualify.
func (l Level) CanBeSubtask() bool {
	return l == LevelStory || l == LevelTask
}

func (l Level) String() string {
	switch l {
	case LevelEpic:
		return "epic"
	case LevelStory:
		return "story"
	case LevelTask:
		return "task"
	case LevelBug:
		return "bug"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel converts a command keyword (epic, story, task, bug) into a Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "epic":
		return LevelEpic, nil
	case "story":
		return LevelStory, nil
	case "task":
		return LevelTask, nil
	case "bug":
		return LevelBug, nil
	}
	return 0, fmt.Errorf("invalid task level: %q (expected epic, story, task or bug)", s)
}

// MarshalText implements encoding.TextMarshaler
func (l Level) MarshalText() ([]byte, error) {
	if !l.IsValid() {
		return nil, fmt.Errorf("invalid level: %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
