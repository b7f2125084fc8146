package tracker

import (
	"errors"
	"fmt"
)

// Error kinds returned by tracker operations. Every failing operation leaves
// the aggregate unchanged; callers classify failures with errors.Is.
var (
	ErrDuplicateName      = errors.New("duplicate name")
	ErrDuplicateExecutor  = errors.New("duplicate executor")
	ErrNotFound           = errors.New("not found")
	ErrNotAnEpic          = errors.New("not an epic task")
	ErrNotAssignable      = errors.New("not assignable")
	ErrCapacityExceeded   = errors.New("capacity exceeded")
	ErrInvalidSubtaskKind = errors.New("invalid subtask kind")
	ErrInvalidProject     = errors.New("invalid project")
	ErrInvalidUser        = errors.New("invalid user")
	ErrEmptyContainer     = errors.New("empty container")
	ErrInvalidCapacity    = errors.New("invalid capacity")
	ErrInvalidArgument    = errors.New("invalid argument")
)

// Error pairs an error kind with a human-readable message
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Error codes exposed to API clients
const (
	CodeDuplicateName      = "DUPLICATE_NAME"
	CodeDuplicateExecutor  = "DUPLICATE_EXECUTOR"
	CodeNotFound           = "NOT_FOUND"
	CodeNotAnEpic          = "NOT_AN_EPIC"
	CodeNotAssignable      = "NOT_ASSIGNABLE"
	CodeCapacityExceeded   = "CAPACITY_EXCEEDED"
	CodeInvalidSubtaskKind = "INVALID_SUBTASK_KIND"
	CodeInvalidProject     = "INVALID_PROJECT"
	CodeInvalidUser        = "INVALID_USER"
	CodeEmptyContainer     = "EMPTY_CONTAINER"
	CodeInvalidCapacity    = "INVALID_CAPACITY"
	CodeInvalidArgument    = "INVALID_ARGUMENT"
	CodeInternal           = "INTERNAL"
)

var codes = []struct {
	kind error
	code string
}{
	{ErrDuplicateName, CodeDuplicateName},
	{ErrDuplicateExecutor, CodeDuplicateExecutor},
	{ErrNotFound, CodeNotFound},
	{ErrNotAnEpic, CodeNotAnEpic},
	{ErrNotAssignable, CodeNotAssignable},
	{ErrCapacityExceeded, CodeCapacityExceeded},
	{ErrInvalidSubtaskKind, CodeInvalidSubtaskKind},
	{ErrInvalidProject, CodeInvalidProject},
	{ErrInvalidUser, CodeInvalidUser},
	{ErrEmptyContainer, CodeEmptyContainer},
	{ErrInvalidCapacity, CodeInvalidCapacity},
	{ErrInvalidArgument, CodeInvalidArgument},
}

// Code returns the stable code for a tracker error, or CodeInternal when err
// does not carry a known kind.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.kind) {
			return c.code
		}
	}
	return CodeInternal
}
