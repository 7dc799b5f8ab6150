package taschlib

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is matched by every InvalidStateError.
	ErrInvalidState = errors.New("command not allowed in current state")
	// ErrInvalidSchedule is matched by every InvalidScheduleError.
	ErrInvalidSchedule = errors.New("invalid schedule")

	ErrRunnerClosed = errors.New("runner is closed")
	ErrTaskNotFound = errors.New("task not found in schedule")
)

// InvalidStateError is returned when a command is issued in a state that
// does not accept it. The engine is left untouched.
type InvalidStateError struct {
	Op    string
	State State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: not allowed while %s", e.Op, e.State)
}

func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

// InvalidScheduleError describes why a schedule was rejected by Prepare.
// TaskIndex is -1 when the problem is not tied to one task.
type InvalidScheduleError struct {
	Reason    string
	TaskIndex int
}

func (e *InvalidScheduleError) Error() string {
	if e.TaskIndex >= 0 {
		return fmt.Sprintf("invalid schedule: task %d: %s", e.TaskIndex, e.Reason)
	}
	return "invalid schedule: " + e.Reason
}

func (e *InvalidScheduleError) Is(target error) bool {
	return target == ErrInvalidSchedule
}

func invalidState(op string, s State) error {
	return &InvalidStateError{Op: op, State: s}
}

func invalidSchedule(index int, format string, args ...interface{}) error {
	return &InvalidScheduleError{Reason: fmt.Sprintf(format, args...), TaskIndex: index}
}
