package taschlib

import (
	"encoding/json"
	"fmt"
	"time"
)

type EventKind string

const (
	EventTaskStarted       EventKind = "task_started"
	EventWarningFired      EventKind = "warning_fired"
	EventTaskTimeUp        EventKind = "task_timeup"
	EventTaskSkipped       EventKind = "task_skipped"
	EventTaskCompleted     EventKind = "task_completed"
	EventScheduleCompleted EventKind = "schedule_completed"
	EventScheduleCancelled EventKind = "schedule_cancelled"
	EventStateChanged      EventKind = "state_changed"
)

// Event is a notification from the engine. Task fields are set for task
// events, Threshold for warnings and From/To for state changes.
type Event struct {
	Kind         EventKind `json:"kind"`
	RunID        uint64    `json:"run_id"`
	ScheduleID   string    `json:"schedule_id,omitempty"`
	ScheduleName string    `json:"schedule_name,omitempty"`
	TaskIndex    int       `json:"task_index"`
	TaskID       string    `json:"task_id,omitempty"`
	Task         *Task     `json:"task,omitempty"`
	Threshold    int       `json:"threshold,omitempty"`
	From         State     `json:"from,omitempty"`
	To           State     `json:"to,omitempty"`
	At           time.Time `json:"at"`
}

// MarshalJSON writes threshold for warnings and from/to for state changes
// even when they hold zero values, and leaves them out for other kinds.
func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	out := struct {
		plain
		Threshold *int   `json:"threshold,omitempty"`
		From      *State `json:"from,omitempty"`
		To        *State `json:"to,omitempty"`
	}{plain: plain(e)}
	switch e.Kind {
	case EventWarningFired:
		out.Threshold = &e.Threshold
	case EventStateChanged:
		out.From, out.To = &e.From, &e.To
	}
	return json.Marshal(out)
}

func (e Event) String() string {
	switch e.Kind {
	case EventStateChanged:
		return fmt.Sprintf("%s(%s->%s)", e.Kind, e.From, e.To)
	case EventWarningFired:
		return fmt.Sprintf("%s(%s,%d)", e.Kind, e.taskTitle(), e.Threshold)
	case EventScheduleCompleted, EventScheduleCancelled:
		return string(e.Kind)
	default:
		return fmt.Sprintf("%s(%s)", e.Kind, e.taskTitle())
	}
}

func (e Event) taskTitle() string {
	if e.Task != nil {
		return e.Task.Title
	}
	return e.TaskID
}

// EventSink receives engine events in emission order. Emit is called from
// the goroutine that drives the engine and must not call back into it.
type EventSink interface {
	Emit(Event)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }
