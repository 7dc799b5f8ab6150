package taschlib

import (
	"github.com/tasched/tasched/pkg/logger"
)

// LogSubscriber writes one log line per engine event. It remembers the
// current task so pause and resume lines can name it.
type LogSubscriber struct {
	l     logger.Logger
	title string
}

func NewLogSubscriber(l logger.Logger) *LogSubscriber {
	return &LogSubscriber{l: l}
}

func (s *LogSubscriber) Handle(e Event) error {
	switch e.Kind {
	case EventTaskStarted:
		s.title = e.Task.Title
		s.l.Info("Task started: %s (ID: %s)", e.Task.Title, e.TaskID)
	case EventWarningFired:
		s.l.Info("Warning triggered for task '%s' - %ds remaining", e.Task.Title, e.Threshold)
	case EventTaskTimeUp:
		s.l.Info("Time-up for task: %s", e.Task.Title)
	case EventTaskCompleted:
		s.l.Info("Task ended: %s (ID: %s) - Status: completed", e.Task.Title, e.TaskID)
	case EventTaskSkipped:
		s.l.Warning("Task skipped: %s", e.Task.Title)
	case EventScheduleCompleted:
		s.l.Info("Schedule ended: %s (ID: %s) - Status: completed", e.ScheduleName, e.ScheduleID)
	case EventScheduleCancelled:
		s.l.Info("Schedule ended: %s (ID: %s) - Status: cancelled", e.ScheduleName, e.ScheduleID)
	case EventStateChanged:
		switch {
		case e.From == StateReady && e.To == StateRunning:
			s.l.Info("Schedule started: %s (ID: %s)", e.ScheduleName, e.ScheduleID)
		case e.To == StatePaused:
			s.l.Info("Task paused: %s", s.title)
		case e.From == StatePaused && e.To == StateRunning:
			s.l.Info("Task resumed: %s", s.title)
		}
	}
	return nil
}
