package scheduler

import "time"

// ScheduleEvent is a pending automatic start in the scheduler heap.
// It only lives in memory and is rebuilt from stored schedules on restart.
type ScheduleEvent struct {
	// ScheduleID identifies the schedule to load and start at TriggerAt.
	ScheduleID string
	// TriggerAt is the wall-clock time the run should start.
	TriggerAt time.Time
	// CronExpr makes the event recurring. Empty means one-shot.
	CronExpr string
}
