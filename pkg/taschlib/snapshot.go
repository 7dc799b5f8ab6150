package taschlib

import "time"

// Snapshot is a read-only view of the engine, safe to hand to other
// goroutines.
type Snapshot struct {
	State           State   `json:"state"`
	RunID           uint64  `json:"run_id"`
	ScheduleID      string  `json:"schedule_id,omitempty"`
	ScheduleName    string  `json:"schedule_name,omitempty"`
	TaskIndex       int     `json:"task_index"`
	TaskCount       int     `json:"task_count"`
	TaskID          string  `json:"task_id,omitempty"`
	TaskTitle       string  `json:"task_title,omitempty"`
	TaskDuration    int     `json:"task_duration,omitempty"`
	Phase           Phase   `json:"phase"`
	Elapsed         float64 `json:"elapsed_seconds"`
	Remaining       float64 `json:"remaining_seconds"`
	FiredThresholds []int   `json:"fired_thresholds,omitempty"`
	InGap           bool    `json:"in_gap,omitempty"`
	GapRemaining    float64 `json:"gap_remaining_seconds,omitempty"`
	AwaitingAdvance bool    `json:"awaiting_advance,omitempty"`
}

// ElapsedDuration returns Elapsed as a time.Duration.
func (s Snapshot) ElapsedDuration() time.Duration {
	return time.Duration(s.Elapsed * float64(time.Second))
}

// RemainingDuration returns Remaining as a time.Duration.
func (s Snapshot) RemainingDuration() time.Duration {
	return time.Duration(s.Remaining * float64(time.Second))
}

// Snapshot copies the current progress out of the engine.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{
		State:           e.state,
		RunID:           e.runID,
		TaskIndex:       e.index,
		InGap:           e.inGap,
		GapRemaining:    e.gapLeft.Seconds(),
		AwaitingAdvance: e.awaiting,
	}
	if e.schedule == nil {
		return snap
	}
	snap.ScheduleID = e.schedule.ID
	snap.ScheduleName = e.schedule.Name
	snap.TaskCount = len(e.schedule.Tasks)
	if e.index >= 0 && e.index < len(e.schedule.Tasks) {
		t := e.schedule.Tasks[e.index]
		snap.TaskID = t.ID
		snap.TaskTitle = t.Title
		snap.TaskDuration = t.Duration
		snap.Remaining = t.Length().Seconds()
	}
	if rs := e.current; rs != nil {
		snap.Phase = rs.Phase()
		snap.Elapsed = rs.Elapsed().Seconds()
		snap.Remaining = rs.Remaining().Seconds()
		snap.FiredThresholds = rs.Fired()
	}
	return snap
}
