package taschlib

import (
	"slices"
	"time"
)

// RunState is the live progress of one task activation. A new value is
// built every time a task becomes current.
type RunState struct {
	task    Task
	elapsed time.Duration
	fired   []int
	phase   Phase
}

func newRunState(t Task) *RunState {
	return &RunState{task: t.clone()}
}

func (r *RunState) Task() Task { return r.task.clone() }

func (r *RunState) Phase() Phase { return r.phase }

func (r *RunState) Elapsed() time.Duration { return r.elapsed }

// Remaining is the task duration minus elapsed time, never negative.
func (r *RunState) Remaining() time.Duration {
	rem := r.task.Length() - r.elapsed
	if rem < 0 {
		return 0
	}
	return rem
}

// Fired returns the thresholds already fired, in firing order.
func (r *RunState) Fired() []int { return slices.Clone(r.fired) }

func (r *RunState) hasFired(th int) bool {
	return slices.Contains(r.fired, th)
}

func (r *RunState) pending() []int {
	var p []int
	for _, th := range r.task.Warnings {
		if !r.hasFired(th) {
			p = append(p, th)
		}
	}
	return p
}

func (r *RunState) begin() {
	r.phase = PhaseRunning
}

// advance accumulates d and returns the thresholds that crossed on this
// step, each marked fired, and whether the task is out of time.
func (r *RunState) advance(d time.Duration) (crossed []int, timeUp bool) {
	r.elapsed += d
	rem := r.Remaining()
	crossed = CrossedThresholds(rem, r.pending())
	if len(crossed) > 0 {
		r.fired = append(r.fired, crossed...)
		r.phase = PhaseWarningFired
	}
	return crossed, rem <= 0
}

func (r *RunState) finish(p Phase) {
	r.phase = p
}
