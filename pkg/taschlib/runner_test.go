package taschlib

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type lockedRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *lockedRecorder) Emit(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *lockedRecorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []EventKind
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

func newTestRunner(t *testing.T) (*Runner, *ManualClock, *lockedRecorder, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	clock := NewManualClock(time.Now())
	rec := &lockedRecorder{}
	r := NewRunner(ctx, &EngineOpts{Clock: clock, Interval: time.Second, Sink: rec})
	t.Cleanup(cancel)
	return r, clock, rec, cancel
}

func TestRunner_TicksGoThroughLoop(t *testing.T) {
	r, clock, _, _ := newTestRunner(t)
	if err := r.Load(schedule(task("A", 10, 5)), 0, true); err != nil {
		t.Fatalf("Load: %v", err)
	}
	clock.TickN(4)
	// Snapshot is queued behind the posted ticks.
	snap, err := r.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.State != StateRunning || snap.Elapsed != 4 {
		t.Errorf("snapshot = %+v, want running with 4s elapsed", snap)
	}

	if err := r.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	clock.TickN(4)
	snap, _ = r.Snapshot()
	if snap.Elapsed != 4 {
		t.Errorf("elapsed while paused = %v, want 4", snap.Elapsed)
	}
}

func TestRunner_ReturnsCommandErrors(t *testing.T) {
	r, _, _, _ := newTestRunner(t)
	if err := r.Start(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Start on idle: err = %v", err)
	}
	if err := r.Prepare(&Schedule{}); !errors.Is(err, ErrInvalidSchedule) {
		t.Errorf("Prepare empty: err = %v", err)
	}
	if err := r.PrepareAt(schedule(task("A", 5), task("B", 5)), 1); err != nil {
		t.Fatalf("PrepareAt: %v", err)
	}
	steps := []struct {
		name string
		fn   func() error
	}{
		{"start", r.Start},
		{"pause", r.Pause},
		{"resume", r.Resume},
		{"skip", r.Skip},
		{"unload", r.Unload},
	}
	for _, st := range steps {
		if err := st.fn(); err != nil {
			t.Errorf("%s: %v", st.name, err)
		}
	}
	if err := r.Advance(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Advance on idle: err = %v", err)
	}
}

func TestRunner_StopDiscardsQueuedTicks(t *testing.T) {
	r, clock, rec, _ := newTestRunner(t)
	if err := r.Load(schedule(task("A", 3)), 0, true); err != nil {
		t.Fatalf("Load: %v", err)
	}
	clock.TickN(2)
	if err := r.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	clock.TickN(5)
	snap, _ := r.Snapshot()
	if snap.State != StateCancelled || snap.Elapsed != 2 {
		t.Errorf("snapshot = %+v", snap)
	}
	for _, k := range rec.kinds() {
		if k == EventTaskTimeUp {
			t.Error("time-up fired after stop")
		}
	}
}

func TestRunner_ClosedAfterCancel(t *testing.T) {
	r, clock, _, cancel := newTestRunner(t)
	if err := r.Load(schedule(task("A", 60)), 0, true); err != nil {
		t.Fatalf("Load: %v", err)
	}
	cancel()
	<-r.Done()
	if err := r.Pause(); !errors.Is(err, ErrRunnerClosed) {
		t.Errorf("Pause after cancel: err = %v", err)
	}
	if n := clock.Subscribers(); n != 0 {
		t.Errorf("clock still has %d subscribers after shutdown", n)
	}
}

func TestRunner_WithBus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock := NewManualClock(time.Now())
	bus := NewBus(nil)
	c := &collector{}
	bus.Subscribe("c", c)
	r := NewRunner(ctx, &EngineOpts{Clock: clock, Interval: time.Second, Sink: bus})

	if err := r.Load(schedule(task("A", 2, 1)), 0, true); err != nil {
		t.Fatalf("Load: %v", err)
	}
	clock.TickN(2)
	if _, err := r.Snapshot(); err != nil {
		t.Fatal(err)
	}
	bus.Close()

	want := []EventKind{
		EventStateChanged, EventStateChanged, EventTaskStarted,
		EventWarningFired, EventTaskTimeUp, EventTaskCompleted,
		EventScheduleCompleted, EventStateChanged,
	}
	got := c.kinds()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
}
