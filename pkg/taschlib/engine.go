package taschlib

import (
	"time"
)

// EngineOpts configures an Engine. Zero values fall back to SystemClock,
// DefaultTickInterval and a sink that drops events.
type EngineOpts struct {
	Clock    Clock
	Interval time.Duration
	Sink     EventSink
	// Post hands clock ticks to the goroutine that owns the engine. When
	// nil, ticks call Tick directly on the clock's goroutine.
	Post func(func())
}

// Engine sequences the tasks of one schedule at a time. It is not safe for
// concurrent use; Runner serialises access to it.
type Engine struct {
	clock    Clock
	interval time.Duration
	sink     EventSink
	post     func(func())

	state    State
	runID    uint64
	schedule *Schedule
	index    int
	current  *RunState

	inGap    bool
	gapLeft  time.Duration
	awaiting bool

	stopTicks func()
}

func NewEngine(opts *EngineOpts) *Engine {
	if opts == nil {
		opts = &EngineOpts{}
	}
	e := &Engine{
		clock:    opts.Clock,
		interval: opts.Interval,
		sink:     opts.Sink,
		post:     opts.Post,
		index:    -1,
	}
	if e.clock == nil {
		e.clock = SystemClock{}
	}
	if e.interval <= 0 {
		e.interval = DefaultTickInterval
	}
	if e.sink == nil {
		e.sink = SinkFunc(func(Event) {})
	}
	return e
}

func (e *Engine) State() State { return e.state }

// RunID is the generation of the current run; it changes on every Prepare.
func (e *Engine) RunID() uint64 { return e.runID }

func (e *Engine) Interval() time.Duration { return e.interval }

// Prepare loads a copy of s and positions the engine on its first task.
func (e *Engine) Prepare(s *Schedule) error {
	return e.PrepareAt(s, 0)
}

// PrepareAt is Prepare starting from the task at index from.
func (e *Engine) PrepareAt(s *Schedule, from int) error {
	switch e.state {
	case StateIdle, StateCompleted, StateCancelled:
	default:
		return invalidState("prepare", e.state)
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if from < 0 || from >= len(s.Tasks) {
		return invalidSchedule(-1, "start index %d out of range [0,%d)", from, len(s.Tasks))
	}
	e.halt()
	e.runID++
	e.schedule = s.Clone()
	e.index = from
	e.current = newRunState(e.schedule.Tasks[from])
	e.inGap, e.gapLeft, e.awaiting = false, 0, false
	e.setState(StateReady)
	return nil
}

func (e *Engine) Start() error {
	if e.state != StateReady {
		return invalidState("start", e.state)
	}
	e.setState(StateRunning)
	e.beginTask()
	e.subscribe()
	return nil
}

func (e *Engine) Pause() error {
	if e.state != StateRunning {
		return invalidState("pause", e.state)
	}
	e.setState(StatePaused)
	return nil
}

func (e *Engine) Resume() error {
	if e.state != StatePaused {
		return invalidState("resume", e.state)
	}
	e.setState(StateRunning)
	return nil
}

// Skip ends the current task early and moves on as if it had timed out,
// without the time-up event. While waiting for Advance it advances, and
// during a gap it starts the next task at once.
func (e *Engine) Skip() error {
	if !e.state.Active() {
		return invalidState("skip", e.state)
	}
	switch {
	case e.awaiting:
		e.next(false)
	case e.inGap:
		e.inGap, e.gapLeft = false, 0
		e.activate()
		e.resumeIfPaused()
	default:
		e.current.finish(PhaseSkipped)
		e.emitTask(EventTaskSkipped, e.current)
		e.afterTask()
	}
	return nil
}

// Stop cancels the run. Any queued tick is discarded.
func (e *Engine) Stop() error {
	switch e.state {
	case StateReady, StateRunning, StatePaused:
	default:
		return invalidState("stop", e.state)
	}
	e.halt()
	if e.current != nil && !e.current.Phase().Done() {
		e.current.finish(PhaseCancelled)
	}
	e.awaiting, e.inGap, e.gapLeft = false, false, 0
	e.emit(Event{Kind: EventScheduleCancelled})
	e.setState(StateCancelled)
	return nil
}

// Advance moves to the next task when auto-advance is off and the current
// task has finished. It never inserts the gap.
func (e *Engine) Advance() error {
	if !e.state.Active() || !e.awaiting {
		return invalidState("advance", e.state)
	}
	e.next(false)
	return nil
}

// Unload returns a finished engine to IDLE.
func (e *Engine) Unload() error {
	if !e.state.Terminal() {
		return invalidState("unload", e.state)
	}
	e.setState(StateIdle)
	e.schedule, e.current, e.index = nil, nil, -1
	return nil
}

// Tick processes one clock tick of the run identified by run. Ticks of
// another run, or arriving while the engine is not RUNNING, are ignored.
func (e *Engine) Tick(run uint64) {
	if run != e.runID || e.state != StateRunning || e.awaiting {
		return
	}
	if e.inGap {
		e.gapLeft -= e.interval
		if e.gapLeft <= 0 {
			e.inGap, e.gapLeft = false, 0
			e.activate()
		}
		return
	}
	rs := e.current
	crossed, timeUp := rs.advance(e.interval)
	for _, th := range crossed {
		t := rs.task.clone()
		e.emit(Event{
			Kind:      EventWarningFired,
			TaskIndex: e.index,
			TaskID:    t.ID,
			Task:      &t,
			Threshold: th,
		})
	}
	if !timeUp {
		return
	}
	rs.finish(PhaseCompleted)
	e.emitTask(EventTaskTimeUp, rs)
	e.emitTask(EventTaskCompleted, rs)
	e.afterTask()
}

// Close stops ticking without changing state. Used when the owner goes away.
func (e *Engine) Close() {
	e.halt()
}

func (e *Engine) afterTask() {
	if !e.schedule.AutoAdvance {
		e.awaiting = true
		e.resumeIfPaused()
		return
	}
	e.next(true)
}

func (e *Engine) next(withGap bool) {
	e.awaiting = false
	e.index++
	if e.index >= len(e.schedule.Tasks) {
		e.index = len(e.schedule.Tasks) - 1
		e.halt()
		e.emit(Event{Kind: EventScheduleCompleted})
		e.setState(StateCompleted)
		return
	}
	if withGap && e.schedule.Gap > 0 {
		e.inGap = true
		e.gapLeft = time.Duration(e.schedule.Gap) * time.Second
		e.current = nil
		e.resumeIfPaused()
		return
	}
	e.activate()
	e.resumeIfPaused()
}

func (e *Engine) activate() {
	e.current = newRunState(e.schedule.Tasks[e.index])
	e.beginTask()
}

func (e *Engine) beginTask() {
	e.current.begin()
	e.emitTask(EventTaskStarted, e.current)
}

func (e *Engine) resumeIfPaused() {
	if e.state == StatePaused {
		e.setState(StateRunning)
	}
}

func (e *Engine) subscribe() {
	run := e.runID
	fn := func() { e.Tick(run) }
	if e.post != nil {
		post := e.post
		fn = func() { post(func() { e.Tick(run) }) }
	}
	e.stopTicks = e.clock.Every(e.interval, fn)
}

func (e *Engine) halt() {
	if e.stopTicks != nil {
		e.stopTicks()
		e.stopTicks = nil
	}
}

func (e *Engine) setState(to State) {
	from := e.state
	if from == to {
		return
	}
	e.state = to
	e.emit(Event{Kind: EventStateChanged, From: from, To: to})
}

func (e *Engine) emitTask(kind EventKind, rs *RunState) {
	t := rs.task.clone()
	e.emit(Event{Kind: kind, TaskIndex: e.index, TaskID: t.ID, Task: &t})
}

func (e *Engine) emit(ev Event) {
	ev.RunID = e.runID
	if e.schedule != nil {
		ev.ScheduleID = e.schedule.ID
		ev.ScheduleName = e.schedule.Name
	}
	if ev.Task == nil {
		ev.TaskIndex = e.index
	}
	ev.At = e.clock.Now()
	e.sink.Emit(ev)
}
