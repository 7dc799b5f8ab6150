package taschlib

import (
	"context"
)

type command struct {
	fn    func(*Engine) error
	reply chan error
}

// Runner owns an Engine on a single goroutine. User commands and clock
// ticks are both funnelled through one channel, so they are applied in
// arrival order and never race.
type Runner struct {
	ctx    context.Context
	engine *Engine
	cmds   chan command
	done   chan struct{}
}

// NewRunner starts the loop; it exits when ctx is cancelled.
func NewRunner(ctx context.Context, opts *EngineOpts) *Runner {
	r := &Runner{
		ctx:  ctx,
		cmds: make(chan command, 64),
		done: make(chan struct{}),
	}
	var o EngineOpts
	if opts != nil {
		o = *opts
	}
	o.Post = r.post
	r.engine = NewEngine(&o)
	go r.loop()
	return r
}

func (r *Runner) loop() {
	defer close(r.done)
	defer r.engine.Close()
	for {
		select {
		case <-r.ctx.Done():
			return
		case c := <-r.cmds:
			err := c.fn(r.engine)
			if c.reply != nil {
				c.reply <- err
			}
		}
	}
}

// post is handed to the engine for clock ticks. It may block the clock
// goroutine while the queue is full, which only delays ticks.
func (r *Runner) post(fn func()) {
	select {
	case r.cmds <- command{fn: func(*Engine) error { fn(); return nil }}:
	case <-r.ctx.Done():
	}
}

// Do runs fn on the engine goroutine and waits for its result.
func (r *Runner) Do(fn func(*Engine) error) error {
	reply := make(chan error, 1)
	select {
	case r.cmds <- command{fn: fn, reply: reply}:
	case <-r.done:
		return ErrRunnerClosed
	}
	select {
	case err := <-reply:
		return err
	case <-r.done:
		return ErrRunnerClosed
	}
}

// Done is closed once the loop has exited.
func (r *Runner) Done() <-chan struct{} { return r.done }

func (r *Runner) Prepare(s *Schedule) error {
	return r.Do(func(e *Engine) error { return e.Prepare(s) })
}

func (r *Runner) PrepareAt(s *Schedule, from int) error {
	return r.Do(func(e *Engine) error { return e.PrepareAt(s, from) })
}

func (r *Runner) Start() error   { return r.Do((*Engine).Start) }
func (r *Runner) Pause() error   { return r.Do((*Engine).Pause) }
func (r *Runner) Resume() error  { return r.Do((*Engine).Resume) }
func (r *Runner) Skip() error    { return r.Do((*Engine).Skip) }
func (r *Runner) Stop() error    { return r.Do((*Engine).Stop) }
func (r *Runner) Advance() error { return r.Do((*Engine).Advance) }
func (r *Runner) Unload() error  { return r.Do((*Engine).Unload) }

// Load prepares s from task index from and, when start is set, starts it
// without letting another command in between.
func (r *Runner) Load(s *Schedule, from int, start bool) error {
	return r.Do(func(e *Engine) error {
		if err := e.PrepareAt(s, from); err != nil {
			return err
		}
		if start {
			return e.Start()
		}
		return nil
	})
}

func (r *Runner) Snapshot() (Snapshot, error) {
	var snap Snapshot
	err := r.Do(func(e *Engine) error {
		snap = e.Snapshot()
		return nil
	})
	return snap, err
}
