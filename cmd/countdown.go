package cmd

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tasched/tasched/cmd/common"
	"github.com/tasched/tasched/pkg/taschcli"
	"github.com/tasched/tasched/pkg/taschlib"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Countdown draws the current task as a progress bar. The daemon only
// pushes events, so between them the bar is advanced locally at the
// refresh rate and corrected on the next event.
type Countdown struct {
	p           *mpb.Progress
	out         io.Writer
	refreshRate time.Duration
	ticker      *time.Ticker
	done        chan struct{}

	mu       sync.Mutex
	bar      *mpb.Bar
	view     *barView
	title    string
	index    int
	count    int
	total    time.Duration
	elapsed  time.Duration
	running  bool
	note     string
	finished taschlib.EventKind
}

func NewCountdown(out io.Writer, refreshRate time.Duration) *Countdown {
	return &Countdown{
		p:           mpb.New(mpb.WithOutput(out), mpb.WithWidth(48), mpb.WithRefreshRate(refreshRate)),
		out:         out,
		refreshRate: refreshRate,
		ticker:      time.NewTicker(refreshRate),
		done:        make(chan struct{}),
	}
}

func (c *Countdown) Start() {
	go c.worker()
}

// barView holds what a bar's decorators print. Decorators run on the
// bar's own goroutine, so they must not take Countdown.mu, which is held
// while the bar is updated.
type barView struct {
	mu        sync.Mutex
	remaining string
	note      string
}

func (v *barView) set(remaining, note string) {
	v.mu.Lock()
	v.remaining, v.note = remaining, note
	v.mu.Unlock()
}

func (v *barView) remainingText(decor.Statistics) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.remaining
}

func (v *barView) noteText(decor.Statistics) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.note
}

// Show syncs the display with a snapshot, typically the reply to attach.
func (c *Countdown) Show(s *taschlib.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count = s.TaskCount
	if !s.State.Active() || s.TaskDuration <= 0 {
		return
	}
	c.newBar(s.TaskTitle, s.TaskIndex, time.Duration(s.TaskDuration)*time.Second)
	c.elapsed = s.ElapsedDuration()
	c.running = s.State == taschlib.StateRunning && !s.AwaitingAdvance && !s.InGap
	switch {
	case s.State == taschlib.StatePaused:
		c.note = "paused"
	case s.AwaitingAdvance:
		c.note = "waiting for advance"
	case s.InGap:
		c.note = fmt.Sprintf("next task in %ds", int(s.GapRemaining+0.999))
	}
	c.update()
}

// Handle applies one pushed event. It returns taschcli.ErrDisconnect
// once the run is over.
func (c *Countdown) Handle(e *taschlib.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch e.Kind {
	case taschlib.EventTaskStarted:
		c.endBar(false)
		c.newBar(e.Task.Title, e.TaskIndex, e.Task.Length())
		c.running = true
	case taschlib.EventWarningFired:
		c.note = taschlib.FriendlyRemaining(e.Threshold)
	case taschlib.EventTaskTimeUp:
		c.running = false
		c.note = taschlib.FriendlyRemaining(0)
	case taschlib.EventTaskCompleted:
		c.endBar(true)
	case taschlib.EventTaskSkipped:
		c.note = "skipped"
		c.endBar(false)
	case taschlib.EventStateChanged:
		switch e.To {
		case taschlib.StatePaused:
			c.running = false
			c.note = "paused"
		case taschlib.StateRunning:
			if e.From == taschlib.StatePaused {
				c.running = c.bar != nil
				c.note = ""
			}
		}
	case taschlib.EventScheduleCompleted, taschlib.EventScheduleCancelled:
		c.running = false
		c.finished = e.Kind
		c.endBar(e.Kind == taschlib.EventScheduleCompleted)
		return taschcli.ErrDisconnect
	}
	c.update()
	return nil
}

// Wait stops the refresh worker, flushes the bars and prints how the run
// ended.
func (c *Countdown) Wait() {
	c.ticker.Stop()
	close(c.done)
	c.mu.Lock()
	c.endBar(false)
	finished := c.finished
	c.mu.Unlock()
	c.p.Wait()
	switch finished {
	case taschlib.EventScheduleCompleted:
		fmt.Fprintln(c.out, "Schedule completed.")
	case taschlib.EventScheduleCancelled:
		fmt.Fprintln(c.out, "Schedule cancelled.")
	}
}

// newBar must be called with mu held.
func (c *Countdown) newBar(title string, index int, total time.Duration) {
	c.title = title
	c.index = index
	c.total = total
	c.elapsed = 0
	c.note = ""
	name := fmt.Sprintf("[%d/%d] %s", index+1, c.count, title)
	v := &barView{remaining: taschlib.FormatClock(taschlib.CeilSeconds(total))}
	c.view = v
	c.bar = common.InitTaskBar(c.p, name, total.Milliseconds(), v.remainingText, v.noteText)
}

// endBar must be called with mu held.
func (c *Countdown) endBar(complete bool) {
	if c.bar == nil {
		return
	}
	if complete {
		c.elapsed = c.total
	}
	c.view.set(taschlib.FormatClock(taschlib.CeilSeconds(c.total-c.elapsed)), c.note)
	if complete {
		c.bar.SetCurrent(c.total.Milliseconds())
	} else if !c.bar.Completed() {
		c.bar.Abort(false)
	}
	c.bar = nil
	c.running = false
}

// clamped keeps the bar one step short of full so it only completes on
// task_completed.
func (c *Countdown) clamped() int64 {
	ms := c.elapsed.Milliseconds()
	if limit := c.total.Milliseconds() - 1; ms > limit {
		ms = limit
	}
	return ms
}

// update pushes the current state to the bar. mu must be held.
func (c *Countdown) update() {
	if c.bar == nil {
		return
	}
	c.view.set(taschlib.FormatClock(taschlib.CeilSeconds(c.total-c.elapsed)), c.note)
	c.bar.SetCurrent(c.clamped())
}

func (c *Countdown) tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running || c.bar == nil {
		return
	}
	c.elapsed += c.refreshRate
	c.update()
}

func (c *Countdown) worker() {
	for {
		select {
		case <-c.done:
			return
		case <-c.ticker.C:
			c.tick()
		}
	}
}
