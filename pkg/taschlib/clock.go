package taschlib

import (
	"sync"
	"time"
)

// Clock supplies the current time and periodic ticks to the engine.
type Clock interface {
	Now() time.Time
	// Every calls fn once per interval until the returned stop func is
	// called. fn may run on another goroutine.
	Every(interval time.Duration, fn func()) (stop func())
}

// SystemClock ticks from a time.Ticker on its own goroutine.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) Every(interval time.Duration, fn func()) func() {
	t := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-t.C:
				fn()
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			t.Stop()
			close(done)
		})
	}
}

// ManualClock only moves when told to. Subscribers are called
// synchronously on the goroutine that calls Tick.
type ManualClock struct {
	mu   sync.Mutex
	now  time.Time
	next int
	subs map[int]*manualSub
}

type manualSub struct {
	interval time.Duration
	fn       func()
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start, subs: make(map[int]*manualSub)}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Every(interval time.Duration, fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.next
	c.next++
	c.subs[id] = &manualSub{interval: interval, fn: fn}
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Tick advances the clock by the largest subscribed interval and delivers
// one tick to every subscriber. Without subscribers it does nothing.
func (c *ManualClock) Tick() {
	c.mu.Lock()
	var (
		step time.Duration
		fns  []func()
	)
	for _, s := range c.subs {
		if s.interval > step {
			step = s.interval
		}
		fns = append(fns, s.fn)
	}
	c.now = c.now.Add(step)
	c.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// TickN calls Tick n times.
func (c *ManualClock) TickN(n int) {
	for i := 0; i < n; i++ {
		c.Tick()
	}
}

// Advance moves the wall time without delivering ticks.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Subscribers returns the number of live subscriptions.
func (c *ManualClock) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}
