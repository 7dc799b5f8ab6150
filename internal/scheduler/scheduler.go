package scheduler

import (
	"container/heap"
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"
	"github.com/tasched/tasched/pkg/taschlib"
)

const maxSleepCap = 60 * time.Second

// Scheduler fires schedule starts from a min-heap. It runs a background
// goroutine that sleeps until the next event's trigger time, then calls
// onTrigger with the schedule ID.
type Scheduler struct {
	addChan    chan ScheduleEvent
	removeChan chan string
	ctx        context.Context
}

// New creates and starts a Scheduler. onTrigger runs on the scheduler
// goroutine, so it must not block for long. The goroutine exits when ctx
// is cancelled.
func New(ctx context.Context, onTrigger func(string)) *Scheduler {
	s := &Scheduler{
		addChan:    make(chan ScheduleEvent, 64),
		removeChan: make(chan string, 64),
		ctx:        ctx,
	}
	go s.run(onTrigger)
	return s
}

// Add enqueues event, replacing any pending event for the same schedule.
func (s *Scheduler) Add(event ScheduleEvent) {
	select {
	case s.addChan <- event:
	case <-s.ctx.Done():
	}
}

// Remove cancels the pending event for scheduleID, if any.
func (s *Scheduler) Remove(scheduleID string) {
	select {
	case s.removeChan <- scheduleID:
	case <-s.ctx.Done():
	}
}

// Sync replaces the pending event for sc with whatever EventFor computes.
// A schedule that no longer auto-starts is removed.
func (s *Scheduler) Sync(sc *taschlib.Schedule, now time.Time) {
	ev, ok := EventFor(sc, now)
	if !ok {
		s.Remove(sc.ID)
		return
	}
	s.Add(ev)
}

func (s *Scheduler) run(onTrigger func(string)) {
	h := &scheduleHeap{}
	heap.Init(h)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	resetTimer := func() <-chan time.Time {
		if timer != nil {
			timer.Stop()
		}
		if h.Len() == 0 {
			return nil
		}
		dur := time.Until((*h)[0].TriggerAt)
		if dur > maxSleepCap {
			dur = maxSleepCap
		}
		if dur < 0 {
			dur = 0
		}
		timer = time.NewTimer(dur)
		return timer.C
	}

	timerCh := resetTimer()

	for {
		select {
		case <-s.ctx.Done():
			return

		case event := <-s.addChan:
			heapRemoveByID(h, event.ScheduleID)
			heapPush(h, event)
			timerCh = resetTimer()

		case id := <-s.removeChan:
			heapRemoveByID(h, id)
			timerCh = resetTimer()

		case <-timerCh:
			now := time.Now()
			for h.Len() > 0 && !(*h)[0].TriggerAt.After(now) {
				event := heapPop(h)
				onTrigger(event.ScheduleID)
				if event.CronExpr == "" {
					continue
				}
				next, err := nextCronOccurrence(event.CronExpr, time.Now())
				if err == nil {
					heapPush(h, ScheduleEvent{
						ScheduleID: event.ScheduleID,
						TriggerAt:  next,
						CronExpr:   event.CronExpr,
					})
				}
			}
			timerCh = resetTimer()
		}
	}
}

// nextCronOccurrence returns the next time expr fires strictly after start.
func nextCronOccurrence(expr string, start time.Time) (time.Time, error) {
	return gronx.NextTickAfter(expr, start, false)
}

// hasOccurrenceWithinYear reports whether expr fires at least once in the
// year following from. Invalid expressions report false.
func hasOccurrenceWithinYear(expr string, from time.Time) bool {
	next, err := gronx.NextTickAfter(expr, from, false)
	if err != nil {
		return false
	}
	return next.Before(from.Add(365 * 24 * time.Hour))
}

// ValidateCron rejects expressions gronx cannot parse and expressions that
// never fire within a year (for example "0 0 30 2 *").
func ValidateCron(expr string) error {
	if !gronx.New().IsValid(expr) {
		return fmt.Errorf("invalid cron expression %q", expr)
	}
	if !hasOccurrenceWithinYear(expr, time.Now()) {
		return fmt.Errorf("cron expression %q has no occurrence within a year", expr)
	}
	return nil
}

// EventFor computes the next automatic start of sc after now. It reports
// false when sc does not auto-start or has nothing left to fire: a start
// time in the past without a cron expression is spent.
func EventFor(sc *taschlib.Schedule, now time.Time) (ScheduleEvent, bool) {
	if sc == nil || !sc.AutoStart {
		return ScheduleEvent{}, false
	}
	if sc.StartAt != nil && sc.StartAt.After(now) {
		return ScheduleEvent{ScheduleID: sc.ID, TriggerAt: *sc.StartAt, CronExpr: sc.Cron}, true
	}
	if sc.Cron == "" {
		return ScheduleEvent{}, false
	}
	next, err := nextCronOccurrence(sc.Cron, now)
	if err != nil {
		return ScheduleEvent{}, false
	}
	return ScheduleEvent{ScheduleID: sc.ID, TriggerAt: next, CronExpr: sc.Cron}, true
}

// LoadSchedules scans the stored schedules at daemon startup.
//
// Auto-start schedules whose StartAt has passed are returned in missed so
// the daemon can decide whether to start them late. Everything that still
// has a start ahead of it is returned in future, ready for Add. A missed
// recurring schedule shows up in both: missed for the lost occurrence and
// future for its next cron tick.
func LoadSchedules(schedules []*taschlib.Schedule, now time.Time) (missed []string, future []ScheduleEvent) {
	for _, sc := range schedules {
		if sc == nil || !sc.AutoStart {
			continue
		}
		if sc.StartAt != nil && !sc.StartAt.After(now) {
			missed = append(missed, sc.ID)
		}
		if ev, ok := EventFor(sc, now); ok {
			future = append(future, ev)
		}
	}
	return missed, future
}
