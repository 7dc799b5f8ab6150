package api

import (
	"fmt"
	"time"

	"github.com/tasched/tasched/internal/scheduler"
	"github.com/tasched/tasched/pkg/taschlib"
)

// MissedStartGrace is how late a missed start may still begin
// when the daemon comes back up. Older misses are only logged.
const MissedStartGrace = 5 * time.Minute

// TriggerSchedule loads and starts a stored schedule. It is the
// scheduler's trigger callback. A run already in progress is left alone
// and the start is dropped.
func (s *Api) TriggerSchedule(id string) {
	sc, err := s.store.GetSchedule(id)
	if err != nil {
		s.log.Printf("auto-start %s: %v", id, err)
		return
	}
	if err := s.runner.Load(sc, 0, true); err != nil {
		s.log.Printf("auto-start %q skipped: %v", sc.Name, err)
	} else {
		s.log.Printf("auto-started %q", sc.Name)
	}
	if sc.Cron == "" {
		s.retire(id)
	}
}

// retire turns auto-start off for a spent one-shot schedule so it is not
// reported as missed on the next daemon start.
func (s *Api) retire(id string) {
	sc, err := s.store.GetSchedule(id)
	if err != nil {
		return
	}
	sc.AutoStart = false
	if err := s.store.SaveSchedule(sc); err != nil {
		s.log.Printf("auto-start %q: failed to clear: %v", sc.Name, err)
	}
}

// RestoreSchedules rebuilds the scheduler heap from the store. The most
// recent missed start within MissedStartGrace is started right away.
func (s *Api) RestoreSchedules(now time.Time) error {
	if s.scheduler == nil {
		return nil
	}
	sums, err := s.store.ListSchedules()
	if err != nil {
		return fmt.Errorf("restore schedules: %w", err)
	}
	byID := make(map[string]*taschlib.Schedule)
	var schedules []*taschlib.Schedule
	for _, sum := range sums {
		if !sum.AutoStart {
			continue
		}
		sc, err := s.store.GetSchedule(sum.ID)
		if err != nil {
			return fmt.Errorf("restore schedule %s: %w", sum.ID, err)
		}
		byID[sc.ID] = sc
		schedules = append(schedules, sc)
	}

	missed, future := scheduler.LoadSchedules(schedules, now)
	for _, ev := range future {
		s.scheduler.Add(ev)
	}

	var late *taschlib.Schedule
	for _, id := range missed {
		sc := byID[id]
		if now.Sub(*sc.StartAt) <= MissedStartGrace && (late == nil || sc.StartAt.After(*late.StartAt)) {
			late = sc
		}
		if sc.Cron == "" {
			s.retire(id)
		}
	}
	for _, id := range missed {
		if late != nil && id == late.ID {
			continue
		}
		s.log.Printf("auto-start of %q at %s was missed", byID[id].Name, byID[id].StartAt.Format(time.RFC3339))
	}
	if late != nil {
		s.TriggerSchedule(late.ID)
	}
	return nil
}
