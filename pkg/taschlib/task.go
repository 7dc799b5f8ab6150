package taschlib

import (
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
)

// MaxScheduleHours caps the summed length of a schedule, gaps included.
const MaxScheduleHours = 24

const maxScheduleSeconds = MaxScheduleHours * 3600

// SoundProfile names the sounds tied to a task. Values are opaque to the
// engine and resolved by whoever plays them.
type SoundProfile struct {
	Warning    string `json:"warning,omitempty"`
	TimeUp     string `json:"timeup,omitempty"`
	Background string `json:"background,omitempty"`
}

// DisplayOptions is passed through on events for presentation layers.
type DisplayOptions struct {
	FullscreenTimeUp bool   `json:"fullscreen_timeup,omitempty"`
	Ticker           bool   `json:"ticker,omitempty"`
	TickerText       string `json:"ticker_text,omitempty"`
	TickerPosition   string `json:"ticker_position,omitempty"`
	TickerDirection  string `json:"ticker_direction,omitempty"`
	TickerSpeed      int    `json:"ticker_speed,omitempty"`
}

// Task is the configuration of one timed step. Duration and Warnings are
// in whole seconds; each warning is a count of seconds before expiry.
type Task struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Duration int            `json:"duration"`
	Warnings []int          `json:"warnings,omitempty"`
	Sound    SoundProfile   `json:"sound"`
	Display  DisplayOptions `json:"display"`
}

// NewTask returns a task with a fresh ID.
func NewTask(title string, duration int, warnings ...int) Task {
	return Task{
		ID:       uuid.NewString(),
		Title:    title,
		Duration: duration,
		Warnings: warnings,
	}
}

// Length returns the task duration as a time.Duration.
func (t Task) Length() time.Duration {
	return time.Duration(t.Duration) * time.Second
}

// Thresholds returns the warning points largest first.
func (t Task) Thresholds() []int {
	th := slices.Clone(t.Warnings)
	sort.Sort(sort.Reverse(sort.IntSlice(th)))
	return th
}

func (t Task) clone() Task {
	t.Warnings = slices.Clone(t.Warnings)
	return t
}

func (t Task) validate(index int) error {
	if t.Duration <= 0 {
		return invalidSchedule(index, "duration must be positive, got %d", t.Duration)
	}
	if t.Duration > maxScheduleSeconds {
		return invalidSchedule(index, "duration %d exceeds %d hours", t.Duration, MaxScheduleHours)
	}
	seen := make(map[int]struct{}, len(t.Warnings))
	for _, w := range t.Warnings {
		if w < 0 {
			return invalidSchedule(index, "warning threshold %d is negative", w)
		}
		if w >= t.Duration {
			return invalidSchedule(index, "warning threshold %d is not below duration %d", w, t.Duration)
		}
		if _, ok := seen[w]; ok {
			return invalidSchedule(index, "duplicate warning threshold %d", w)
		}
		seen[w] = struct{}{}
	}
	return nil
}

// Schedule is an ordered list of tasks run one after another.
type Schedule struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Tasks       []Task     `json:"tasks"`
	AutoAdvance bool       `json:"auto_advance"`
	Gap         int        `json:"gap"`
	AutoStart   bool       `json:"auto_start,omitempty"`
	StartAt     *time.Time `json:"start_at,omitempty"`
	Cron        string     `json:"cron,omitempty"`
}

// NewSchedule returns an empty schedule with a fresh ID and default
// advance behaviour.
func NewSchedule(name string) *Schedule {
	return &Schedule{
		ID:          uuid.NewString(),
		Name:        name,
		AutoAdvance: DefaultAutoAdvance,
		Gap:         DefaultGap,
	}
}

// Validate checks everything Prepare needs. A nil schedule is invalid.
func (s *Schedule) Validate() error {
	if s == nil || len(s.Tasks) == 0 {
		return invalidSchedule(-1, "schedule has no tasks")
	}
	if s.Gap < 0 {
		return invalidSchedule(-1, "gap must not be negative, got %d", s.Gap)
	}
	if s.Gap > maxScheduleSeconds {
		return invalidSchedule(-1, "gap %d exceeds %d hours", s.Gap, MaxScheduleHours)
	}
	ids := make(map[string]struct{}, len(s.Tasks))
	for i, t := range s.Tasks {
		if err := t.validate(i); err != nil {
			return err
		}
		if t.ID == "" {
			continue
		}
		if _, ok := ids[t.ID]; ok {
			return invalidSchedule(i, "duplicate task id %q", t.ID)
		}
		ids[t.ID] = struct{}{}
	}
	if s.totalSeconds() > maxScheduleSeconds {
		return invalidSchedule(-1, "total duration exceeds %d hours", MaxScheduleHours)
	}
	return nil
}

// TotalDuration is the sum of all task durations plus the gaps between them.
// Sums past MaxScheduleHours are cut short just above the cap.
func (s *Schedule) TotalDuration() time.Duration {
	return time.Duration(s.totalSeconds()) * time.Second
}

// totalSeconds adds up in whole seconds and stops at the first value that
// takes the sum past the cap, so oversized fields cannot wrap around.
// Negative values count as zero.
func (s *Schedule) totalSeconds() int64 {
	var total int64
	add := func(n int) bool {
		v := max(int64(n), 0)
		if v > maxScheduleSeconds-total {
			total = maxScheduleSeconds + 1
			return false
		}
		total += v
		return true
	}
	for i, t := range s.Tasks {
		if i > 0 && !add(s.Gap) {
			break
		}
		if !add(t.Duration) {
			break
		}
	}
	return total
}

// Clone returns a deep copy.
func (s *Schedule) Clone() *Schedule {
	if s == nil {
		return nil
	}
	c := *s
	c.Tasks = make([]Task, len(s.Tasks))
	for i, t := range s.Tasks {
		c.Tasks[i] = t.clone()
	}
	if s.StartAt != nil {
		at := *s.StartAt
		c.StartAt = &at
	}
	return &c
}

// AddTask appends t, assigning an ID when it has none.
func (s *Schedule) AddTask(t Task) Task {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.Tasks = append(s.Tasks, t)
	return t
}

// IndexOf returns the position of the task with the given ID, or -1.
func (s *Schedule) IndexOf(id string) int {
	return slices.IndexFunc(s.Tasks, func(t Task) bool { return t.ID == id })
}

// RemoveTask deletes the task with the given ID.
func (s *Schedule) RemoveTask(id string) error {
	i := s.IndexOf(id)
	if i < 0 {
		return ErrTaskNotFound
	}
	s.Tasks = slices.Delete(s.Tasks, i, i+1)
	return nil
}

// MoveTask moves the task at from to position to, shifting the others.
func (s *Schedule) MoveTask(from, to int) error {
	n := len(s.Tasks)
	if from < 0 || from >= n || to < 0 || to >= n {
		return ErrTaskNotFound
	}
	t := s.Tasks[from]
	s.Tasks = slices.Delete(s.Tasks, from, from+1)
	s.Tasks = slices.Insert(s.Tasks, to, t)
	return nil
}

// DuplicateTask inserts a copy of the task right after the original.
func (s *Schedule) DuplicateTask(id string) (Task, error) {
	i := s.IndexOf(id)
	if i < 0 {
		return Task{}, ErrTaskNotFound
	}
	dup := s.Tasks[i].clone()
	dup.ID = uuid.NewString()
	dup.Title += " (Copy)"
	s.Tasks = slices.Insert(s.Tasks, i+1, dup)
	return dup, nil
}
