package taschlib

import "fmt"

// State is the top-level state of the scheduler engine.
type State int

const (
	StateIdle State = iota
	StateReady
	StateRunning
	StatePaused
	StateCompleted
	StateCancelled
)

var stateNames = [...]string{
	StateIdle:      "idle",
	StateReady:     "ready",
	StateRunning:   "running",
	StatePaused:    "paused",
	StateCompleted: "completed",
	StateCancelled: "cancelled",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether no further ticks or commands (other than a new
// Prepare) will change the run.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled
}

// Active reports whether a run is in progress, paused or not.
func (s State) Active() bool {
	return s == StateRunning || s == StatePaused
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	for i, n := range stateNames {
		if n == string(b) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", b)
}

// Phase is the lifecycle of a single task activation.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseRunning
	PhaseWarningFired
	PhaseCompleted
	PhaseSkipped
	PhaseCancelled
)

var phaseNames = [...]string{
	PhaseNotStarted:   "not_started",
	PhaseRunning:      "running",
	PhaseWarningFired: "warning_fired",
	PhaseCompleted:    "completed",
	PhaseSkipped:      "skipped",
	PhaseCancelled:    "cancelled",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Done reports whether the task activation has ended.
func (p Phase) Done() bool {
	return p >= PhaseCompleted
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	for i, n := range phaseNames {
		if n == string(b) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}
