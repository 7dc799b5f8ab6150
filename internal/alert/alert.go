// Package alert turns engine events into sound requests. It does not play
// audio itself; a Player does.
package alert

import (
	"github.com/tasched/tasched/pkg/taschlib"
)

// Player plays and stops sounds. Sound names come from the task's sound
// profile and may be empty, in which case the player picks a default.
type Player interface {
	PlayWarning(sound string, volume float64) error
	PlayTimeUp(sound string, volume float64) error
	Stop() error
}

// Alerter is a bus subscriber that maps events to Player calls:
// warnings play the warning sound, time-up plays the time-up sound, and a
// finished task or run stops whatever is still playing.
type Alerter struct {
	player  Player
	enabled bool
	volume  float64
}

// New returns an Alerter using the sound settings of s.
func New(p Player, s *taschlib.Settings) *Alerter {
	return &Alerter{
		player:  p,
		enabled: s.SoundEnabled,
		volume:  s.SoundVolume,
	}
}

func (a *Alerter) Handle(e taschlib.Event) error {
	if !a.enabled {
		return nil
	}
	var sound taschlib.SoundProfile
	if e.Task != nil {
		sound = e.Task.Sound
	}
	switch e.Kind {
	case taschlib.EventWarningFired:
		return a.player.PlayWarning(sound.Warning, a.volume)
	case taschlib.EventTaskTimeUp:
		return a.player.PlayTimeUp(sound.TimeUp, a.volume)
	case taschlib.EventTaskSkipped,
		taschlib.EventScheduleCompleted,
		taschlib.EventScheduleCancelled:
		return a.player.Stop()
	case taschlib.EventStateChanged:
		if e.To == taschlib.StatePaused {
			return a.player.Stop()
		}
	}
	return nil
}
