package taschlib

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"time"

	"github.com/spf13/afero"
)

const (
	DefaultTickInterval       = 250 * time.Millisecond
	DefaultAutoAdvance        = true
	DefaultGap                = 0
	DefaultTimeUpAutoClose    = 15
	DefaultWarningAutoDismiss = 5
	DefaultSoundVolume        = 0.7
	DefaultRPCPort            = 4850
)

// DefaultWarningPoints are applied to new tasks: 10, 5 and 1 minute(s) left.
var DefaultWarningPoints = []int{600, 300, 60}

// RPCSettings controls the optional JSON-RPC listener of the daemon.
type RPCSettings struct {
	Enabled   bool `json:"enabled"`
	Port      int  `json:"port"`
	ListenAll bool `json:"listen_all"`
}

// Settings is the user configuration stored as settings.json.
type Settings struct {
	TickIntervalMs     int         `json:"tick_interval_ms"`
	DefaultWarnings    []int       `json:"default_warnings"`
	DefaultAutoAdvance bool        `json:"default_auto_advance"`
	DefaultGap         int         `json:"default_gap"`
	TimeUpAutoClose    int         `json:"timeup_auto_close"`
	WarningAutoDismiss int         `json:"warning_auto_dismiss"`
	SoundEnabled       bool        `json:"sound_enabled"`
	SoundVolume        float64     `json:"sound_volume"`
	PlayerCommand      []string    `json:"player_command,omitempty"`
	HooksDir           string      `json:"hooks_dir,omitempty"`
	RPC                RPCSettings `json:"rpc"`
}

func DefaultSettings() *Settings {
	return &Settings{
		TickIntervalMs:     int(DefaultTickInterval / time.Millisecond),
		DefaultWarnings:    slices.Clone(DefaultWarningPoints),
		DefaultAutoAdvance: DefaultAutoAdvance,
		DefaultGap:         DefaultGap,
		TimeUpAutoClose:    DefaultTimeUpAutoClose,
		WarningAutoDismiss: DefaultWarningAutoDismiss,
		SoundEnabled:       true,
		SoundVolume:        DefaultSoundVolume,
		RPC:                RPCSettings{Port: DefaultRPCPort},
	}
}

// TickInterval returns the configured tick interval, falling back to the
// default for non-positive values.
func (s *Settings) TickInterval() time.Duration {
	if s.TickIntervalMs <= 0 {
		return DefaultTickInterval
	}
	return time.Duration(s.TickIntervalMs) * time.Millisecond
}

// NewTask builds a task carrying the default warning points that fit
// inside duration.
func (s *Settings) NewTask(title string, duration int) Task {
	var warnings []int
	for _, w := range s.DefaultWarnings {
		if w >= 0 && w < duration && !slices.Contains(warnings, w) {
			warnings = append(warnings, w)
		}
	}
	return NewTask(title, duration, warnings...)
}

// NewSchedule builds an empty schedule using the default advance settings.
func (s *Settings) NewSchedule(name string) *Schedule {
	sc := NewSchedule(name)
	sc.AutoAdvance = s.DefaultAutoAdvance
	sc.Gap = s.DefaultGap
	return sc
}

// LoadSettings reads path from fsys. A missing file yields the defaults;
// keys absent from the file keep their default values.
func LoadSettings(fsys afero.Fs, path string) (*Settings, error) {
	s := DefaultSettings()
	b, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if err := json.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

// SaveSettings writes s as indented JSON.
func SaveSettings(fsys afero.Fs, path string, s *Settings) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(fsys, path, b, 0644)
}
