package alert

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

const (
	DefaultWarningSound = "warning"
	DefaultTimeUpSound  = "timeup"
)

// ExecPlayer runs an external command per sound, for example
// ["mpv", "--volume={volume_pct}", "{sound}"]. The placeholders {sound},
// {volume} (0.0-1.0) and {volume_pct} (0-100) are substituted in every
// argument. Starting a new sound stops the previous one.
type ExecPlayer struct {
	command []string
	// SoundDir is prefixed to sound names that are not absolute paths.
	SoundDir string

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewExecPlayer returns nil when command is empty.
func NewExecPlayer(command []string, soundDir string) *ExecPlayer {
	if len(command) == 0 {
		return nil
	}
	return &ExecPlayer{command: command, SoundDir: soundDir}
}

func (p *ExecPlayer) PlayWarning(sound string, volume float64) error {
	if sound == "" {
		sound = DefaultWarningSound
	}
	return p.play(sound, volume)
}

func (p *ExecPlayer) PlayTimeUp(sound string, volume float64) error {
	if sound == "" {
		sound = DefaultTimeUpSound
	}
	return p.play(sound, volume)
}

// Stop kills the running command, if any, and waits for it to exit.
func (p *ExecPlayer) Stop() error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

func (p *ExecPlayer) play(sound string, volume float64) error {
	if err := p.Stop(); err != nil {
		return err
	}
	args := p.args(sound, volume)
	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("play %s: %w", sound, err)
	}
	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(done)
	}()
	p.mu.Lock()
	p.cancel, p.done = cancel, done
	p.mu.Unlock()
	return nil
}

func (p *ExecPlayer) args(sound string, volume float64) []string {
	if p.SoundDir != "" && !filepath.IsAbs(sound) {
		sound = filepath.Join(p.SoundDir, sound)
	}
	r := strings.NewReplacer(
		"{sound}", sound,
		"{volume_pct}", strconv.Itoa(int(math.Round(volume*100))),
		"{volume}", strconv.FormatFloat(volume, 'f', 2, 64),
	)
	out := make([]string, len(p.command))
	for i, a := range p.command {
		out[i] = r.Replace(a)
	}
	return out
}
