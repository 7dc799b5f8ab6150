package hooks

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/tasched/tasched/pkg/taschlib"
)

// Engine runs every hook found in a directory. Each subdirectory holding
// a manifest.json is one hook. Engine is a bus subscriber; the bus calls
// Handle from a single goroutine, which the js runtimes require.
type Engine struct {
	l     *log.Logger
	dir   string
	hooks []*Hook
}

// NewEngine loads the hooks under dir. A missing directory yields an
// engine without hooks. A hook that fails to load is logged and skipped.
func NewEngine(l *log.Logger, dir string) (*Engine, error) {
	e := &Engine{l: l, dir: dir}
	if dir == "" {
		return e, nil
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return e, nil
	}
	if err != nil {
		return nil, err
	}
	for _, ent := range entries {
		if !ent.IsDir() {
			continue
		}
		path := filepath.Join(dir, ent.Name())
		h, err := OpenHook(l, path)
		if err != nil {
			if !errors.Is(err, ErrInvalidHook) {
				l.Printf("hooks: skipping %s: %v", path, err)
			}
			continue
		}
		if err := h.Load(); err != nil {
			l.Printf("hooks: failed to load %s: %v", h.Name, err)
			continue
		}
		l.Println("hooks: loaded", h.Name)
		e.hooks = append(e.hooks, h)
	}
	sort.Slice(e.hooks, func(i, j int) bool { return e.hooks[i].Name < e.hooks[j].Name })
	return e, nil
}

// Len returns the number of loaded hooks.
func (e *Engine) Len() int { return len(e.hooks) }

// Names returns the loaded hook names in call order.
func (e *Engine) Names() []string {
	names := make([]string, len(e.hooks))
	for i, h := range e.hooks {
		names[i] = h.Name
	}
	return names
}

// Handle calls every interested hook. A failing hook does not stop the
// others; the errors are joined.
func (e *Engine) Handle(ev taschlib.Event) error {
	var errs []error
	for _, h := range e.hooks {
		if !h.Wants(ev.Kind) {
			continue
		}
		if err := h.Call(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
