package hooks

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/tasched/tasched/pkg/taschlib"
)

type Hook struct {
	// Name of the hook.
	Name string `json:"name"`
	// Description of the hook.
	Description string `json:"description,omitempty"`
	// Events limits the event kinds delivered to the hook. Empty means all.
	Events []taschlib.EventKind `json:"events,omitempty"`
	// main file for the hook (default: main.js)
	Entrypoint string `json:"entrypoint,omitempty"`
	// hook directory
	hookPath string
	runtime  *Runtime
	callback goja.Callable
	timeout  time.Duration
	l        *log.Logger
}

// OpenHook reads the manifest of the hook stored at path.
func OpenHook(l *log.Logger, path string) (*Hook, error) {
	file, err := os.Open(filepath.Join(path, MANIFEST_FILE))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrInvalidHook
		}
		return nil, err
	}
	defer file.Close()
	h := Hook{
		l:        l,
		hookPath: strings.TrimSuffix(path, "/"),
		timeout:  DEF_HOOK_TIMEOUT,
	}
	if err := json.NewDecoder(file).Decode(&h); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if h.Name == "" {
		h.Name = filepath.Base(h.hookPath)
	}
	if h.Entrypoint == "" {
		h.Entrypoint = DEF_HOOK_ENTRY
	}
	return &h, nil
}

// Load runs the entrypoint in a fresh runtime, so hooks never share
// state, and resolves its onEvent function.
func (h *Hook) Load() error {
	var err error
	h.runtime, err = NewRuntime(h.l, h.hookPath)
	if err != nil {
		return err
	}
	file, err := os.Open(filepath.Join(h.hookPath, h.Entrypoint))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrEntrypointNotFound
		}
		return err
	}
	defer file.Close()
	b, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	if _, err = h.runtime.RunScript(h.Entrypoint, string(b)); err != nil {
		return err
	}
	fn, ok := goja.AssertFunction(h.runtime.Get(EVENT_CALLBACK))
	if !ok {
		return ErrCallbackNotDefined
	}
	h.callback = fn
	return nil
}

// Wants reports whether the hook subscribed to kind.
func (h *Hook) Wants(kind taschlib.EventKind) bool {
	return len(h.Events) == 0 || slices.Contains(h.Events, kind)
}

// Call passes e to onEvent. A call running longer than the hook timeout
// is interrupted.
func (h *Hook) Call(e taschlib.Event) error {
	if h.callback == nil {
		return ErrCallbackNotDefined
	}
	arg, err := eventValue(h.runtime.Runtime, e)
	if err != nil {
		return err
	}
	timer := time.AfterFunc(h.timeout, func() {
		h.runtime.Interrupt(ErrHookTimeout)
	})
	defer func() {
		timer.Stop()
		h.runtime.ClearInterrupt()
	}()
	_, err = h.callback(goja.Undefined(), arg)
	var ie *goja.InterruptedError
	if errors.As(err, &ie) {
		return fmt.Errorf("%s: %w", h.Name, ErrHookTimeout)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", h.Name, err)
	}
	return nil
}

// eventValue hands the event to js as a plain object with the same keys
// as its JSON form.
func eventValue(vm *goja.Runtime, e taschlib.Event) (goja.Value, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return vm.ToValue(m), nil
}
