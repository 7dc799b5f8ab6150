package taschcli

import (
	"encoding/json"

	"github.com/tasched/tasched/pkg/taschlib"
)

// Handler processes the raw message of a pushed update.
type Handler interface {
	Handle(json.RawMessage) error
}

// NewEventHandler decodes engine events and passes those of the listed
// kinds to callback. No kinds means every event.
func NewEventHandler(callback func(*taschlib.Event) error, kinds ...taschlib.EventKind) *EventHandler {
	return &EventHandler{
		Kinds:    kinds,
		Callback: callback,
	}
}

type EventHandler struct {
	Kinds    []taschlib.EventKind
	Callback func(*taschlib.Event) error
}

func (h *EventHandler) Handle(m json.RawMessage) error {
	var e taschlib.Event
	if err := json.Unmarshal(m, &e); err != nil {
		return err
	}
	if len(h.Kinds) > 0 && !h.wants(e.Kind) {
		return nil
	}
	return h.Callback(&e)
}

func (h *EventHandler) wants(k taschlib.EventKind) bool {
	for _, want := range h.Kinds {
		if want == k {
			return true
		}
	}
	return false
}
