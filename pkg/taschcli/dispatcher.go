package taschcli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tasched/tasched/common"
)

// Dispatcher routes pushed updates to the handlers of their type.
type Dispatcher struct {
	Handlers map[common.UpdateType][]Handler
}

// ErrDisconnect ends Listen without an error when returned by a handler.
var ErrDisconnect = errors.New("disconnect")

func (d *Dispatcher) process(buf []byte) error {
	var res Response
	err := json.Unmarshal(buf, &res)
	if err != nil {
		return fmt.Errorf("failed to parse (%s): '%s'", err.Error(), string(buf))
	}
	if !res.Ok {
		return errors.New(res.Error)
	}
	if res.Update == nil {
		return nil
	}
	return d.dispatch(res.Update)
}

func (d *Dispatcher) dispatch(u *Update) error {
	for _, h := range d.Handlers[u.Type] {
		if err := h.Handle(u.Message); err != nil {
			return err
		}
	}
	return nil
}
