package store

import (
	"encoding/json"

	"github.com/tasched/tasched/common"
	"github.com/tasched/tasched/pkg/taschlib"
)

// Recorder is a bus subscriber that writes engine events to run history.
type Recorder struct {
	s *Store
}

func NewRecorder(s *Store) *Recorder {
	return &Recorder{s: s}
}

type eventData struct {
	TaskID    string `json:"task_id,omitempty"`
	TaskTitle string `json:"task_title,omitempty"`
	TaskIndex int    `json:"task_index"`
	Threshold *int   `json:"threshold,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
}

func (r *Recorder) Handle(e taschlib.Event) error {
	d := eventData{TaskID: e.TaskID, TaskIndex: e.TaskIndex}
	if e.Task != nil {
		d.TaskTitle = e.Task.Title
	}
	switch e.Kind {
	case taschlib.EventWarningFired:
		th := e.Threshold
		d.Threshold = &th
	case taschlib.EventStateChanged:
		d.From, d.To = e.From.String(), e.To.String()
	}
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return r.s.LogEvent(&common.HistoryEntry{
		RunID:        e.RunID,
		ScheduleID:   e.ScheduleID,
		ScheduleName: e.ScheduleName,
		EventType:    string(e.Kind),
		EventData:    data,
		Timestamp:    e.At,
	})
}
