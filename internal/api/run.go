package api

import (
	"encoding/json"
	"errors"

	"github.com/tasched/tasched/common"
	"github.com/tasched/tasched/internal/server"
	"github.com/tasched/tasched/pkg/taschlib"
)

func (s *Api) loadHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.LoadParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_LOAD, nil, err
	}
	sc := m.Schedule
	if sc == nil {
		if m.ScheduleID == "" {
			return common.UPDATE_LOAD, nil, errors.New("schedule_id or schedule is required")
		}
		var err error
		sc, err = s.store.GetSchedule(m.ScheduleID)
		if err != nil {
			return common.UPDATE_LOAD, nil, err
		}
	}
	if err := s.runner.Load(sc, m.From, m.Start); err != nil {
		return common.UPDATE_LOAD, nil, err
	}
	return s.status(common.UPDATE_LOAD)
}

// command wraps a Runner operation that takes no parameters. The reply
// carries the snapshot taken right after the operation.
func (s *Api) command(utype common.UpdateType, fn func(*taschlib.Runner) error) server.HandlerFunc {
	return func(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
		if err := fn(s.runner); err != nil {
			return utype, nil, err
		}
		return s.status(utype)
	}
}

func (s *Api) statusHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	return s.status(common.UPDATE_STATUS)
}

func (s *Api) status(utype common.UpdateType) (common.UpdateType, any, error) {
	snap, err := s.runner.Snapshot()
	if err != nil {
		return utype, nil, err
	}
	return utype, &common.StatusResponse{Snapshot: snap}, nil
}
