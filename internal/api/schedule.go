package api

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tasched/tasched/common"
	"github.com/tasched/tasched/internal/scheduler"
	"github.com/tasched/tasched/internal/server"
)

func (s *Api) scheduleListHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	list, err := s.store.ListSchedules()
	if err != nil {
		return common.UPDATE_SCHEDULE_LIST, nil, err
	}
	if list == nil {
		list = []*common.ScheduleSummary{}
	}
	return common.UPDATE_SCHEDULE_LIST, &common.ScheduleListResponse{Schedules: list}, nil
}

func (s *Api) scheduleGetHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.ScheduleIDParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_SCHEDULE_GET, nil, err
	}
	if m.ID == "" {
		return common.UPDATE_SCHEDULE_GET, nil, errors.New("id is required")
	}
	sc, err := s.store.GetSchedule(m.ID)
	if err != nil {
		return common.UPDATE_SCHEDULE_GET, nil, err
	}
	return common.UPDATE_SCHEDULE_GET, &common.ScheduleResponse{Schedule: sc}, nil
}

// scheduleSaveHandler creates or replaces a schedule. Missing schedule and
// task IDs are generated, so a client can post a schedule file as is.
func (s *Api) scheduleSaveHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.ScheduleSaveParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_SCHEDULE_SAVE, nil, err
	}
	sc := m.Schedule
	if sc == nil {
		return common.UPDATE_SCHEDULE_SAVE, nil, errors.New("schedule is required")
	}
	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	for i := range sc.Tasks {
		if sc.Tasks[i].ID == "" {
			sc.Tasks[i].ID = uuid.NewString()
		}
	}
	if err := sc.Validate(); err != nil {
		return common.UPDATE_SCHEDULE_SAVE, nil, err
	}
	if sc.Cron != "" {
		if err := scheduler.ValidateCron(sc.Cron); err != nil {
			return common.UPDATE_SCHEDULE_SAVE, nil, err
		}
	}
	if err := s.store.SaveSchedule(sc); err != nil {
		return common.UPDATE_SCHEDULE_SAVE, nil, err
	}
	if s.scheduler != nil {
		s.scheduler.Sync(sc, time.Now())
	}
	return common.UPDATE_SCHEDULE_SAVE, &common.ScheduleResponse{Schedule: sc}, nil
}

func (s *Api) scheduleDeleteHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.ScheduleIDParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_SCHEDULE_DELETE, nil, err
	}
	if m.ID == "" {
		return common.UPDATE_SCHEDULE_DELETE, nil, errors.New("id is required")
	}
	if err := s.store.DeleteSchedule(m.ID); err != nil {
		return common.UPDATE_SCHEDULE_DELETE, nil, err
	}
	if s.scheduler != nil {
		s.scheduler.Remove(m.ID)
	}
	return common.UPDATE_SCHEDULE_DELETE, nil, nil
}
