package api

import (
	"encoding/json"
	"errors"

	"github.com/tasched/tasched/common"
	"github.com/tasched/tasched/internal/server"
)

func (s *Api) templateListHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	list, err := s.store.ListTemplates()
	if err != nil {
		return common.UPDATE_TEMPLATE_LIST, nil, err
	}
	if list == nil {
		list = []*common.TemplateSummary{}
	}
	return common.UPDATE_TEMPLATE_LIST, &common.TemplateListResponse{Templates: list}, nil
}

func (s *Api) templateSaveHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.TemplateSaveParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_TEMPLATE_SAVE, nil, err
	}
	if m.Name == "" {
		return common.UPDATE_TEMPLATE_SAVE, nil, errors.New("name is required")
	}
	if m.ScheduleID == "" {
		return common.UPDATE_TEMPLATE_SAVE, nil, errors.New("schedule_id is required")
	}
	sc, err := s.store.GetSchedule(m.ScheduleID)
	if err != nil {
		return common.UPDATE_TEMPLATE_SAVE, nil, err
	}
	sum, err := s.store.SaveTemplate(m.Name, m.Description, sc)
	if err != nil {
		return common.UPDATE_TEMPLATE_SAVE, nil, err
	}
	return common.UPDATE_TEMPLATE_SAVE, sum, nil
}

// templateApplyHandler instantiates a new stored schedule from a template.
// The new schedule never auto-starts until it is edited to do so.
func (s *Api) templateApplyHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.TemplateApplyParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_TEMPLATE_APPLY, nil, err
	}
	if m.TemplateID == "" {
		return common.UPDATE_TEMPLATE_APPLY, nil, errors.New("template_id is required")
	}
	sc, err := s.store.ApplyTemplate(m.TemplateID, m.Name)
	if err != nil {
		return common.UPDATE_TEMPLATE_APPLY, nil, err
	}
	return common.UPDATE_TEMPLATE_APPLY, &common.ScheduleResponse{Schedule: sc}, nil
}

func (s *Api) templateDeleteHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.TemplateIDParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_TEMPLATE_DELETE, nil, err
	}
	if m.ID == "" {
		return common.UPDATE_TEMPLATE_DELETE, nil, errors.New("id is required")
	}
	if err := s.store.DeleteTemplate(m.ID); err != nil {
		return common.UPDATE_TEMPLATE_DELETE, nil, err
	}
	return common.UPDATE_TEMPLATE_DELETE, nil, nil
}
