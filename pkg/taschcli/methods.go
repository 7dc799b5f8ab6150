package taschcli

import (
	"encoding/json"

	"github.com/tasched/tasched/common"
	"github.com/tasched/tasched/pkg/taschlib"
)

func invoke[T any](c *Client, method common.UpdateType, message any) (*T, error) {
	resp, err := c.invoke(method, message)
	if err != nil {
		return nil, err
	}
	var d T
	if len(resp) == 0 {
		return &d, nil
	}
	return &d, json.Unmarshal(resp, &d)
}

func (c *Client) snapshot(method common.UpdateType, message any) (*taschlib.Snapshot, error) {
	res, err := invoke[common.StatusResponse](c, method, message)
	if err != nil {
		return nil, err
	}
	return &res.Snapshot, nil
}

// LoadOpts controls where a loaded run begins.
type LoadOpts struct {
	From  int
	Start bool
}

// Load prepares the stored schedule scheduleID.
func (c *Client) Load(scheduleID string, opts *LoadOpts) (*taschlib.Snapshot, error) {
	if opts == nil {
		opts = &LoadOpts{}
	}
	return c.snapshot(common.UPDATE_LOAD, &common.LoadParams{
		ScheduleID: scheduleID,
		From:       opts.From,
		Start:      opts.Start,
	})
}

// LoadSchedule prepares an inline schedule that is not stored.
func (c *Client) LoadSchedule(sc *taschlib.Schedule, opts *LoadOpts) (*taschlib.Snapshot, error) {
	if opts == nil {
		opts = &LoadOpts{}
	}
	return c.snapshot(common.UPDATE_LOAD, &common.LoadParams{
		Schedule: sc,
		From:     opts.From,
		Start:    opts.Start,
	})
}

func (c *Client) Start() (*taschlib.Snapshot, error) {
	return c.snapshot(common.UPDATE_START, nil)
}

func (c *Client) Pause() (*taschlib.Snapshot, error) {
	return c.snapshot(common.UPDATE_PAUSE, nil)
}

func (c *Client) Resume() (*taschlib.Snapshot, error) {
	return c.snapshot(common.UPDATE_RESUME, nil)
}

func (c *Client) Skip() (*taschlib.Snapshot, error) {
	return c.snapshot(common.UPDATE_SKIP, nil)
}

func (c *Client) Stop() (*taschlib.Snapshot, error) {
	return c.snapshot(common.UPDATE_STOP, nil)
}

func (c *Client) Advance() (*taschlib.Snapshot, error) {
	return c.snapshot(common.UPDATE_ADVANCE, nil)
}

func (c *Client) Unload() (*taschlib.Snapshot, error) {
	return c.snapshot(common.UPDATE_UNLOAD, nil)
}

func (c *Client) Status() (*taschlib.Snapshot, error) {
	return c.snapshot(common.UPDATE_STATUS, nil)
}

// Attach subscribes the connection to engine events. Register an
// EventHandler for common.UPDATE_EVENT and call Listen afterwards.
func (c *Client) Attach() (*taschlib.Snapshot, error) {
	return c.snapshot(common.UPDATE_ATTACH, nil)
}

func (c *Client) ListSchedules() (*common.ScheduleListResponse, error) {
	return invoke[common.ScheduleListResponse](c, common.UPDATE_SCHEDULE_LIST, nil)
}

func (c *Client) GetSchedule(id string) (*taschlib.Schedule, error) {
	res, err := invoke[common.ScheduleResponse](c, common.UPDATE_SCHEDULE_GET, &common.ScheduleIDParams{ID: id})
	if err != nil {
		return nil, err
	}
	return res.Schedule, nil
}

// SaveSchedule creates or replaces sc. Missing IDs are assigned by the
// daemon and the stored copy is returned.
func (c *Client) SaveSchedule(sc *taschlib.Schedule) (*taschlib.Schedule, error) {
	res, err := invoke[common.ScheduleResponse](c, common.UPDATE_SCHEDULE_SAVE, &common.ScheduleSaveParams{Schedule: sc})
	if err != nil {
		return nil, err
	}
	return res.Schedule, nil
}

func (c *Client) DeleteSchedule(id string) error {
	_, err := c.invoke(common.UPDATE_SCHEDULE_DELETE, &common.ScheduleIDParams{ID: id})
	return err
}

func (c *Client) ListTemplates() (*common.TemplateListResponse, error) {
	return invoke[common.TemplateListResponse](c, common.UPDATE_TEMPLATE_LIST, nil)
}

func (c *Client) SaveTemplate(name, description, scheduleID string) (*common.TemplateSummary, error) {
	return invoke[common.TemplateSummary](c, common.UPDATE_TEMPLATE_SAVE, &common.TemplateSaveParams{
		Name:        name,
		Description: description,
		ScheduleID:  scheduleID,
	})
}

// ApplyTemplate creates a new schedule from a template. An empty name
// keeps the template's name.
func (c *Client) ApplyTemplate(templateID, name string) (*taschlib.Schedule, error) {
	res, err := invoke[common.ScheduleResponse](c, common.UPDATE_TEMPLATE_APPLY, &common.TemplateApplyParams{
		TemplateID: templateID,
		Name:       name,
	})
	if err != nil {
		return nil, err
	}
	return res.Schedule, nil
}

func (c *Client) DeleteTemplate(id string) error {
	_, err := c.invoke(common.UPDATE_TEMPLATE_DELETE, &common.TemplateIDParams{ID: id})
	return err
}

// History returns the newest logged events, optionally for one schedule.
func (c *Client) History(scheduleID string, limit int) (*common.HistoryResponse, error) {
	return invoke[common.HistoryResponse](c, common.UPDATE_HISTORY, &common.HistoryParams{
		ScheduleID: scheduleID,
		Limit:      limit,
	})
}

func (c *Client) GetDaemonVersion() (*common.VersionResponse, error) {
	return invoke[common.VersionResponse](c, common.UPDATE_VERSION, nil)
}
