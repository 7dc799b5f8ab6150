package common

import (
	"encoding/json"
	"time"

	"github.com/tasched/tasched/pkg/taschlib"
)

// LoadParams prepares a run. Either ScheduleID (a stored schedule) or
// Schedule (an inline one) must be set.
type LoadParams struct {
	ScheduleID string             `json:"schedule_id,omitempty"`
	Schedule   *taschlib.Schedule `json:"schedule,omitempty"`
	From       int                `json:"from,omitempty"`
	Start      bool               `json:"start,omitempty"`
}

// StatusResponse is returned by every run command.
type StatusResponse struct {
	Snapshot taschlib.Snapshot `json:"snapshot"`
}

type ScheduleIDParams struct {
	ID string `json:"id"`
}

type ScheduleSummary struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	TaskCount    int        `json:"task_count"`
	TotalSeconds int        `json:"total_seconds"`
	AutoStart    bool       `json:"auto_start,omitempty"`
	StartAt      *time.Time `json:"start_at,omitempty"`
	Cron         string     `json:"cron,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type ScheduleListResponse struct {
	Schedules []*ScheduleSummary `json:"schedules"`
}

type ScheduleResponse struct {
	Schedule *taschlib.Schedule `json:"schedule"`
}

type ScheduleSaveParams struct {
	Schedule *taschlib.Schedule `json:"schedule"`
}

type TemplateSaveParams struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ScheduleID  string `json:"schedule_id"`
}

type TemplateApplyParams struct {
	TemplateID string `json:"template_id"`
	Name       string `json:"name,omitempty"`
}

type TemplateIDParams struct {
	ID string `json:"id"`
}

type TemplateSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	TaskCount   int       `json:"task_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type TemplateListResponse struct {
	Templates []*TemplateSummary `json:"templates"`
}

type HistoryParams struct {
	ScheduleID string `json:"schedule_id,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

type HistoryEntry struct {
	ID           int64           `json:"id"`
	RunID        uint64          `json:"run_id"`
	ScheduleID   string          `json:"schedule_id"`
	ScheduleName string          `json:"schedule_name"`
	EventType    string          `json:"event_type"`
	EventData    json.RawMessage `json:"event_data,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
}

type HistoryResponse struct {
	Entries []*HistoryEntry `json:"entries"`
}

type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildType string `json:"build_type,omitempty"`
}
