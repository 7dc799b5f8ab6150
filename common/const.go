package common

import "time"

type UpdateType string

const (
	UPDATE_LOAD    UpdateType = "load"
	UPDATE_START   UpdateType = "start"
	UPDATE_PAUSE   UpdateType = "pause"
	UPDATE_RESUME  UpdateType = "resume"
	UPDATE_SKIP    UpdateType = "skip"
	UPDATE_STOP    UpdateType = "stop"
	UPDATE_ADVANCE UpdateType = "advance"
	UPDATE_UNLOAD  UpdateType = "unload"
	UPDATE_STATUS  UpdateType = "status"
	UPDATE_ATTACH  UpdateType = "attach"
	// UPDATE_EVENT is pushed to attached connections for every engine event.
	UPDATE_EVENT UpdateType = "event"

	UPDATE_SCHEDULE_LIST   UpdateType = "schedule_list"
	UPDATE_SCHEDULE_GET    UpdateType = "schedule_get"
	UPDATE_SCHEDULE_SAVE   UpdateType = "schedule_save"
	UPDATE_SCHEDULE_DELETE UpdateType = "schedule_delete"

	UPDATE_TEMPLATE_LIST   UpdateType = "template_list"
	UPDATE_TEMPLATE_SAVE   UpdateType = "template_save"
	UPDATE_TEMPLATE_APPLY  UpdateType = "template_apply"
	UPDATE_TEMPLATE_DELETE UpdateType = "template_delete"

	UPDATE_HISTORY UpdateType = "history"
	UPDATE_VERSION UpdateType = "version"
)

const (
	// DefaultTCPPort is used when the unix socket or named pipe is unavailable.
	DefaultTCPPort = 4849
	TCPHost        = "localhost"

	// MaxMessageSize caps a single framed message in either direction.
	MaxMessageSize = 16 << 20

	DefaultDialTimeout = 2 * time.Second

	DefaultSocketName = "tasched.sock"
)
