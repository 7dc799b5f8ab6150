package api

import (
	"errors"
	"log"

	"github.com/tasched/tasched/common"
	"github.com/tasched/tasched/internal/scheduler"
	"github.com/tasched/tasched/internal/server"
	"github.com/tasched/tasched/internal/store"
	"github.com/tasched/tasched/pkg/taschlib"
)

// Api binds socket requests to the run engine and the schedule store.
type Api struct {
	log       *log.Logger
	runner    *taschlib.Runner
	store     *store.Store
	scheduler *scheduler.Scheduler
	version   string
	commit    string
	buildType string
}

// NewApi creates the request handlers. sched may be nil, in which case
// saved schedules are stored but never started automatically.
func NewApi(l *log.Logger, r *taschlib.Runner, st *store.Store, sched *scheduler.Scheduler, version, commit, buildType string) (*Api, error) {
	if r == nil {
		return nil, errors.New("api: runner is required")
	}
	if st == nil {
		return nil, errors.New("api: store is required")
	}
	return &Api{
		log:       l,
		runner:    r,
		store:     st,
		scheduler: sched,
		version:   version,
		commit:    commit,
		buildType: buildType,
	}, nil
}

func (s *Api) RegisterHandlers(server *server.Server) {
	// run control
	server.RegisterHandler(common.UPDATE_LOAD, s.loadHandler)
	server.RegisterHandler(common.UPDATE_START, s.command(common.UPDATE_START, (*taschlib.Runner).Start))
	server.RegisterHandler(common.UPDATE_PAUSE, s.command(common.UPDATE_PAUSE, (*taschlib.Runner).Pause))
	server.RegisterHandler(common.UPDATE_RESUME, s.command(common.UPDATE_RESUME, (*taschlib.Runner).Resume))
	server.RegisterHandler(common.UPDATE_SKIP, s.command(common.UPDATE_SKIP, (*taschlib.Runner).Skip))
	server.RegisterHandler(common.UPDATE_STOP, s.command(common.UPDATE_STOP, (*taschlib.Runner).Stop))
	server.RegisterHandler(common.UPDATE_ADVANCE, s.command(common.UPDATE_ADVANCE, (*taschlib.Runner).Advance))
	server.RegisterHandler(common.UPDATE_UNLOAD, s.command(common.UPDATE_UNLOAD, (*taschlib.Runner).Unload))
	server.RegisterHandler(common.UPDATE_STATUS, s.statusHandler)
	server.RegisterHandler(common.UPDATE_ATTACH, s.attachHandler)

	// schedules and templates
	server.RegisterHandler(common.UPDATE_SCHEDULE_LIST, s.scheduleListHandler)
	server.RegisterHandler(common.UPDATE_SCHEDULE_GET, s.scheduleGetHandler)
	server.RegisterHandler(common.UPDATE_SCHEDULE_SAVE, s.scheduleSaveHandler)
	server.RegisterHandler(common.UPDATE_SCHEDULE_DELETE, s.scheduleDeleteHandler)
	server.RegisterHandler(common.UPDATE_TEMPLATE_LIST, s.templateListHandler)
	server.RegisterHandler(common.UPDATE_TEMPLATE_SAVE, s.templateSaveHandler)
	server.RegisterHandler(common.UPDATE_TEMPLATE_APPLY, s.templateApplyHandler)
	server.RegisterHandler(common.UPDATE_TEMPLATE_DELETE, s.templateDeleteHandler)

	server.RegisterHandler(common.UPDATE_HISTORY, s.historyHandler)
	server.RegisterHandler(common.UPDATE_VERSION, s.versionHandler)
}

func (s *Api) Close() error {
	return s.store.Close()
}
