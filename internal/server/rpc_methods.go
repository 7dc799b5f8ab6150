package server

import (
	"context"
	"errors"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/tasched/tasched/common"
	"github.com/tasched/tasched/internal/store"
	"github.com/tasched/tasched/pkg/taschlib"
)

// Custom JSON-RPC error codes for run operations.
const (
	codeNotFound        = jrpc2.Code(-32001)
	codeInvalidState    = jrpc2.Code(-32010)
	codeInvalidSchedule = jrpc2.Code(-32011)
	codeInvalidParams   = jrpc2.Code(-32602)
)

// RPCConfig holds configuration for the JSON-RPC endpoint.
type RPCConfig struct {
	Secret    string // Auth token (required -- empty means RPC disabled)
	ListenAll bool   // If true, bind to 0.0.0.0 instead of 127.0.0.1
	Version   string
	Commit    string
	BuildType string
}

// ScheduleSource looks up stored schedules by ID.
type ScheduleSource interface {
	GetSchedule(id string) (*taschlib.Schedule, error)
	ListSchedules() ([]*common.ScheduleSummary, error)
}

// RPCServer manages the JSON-RPC 2.0 bridge and method handlers.
type RPCServer struct {
	methods   handler.Map
	bridge    jhttp.Bridge
	secret    string
	version   string
	commit    string
	buildType string
	runner    *taschlib.Runner
	schedules ScheduleSource
}

// NewRPCServer creates a new RPCServer with method handlers and HTTP bridge.
// schedules may be nil, in which case run.load only accepts inline
// schedules and schedule.* report not found.
func NewRPCServer(cfg *RPCConfig, r *taschlib.Runner, schedules ScheduleSource) *RPCServer {
	rs := &RPCServer{
		secret:    cfg.Secret,
		version:   cfg.Version,
		commit:    cfg.Commit,
		buildType: cfg.BuildType,
		runner:    r,
		schedules: schedules,
	}

	rs.methods = handler.Map{
		"system.getVersion": handler.New(rs.systemGetVersion),
		"run.load":          handler.New(rs.runLoad),
		"run.start":         handler.New(rs.command((*taschlib.Runner).Start)),
		"run.pause":         handler.New(rs.command((*taschlib.Runner).Pause)),
		"run.resume":        handler.New(rs.command((*taschlib.Runner).Resume)),
		"run.skip":          handler.New(rs.command((*taschlib.Runner).Skip)),
		"run.stop":          handler.New(rs.command((*taschlib.Runner).Stop)),
		"run.advance":       handler.New(rs.command((*taschlib.Runner).Advance)),
		"run.unload":        handler.New(rs.command((*taschlib.Runner).Unload)),
		"run.status":        handler.New(rs.runStatus),
		"schedule.list":     handler.New(rs.scheduleList),
		"schedule.get":      handler.New(rs.scheduleGet),
	}

	rs.bridge = jhttp.NewBridge(rs.methods, nil)
	return rs
}

func (rs *RPCServer) systemGetVersion(_ context.Context) (*common.VersionResponse, error) {
	return &common.VersionResponse{
		Version:   rs.version,
		Commit:    rs.commit,
		BuildType: rs.buildType,
	}, nil
}

// runLoad prepares a stored or inline schedule, optionally starting it.
func (rs *RPCServer) runLoad(_ context.Context, p *common.LoadParams) (*taschlib.Snapshot, error) {
	sc := p.Schedule
	if sc == nil {
		if p.ScheduleID == "" {
			return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: schedule_id or schedule"}
		}
		if rs.schedules == nil {
			return nil, &jrpc2.Error{Code: codeNotFound, Message: "schedule not found"}
		}
		var err error
		sc, err = rs.schedules.GetSchedule(p.ScheduleID)
		if err != nil {
			return nil, rpcError(err)
		}
	}
	if err := rs.runner.Load(sc, p.From, p.Start); err != nil {
		return nil, rpcError(err)
	}
	return rs.snapshot()
}

func (rs *RPCServer) command(fn func(*taschlib.Runner) error) func(context.Context) (*taschlib.Snapshot, error) {
	return func(context.Context) (*taschlib.Snapshot, error) {
		if err := fn(rs.runner); err != nil {
			return nil, rpcError(err)
		}
		return rs.snapshot()
	}
}

func (rs *RPCServer) runStatus(_ context.Context) (*taschlib.Snapshot, error) {
	return rs.snapshot()
}

func (rs *RPCServer) snapshot() (*taschlib.Snapshot, error) {
	snap, err := rs.runner.Snapshot()
	if err != nil {
		return nil, rpcError(err)
	}
	return &snap, nil
}

func (rs *RPCServer) scheduleList(_ context.Context) (*common.ScheduleListResponse, error) {
	if rs.schedules == nil {
		return &common.ScheduleListResponse{Schedules: []*common.ScheduleSummary{}}, nil
	}
	list, err := rs.schedules.ListSchedules()
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*common.ScheduleSummary{}
	}
	return &common.ScheduleListResponse{Schedules: list}, nil
}

func (rs *RPCServer) scheduleGet(_ context.Context, p *common.ScheduleIDParams) (*common.ScheduleResponse, error) {
	if p.ID == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: id"}
	}
	if rs.schedules == nil {
		return nil, &jrpc2.Error{Code: codeNotFound, Message: "schedule not found"}
	}
	sc, err := rs.schedules.GetSchedule(p.ID)
	if err != nil {
		return nil, rpcError(err)
	}
	return &common.ScheduleResponse{Schedule: sc}, nil
}

// rpcError maps engine and store errors onto JSON-RPC error codes.
func rpcError(err error) error {
	switch {
	case errors.Is(err, taschlib.ErrInvalidState):
		return &jrpc2.Error{Code: codeInvalidState, Message: err.Error()}
	case errors.Is(err, taschlib.ErrInvalidSchedule):
		return &jrpc2.Error{Code: codeInvalidSchedule, Message: err.Error()}
	case errors.Is(err, store.ErrNotFound):
		return &jrpc2.Error{Code: codeNotFound, Message: err.Error()}
	default:
		return err
	}
}

// Close shuts down the jrpc2 bridge, releasing internal goroutines.
func (rs *RPCServer) Close() {
	rs.bridge.Close()
}
