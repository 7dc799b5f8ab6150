package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/tasched/tasched/common"
	"github.com/tasched/tasched/internal/scheduler"
	"github.com/tasched/tasched/internal/server"
	"github.com/tasched/tasched/internal/store"
	"github.com/tasched/tasched/pkg/taschlib"
)

type testEnv struct {
	api   *Api
	pool  *server.Pool
	clock *taschlib.ManualClock
	store *store.Store
	bus   *taschlib.Bus
}

func newTestApi(t *testing.T) *testEnv {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "tasched.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	clk := taschlib.NewManualClock(time.Unix(0, 0))
	bus := taschlib.NewBus(log.New(io.Discard, "", 0))
	r := taschlib.NewRunner(ctx, &taschlib.EngineOpts{Clock: clk, Interval: time.Second, Sink: bus})
	sched := scheduler.New(ctx, func(string) {})
	a, err := NewApi(log.New(io.Discard, "", 0), r, st, sched, "test", "abc123", "test")
	if err != nil {
		t.Fatalf("NewApi: %v", err)
	}
	t.Cleanup(func() {
		cancel()
		<-r.Done()
		bus.Close()
		_ = a.Close()
	})
	return &testEnv{
		api:   a,
		pool:  server.NewPool(log.New(io.Discard, "", 0)),
		clock: clk,
		store: st,
		bus:   bus,
	}
}

func testSchedule() *taschlib.Schedule {
	return &taschlib.Schedule{
		ID:          "s1",
		Name:        "Morning",
		AutoAdvance: true,
		Tasks: []taschlib.Task{
			{ID: "a", Title: "A", Duration: 5, Warnings: []int{3, 1}},
			{ID: "b", Title: "B", Duration: 3},
		},
	}
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func snapshotOf(t *testing.T, res any) taschlib.Snapshot {
	t.Helper()
	sr, ok := res.(*common.StatusResponse)
	if !ok {
		t.Fatalf("expected *common.StatusResponse, got %T", res)
	}
	return sr.Snapshot
}

func TestNewApiRequiresRunnerAndStore(t *testing.T) {
	if _, err := NewApi(log.New(io.Discard, "", 0), nil, nil, nil, "", "", ""); err == nil {
		t.Fatal("expected error without runner")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := taschlib.NewRunner(ctx, nil)
	if _, err := NewApi(log.New(io.Discard, "", 0), r, nil, nil, "", "", ""); err == nil {
		t.Fatal("expected error without store")
	}
}

func TestLoadHandlerInline(t *testing.T) {
	env := newTestApi(t)
	body := mustJSON(t, common.LoadParams{Schedule: testSchedule()})
	utype, res, err := env.api.loadHandler(nil, env.pool, body)
	if err != nil {
		t.Fatalf("loadHandler: %v", err)
	}
	if utype != common.UPDATE_LOAD {
		t.Errorf("expected %s, got %s", common.UPDATE_LOAD, utype)
	}
	snap := snapshotOf(t, res)
	if snap.State != taschlib.StateReady || snap.TaskCount != 2 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestLoadHandlerStoredAndStart(t *testing.T) {
	env := newTestApi(t)
	if err := env.store.SaveSchedule(testSchedule()); err != nil {
		t.Fatalf("SaveSchedule: %v", err)
	}
	body := mustJSON(t, common.LoadParams{ScheduleID: "s1", From: 1, Start: true})
	_, res, err := env.api.loadHandler(nil, env.pool, body)
	if err != nil {
		t.Fatalf("loadHandler: %v", err)
	}
	snap := snapshotOf(t, res)
	if snap.State != taschlib.StateRunning {
		t.Errorf("expected running, got %s", snap.State)
	}
	if snap.TaskIndex != 1 || snap.TaskTitle != "B" {
		t.Errorf("expected run to begin at B, got index %d title %q", snap.TaskIndex, snap.TaskTitle)
	}
}

func TestLoadHandlerErrors(t *testing.T) {
	env := newTestApi(t)

	if _, _, err := env.api.loadHandler(nil, env.pool, json.RawMessage("{bad")); err == nil {
		t.Error("expected error for bad JSON")
	}
	if _, _, err := env.api.loadHandler(nil, env.pool, mustJSON(t, common.LoadParams{})); err == nil {
		t.Error("expected error without schedule")
	}
	_, _, err := env.api.loadHandler(nil, env.pool, mustJSON(t, common.LoadParams{ScheduleID: "missing"}))
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	_, _, err = env.api.loadHandler(nil, env.pool, mustJSON(t, common.LoadParams{Schedule: &taschlib.Schedule{ID: "empty"}}))
	if !errors.Is(err, taschlib.ErrInvalidSchedule) {
		t.Errorf("expected ErrInvalidSchedule, got %v", err)
	}
}

func TestCommandHandlers(t *testing.T) {
	env := newTestApi(t)
	if _, _, err := env.api.loadHandler(nil, env.pool, mustJSON(t, common.LoadParams{Schedule: testSchedule()})); err != nil {
		t.Fatalf("loadHandler: %v", err)
	}

	steps := []struct {
		utype common.UpdateType
		fn    func(*taschlib.Runner) error
		want  taschlib.State
	}{
		{common.UPDATE_START, (*taschlib.Runner).Start, taschlib.StateRunning},
		{common.UPDATE_PAUSE, (*taschlib.Runner).Pause, taschlib.StatePaused},
		{common.UPDATE_RESUME, (*taschlib.Runner).Resume, taschlib.StateRunning},
		{common.UPDATE_SKIP, (*taschlib.Runner).Skip, taschlib.StateRunning},
		{common.UPDATE_STOP, (*taschlib.Runner).Stop, taschlib.StateCancelled},
		{common.UPDATE_UNLOAD, (*taschlib.Runner).Unload, taschlib.StateIdle},
	}
	for _, step := range steps {
		h := env.api.command(step.utype, step.fn)
		utype, res, err := h(nil, env.pool, nil)
		if err != nil {
			t.Fatalf("%s: %v", step.utype, err)
		}
		if utype != step.utype {
			t.Errorf("expected update type %s, got %s", step.utype, utype)
		}
		if got := snapshotOf(t, res).State; got != step.want {
			t.Errorf("after %s: expected %s, got %s", step.utype, step.want, got)
		}
	}
}

func TestCommandHandlerInvalidState(t *testing.T) {
	env := newTestApi(t)
	h := env.api.command(common.UPDATE_PAUSE, (*taschlib.Runner).Pause)
	_, res, err := h(nil, env.pool, nil)
	if !errors.Is(err, taschlib.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if res != nil {
		t.Errorf("expected no result on error, got %v", res)
	}
}

func TestAdvanceHandler(t *testing.T) {
	env := newTestApi(t)
	sc := testSchedule()
	sc.AutoAdvance = false
	if _, _, err := env.api.loadHandler(nil, env.pool, mustJSON(t, common.LoadParams{Schedule: sc, Start: true})); err != nil {
		t.Fatalf("loadHandler: %v", err)
	}
	env.clock.TickN(5)

	_, res, err := env.api.statusHandler(nil, env.pool, nil)
	if err != nil {
		t.Fatalf("statusHandler: %v", err)
	}
	if snap := snapshotOf(t, res); !snap.AwaitingAdvance {
		t.Fatalf("expected run to await advance, got %+v", snap)
	}

	_, res, err = env.api.command(common.UPDATE_ADVANCE, (*taschlib.Runner).Advance)(nil, env.pool, nil)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	snap := snapshotOf(t, res)
	if snap.TaskIndex != 1 || snap.AwaitingAdvance {
		t.Errorf("expected task B to be running, got %+v", snap)
	}
}

func TestAttachAndBroadcast(t *testing.T) {
	env := newTestApi(t)
	env.bus.Subscribe("broadcast", NewBroadcaster(env.pool))

	srv, cli := net.Pipe()
	defer srv.Close()
	defer cli.Close()
	sconn := server.NewSyncConn(srv)

	utype, res, err := env.api.attachHandler(sconn, env.pool, nil)
	if err != nil {
		t.Fatalf("attachHandler: %v", err)
	}
	if utype != common.UPDATE_ATTACH {
		t.Errorf("expected %s, got %s", common.UPDATE_ATTACH, utype)
	}
	if snapshotOf(t, res).State != taschlib.StateIdle {
		t.Errorf("expected idle snapshot")
	}
	if n := env.pool.Count(server.TopicRun); n != 1 {
		t.Fatalf("expected 1 watcher, got %d", n)
	}

	frames := make(chan []byte, 8)
	go func() {
		reader := server.NewSyncConn(cli)
		for {
			b, err := reader.Read()
			if err != nil {
				close(frames)
				return
			}
			frames <- b
		}
	}()

	if _, _, err := env.api.loadHandler(nil, env.pool, mustJSON(t, common.LoadParams{Schedule: testSchedule(), Start: true})); err != nil {
		t.Fatalf("loadHandler: %v", err)
	}

	var kinds []taschlib.EventKind
	timeout := time.After(2 * time.Second)
	for len(kinds) < 3 {
		select {
		case b, ok := <-frames:
			if !ok {
				t.Fatal("watcher connection closed")
			}
			var resp struct {
				Ok     bool `json:"ok"`
				Update struct {
					Type    common.UpdateType `json:"type"`
					Message taschlib.Event    `json:"message"`
				} `json:"update"`
			}
			if err := json.Unmarshal(b, &resp); err != nil {
				t.Fatalf("unmarshal push: %v", err)
			}
			if resp.Update.Type != common.UPDATE_EVENT {
				t.Fatalf("expected %s push, got %s", common.UPDATE_EVENT, resp.Update.Type)
			}
			kinds = append(kinds, resp.Update.Message.Kind)
		case <-timeout:
			t.Fatalf("timed out waiting for pushed events, got %v", kinds)
		}
	}
	want := []taschlib.EventKind{taschlib.EventStateChanged, taschlib.EventStateChanged, taschlib.EventTaskStarted}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], kinds[i])
		}
	}
}

func TestScheduleHandlers(t *testing.T) {
	env := newTestApi(t)

	sc := testSchedule()
	sc.ID = ""
	sc.Tasks[1].ID = ""
	utype, res, err := env.api.scheduleSaveHandler(nil, env.pool, mustJSON(t, common.ScheduleSaveParams{Schedule: sc}))
	if err != nil {
		t.Fatalf("scheduleSaveHandler: %v", err)
	}
	if utype != common.UPDATE_SCHEDULE_SAVE {
		t.Errorf("expected %s, got %s", common.UPDATE_SCHEDULE_SAVE, utype)
	}
	saved := res.(*common.ScheduleResponse).Schedule
	if saved.ID == "" || saved.Tasks[1].ID == "" {
		t.Fatalf("expected generated IDs, got %+v", saved)
	}

	_, res, err = env.api.scheduleListHandler(nil, env.pool, nil)
	if err != nil {
		t.Fatalf("scheduleListHandler: %v", err)
	}
	list := res.(*common.ScheduleListResponse).Schedules
	if len(list) != 1 || list[0].TotalSeconds != 8 {
		t.Fatalf("unexpected list: %+v", list)
	}

	_, res, err = env.api.scheduleGetHandler(nil, env.pool, mustJSON(t, common.ScheduleIDParams{ID: saved.ID}))
	if err != nil {
		t.Fatalf("scheduleGetHandler: %v", err)
	}
	if got := res.(*common.ScheduleResponse).Schedule; got.Name != "Morning" || len(got.Tasks) != 2 {
		t.Errorf("unexpected schedule: %+v", got)
	}

	if _, _, err := env.api.scheduleDeleteHandler(nil, env.pool, mustJSON(t, common.ScheduleIDParams{ID: saved.ID})); err != nil {
		t.Fatalf("scheduleDeleteHandler: %v", err)
	}
	_, _, err = env.api.scheduleGetHandler(nil, env.pool, mustJSON(t, common.ScheduleIDParams{ID: saved.ID}))
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestScheduleSaveValidation(t *testing.T) {
	env := newTestApi(t)

	tests := []struct {
		name string
		body json.RawMessage
	}{
		{"bad json", json.RawMessage("{")},
		{"missing schedule", mustJSON(t, common.ScheduleSaveParams{})},
		{"no tasks", mustJSON(t, common.ScheduleSaveParams{Schedule: &taschlib.Schedule{Name: "x"}})},
		{"bad cron", mustJSON(t, common.ScheduleSaveParams{Schedule: func() *taschlib.Schedule {
			sc := testSchedule()
			sc.AutoStart = true
			sc.Cron = "not a cron"
			return sc
		}()})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := env.api.scheduleSaveHandler(nil, env.pool, tt.body); err == nil {
				t.Fatal("expected error")
			}
		})
	}
	if list, _ := env.store.ListSchedules(); len(list) != 0 {
		t.Errorf("invalid schedules must not be stored, got %d", len(list))
	}
}

func TestScheduleIDRequired(t *testing.T) {
	env := newTestApi(t)
	empty := mustJSON(t, common.ScheduleIDParams{})
	if _, _, err := env.api.scheduleGetHandler(nil, env.pool, empty); err == nil {
		t.Error("expected error for get without id")
	}
	if _, _, err := env.api.scheduleDeleteHandler(nil, env.pool, empty); err == nil {
		t.Error("expected error for delete without id")
	}
}

func TestTemplateHandlers(t *testing.T) {
	env := newTestApi(t)
	if err := env.store.SaveSchedule(testSchedule()); err != nil {
		t.Fatalf("SaveSchedule: %v", err)
	}

	if _, _, err := env.api.templateSaveHandler(nil, env.pool, mustJSON(t, common.TemplateSaveParams{ScheduleID: "s1"})); err == nil {
		t.Error("expected error without name")
	}
	_, res, err := env.api.templateSaveHandler(nil, env.pool, mustJSON(t, common.TemplateSaveParams{Name: "Mornings", ScheduleID: "s1"}))
	if err != nil {
		t.Fatalf("templateSaveHandler: %v", err)
	}
	sum := res.(*common.TemplateSummary)
	if sum.TaskCount != 2 {
		t.Errorf("expected 2 tasks in template, got %d", sum.TaskCount)
	}

	_, res, err = env.api.templateListHandler(nil, env.pool, nil)
	if err != nil {
		t.Fatalf("templateListHandler: %v", err)
	}
	if n := len(res.(*common.TemplateListResponse).Templates); n != 1 {
		t.Fatalf("expected 1 template, got %d", n)
	}

	_, res, err = env.api.templateApplyHandler(nil, env.pool, mustJSON(t, common.TemplateApplyParams{TemplateID: sum.ID, Name: "Tuesday"}))
	if err != nil {
		t.Fatalf("templateApplyHandler: %v", err)
	}
	applied := res.(*common.ScheduleResponse).Schedule
	if applied.Name != "Tuesday" || applied.ID == "s1" {
		t.Errorf("unexpected applied schedule: %+v", applied)
	}

	if _, _, err := env.api.templateDeleteHandler(nil, env.pool, mustJSON(t, common.TemplateIDParams{ID: sum.ID})); err != nil {
		t.Fatalf("templateDeleteHandler: %v", err)
	}
	_, _, err = env.api.templateApplyHandler(nil, env.pool, mustJSON(t, common.TemplateApplyParams{TemplateID: sum.ID}))
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHistoryHandler(t *testing.T) {
	env := newTestApi(t)
	env.bus.Subscribe("recorder", store.NewRecorder(env.store))

	if _, _, err := env.api.loadHandler(nil, env.pool, mustJSON(t, common.LoadParams{Schedule: testSchedule(), Start: true})); err != nil {
		t.Fatalf("loadHandler: %v", err)
	}
	if _, _, err := env.api.command(common.UPDATE_STOP, (*taschlib.Runner).Stop)(nil, env.pool, nil); err != nil {
		t.Fatalf("stop: %v", err)
	}

	hasCancel := func(entries []*common.HistoryEntry) bool {
		for _, e := range entries {
			if e.EventType == string(taschlib.EventScheduleCancelled) {
				return true
			}
		}
		return false
	}
	deadline := time.Now().Add(2 * time.Second)
	var entries []*common.HistoryEntry
	for time.Now().Before(deadline) {
		_, res, err := env.api.historyHandler(nil, env.pool, mustJSON(t, common.HistoryParams{ScheduleID: "s1"}))
		if err != nil {
			t.Fatalf("historyHandler: %v", err)
		}
		entries = res.(*common.HistoryResponse).Entries
		if hasCancel(entries) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !hasCancel(entries) {
		t.Fatalf("expected schedule_cancelled in history, got %d entries", len(entries))
	}
	if last := entries[0]; last.EventType != string(taschlib.EventStateChanged) {
		t.Errorf("expected newest entry to be the final state change, got %s", last.EventType)
	}

	_, res, err := env.api.historyHandler(nil, env.pool, nil)
	if err != nil {
		t.Fatalf("historyHandler without params: %v", err)
	}
	if len(res.(*common.HistoryResponse).Entries) == 0 {
		t.Error("expected entries without a schedule filter")
	}
}

func TestVersionHandler(t *testing.T) {
	env := newTestApi(t)
	utype, res, err := env.api.versionHandler(nil, env.pool, nil)
	if err != nil {
		t.Fatalf("versionHandler: %v", err)
	}
	if utype != common.UPDATE_VERSION {
		t.Errorf("expected %s, got %s", common.UPDATE_VERSION, utype)
	}
	v := res.(*common.VersionResponse)
	if v.Version != "test" || v.Commit != "abc123" || v.BuildType != "test" {
		t.Errorf("unexpected version: %+v", v)
	}
}

func TestRegisterHandlersAndClose(t *testing.T) {
	env := newTestApi(t)
	serv := server.NewServer(log.New(io.Discard, "", 0), env.pool, nil, 0)
	env.api.RegisterHandlers(serv)
}

func TestAttachLeavesPoolWhenRunnerGone(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "tasched.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := taschlib.NewRunner(ctx, &taschlib.EngineOpts{Clock: taschlib.NewManualClock(time.Unix(0, 0)), Interval: time.Second})
	cancel()
	<-r.Done()
	a, err := NewApi(log.New(io.Discard, "", 0), r, st, nil, "test", "abc123", "test")
	if err != nil {
		t.Fatalf("NewApi: %v", err)
	}
	defer a.Close()
	pool := server.NewPool(log.New(io.Discard, "", 0))

	srv, cli := net.Pipe()
	defer srv.Close()
	defer cli.Close()
	if _, _, err := a.attachHandler(server.NewSyncConn(srv), pool, nil); !errors.Is(err, taschlib.ErrRunnerClosed) {
		t.Fatalf("attachHandler err = %v, want ErrRunnerClosed", err)
	}
	if n := pool.Count(server.TopicRun); n != 0 {
		t.Errorf("expected no watchers after failed attach, got %d", n)
	}
}
