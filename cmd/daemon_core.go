package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	rootcommon "github.com/tasched/tasched/common"
	"github.com/tasched/tasched/internal/alert"
	"github.com/tasched/tasched/internal/api"
	"github.com/tasched/tasched/internal/hooks"
	"github.com/tasched/tasched/internal/scheduler"
	"github.com/tasched/tasched/internal/server"
	"github.com/tasched/tasched/internal/store"
	"github.com/tasched/tasched/pkg/credman/keyring"
	"github.com/tasched/tasched/pkg/logger"
	"github.com/tasched/tasched/pkg/taschlib"
)

// daemonOptions is the merged result of daemon flags and settings.json.
type daemonOptions struct {
	Settings  *taschlib.Settings
	RPC       bool
	RPCPort   int
	RPCSecret string
	ListenAll bool
}

// DaemonComponents holds all initialized daemon components so they can be
// released in reverse order of initialization.
type DaemonComponents struct {
	Store     *store.Store
	Bus       *taschlib.Bus
	Runner    *taschlib.Runner
	Scheduler *scheduler.Scheduler
	Hooks     *hooks.Engine
	Api       *api.Api
	Server    *server.Server

	player *alert.ExecPlayer
	cancel context.CancelFunc
	logger logger.Logger
}

// Close stops the runner and the scheduler, drains pending events and
// closes the database.
func (c *DaemonComponents) Close() {
	if c.logger != nil {
		c.logger.Info("Shutting down daemon...")
	}
	if c.cancel != nil {
		c.cancel()
	}
	if c.Runner != nil {
		<-c.Runner.Done()
	}
	// Subscribers may still write history, so the bus goes before the store.
	if c.Bus != nil {
		c.Bus.Close()
	}
	if c.player != nil {
		_ = c.player.Stop()
	}
	if c.Api != nil {
		_ = c.Api.Close()
	} else if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.logger != nil {
		c.logger.Info("Daemon stopped")
	}
}

// initDaemonComponents wires storage, the engine, its subscribers and the
// servers. Nothing listens until Server.Start is called.
var initDaemonComponents = func(ctx context.Context, log logger.Logger, opts *daemonOptions) (*DaemonComponents, error) {
	stdLog := logger.ToStdLogger(log)
	settings := opts.Settings
	if settings == nil {
		settings = taschlib.DefaultSettings()
	}

	st, err := store.Open(taschlib.DatabasePath())
	if err != nil {
		log.Error("Database initialization failed: %v", err)
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	c := &DaemonComponents{Store: st, cancel: cancel, logger: log}

	c.Bus = taschlib.NewBus(stdLog)
	c.Runner = taschlib.NewRunner(ctx, &taschlib.EngineOpts{
		Clock:    taschlib.SystemClock{},
		Interval: settings.TickInterval(),
		Sink:     c.Bus,
	})

	hooksDir := settings.HooksDir
	if hooksDir == "" {
		hooksDir = taschlib.HooksDir
	}
	c.Hooks, err = hooks.NewEngine(stdLog, hooksDir)
	if err != nil {
		log.Error("Hook engine initialization failed: %v", err)
		c.Close()
		return nil, err
	}

	var a *api.Api
	c.Scheduler = scheduler.New(ctx, func(id string) { a.TriggerSchedule(id) })
	a, err = api.NewApi(stdLog, c.Runner, st, c.Scheduler,
		currentBuildArgs.Version, currentBuildArgs.Commit, currentBuildArgs.BuildType)
	if err != nil {
		log.Error("API initialization failed: %v", err)
		c.Close()
		return nil, err
	}
	c.Api = a

	var ws *server.WebServer
	var notifier *server.RPCNotifier
	if opts.RPC {
		rpc := server.NewRPCServer(&server.RPCConfig{
			Secret:    opts.RPCSecret,
			ListenAll: opts.ListenAll,
			Version:   currentBuildArgs.Version,
			Commit:    currentBuildArgs.Commit,
			BuildType: currentBuildArgs.BuildType,
		}, c.Runner, st)
		notifier = server.NewRPCNotifier(stdLog)
		ws = server.NewWebServer(stdLog, opts.RPCPort, rpc, notifier, opts.ListenAll)
		log.Info("JSON-RPC listening on port %d", opts.RPCPort)
	}

	pool := server.NewPool(stdLog)
	c.Server = server.NewServer(stdLog, pool, ws, rootcommon.TCPPort())
	a.RegisterHandlers(c.Server)

	c.Bus.Subscribe("history", store.NewRecorder(st))
	c.Bus.Subscribe("log", taschlib.NewLogSubscriber(log))
	c.Bus.Subscribe("broadcast", api.NewBroadcaster(pool))
	if notifier != nil {
		c.Bus.Subscribe("rpc", notifier)
	}
	if c.Hooks.Len() > 0 {
		c.Bus.Subscribe("hooks", c.Hooks)
	}
	if p := alert.NewExecPlayer(settings.PlayerCommand, soundDir()); p != nil {
		c.player = p
		c.Bus.Subscribe("alert", alert.New(p, settings))
	}

	if err := a.RestoreSchedules(timeNow()); err != nil {
		log.Warning("Failed to restore schedules: %v", err)
	}
	return c, nil
}

func soundDir() string {
	return filepath.Join(taschlib.ConfigDir, "sounds")
}

// resolveRPCSecret returns the flag value, then TASCHED_RPC_SECRET, then a
// secret kept in the OS keyring or the config directory.
func resolveRPCSecret(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv(rootcommon.RPCSecretEnv); env != "" {
		return env, nil
	}
	secret, err := keyring.LoadOrCreate(
		keyring.NewKeyring(),
		keyring.NewFileStore(afero.NewOsFs(), taschlib.ConfigDir),
	)
	if err != nil {
		return "", fmt.Errorf("rpc secret: %w", err)
	}
	return secret, nil
}
