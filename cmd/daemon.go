package cmd

import (
	"log"
	"os"
	"time"

	"github.com/tasched/tasched/cmd/common"
	"github.com/tasched/tasched/pkg/logger"
	"github.com/tasched/tasched/pkg/taschlib"
	"github.com/urfave/cli"
)

var (
	rpcEnabled   bool
	rpcPort      int
	rpcSecret    string
	rpcListenAll bool
)

var daemonFlags = []cli.Flag{
	cli.BoolFlag{
		Name:        "rpc",
		Usage:       "enable the JSON-RPC listener (also settings.json rpc.enabled)",
		Destination: &rpcEnabled,
	},
	cli.IntFlag{
		Name:        "rpc-port",
		Usage:       "port of the JSON-RPC listener",
		Destination: &rpcPort,
	},
	cli.StringFlag{
		Name:        "rpc-secret",
		Usage:       "token required by JSON-RPC clients (default: $TASCHED_RPC_SECRET or the stored secret)",
		Destination: &rpcSecret,
	},
	cli.BoolFlag{
		Name:        "listen-all",
		Usage:       "bind the JSON-RPC listener to all interfaces",
		Destination: &rpcListenAll,
	},
}

// timeNow is replaced in tests.
var timeNow = time.Now

// buildDaemonOptions merges the daemon flags over settings.json.
func buildDaemonOptions(settings *taschlib.Settings) (*daemonOptions, error) {
	opts := &daemonOptions{
		Settings:  settings,
		RPC:       rpcEnabled || settings.RPC.Enabled,
		RPCPort:   settings.RPC.Port,
		ListenAll: rpcListenAll || settings.RPC.ListenAll,
	}
	if rpcPort > 0 {
		opts.RPCPort = rpcPort
	}
	if opts.RPCPort <= 0 {
		opts.RPCPort = taschlib.DefaultRPCPort
	}
	if !opts.RPC {
		return opts, nil
	}
	secret, err := resolveRPCSecret(rpcSecret)
	if err != nil {
		return nil, err
	}
	opts.RPCSecret = secret
	return opts, nil
}

// daemonLogger logs to the console and, when it can be opened, to
// tasched.log in the config directory.
func daemonLogger() logger.Logger {
	console := logger.NewStandardLogger(log.Default())
	fl, err := logger.NewFileLogger(taschlib.LogPath())
	if err != nil {
		console.Warning("Logging to console only: %v", err)
		return console
	}
	return logger.NewMultiLogger(console, fl)
}

func daemon(ctx *cli.Context) error {
	l := daemonLogger()
	defer l.Close()

	settings, err := loadSettings()
	if err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "settings", err)
		return nil
	}
	opts, err := buildDaemonOptions(settings)
	if err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "rpc_secret", err)
		return nil
	}

	if err := checkPidFile(); err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "pid_file", err)
		return nil
	}
	if err := WritePidFile(); err != nil {
		l.Warning("Failed to write PID file: %v", err)
	}
	defer RemovePidFile()

	shutdownCtx, cancel := setupShutdownHandler(func(sig os.Signal) {
		l.Info("Received %s, stopping the daemon", sig)
	})
	defer cancel()

	comps, err := initDaemonComponents(shutdownCtx, l, opts)
	if err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "init", err)
		return nil
	}
	defer comps.Close()

	l.Info("Daemon started (PID file: %s)", getPidFilePath())
	return comps.Server.Start(shutdownCtx)
}
