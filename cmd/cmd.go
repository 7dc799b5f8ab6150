package cmd

import (
	"fmt"
	"runtime"

	"github.com/tasched/tasched/cmd/common"
	"github.com/urfave/cli"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

// currentBuildArgs is set by Execute and read by the daemon and the
// version check.
var currentBuildArgs BuildArgs

func Execute(args []string, bArgs BuildArgs) error {
	currentBuildArgs = bArgs
	app := cli.App{
		Name:                  "tasched",
		HelpName:              "tasched",
		Usage:                 "Runs timed task schedules with warnings.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "tasched <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Flags:                 globalFlags,
		Commands: []cli.Command{
			{
				Name:   "daemon",
				Usage:  "runs the scheduler daemon in the foreground",
				Action: daemon,
				Flags:  daemonFlags,
			},
			{
				Name:               "run",
				Aliases:            []string{"r"},
				Usage:              "loads a schedule and starts it",
				Description:        RunDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             run,
				Flags:              runFlags,
			},
			controlCommand("start", "starts the loaded schedule", startRun),
			controlCommand("pause", "pauses the running task", pauseRun),
			controlCommand("resume", "resumes a paused run", resumeRun),
			controlCommand("skip", "skips the current task", skipTask),
			controlCommand("stop", "cancels the current run", stopRun),
			controlCommand("advance", "moves to the next task when auto-advance is off", advanceRun),
			controlCommand("unload", "clears a finished run", unloadRun),
			{
				Name:               "status",
				Aliases:            []string{"s"},
				Usage:              "shows the state of the current run",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             status,
			},
			{
				Name:               "attach",
				Aliases:            []string{"a"},
				Usage:              "shows a live countdown of the current run",
				Description:        AttachDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             attach,
			},
			scheduleCommand,
			templateCommand,
			{
				Name:               "history",
				Usage:              "shows logged run events",
				Description:        HistoryDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             history,
				Flags:              historyFlags,
			},
			{
				Name:   "stop-daemon",
				Usage:  "stops the running daemon",
				Action: stopDaemon,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of tasched",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             common.GetVersion,
			},
		},
		Action:      common.Help,
		HideHelp:    true,
		HideVersion: true,
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
