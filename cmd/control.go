package cmd

import (
	"fmt"
	"strings"

	"github.com/tasched/tasched/cmd/common"
	"github.com/tasched/tasched/pkg/taschcli"
	"github.com/tasched/tasched/pkg/taschlib"
	"github.com/urfave/cli"
)

// controlCommand builds a command that sends one run command and prints
// the resulting status.
func controlCommand(name, usage string, fn func(*taschcli.Client) (*taschlib.Snapshot, error)) cli.Command {
	return cli.Command{
		Name:               name,
		Usage:              usage,
		UsageText:          " ",
		CustomHelpTemplate: CMD_HELP_TEMPL,
		Action: func(ctx *cli.Context) error {
			if ctx.Args().First() == "help" {
				return cli.ShowCommandHelp(ctx, ctx.Command.Name)
			}
			client, err := connect()
			if err != nil {
				common.PrintRuntimeErr(ctx, name, "new_client", err)
				return nil
			}
			defer client.Close()
			snap, err := fn(client)
			if err != nil {
				common.PrintRuntimeErr(ctx, name, name, err)
				return nil
			}
			printSnapshot(snap)
			return nil
		},
	}
}

func startRun(c *taschcli.Client) (*taschlib.Snapshot, error)   { return c.Start() }
func pauseRun(c *taschcli.Client) (*taschlib.Snapshot, error)   { return c.Pause() }
func resumeRun(c *taschcli.Client) (*taschlib.Snapshot, error)  { return c.Resume() }
func skipTask(c *taschcli.Client) (*taschlib.Snapshot, error)   { return c.Skip() }
func stopRun(c *taschcli.Client) (*taschlib.Snapshot, error)    { return c.Stop() }
func advanceRun(c *taschcli.Client) (*taschlib.Snapshot, error) { return c.Advance() }
func unloadRun(c *taschcli.Client) (*taschlib.Snapshot, error)  { return c.Unload() }

func status(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := connect()
	if err != nil {
		common.PrintRuntimeErr(ctx, "status", "new_client", err)
		return nil
	}
	defer client.Close()
	snap, err := client.Status()
	if err != nil {
		common.PrintRuntimeErr(ctx, "status", "get_status", err)
		return nil
	}
	printSnapshot(snap)
	return nil
}

func printSnapshot(s *taschlib.Snapshot) {
	fmt.Print(formatSnapshot(s))
}

func formatSnapshot(s *taschlib.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "State\t\t: %s\n", s.State)
	if s.State == taschlib.StateIdle {
		return b.String()
	}
	fmt.Fprintf(&b, "Schedule\t: %s (%s)\n", s.ScheduleName, s.ScheduleID)
	if s.TaskIndex >= 0 && s.TaskCount > 0 && !s.State.Terminal() {
		fmt.Fprintf(&b, "Task\t\t: %d/%d %s\n", s.TaskIndex+1, s.TaskCount, s.TaskTitle)
		fmt.Fprintf(&b, "Remaining\t: %s of %s\n",
			taschlib.FormatClock(taschlib.CeilSeconds(s.RemainingDuration())),
			taschlib.FormatClock(s.TaskDuration))
		if len(s.FiredThresholds) > 0 {
			fired := make([]string, len(s.FiredThresholds))
			for i, t := range s.FiredThresholds {
				fired[i] = taschlib.FormatMinSec(t)
			}
			fmt.Fprintf(&b, "Warnings\t: %s\n", strings.Join(fired, ", "))
		}
	}
	switch {
	case s.InGap:
		fmt.Fprintf(&b, "Gap\t\t: next task in %s\n", taschlib.FormatMinSec(int(s.GapRemaining+0.999)))
	case s.AwaitingAdvance:
		fmt.Fprintln(&b, "Waiting\t\t: run \"tasched advance\" for the next task")
	}
	return b.String()
}
