package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/tasched/tasched/cmd/common"
	"github.com/tasched/tasched/pkg/taschcli"
	"github.com/tasched/tasched/pkg/taschlib"
	"github.com/urfave/cli"
)

var (
	runFrom    int
	runNoStart bool
	runDetach  bool

	runFlags = []cli.Flag{
		cli.IntFlag{
			Name:        "from, f",
			Usage:       "task number to begin with, counting from 1",
			Value:       1,
			Destination: &runFrom,
		},
		cli.BoolFlag{
			Name:        "no-start, n",
			Usage:       "only load the schedule; start it later with \"tasched start\"",
			Destination: &runNoStart,
		},
		cli.BoolFlag{
			Name:        "detach, d",
			Usage:       "return right away instead of showing the countdown",
			Destination: &runDetach,
		},
	}
)

// fileSystem is where schedule files are read from and written to.
var fileSystem = afero.NewOsFs()

func run(ctx *cli.Context) error {
	target := ctx.Args().First()
	if target == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no schedule provided"))
	} else if target == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if runFrom < 1 {
		return common.PrintErrWithCmdHelp(ctx, fmt.Errorf("--from must be at least 1, got %d", runFrom))
	}
	client, err := connect()
	if err != nil {
		common.PrintRuntimeErr(ctx, "run", "new_client", err)
		return nil
	}
	opts := &taschcli.LoadOpts{From: runFrom - 1, Start: !runNoStart}

	var snap *taschlib.Snapshot
	if isScheduleFile(target) {
		sc, ferr := taschlib.ReadScheduleFile(fileSystem, target)
		if ferr != nil {
			client.Close()
			common.PrintRuntimeErr(ctx, "run", "read_file", ferr)
			return nil
		}
		snap, err = client.LoadSchedule(sc, opts)
	} else {
		snap, err = client.Load(target, opts)
	}
	if err != nil {
		client.Close()
		common.PrintRuntimeErr(ctx, "run", "load", err)
		return nil
	}
	if runNoStart || runDetach {
		client.Close()
		printSnapshot(snap)
		return nil
	}
	if err := watch(client); err != nil {
		common.PrintRuntimeErr(ctx, "run", "watch", err)
	}
	return nil
}

// isScheduleFile reports whether target names an existing file rather
// than a stored schedule ID.
func isScheduleFile(target string) bool {
	info, err := fileSystem.Stat(target)
	return err == nil && !info.IsDir()
}

