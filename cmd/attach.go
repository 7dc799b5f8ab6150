package cmd

import (
	"fmt"
	"os"
	"time"

	cmdCommon "github.com/tasched/tasched/cmd/common"
	"github.com/tasched/tasched/common"
	"github.com/tasched/tasched/pkg/taschcli"
	"github.com/tasched/tasched/pkg/taschlib"
	"github.com/urfave/cli"
)

const countdownRefresh = 100 * time.Millisecond

func attach(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := connect()
	if err != nil {
		cmdCommon.PrintRuntimeErr(ctx, "attach", "new_client", err)
		return nil
	}
	if err := watch(client); err != nil {
		cmdCommon.PrintRuntimeErr(ctx, "attach", "watch", err)
	}
	return nil
}

// watch attaches client to the run and draws the countdown until the run
// ends. An idle or finished run prints its status and returns.
func watch(client *taschcli.Client) error {
	cd := NewCountdown(os.Stdout, countdownRefresh)
	client.AddHandler(common.UPDATE_EVENT, taschcli.NewEventHandler(cd.Handle))
	snap, err := client.Attach()
	if err != nil {
		client.Close()
		return err
	}
	if !snap.State.Active() && snap.State != taschlib.StateReady {
		client.Close()
		printSnapshot(snap)
		return nil
	}
	fmt.Printf(">> %s << (%d tasks)\n", snap.ScheduleName, snap.TaskCount)
	cd.Show(snap)
	cd.Start()
	err = client.Listen()
	cd.Wait()
	return err
}
