package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/tasched/tasched/common"
	"github.com/tasched/tasched/pkg/taschcli"
	"github.com/urfave/cli"
)

var (
	historySchedule string
	historyLimit    int
)

var historyFlags = []cli.Flag{
	cli.StringFlag{
		Name:        "schedule, s",
		Usage:       "only show events of this schedule id",
		Destination: &historySchedule,
	},
	cli.IntFlag{
		Name:        "limit, l",
		Usage:       "maximum number of events",
		Value:       50,
		Destination: &historyLimit,
	},
}

func history(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	return withClient(ctx, "history", func(c *taschcli.Client) error {
		res, err := c.History(historySchedule, historyLimit)
		if err != nil {
			return err
		}
		printHistory(os.Stdout, res.Entries)
		return nil
	})
}

func printHistory(out io.Writer, entries []*common.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "tasched: no history recorded")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tRUN\tSCHEDULE\tEVENT")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.RunID, e.ScheduleName, e.EventType)
	}
	w.Flush()
}
