package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tasched/tasched/cmd/common"
	"github.com/tasched/tasched/internal/scheduler"
	"github.com/tasched/tasched/pkg/taschcli"
	"github.com/tasched/tasched/pkg/taschlib"
	"github.com/urfave/cli"
)

var (
	scheduleTasks       cli.StringSlice
	scheduleGap         string
	scheduleManual      bool
	taskWarnings        string
	taskSoundWarning    string
	taskSoundTimeUp     string
	taskSoundBackground string
	startAtFlag         string
	startInFlag         string
	cronFlag            string
	startOff            bool
)

var scheduleCommand = cli.Command{
	Name:               "schedule",
	Aliases:            []string{"sc"},
	Usage:              "manages stored schedules",
	Description:        ScheduleDescription,
	CustomHelpTemplate: CMD_HELP_TEMPL,
	Subcommands: []cli.Command{
		{
			Name:   "list",
			Usage:  "lists stored schedules",
			Action: scheduleList,
		},
		{
			Name:      "show",
			Usage:     "prints the tasks of a schedule",
			ArgsUsage: "<schedule id>",
			Action:    scheduleShow,
		},
		{
			Name:      "create",
			Usage:     "stores a new schedule",
			ArgsUsage: "<name> --task \"Title=15m\" [--task ...]",
			Action:    scheduleCreate,
			Flags: []cli.Flag{
				cli.StringSliceFlag{
					Name:  "task, t",
					Usage: "task as Title=duration (e.g. Standup=15m), repeatable",
					Value: &scheduleTasks,
				},
				cli.StringFlag{
					Name:        "gap, g",
					Usage:       "pause between tasks (e.g. 30s)",
					Destination: &scheduleGap,
				},
				cli.BoolFlag{
					Name:        "manual, m",
					Usage:       "wait for \"tasched advance\" after each task",
					Destination: &scheduleManual,
				},
			},
		},
		{
			Name:      "add-task",
			Usage:     "appends a task to a schedule",
			ArgsUsage: "<schedule id> <title> <duration>",
			Action:    scheduleAddTask,
			Flags:     taskFlags,
		},
		{
			Name:      "remove-task",
			Usage:     "removes a task by its number",
			ArgsUsage: "<schedule id> <task number>",
			Action:    scheduleRemoveTask,
		},
		{
			Name:      "move-task",
			Usage:     "moves a task to another position",
			ArgsUsage: "<schedule id> <from> <to>",
			Action:    scheduleMoveTask,
		},
		{
			Name:      "duplicate-task",
			Usage:     "inserts a copy of a task after it",
			ArgsUsage: "<schedule id> <task number>",
			Action:    scheduleDuplicateTask,
		},
		{
			Name:      "set-start",
			Usage:     "starts a schedule automatically at a time or on a cron schedule",
			ArgsUsage: "<schedule id>",
			Action:    scheduleSetStart,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:        "at",
					Usage:       "start once at local time YYYY-MM-DD HH:MM",
					Destination: &startAtFlag,
				},
				cli.StringFlag{
					Name:        "in",
					Usage:       "start once after a delay (e.g. 2h, 30m)",
					Destination: &startInFlag,
				},
				cli.StringFlag{
					Name:        "cron",
					Usage:       "start repeatedly, 5-field cron expression",
					Destination: &cronFlag,
				},
				cli.BoolFlag{
					Name:        "off",
					Usage:       "turn automatic start off",
					Destination: &startOff,
				},
			},
		},
		{
			Name:      "delete",
			Usage:     "deletes a schedule",
			ArgsUsage: "<schedule id>",
			Action:    scheduleDelete,
		},
		{
			Name:      "import",
			Usage:     "stores a schedule from a JSON file",
			ArgsUsage: "<file>",
			Action:    scheduleImport,
		},
		{
			Name:      "export",
			Usage:     "writes a schedule to a JSON file",
			ArgsUsage: "<schedule id> <file>",
			Action:    scheduleExport,
		},
	},
}

var taskFlags = []cli.Flag{
	cli.StringFlag{
		Name:        "warn, w",
		Usage:       "warning points before the end, comma separated (e.g. 5m,1m); defaults from settings",
		Destination: &taskWarnings,
	},
	cli.StringFlag{
		Name:        "sound-warning",
		Usage:       "sound played on warnings",
		Destination: &taskSoundWarning,
	},
	cli.StringFlag{
		Name:        "sound-timeup",
		Usage:       "sound played when time is up",
		Destination: &taskSoundTimeUp,
	},
	cli.StringFlag{
		Name:        "sound-background",
		Usage:       "background sound while the task runs",
		Destination: &taskSoundBackground,
	},
}

// loadSettings is replaced in tests.
var loadSettings = func() (*taschlib.Settings, error) {
	return taschlib.LoadSettings(fileSystem, taschlib.SettingsPath())
}

// withClient connects, runs fn and reports errors the way every command
// does.
func withClient(ctx *cli.Context, action string, fn func(*taschcli.Client) error) error {
	client, err := connect()
	if err != nil {
		common.PrintRuntimeErr(ctx, ctx.Command.Name, "new_client", err)
		return nil
	}
	defer client.Close()
	if err := fn(client); err != nil {
		common.PrintRuntimeErr(ctx, ctx.Command.Name, action, err)
	}
	return nil
}

// editSchedule fetches a schedule, applies edit and stores the result.
func editSchedule(ctx *cli.Context, id string, edit func(*taschlib.Schedule) error) error {
	return withClient(ctx, "edit", func(c *taschcli.Client) error {
		sc, err := c.GetSchedule(id)
		if err != nil {
			return err
		}
		if err := edit(sc); err != nil {
			return err
		}
		saved, err := c.SaveSchedule(sc)
		if err != nil {
			return err
		}
		fmt.Print(formatSchedule(saved))
		return nil
	})
}

func scheduleList(ctx *cli.Context) error {
	return withClient(ctx, "list", func(c *taschcli.Client) error {
		res, err := c.ListSchedules()
		if err != nil {
			return err
		}
		if len(res.Schedules) == 0 {
			fmt.Println("tasched: no schedules found")
			return nil
		}
		txt := "Here are your schedules:"
		txt += "\n\n" + strings.Repeat("-", 86)
		txt += "\n|Num|\t         Name         |                  ID                  | Tasks |  Length  |"
		txt += "\n|---|-------------------------|--------------------------------------|-------|----------|"
		for i, s := range res.Schedules {
			name := s.Name
			switch n := len(name); {
			case n > 23:
				name = name[:20] + "..."
			case n < 23:
				name = common.Beaut(name, 23)
			}
			txt += fmt.Sprintf("\n| %d | %s | %s | %s | %s |",
				i+1, name, s.ID, common.Beaut(strconv.Itoa(s.TaskCount), 5), taschlib.FormatClock(s.TotalSeconds))
			if start := describeStart(s.AutoStart, s.StartAt, s.Cron); start != "" {
				txt += "  " + start
			}
		}
		txt += "\n" + strings.Repeat("-", 86)
		fmt.Println(txt)
		return nil
	})
}

func scheduleShow(ctx *cli.Context) error {
	args, err := requireArgs(ctx, 1)
	if args == nil {
		return err
	}
	return withClient(ctx, "show", func(c *taschcli.Client) error {
		sc, err := c.GetSchedule(args[0])
		if err != nil {
			return err
		}
		fmt.Print(formatSchedule(sc))
		return nil
	})
}

func scheduleCreate(ctx *cli.Context) error {
	args, err := requireArgs(ctx, 1)
	if args == nil {
		return err
	}
	settings, err := loadSettings()
	if err != nil {
		common.PrintRuntimeErr(ctx, "create", "settings", err)
		return nil
	}
	sc := settings.NewSchedule(args[0])
	if scheduleManual {
		sc.AutoAdvance = false
	}
	if scheduleGap != "" {
		if sc.Gap, err = taschlib.ParseSeconds(scheduleGap); err != nil {
			return common.PrintErrWithCmdHelp(ctx, fmt.Errorf("invalid --gap: %w", err))
		}
	}
	if len(scheduleTasks) == 0 {
		return common.PrintErrWithCmdHelp(ctx, errors.New("at least one --task is required"))
	}
	for _, spec := range scheduleTasks {
		t, err := parseTaskSpec(settings, spec)
		if err != nil {
			return common.PrintErrWithCmdHelp(ctx, err)
		}
		sc.AddTask(t)
	}
	return withClient(ctx, "save", func(c *taschcli.Client) error {
		saved, err := c.SaveSchedule(sc)
		if err != nil {
			return err
		}
		fmt.Print(formatSchedule(saved))
		return nil
	})
}

// parseTaskSpec parses "Title=duration" using the default warnings.
func parseTaskSpec(settings *taschlib.Settings, spec string) (taschlib.Task, error) {
	title, dur, ok := strings.Cut(spec, "=")
	title = strings.TrimSpace(title)
	if !ok || title == "" {
		return taschlib.Task{}, fmt.Errorf("invalid task %q, expected Title=duration", spec)
	}
	secs, err := taschlib.ParseSeconds(dur)
	if err != nil {
		return taschlib.Task{}, fmt.Errorf("invalid duration for %q: %w", title, err)
	}
	return settings.NewTask(title, secs), nil
}

func scheduleAddTask(ctx *cli.Context) error {
	args, err := requireArgs(ctx, 3)
	if args == nil {
		return err
	}
	secs, err := taschlib.ParseSeconds(args[2])
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, fmt.Errorf("invalid duration: %w", err))
	}
	settings, err := loadSettings()
	if err != nil {
		common.PrintRuntimeErr(ctx, "add-task", "settings", err)
		return nil
	}
	t := settings.NewTask(args[1], secs)
	if taskWarnings != "" {
		if t.Warnings, err = parseWarnings(taskWarnings); err != nil {
			return common.PrintErrWithCmdHelp(ctx, err)
		}
	}
	t.Sound = taschlib.SoundProfile{
		Warning:    taskSoundWarning,
		TimeUp:     taskSoundTimeUp,
		Background: taskSoundBackground,
	}
	return editSchedule(ctx, args[0], func(sc *taschlib.Schedule) error {
		sc.AddTask(t)
		return nil
	})
}

// parseWarnings parses a comma separated list of durations.
func parseWarnings(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		secs, err := taschlib.ParseSeconds(part)
		if err != nil {
			return nil, fmt.Errorf("invalid warning %q: %w", part, err)
		}
		out = append(out, secs)
	}
	return out, nil
}

func scheduleRemoveTask(ctx *cli.Context) error {
	args, err := requireArgs(ctx, 2)
	if args == nil {
		return err
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, fmt.Errorf("invalid task number %q", args[1]))
	}
	return editSchedule(ctx, args[0], func(sc *taschlib.Schedule) error {
		t, err := taskAt(sc, n)
		if err != nil {
			return err
		}
		return sc.RemoveTask(t.ID)
	})
}

func scheduleMoveTask(ctx *cli.Context) error {
	args, err := requireArgs(ctx, 3)
	if args == nil {
		return err
	}
	from, err1 := strconv.Atoi(args[1])
	to, err2 := strconv.Atoi(args[2])
	if err1 != nil || err2 != nil {
		return common.PrintErrWithCmdHelp(ctx, errors.New("task positions must be numbers"))
	}
	return editSchedule(ctx, args[0], func(sc *taschlib.Schedule) error {
		return sc.MoveTask(from-1, to-1)
	})
}

func scheduleDuplicateTask(ctx *cli.Context) error {
	args, err := requireArgs(ctx, 2)
	if args == nil {
		return err
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, fmt.Errorf("invalid task number %q", args[1]))
	}
	return editSchedule(ctx, args[0], func(sc *taschlib.Schedule) error {
		t, err := taskAt(sc, n)
		if err != nil {
			return err
		}
		_, err = sc.DuplicateTask(t.ID)
		return err
	})
}

// taskAt returns the task with 1-based number n.
func taskAt(sc *taschlib.Schedule, n int) (taschlib.Task, error) {
	if n < 1 || n > len(sc.Tasks) {
		return taschlib.Task{}, fmt.Errorf("%w: no task number %d", taschlib.ErrTaskNotFound, n)
	}
	return sc.Tasks[n-1], nil
}

func scheduleSetStart(ctx *cli.Context) error {
	args, err := requireArgs(ctx, 1)
	if args == nil {
		return err
	}
	set := 0
	for _, v := range []string{startAtFlag, startInFlag, cronFlag} {
		if v != "" {
			set++
		}
	}
	if startOff && set > 0 || !startOff && set != 1 {
		return common.PrintErrWithCmdHelp(ctx, errors.New("use exactly one of --at, --in, --cron or --off"))
	}
	var at *time.Time
	switch {
	case startAtFlag != "":
		t, err := parseStartAt(startAtFlag)
		if err != nil {
			return common.PrintErrWithCmdHelp(ctx, err)
		}
		if t.Before(time.Now()) {
			return common.PrintErrWithCmdHelp(ctx, errors.New("error: --at is in the past"))
		}
		at = &t
	case startInFlag != "":
		t, err := parseStartIn(startInFlag)
		if err != nil {
			return common.PrintErrWithCmdHelp(ctx, err)
		}
		at = &t
	case cronFlag != "":
		if err := validateCron(cronFlag); err != nil {
			return common.PrintErrWithCmdHelp(ctx, err)
		}
	}
	return editSchedule(ctx, args[0], func(sc *taschlib.Schedule) error {
		sc.AutoStart = !startOff
		sc.StartAt = at
		sc.Cron = cronFlag
		return nil
	})
}

func scheduleDelete(ctx *cli.Context) error {
	args, err := requireArgs(ctx, 1)
	if args == nil {
		return err
	}
	return withClient(ctx, "delete", func(c *taschcli.Client) error {
		if err := c.DeleteSchedule(args[0]); err != nil {
			return err
		}
		fmt.Println("Schedule deleted:", args[0])
		return nil
	})
}

func scheduleImport(ctx *cli.Context) error {
	args, err := requireArgs(ctx, 1)
	if args == nil {
		return err
	}
	sc, err := taschlib.ReadScheduleFile(fileSystem, args[0])
	if err != nil {
		common.PrintRuntimeErr(ctx, "import", "read_file", err)
		return nil
	}
	return withClient(ctx, "save", func(c *taschcli.Client) error {
		saved, err := c.SaveSchedule(sc)
		if err != nil {
			return err
		}
		fmt.Print(formatSchedule(saved))
		return nil
	})
}

func scheduleExport(ctx *cli.Context) error {
	args, err := requireArgs(ctx, 2)
	if args == nil {
		return err
	}
	return withClient(ctx, "export", func(c *taschcli.Client) error {
		sc, err := c.GetSchedule(args[0])
		if err != nil {
			return err
		}
		if err := taschlib.WriteScheduleFile(fileSystem, args[1], sc); err != nil {
			return err
		}
		fmt.Printf("Schedule %q written to %s\n", sc.Name, args[1])
		return nil
	})
}

// requireArgs returns the first n arguments. When some are missing it
// prints the command help and returns nil args.
func requireArgs(ctx *cli.Context, n int) ([]string, error) {
	args := ctx.Args()
	if args.First() == "help" {
		return nil, cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if len(args) < n {
		return nil, common.PrintErrWithCmdHelp(ctx, fmt.Errorf("expected %d argument(s), got %d", n, len(args)))
	}
	return args[:n], nil
}

func formatSchedule(sc *taschlib.Schedule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Schedule\t: %s\nID\t\t: %s\n", sc.Name, sc.ID)
	advance := "automatic"
	if !sc.AutoAdvance {
		advance = "manual"
	}
	fmt.Fprintf(&b, "Advance\t\t: %s", advance)
	if sc.Gap > 0 {
		fmt.Fprintf(&b, ", %s gap", taschlib.FormatDuration(sc.Gap, true))
	}
	fmt.Fprintf(&b, "\nLength\t\t: %s\n", taschlib.FormatClock(int(sc.TotalDuration()/time.Second)))
	if start := describeStart(sc.AutoStart, sc.StartAt, sc.Cron); start != "" {
		fmt.Fprintf(&b, "Start\t\t: %s\n", start)
	}
	for i, t := range sc.Tasks {
		fmt.Fprintf(&b, "  %2d. %-24s %s", i+1, t.Title, taschlib.FormatClock(t.Duration))
		if th := t.Thresholds(); len(th) > 0 {
			w := make([]string, len(th))
			for j, s := range th {
				w[j] = taschlib.FormatDuration(s, true)
			}
			fmt.Fprintf(&b, "  warn: %s", strings.Join(w, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func describeStart(auto bool, at *time.Time, cron string) string {
	if !auto {
		return ""
	}
	switch {
	case at != nil && cron != "":
		return fmt.Sprintf("at %s, then %q", at.Local().Format(startAtLayout), cron)
	case at != nil:
		return "at " + at.Local().Format(startAtLayout)
	case cron != "":
		return fmt.Sprintf("cron %q", cron)
	}
	return ""
}

const startAtLayout = "2006-01-02 15:04"

func parseStartAt(value string) (time.Time, error) {
	t, err := time.ParseInLocation(startAtLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("error: invalid --at format, expected YYYY-MM-DD HH:MM")
	}
	return t, nil
}

// parseStartIn resolves a Go duration such as "2h" or "1h30m" against
// now. Days are not supported; use 24h.
func parseStartIn(value string) (time.Time, error) {
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return time.Time{}, fmt.Errorf("error: invalid --in duration, expected format like 2h, 30m, or 1h30m")
	}
	return time.Now().Add(d), nil
}

// validateCron accepts 5-field expressions only; the scheduler would also
// take a seconds field.
func validateCron(expr string) error {
	if len(strings.Fields(expr)) != 5 {
		return fmt.Errorf("error: invalid cron expression %q, expected 5-field format (minute hour day-of-month month day-of-week)", expr)
	}
	return scheduler.ValidateCron(expr)
}
