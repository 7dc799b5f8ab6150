package cmd

const DESCRIPTION = `
tasched runs a schedule of timed tasks one after another. Each task
counts down, raises warnings before it expires and moves on to the
next task when its time is up. A background daemon keeps the run
going; the commands below control it.
`

const HELP_TEMPL = `Usage: {{if .UsageText}}{{.UsageText}}{{else}}{{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}{{if .Commands}} command [command options]{{end}} {{if .ArgsUsage}}{{.ArgsUsage}}{{else}}[arguments...]{{end}}{{end}}
{{.Description}}{{if .VisibleCommands}}
Commands:{{range .VisibleCategories}}{{if .Name}}

{{.Name}}:{{range .VisibleCommands}}
  {{join .Names ", "}}{{"\t"}}{{.Usage}}{{end}}{{else}}{{range .VisibleCommands}}
{{"\t"}}{{index .Names 0}}{{"\t:\t"}}{{.Usage}}{{end}}{{end}}{{end}}{{end}}{{if .VisibleFlags}}

Global Flags:{{range .VisibleFlags}}
  {{.}}{{end}}{{end}}

Use "{{.HelpName}} help <command>" for more information about any command.

`

const CMD_HELP_TEMPL = `{{if .Description}}{{.Description}}{{else}}{{.HelpName}} - {{.Usage}}

{{end}}Usage:
        {{.HelpName}} {{if .UsageText}}{{.UsageText}}{{else}}[arguments...]{{end}}{{if .VisibleFlags}}

Supported Flags:{{range .VisibleFlags}}
  {{.}}{{end}}{{end}}

`

const (
	RunDescription = `The run command loads a schedule into the daemon and starts
it. The schedule is either the ID of a stored schedule or the
path of a schedule JSON file. The live countdown is shown until
the run ends unless --detach is given.

Example:
        tasched run 3f0c2a9e-...
        tasched run --from 2 ./standup.json

`
	AttachDescription = `The attach command shows a live countdown of the current
run. It returns when the run completes or is cancelled, or
on Ctrl+C (the run keeps going in the daemon).

Example:
        tasched attach

`
	HistoryDescription = `The history command lists logged run events, newest
first.

Example:
        tasched history --schedule <id> --limit 20

`
	ScheduleDescription = `The schedule commands create, edit and remove stored
schedules.

Example:
        tasched schedule create "Morning"
        tasched schedule add-task <id> "Standup" 15m --warn 5m,1m
        tasched schedule set-start <id> --cron "0 9 * * 1-5"

`
	TemplateDescription = `The template commands save a schedule as a reusable
template and create new schedules from it.

Example:
        tasched template save "Workshop" <schedule id>
        tasched template apply <template id> "Workshop Friday"

`
)
