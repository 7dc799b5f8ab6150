package cmd

import (
	"fmt"
	"strings"

	"github.com/tasched/tasched/pkg/taschcli"
	"github.com/urfave/cli"
)

var (
	templateDescription string
	templateApplyName   string
)

var templateCommand = cli.Command{
	Name:               "template",
	Aliases:            []string{"tpl"},
	Usage:              "manages schedule templates",
	Description:        TemplateDescription,
	CustomHelpTemplate: CMD_HELP_TEMPL,
	Subcommands: []cli.Command{
		{
			Name:   "list",
			Usage:  "lists saved templates",
			Action: templateList,
		},
		{
			Name:      "save",
			Usage:     "saves a schedule as a template",
			ArgsUsage: "<schedule id> <template name>",
			Action:    templateSave,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:        "description, d",
					Usage:       "short description of the template",
					Destination: &templateDescription,
				},
			},
		},
		{
			Name:      "apply",
			Usage:     "creates a new schedule from a template",
			ArgsUsage: "<template id>",
			Action:    templateApply,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:        "name, n",
					Usage:       "name of the new schedule (default: template name)",
					Destination: &templateApplyName,
				},
			},
		},
		{
			Name:      "delete",
			Usage:     "deletes a template",
			ArgsUsage: "<template id>",
			Action:    templateDelete,
		},
	},
}

func templateList(ctx *cli.Context) error {
	return withClient(ctx, "list", func(c *taschcli.Client) error {
		res, err := c.ListTemplates()
		if err != nil {
			return err
		}
		if len(res.Templates) == 0 {
			fmt.Println("tasched: no templates found")
			return nil
		}
		var b strings.Builder
		b.WriteString("Here are your templates:\n\n")
		for i, t := range res.Templates {
			fmt.Fprintf(&b, "%2d. %s  [%s]  %d task(s)", i+1, t.Name, t.ID, t.TaskCount)
			if t.Description != "" {
				fmt.Fprintf(&b, "\n    %s", t.Description)
			}
			b.WriteString("\n")
		}
		fmt.Print(b.String())
		return nil
	})
}

func templateSave(ctx *cli.Context) error {
	args, err := requireArgs(ctx, 2)
	if args == nil {
		return err
	}
	return withClient(ctx, "save", func(c *taschcli.Client) error {
		t, err := c.SaveTemplate(args[1], templateDescription, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Template %q saved with ID %s\n", t.Name, t.ID)
		return nil
	})
}

func templateApply(ctx *cli.Context) error {
	args, err := requireArgs(ctx, 1)
	if args == nil {
		return err
	}
	return withClient(ctx, "apply", func(c *taschcli.Client) error {
		sc, err := c.ApplyTemplate(args[0], templateApplyName)
		if err != nil {
			return err
		}
		fmt.Print(formatSchedule(sc))
		return nil
	})
}

func templateDelete(ctx *cli.Context) error {
	args, err := requireArgs(ctx, 1)
	if args == nil {
		return err
	}
	return withClient(ctx, "delete", func(c *taschcli.Client) error {
		if err := c.DeleteTemplate(args[0]); err != nil {
			return err
		}
		fmt.Println("Template deleted:", args[0])
		return nil
	})
}
