package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/robmazan/CodeAnalyzer/config"
)

// InitConfigCmd returns the init-config command.
func InitConfigCmd() *cli.Command {
	return &cli.Command{
		Name:  "init-config",
		Usage: "Write a configuration file with default values",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Configuration file to write",
				Value:   ".codeanalyzer.json",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing file",
			},
		},
		Action: initConfigAction,
	}
}

func initConfigAction(c *cli.Context) error {
	path := c.String("output")
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.SaveConfig(config.DefaultConfig(), path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	color.New(color.FgGreen).Fprintf(c.App.Writer, "Wrote %s\n", path)
	return nil
}
