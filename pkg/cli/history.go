package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
)

func historyCommand() *cli.Command {
	var cfg config

	flags := append(globalFlags(&cfg), clientFlags(&cfg)...)

	return &cli.Command{
		Name:  "history",
		Usage: "List recently generated flowcharts",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if _, err := cfg.load(); err != nil {
				return err
			}
			cfg.setupLogger()

			hist, err := cfg.newHistory()
			if err != nil {
				return err
			}

			entries := hist.Entries()
			if len(entries) == 0 {
				fmt.Fprintln(c.Root().Writer, "No history yet")
				return nil
			}

			for i, e := range entries {
				fmt.Fprintf(c.Root().Writer, "%d\t%s\t%s\n", i+1,
					time.UnixMilli(e.Timestamp).Format("2006-01-02 15:04:05"),
					e.Input)
			}

			return nil
		},
	}
}
