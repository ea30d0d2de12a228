package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "flowgen",
		Usage: "Turn natural language process descriptions into mermaid flowcharts",
		Commands: []*cli.Command{
			serveCommand(),
			generateCommand(),
			replCommand(),
			historyCommand(),
			exportCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
