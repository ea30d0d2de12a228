package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/flowgen/pkg/adapter"
	"github.com/m-mizutani/flowgen/pkg/usecase/session"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func exportCommand() *cli.Command {
	var (
		cfg    config
		format string
		index  int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "Export format (svg or png)",
			Value:       "svg",
			Destination: &format,
		},
		&cli.IntFlag{
			Name:        "index",
			Aliases:     []string{"n"},
			Usage:       "History entry to export (1 = newest)",
			Value:       1,
			Destination: &index,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, clientFlags(&cfg)...)

	return &cli.Command{
		Name:  "export",
		Usage: "Export a flowchart from history as SVG or PNG",
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
			if index < 1 || index > int64(len(entries)) {
				return goerr.New("no such history entry",
					goerr.V("index", index), goerr.V("entries", len(entries)))
			}

			sink, err := cfg.newSink()
			if err != nil {
				return err
			}

			sess := session.New(session.NewInput{
				Generator: adapter.NewHTTPGenerator(cfg.serverURL),
				Renderer:  cfg.newRenderer(),
				Sink:      sink,
				History:   hist,
			})
			sess.LoadEntry(ctx, entries[index-1])

			var name string
			switch format {
			case "svg":
				name, err = sess.ExportSVG(ctx)
			case "png":
				name, err = sess.ExportPNG(ctx)
			default:
				return goerr.New("unsupported export format", goerr.V("format", format))
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "saved %s\n", name)
			return nil
		},
	}
}
