package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/m-mizutani/flowgen/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func generateCommand() *cli.Command {
	var (
		cfg       config
		exportSVG bool
		exportPNG bool
	)

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "svg",
			Usage:       "Export the result as an SVG file",
			Destination: &exportSVG,
		},
		&cli.BoolFlag{
			Name:        "png",
			Usage:       "Export the result as a PNG file",
			Destination: &exportPNG,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, clientFlags(&cfg)...)

	return &cli.Command{
		Name:      "generate",
		Usage:     "Generate a flowchart from a process description",
		ArgsUsage: "<description (reads stdin when omitted)>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if _, err := cfg.load(); err != nil {
				return err
			}
			cfg.setupLogger()

			text := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(text) == "" {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return goerr.Wrap(err, "failed to read description from stdin")
				}
				text = string(data)
			}

			sess, err := cfg.newSession(ctx)
			if err != nil {
				return err
			}

			if err := sess.Submit(ctx, text); err != nil {
				return goerr.Wrap(err, model.UserMessage(err))
			}

			if sess.RenderFallback() {
				fmt.Fprintln(os.Stderr, model.MsgRenderFallback)
			}
			fmt.Fprintln(c.Root().Writer, sess.Description())

			if exportSVG {
				if name, err := sess.ExportSVG(ctx); err != nil {
					fmt.Fprintln(os.Stderr, model.MsgExportSVGFailed)
				} else {
					fmt.Fprintf(os.Stderr, "saved %s\n", name)
				}
			}
			if exportPNG {
				if name, err := sess.ExportPNG(ctx); err != nil {
					fmt.Fprintln(os.Stderr, model.MsgExportPNGFailed)
				} else {
					fmt.Fprintf(os.Stderr, "saved %s\n", name)
				}
			}

			return nil
		},
	}
}
