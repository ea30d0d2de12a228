package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/flowgen/pkg/model"
	"github.com/m-mizutani/flowgen/pkg/usecase/session"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func replCommand() *cli.Command {
	var cfg config

	flags := append(globalFlags(&cfg), llmFlags(&cfg)...)
	flags = append(flags, clientFlags(&cfg)...)

	return &cli.Command{
		Name:  "repl",
		Usage: "Interactive flowchart generation session",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if _, err := cfg.load(); err != nil {
				return err
			}
			cfg.setupLogger()

			sess, err := cfg.newSession(ctx)
			if err != nil {
				return err
			}

			rl, err := readline.New("flowgen> ")
			if err != nil {
				return goerr.Wrap(err, "failed to initialize input")
			}
			defer rl.Close()

			fmt.Fprintln(c.Root().Writer, "Describe a process to generate a flowchart.")
			fmt.Fprintln(c.Root().Writer, "Commands: :history, :load <n>, :svg, :png, :quit")

			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					continue
				}
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read input")
				}

				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}

				if strings.HasPrefix(line, ":") {
					if quit := runReplCommand(ctx, c.Root().Writer, sess, line); quit {
						break
					}
					continue
				}

				submit(ctx, c.Root().Writer, sess, line)
			}

			return nil
		},
	}
}

func submit(ctx context.Context, w io.Writer, sess *session.Session, text string) {
	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
		spinner.WithWriter(os.Stderr))
	sp.Suffix = " generating..."
	sp.Start()
	err := sess.Submit(ctx, text)
	sp.Stop()

	if err != nil {
		fmt.Fprintln(w, sess.ErrorMessage())
		return
	}

	if sess.RenderFallback() {
		fmt.Fprintln(w, model.MsgRenderFallback)
	}
	fmt.Fprintln(w, sess.Description())
}

func runReplCommand(ctx context.Context, w io.Writer, sess *session.Session, line string) bool {
	fields := strings.Fields(line)

	switch fields[0] {
	case ":quit", ":exit":
		return true

	case ":history":
		entries := sess.History().Entries()
		if len(entries) == 0 {
			fmt.Fprintln(w, "No history yet")
			return false
		}
		for i, e := range entries {
			fmt.Fprintf(w, "%d\t%s\t%s\n", i+1,
				time.UnixMilli(e.Timestamp).Format("2006-01-02 15:04:05"),
				e.Input)
		}

	case ":load":
		if len(fields) != 2 {
			fmt.Fprintln(w, "Usage: :load <n>")
			return false
		}
		n, err := strconv.Atoi(fields[1])
		entries := sess.History().Entries()
		if err != nil || n < 1 || n > len(entries) {
			fmt.Fprintln(w, "No such history entry")
			return false
		}
		sess.LoadEntry(ctx, entries[n-1])
		if sess.RenderFallback() {
			fmt.Fprintln(w, model.MsgRenderFallback)
		}
		fmt.Fprintln(w, sess.Description())

	case ":svg":
		if name, err := sess.ExportSVG(ctx); err != nil {
			fmt.Fprintln(w, model.MsgExportSVGFailed)
		} else {
			fmt.Fprintf(w, "saved %s\n", name)
		}

	case ":png":
		if name, err := sess.ExportPNG(ctx); err != nil {
			fmt.Fprintln(w, model.MsgExportPNGFailed)
		} else {
			fmt.Fprintf(w, "saved %s\n", name)
		}

	default:
		fmt.Fprintf(w, "Unknown command: %s\n", fields[0])
	}

	return false
}
