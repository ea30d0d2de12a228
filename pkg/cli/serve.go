package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/flowgen/pkg/server"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	var (
		cfg  config
		addr string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Aliases:     []string{"a"},
			Usage:       "Listen address",
			Sources:     cli.EnvVars("FLOWGEN_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Run the flowchart generation HTTP server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			file, err := cfg.load()
			if err != nil {
				return err
			}
			logger := cfg.setupLogger()

			if addr == "" {
				addr = file.Addr
			}
			if addr == "" {
				addr = "127.0.0.1:8080"
			}

			handler, err := cfg.newHandler(ctx)
			if err != nil {
				return err
			}

			httpServer := &http.Server{
				Addr:    addr,
				Handler: server.New(handler, logger).Router(),
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- httpServer.ListenAndServe()
			}()

			logger.Info("server started", "addr", addr)

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "server failed")
				}
				return nil

			case <-ctx.Done():
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shut down server")
				}
				return nil
			}
		},
	}
}
