package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/adrg/xdg"
	"github.com/m-mizutani/flowgen/pkg/adapter"
	"github.com/m-mizutani/flowgen/pkg/usecase/generate"
	"github.com/m-mizutani/flowgen/pkg/usecase/history"
	"github.com/m-mizutani/flowgen/pkg/usecase/session"
	"github.com/m-mizutani/flowgen/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// config holds configuration values
type config struct {
	logLevel   string
	configPath string

	// Model service
	geminiAPIKey string
	model        string

	// Client
	serverURL   string
	rendererURL string
	exportDir   string
	storagePath string
}

// fileConfig is the optional YAML config file under the XDG config home.
// Flags and environment variables take precedence over file values.
type fileConfig struct {
	Model       string `yaml:"model"`
	Addr        string `yaml:"addr"`
	RendererURL string `yaml:"renderer_url"`
	ExportDir   string `yaml:"export_dir"`
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("FLOWGEN_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to config file",
			Sources:     cli.EnvVars("FLOWGEN_CONFIG"),
			Destination: &cfg.configPath,
		},
	}
}

// llmFlags returns flags for the model service configuration
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Usage:       "Gemini API key",
			Sources:     cli.EnvVars("GEMINI_API_KEY"),
			Destination: &cfg.geminiAPIKey,
		},
		&cli.StringFlag{
			Name:        "model",
			Usage:       "Gemini model name",
			Sources:     cli.EnvVars("FLOWGEN_MODEL"),
			Destination: &cfg.model,
		},
	}
}

// clientFlags returns flags for client-side commands
func clientFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "server",
			Aliases:     []string{"s"},
			Usage:       "Base URL of a running flowgen server (uses Gemini directly when unset)",
			Sources:     cli.EnvVars("FLOWGEN_SERVER"),
			Destination: &cfg.serverURL,
		},
		&cli.StringFlag{
			Name:        "renderer-url",
			Usage:       "Base URL of the Kroki-compatible render service",
			Sources:     cli.EnvVars("FLOWGEN_RENDERER_URL"),
			Destination: &cfg.rendererURL,
		},
		&cli.StringFlag{
			Name:        "export-dir",
			Aliases:     []string{"o"},
			Usage:       "Directory to save exported diagrams into",
			Sources:     cli.EnvVars("FLOWGEN_EXPORT_DIR"),
			Destination: &cfg.exportDir,
		},
		&cli.StringFlag{
			Name:        "storage-path",
			Usage:       "Path of the history storage file",
			Sources:     cli.EnvVars("FLOWGEN_STORAGE_PATH"),
			Destination: &cfg.storagePath,
		},
	}
}

// load reads the optional config file and fills values not set by flags
// or environment. A missing file is fine; a broken one is an error.
func (cfg *config) load() (*fileConfig, error) {
	path := cfg.configPath
	explicit := path != ""
	if !explicit {
		found, err := xdg.SearchConfigFile("flowgen/config.yml")
		if err != nil {
			return &fileConfig{}, nil
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if explicit {
			return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
		}
		return &fileConfig{}, nil
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse config file", goerr.V("path", path))
	}

	if cfg.model == "" {
		cfg.model = file.Model
	}
	if cfg.rendererURL == "" {
		cfg.rendererURL = file.RendererURL
	}
	if cfg.exportDir == "" {
		cfg.exportDir = file.ExportDir
	}

	return &file, nil
}

// setupLogger configures the process-wide logger from the log level flag
func (cfg *config) setupLogger() *slog.Logger {
	logger := logging.New(cfg.logLevel, os.Stderr)
	logging.SetDefault(logger)
	return logger
}

// newGemini creates the Gemini adapter
func (cfg *config) newGemini(ctx context.Context) (adapter.Gemini, error) {
	if cfg.geminiAPIKey == "" {
		return nil, goerr.New("gemini-api-key is required",
			goerr.T(errTagConfig))
	}

	var opts []adapter.GeminiOption
	if cfg.model != "" {
		opts = append(opts, adapter.WithModel(cfg.model))
	}
	return adapter.NewGemini(ctx, cfg.geminiAPIKey, opts...)
}

// newHandler creates the in-process generation handler
func (cfg *config) newHandler(ctx context.Context) (*generate.Handler, error) {
	gemini, err := cfg.newGemini(ctx)
	if err != nil {
		return nil, err
	}
	return generate.New(gemini), nil
}

// newGenerator picks the remote client when a server URL is configured,
// otherwise the in-process handler
func (cfg *config) newGenerator(ctx context.Context) (session.Generator, error) {
	if cfg.serverURL != "" {
		return adapter.NewHTTPGenerator(cfg.serverURL), nil
	}
	return cfg.newHandler(ctx)
}

// newRenderer creates the render service adapter
func (cfg *config) newRenderer() adapter.Renderer {
	var opts []adapter.RenderOption
	if cfg.rendererURL != "" {
		opts = append(opts, adapter.WithRenderBaseURL(cfg.rendererURL))
	}
	return adapter.NewRenderer(opts...)
}

// newSink creates the export file sink
func (cfg *config) newSink() (adapter.Sink, error) {
	dir := cfg.exportDir
	if dir == "" {
		dir = "."
	}
	return adapter.NewDirSink(dir)
}

// newHistory creates the persistent history store
func (cfg *config) newHistory() (*history.Store, error) {
	if cfg.storagePath != "" {
		return history.New(adapter.OpenFileStorage(cfg.storagePath)), nil
	}

	storage, err := adapter.NewFileStorage()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open history storage")
	}
	return history.New(storage), nil
}

// newSession assembles the full client session
func (cfg *config) newSession(ctx context.Context) (*session.Session, error) {
	generator, err := cfg.newGenerator(ctx)
	if err != nil {
		return nil, err
	}

	sink, err := cfg.newSink()
	if err != nil {
		return nil, err
	}

	hist, err := cfg.newHistory()
	if err != nil {
		return nil, err
	}

	return session.New(session.NewInput{
		Generator: generator,
		Renderer:  cfg.newRenderer(),
		Sink:      sink,
		History:   hist,
	}), nil
}

var errTagConfig = goerr.NewTag("config")
