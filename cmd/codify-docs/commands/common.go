package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/uetop/codify-document/internal/config"
	"github.com/uetop/codify-document/internal/events"
	"github.com/uetop/codify-document/internal/history"
	"github.com/uetop/codify-document/internal/logfields"
	"github.com/uetop/codify-document/internal/metrics"
	"github.com/uetop/codify-document/internal/pipeline"
)

// Global carries state shared by every command.
type Global struct {
	Out     io.Writer
	Context context.Context
}

func (g *Global) ctx() context.Context {
	if g == nil || g.Context == nil {
		return context.Background()
	}
	return g.Context
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition and global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"codify-docs.yaml" type:"path"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log output format (text, json)" enum:"text,json" default:"text"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Init     InitCmd     `cmd:"" help:"Write an example configuration file"`
	Validate ValidateCmd `cmd:"" help:"Validate the configuration and report every issue"`
	Render   RenderCmd   `cmd:"" help:"Write the generator config file"`
	Check    CheckCmd    `cmd:"" help:"Check nav, sidebar, logo and page links"`
	Pages    PagesCmd    `cmd:"" help:"List discovered pages with their routes"`
	Watch    WatchCmd    `cmd:"" help:"Re-render and re-check on every change"`
	History  HistoryCmd  `cmd:"" help:"Show recent check runs"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(newLogger(c.LogFormat, level))
	return nil
}

func newLogger(format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == string(config.LogFormatJSON) {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// loadConfig loads the configuration and, unless -v was given, applies its
// logging settings.
func loadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	applyLogging(root, cfg)
	return cfg, nil
}

func applyLogging(root *CLI, cfg *config.Config) {
	if root.Verbose {
		return
	}
	format := root.LogFormat
	if cfg.Monitoring.Logging.Format != "" && root.LogFormat == "text" {
		format = string(cfg.Monitoring.Logging.Format)
	}
	slog.SetDefault(newLogger(format, cfg.Monitoring.Logging.Level.SlogLevel()))
}

// resources holds the optional history store and event publisher.
type resources struct {
	history   *history.Store
	publisher events.Publisher
}

func openResources(cfg *config.Config) (*resources, error) {
	res := &resources{publisher: events.NoopPublisher{}}
	if p := cfg.History.Path; p != "" {
		store, err := history.Open(cfg.ResolvePath(p))
		if err != nil {
			return nil, err
		}
		res.history = store
	}
	if cfg.Events.NATSURL != "" {
		pub, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.Subject)
		if err != nil {
			// Events are best effort; checks still run.
			slog.Warn("Event publishing disabled", logfields.Error(err))
		} else {
			res.publisher = pub
		}
	}
	return res, nil
}

func (r *resources) pipeline(cfg *config.Config, recorder metrics.Recorder) *pipeline.Pipeline {
	opts := []pipeline.Option{pipeline.WithPublisher(r.publisher), pipeline.WithRecorder(recorder)}
	if r.history != nil {
		opts = append(opts, pipeline.WithHistory(r.history))
	}
	return pipeline.New(cfg, opts...)
}

func (r *resources) Close() {
	if err := r.publisher.Close(); err != nil {
		slog.Warn("Failed to close event publisher", logfields.Error(err))
	}
	if r.history != nil {
		if err := r.history.Close(); err != nil {
			slog.Warn("Failed to close history store", logfields.Error(err))
		}
	}
}
