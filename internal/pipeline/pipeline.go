// Package pipeline ties discovery, rendering and link checking together for
// one loaded configuration.
package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/uetop/codify-document/internal/config"
	"github.com/uetop/codify-document/internal/docs"
	"github.com/uetop/codify-document/internal/events"
	"github.com/uetop/codify-document/internal/foundation/errors"
	"github.com/uetop/codify-document/internal/gitinfo"
	"github.com/uetop/codify-document/internal/history"
	"github.com/uetop/codify-document/internal/linkcheck"
	"github.com/uetop/codify-document/internal/logfields"
	"github.com/uetop/codify-document/internal/metrics"
	"github.com/uetop/codify-document/internal/render"
	"github.com/uetop/codify-document/internal/retry"
)

// Pipeline runs operations against a configuration.
type Pipeline struct {
	cfg       *config.Config
	recorder  metrics.Recorder
	publisher events.Publisher
	history   *history.Store
	now       func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithPublisher sets the event publisher.
func WithPublisher(pub events.Publisher) Option {
	return func(p *Pipeline) {
		if pub != nil {
			p.publisher = pub
		}
	}
}

// WithHistory records every check run in store.
func WithHistory(store *history.Store) Option {
	return func(p *Pipeline) { p.history = store }
}

// New creates a pipeline for cfg.
func New(cfg *config.Config, options ...Option) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		recorder:  metrics.NoopRecorder{},
		publisher: events.NoopPublisher{},
		now:       time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Config returns the configuration the pipeline runs against.
func (p *Pipeline) Config() *config.Config { return p.cfg }

// Discover walks the docs tree and builds the link index.
func (p *Pipeline) Discover() (*docs.Index, error) {
	d := docs.NewDiscovery(p.cfg.DocsDir(), p.cfg.PublicDir(), p.cfg.Docs.Exclude)
	pages, assets, err := d.Discover()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "page discovery failed").
			WithContext("path", p.cfg.DocsDir()).Build()
	}
	idx, err := docs.NewIndex(p.cfg.Site.Base, pages, assets, p.cfg.PublicDir())
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to index public assets").
			WithContext("path", p.cfg.PublicDir()).Build()
	}
	p.recorder.SetPages(len(pages))
	return idx, nil
}

// LastUpdated resolves per-route commit times for the discovered pages.
func (p *Pipeline) LastUpdated(idx *docs.Index) (map[string]time.Time, error) {
	return gitinfo.LastUpdated(p.cfg.DocsDir(), idx.Pages())
}

// RenderOptions overrides the configured output for one render.
type RenderOptions struct {
	Format          config.OutputFormat
	OutDir          string
	WithLastUpdated bool
}

// RenderReport lists the files a render touched.
type RenderReport struct {
	Config      *render.Result
	LastUpdated *render.Result
}

// Render writes the generator config and, when asked and enabled, the
// last-updated map.
func (p *Pipeline) Render(_ context.Context, opts RenderOptions) (*RenderReport, error) {
	format := p.cfg.Output.Format
	if opts.Format != "" {
		format = opts.Format
	}
	dir := p.cfg.OutputDir()
	if opts.OutDir != "" {
		dir = opts.OutDir
	}

	r := render.New(dir, format).WithRecorder(p.recorder)
	res, err := r.Render(p.cfg.Site)
	if err != nil {
		return nil, err
	}
	report := &RenderReport{Config: res}

	if opts.WithLastUpdated && p.cfg.Site.LastUpdated {
		idx, err := p.Discover()
		if err != nil {
			return nil, err
		}
		times, err := p.LastUpdated(idx)
		if err != nil {
			return nil, err
		}
		if report.LastUpdated, err = r.WriteLastUpdated(times); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// CheckOptions overrides the configured check for one run.
type CheckOptions struct {
	External *bool
	HTMLDir  string
}

// CheckReport is the outcome of one check run.
type CheckReport struct {
	Run    *history.Run
	Result *linkcheck.Result
}

// Check discovers pages, checks links, records the run and publishes a
// completion event.
func (p *Pipeline) Check(ctx context.Context, opts CheckOptions) (*CheckReport, error) {
	run := history.NewRun(p.cfg.Snapshot(), p.now().UTC())
	logger := slog.With(logfields.RunID(run.ID))

	external := p.cfg.Check.External
	if opts.External != nil {
		external = *opts.External
	}
	checker := linkcheck.New(linkcheck.Options{
		External:        external,
		Timeout:         p.cfg.Check.TimeoutDuration(),
		Concurrency:     p.cfg.Check.Concurrency,
		IgnoreDeadLinks: p.cfg.Site.IgnoreDeadLinks,
		Retry:           retry.FromCheck(p.cfg.Check),
	}).WithPublisher(p.publisher).WithRecorder(p.recorder).WithRunID(run.ID)

	idx, err := p.Discover()
	if err != nil {
		return nil, err
	}
	result, err := checker.Check(ctx, p.cfg.Site, idx)
	if err != nil {
		return nil, err
	}

	if opts.HTMLDir != "" {
		htmlDir := opts.HTMLDir
		if !filepath.IsAbs(htmlDir) {
			htmlDir = p.cfg.ResolvePath(htmlDir)
		}
		built, err := checker.CheckHTML(ctx, htmlDir, p.cfg.Site.Base)
		if err != nil {
			return nil, err
		}
		result.Findings = append(result.Findings, built.Findings...)
		result.Checked += built.Checked
	}

	run.Duration = p.now().UTC().Sub(run.StartedAt)
	run.Pages = result.Pages
	run.Errors = result.ErrorCount()
	run.Warnings = result.WarningCount()
	run.Status = history.StatusFor(run.Errors, run.Warnings)

	logger.Info("Check completed",
		logfields.Snapshot(run.Snapshot),
		slog.Int("pages", run.Pages),
		slog.Int("checked", result.Checked),
		slog.Int("errors", run.Errors),
		slog.Int("warnings", run.Warnings),
		logfields.DurationMS(float64(run.Duration.Microseconds())/1000))

	if p.history != nil {
		if err := p.history.Record(ctx, run); err != nil {
			logger.Warn("Failed to record check run", logfields.Error(err))
		}
	}

	completed := &events.RunCompletedEvent{
		RunID:      run.ID,
		Snapshot:   run.Snapshot,
		Pages:      run.Pages,
		Errors:     run.Errors,
		Warnings:   run.Warnings,
		Status:     string(run.Status),
		DurationMS: run.Duration.Milliseconds(),
		Timestamp:  p.now().UTC(),
	}
	if err := p.publisher.PublishRunCompleted(ctx, completed); err != nil {
		logger.Warn("Failed to publish run completed event", logfields.Error(err))
	}

	return &CheckReport{Run: run, Result: result}, nil
}
