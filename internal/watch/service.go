package watch

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/uetop/codify-document/internal/config"
	"github.com/uetop/codify-document/internal/logfields"
	"github.com/uetop/codify-document/internal/pipeline"
)

// Builder creates the pipeline for a freshly loaded configuration.
type Builder func(cfg *config.Config) *pipeline.Pipeline

// Service keeps the generator config and link report current.
type Service struct {
	configPath string
	build      Builder

	mu       sync.Mutex
	pipeline *pipeline.Pipeline
	snapshot string
	watched  settings
	restart  context.CancelFunc
}

// settings are the configuration values the watchers are built from.
type settings struct {
	docsDir  string
	debounce time.Duration
	interval time.Duration
}

func settingsFor(cfg *config.Config) settings {
	return settings{
		docsDir:  cfg.DocsDir(),
		debounce: cfg.Watch.DebounceDuration(),
		interval: cfg.Watch.IntervalDuration(),
	}
}

// NewService creates a watch service for the configuration at configPath.
// cfg is the already loaded configuration.
func NewService(configPath string, cfg *config.Config, build Builder) *Service {
	return &Service{configPath: configPath, build: build, pipeline: build(cfg)}
}

// Run renders and checks once, then follows changes until ctx is done.
// Watchers are rebuilt whenever a reload moves the docs directory or changes
// the debounce or interval.
func (s *Service) Run(ctx context.Context) error {
	if err := s.render(ctx); err != nil {
		return err
	}
	s.check(ctx)

	for {
		if err := s.follow(ctx); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
		slog.Info("Watch settings changed, restarting watchers", logfields.Path(s.current().Config().DocsDir()))
	}
}

// follow runs the file watcher and the periodic check for the current
// settings until ctx is done or restartIfMoved cancels them.
func (s *Service) follow(ctx context.Context) error {
	current := settingsFor(s.current().Config())
	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.watched = current
	s.restart = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.restart = nil
		s.mu.Unlock()
	}()

	if current.interval > 0 {
		sched, err := NewScheduler()
		if err != nil {
			return err
		}
		if _, err := sched.Every(current.interval, "periodic-check", func() { s.check(sessionCtx) }); err != nil {
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				slog.Warn("Scheduler shutdown failed", logfields.Error(err))
			}
		}()
		slog.Info("Periodic check scheduled", slog.Duration("interval", current.interval))
	}

	fw, err := NewFileWatcher(s.configPath, current.docsDir, current.debounce, s.OnChange)
	if err != nil {
		return err
	}
	return fw.Run(sessionCtx)
}

// OnChange reacts to one debounced change: a config change reloads and
// re-renders when the snapshot moved; every change re-checks.
func (s *Service) OnChange(ctx context.Context, change Change) {
	if change.Config {
		if !s.reload() {
			return
		}
		if err := s.render(ctx); err != nil {
			slog.Error("Render failed", logfields.Error(err))
		}
	}
	s.check(ctx)
	if change.Config {
		s.restartIfMoved()
	}
}

// restartIfMoved ends the running watchers when the reloaded configuration
// needs different ones; Run then starts them again.
func (s *Service) restartIfMoved() {
	next := settingsFor(s.current().Config())
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.restart == nil || next == s.watched {
		return
	}
	s.restart()
}

// reload loads the configuration again. On failure the previous one stays
// active. It reports whether the new configuration was taken.
func (s *Service) reload() bool {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		slog.Error("Config reload failed, keeping previous configuration",
			logfields.Config(s.configPath), logfields.Error(err))
		return false
	}
	if info, err := os.Stat(cfg.DocsDir()); err != nil || !info.IsDir() {
		slog.Error("Docs directory not found, keeping previous configuration",
			logfields.Config(s.configPath), logfields.Path(cfg.DocsDir()))
		return false
	}
	s.mu.Lock()
	s.pipeline = s.build(cfg)
	s.mu.Unlock()
	slog.Info("Configuration reloaded", logfields.Config(s.configPath), logfields.Snapshot(cfg.Snapshot()))
	return true
}

// render writes the generator config unless the snapshot is unchanged.
func (s *Service) render(ctx context.Context) error {
	p := s.current()
	snap := p.Config().Snapshot()

	s.mu.Lock()
	unchanged := snap == s.snapshot
	s.mu.Unlock()
	if unchanged {
		slog.Debug("Config snapshot unchanged, skipping render", logfields.Snapshot(snap))
		return nil
	}

	if _, err := p.Render(ctx, pipeline.RenderOptions{WithLastUpdated: true}); err != nil {
		return err
	}
	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
	return nil
}

func (s *Service) check(ctx context.Context) {
	if _, err := s.current().Check(ctx, pipeline.CheckOptions{}); err != nil && ctx.Err() == nil {
		slog.Error("Check failed", logfields.Error(err))
	}
}

func (s *Service) current() *pipeline.Pipeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pipeline
}
