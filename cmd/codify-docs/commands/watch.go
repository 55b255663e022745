package commands

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/uetop/codify-document/internal/config"
	"github.com/uetop/codify-document/internal/foundation/errors"
	"github.com/uetop/codify-document/internal/logfields"
	"github.com/uetop/codify-document/internal/metrics"
	"github.com/uetop/codify-document/internal/pipeline"
	"github.com/uetop/codify-document/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	MetricsAddr string `name:"metrics-addr" help:"Serve Prometheus metrics on this address; defaults to monitoring.metrics_addr"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	res, err := openResources(cfg)
	if err != nil {
		return err
	}
	defer res.Close()

	ctx := g.ctx()
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	addr := w.MetricsAddr
	if addr == "" {
		addr = cfg.Monitoring.MetricsAddr
	}
	if addr != "" {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		stop, err := serveMetrics(ctx, addr, reg)
		if err != nil {
			return err
		}
		defer stop()
	}

	svc := watch.NewService(root.Config, cfg, func(c *config.Config) *pipeline.Pipeline {
		return res.pipeline(c, recorder)
	})
	slog.Info("Watch mode started; press Ctrl+C to stop")
	if err := svc.Run(ctx); err != nil {
		return err
	}
	slog.Info("Watch mode stopped")
	return nil
}

func serveMetrics(ctx context.Context, addr string, reg *prom.Registry) (func(), error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	select {
	case err := <-errCh:
		return nil, errors.WrapError(err, errors.CategoryRuntime, "metrics server failed to start").
			WithContext("addr", addr).Build()
	case <-time.After(100 * time.Millisecond):
	}
	slog.Info("Serving metrics", slog.String("addr", addr))

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Metrics server shutdown failed", logfields.Error(err))
		}
	}, nil
}
