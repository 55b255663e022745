package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "codify_docs"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	checkDuration prom.Histogram
	linksChecked  *prom.CounterVec
	brokenLinks   *prom.CounterVec
	renders       *prom.CounterVec
	pages         prom.Gauge
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil registry gets a fresh private one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		checkDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "check_duration_seconds",
			Help:      "Duration of a full link check run",
			Buckets:   prom.DefBuckets,
		}),
		linksChecked: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "links_checked_total",
			Help:      "Links checked by kind (internal, external, asset)",
		}, []string{"kind"}),
		brokenLinks: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "broken_links_total",
			Help:      "Broken links found by origin (nav, sidebar, logo, page, html)",
		}, []string{"origin"}),
		renders: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "render_total",
			Help:      "Generator config renders by result",
		}, []string{"result"}),
		pages: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "pages",
			Help:      "Markdown pages discovered in the last run",
		}),
	}
	reg.MustRegister(pr.checkDuration, pr.linksChecked, pr.brokenLinks, pr.renders, pr.pages)
	return pr
}

func (p *PrometheusRecorder) ObserveCheckDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.checkDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncLinksChecked(kind string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.linksChecked.WithLabelValues(kind).Add(float64(n))
}

func (p *PrometheusRecorder) IncBrokenLinks(origin string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.brokenLinks.WithLabelValues(origin).Add(float64(n))
}

func (p *PrometheusRecorder) IncRender(result ResultLabel) {
	if p == nil {
		return
	}
	p.renders.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) SetPages(n int) {
	if p == nil {
		return
	}
	p.pages.Set(float64(n))
}
