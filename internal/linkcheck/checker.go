// Package linkcheck verifies that the links declared in the site record and
// in page bodies point at something that exists.
package linkcheck

import (
	"context"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/uetop/codify-document/internal/docs"
	"github.com/uetop/codify-document/internal/events"
	"github.com/uetop/codify-document/internal/logfields"
	"github.com/uetop/codify-document/internal/markdown"
	"github.com/uetop/codify-document/internal/metrics"
	"github.com/uetop/codify-document/internal/retry"
	"github.com/uetop/codify-document/internal/site"
)

// Origins of findings beyond the site record's own (nav, sidebar, logo).
const (
	OriginPage = "page"
	OriginHTML = "html"
)

// Finding is one broken link.
type Finding struct {
	Origin   string        `json:"origin"`
	Source   string        `json:"source"`
	Text     string        `json:"text,omitempty"`
	Link     string        `json:"link"`
	Status   int           `json:"status,omitempty"`
	Reason   string        `json:"reason"`
	Severity site.Severity `json:"severity"`
}

// Result collects the findings of one check.
type Result struct {
	Findings []Finding     `json:"findings"`
	Pages    int           `json:"pages"`
	Checked  int           `json:"checked"`
	Duration time.Duration `json:"duration"`
}

// HasErrors reports whether any finding is error-severity.
func (r *Result) HasErrors() bool { return r.ErrorCount() > 0 }

// ErrorCount returns the number of error findings.
func (r *Result) ErrorCount() int { return r.count(site.SeverityError) }

// WarningCount returns the number of warning findings.
func (r *Result) WarningCount() int { return r.count(site.SeverityWarning) }

func (r *Result) count(sev site.Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == sev {
			n++
		}
	}
	return n
}

// Options tunes a Checker.
type Options struct {
	External    bool
	Timeout     time.Duration
	Concurrency int
	// IgnoreDeadLinks downgrades broken links to warnings.
	IgnoreDeadLinks bool
	// Retry governs re-probing of transient external failures.
	Retry retry.Policy
}

// Checker runs link checks.
type Checker struct {
	opts      Options
	client    *http.Client
	publisher events.Publisher
	recorder  metrics.Recorder
	runID     string
}

// New creates a checker.
func New(opts Options) *Checker {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Checker{
		opts:      opts,
		client:    newHTTPClient(opts.Timeout),
		publisher: events.NoopPublisher{},
		recorder:  metrics.NoopRecorder{},
	}
}

// WithPublisher sets the broken-link event publisher.
func (c *Checker) WithPublisher(p events.Publisher) *Checker {
	if p != nil {
		c.publisher = p
	}
	return c
}

// WithRecorder sets the metrics recorder.
func (c *Checker) WithRecorder(r metrics.Recorder) *Checker {
	if r != nil {
		c.recorder = r
	}
	return c
}

// WithHTTPClient replaces the client used for external links.
func (c *Checker) WithHTTPClient(client *http.Client) *Checker {
	if client != nil {
		c.client = client
	}
	return c
}

// WithRunID tags published events with a run identifier.
func (c *Checker) WithRunID(id string) *Checker {
	c.runID = id
	return c
}

// target is a link waiting to be verified.
type target struct {
	origin string
	source string
	text   string
	link   string
	asset  bool // must resolve to an asset, not a page
}

// Check verifies the site record links and every page link against idx.
func (c *Checker) Check(ctx context.Context, cfg *site.SiteConfig, idx *docs.Index) (*Result, error) {
	start := time.Now()
	res := &Result{Findings: make([]Finding, 0), Pages: len(idx.Pages())}

	var external []target
	for _, ref := range cfg.Links() {
		t := target{origin: string(ref.Origin), source: ref.Path, text: ref.Text, link: ref.Link, asset: ref.Origin == site.OriginLogo}
		if site.IsExternal(ref.Link) {
			external = append(external, t)
			continue
		}
		res.Checked++
		if reason := resolveInternal(idx, t.link, t.asset); reason != "" {
			res.Findings = append(res.Findings, c.finding(t, 0, reason))
		}
	}

	for _, page := range idx.Pages() {
		for _, l := range page.Links {
			if l.Kind == markdown.LinkKindReferenceDefinition || skipLink(l.Destination) {
				continue
			}
			t := target{origin: OriginPage, source: page.RelativePath, text: l.Text, link: l.Destination, asset: l.Kind == markdown.LinkKindImage}
			if site.IsExternal(l.Destination) {
				external = append(external, t)
				continue
			}
			res.Checked++
			link := resolveRelative(page.Route, l.Destination)
			if reason := resolveInternal(idx, link, t.asset); reason != "" {
				res.Findings = append(res.Findings, c.finding(t, 0, reason))
			}
		}
	}
	c.recorder.IncLinksChecked("internal", res.Checked)

	if c.opts.External {
		found, checked, err := c.checkExternal(ctx, external)
		if err != nil {
			return nil, err
		}
		res.Checked += checked
		res.Findings = append(res.Findings, found...)
	}

	res.Duration = time.Since(start)
	c.report(ctx, res)
	c.recorder.SetPages(res.Pages)
	return res, nil
}

func (c *Checker) finding(t target, status int, reason string) Finding {
	sev := site.SeverityError
	if c.opts.IgnoreDeadLinks {
		sev = site.SeverityWarning
	}
	return Finding{
		Origin:   t.origin,
		Source:   t.source,
		Text:     t.text,
		Link:     t.link,
		Status:   status,
		Reason:   reason,
		Severity: sev,
	}
}

// report logs findings, publishes events and updates metrics.
func (c *Checker) report(ctx context.Context, res *Result) {
	for _, f := range res.Findings {
		c.recorder.IncBrokenLinks(f.Origin, 1)
		slog.Warn("Broken link",
			logfields.Origin(f.Origin),
			logfields.Link(f.Link),
			logfields.Path(f.Source),
			slog.String("reason", f.Reason),
			slog.String("severity", f.Severity.String()))

		ev := &events.BrokenLinkEvent{
			RunID:     c.runID,
			Link:      f.Link,
			Origin:    f.Origin,
			Source:    f.Source,
			Text:      f.Text,
			Status:    f.Status,
			Error:     f.Reason,
			Severity:  f.Severity.String(),
			Timestamp: time.Now().UTC(),
		}
		if err := c.publisher.PublishBrokenLink(ctx, ev); err != nil {
			slog.Warn("Failed to publish broken link event", logfields.Link(f.Link), logfields.Error(err))
		}
	}
	c.recorder.ObserveCheckDuration(res.Duration)
}

// resolveInternal returns a reason when link does not resolve, "" otherwise.
func resolveInternal(idx *docs.Index, link string, asset bool) string {
	if strings.TrimSpace(link) == "" {
		return "empty link"
	}
	if asset {
		if idx.HasAsset(link) {
			return ""
		}
		return "no such asset"
	}
	if idx.HasRoute(link) || idx.HasAsset(link) {
		return ""
	}
	return "no page for route"
}

// resolveRelative resolves a page-relative link against the page's route.
func resolveRelative(route, link string) string {
	if strings.HasPrefix(link, "/") {
		return link
	}
	suffix := ""
	if i := strings.IndexAny(link, "?#"); i >= 0 {
		link, suffix = link[:i], link[i:]
	}
	if link == "" {
		return route + suffix
	}
	dir := route
	if !strings.HasSuffix(dir, "/") {
		dir = path.Dir(dir)
	}
	resolved := path.Join(dir, link)
	if strings.HasSuffix(link, "/") && !strings.HasSuffix(resolved, "/") {
		resolved += "/"
	}
	return resolved + suffix
}

// skipLink reports links that are never checked.
func skipLink(link string) bool {
	switch {
	case link == "", strings.HasPrefix(link, "#"):
		return true
	case strings.HasPrefix(link, "mailto:"), strings.HasPrefix(link, "tel:"):
		return true
	case strings.HasPrefix(link, "javascript:"), strings.HasPrefix(link, "data:"):
		return true
	}
	return false
}
