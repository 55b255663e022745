package linkcheck

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/uetop/codify-document/internal/logfields"
	"github.com/uetop/codify-document/internal/version"
)

const maxRedirects = 10

func newHTTPClient(timeout time.Duration) *http.Client {
	// Respects HTTP_PROXY, HTTPS_PROXY and NO_PROXY.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
}

type probe struct {
	status int
	err    error
}

// checkExternal probes every distinct http(s) URL once with bounded
// concurrency and reports a finding for each target of a broken URL.
func (c *Checker) checkExternal(ctx context.Context, targets []target) ([]Finding, int, error) {
	byURL := make(map[string][]target)
	for _, t := range targets {
		u := t.link
		if strings.HasPrefix(u, "//") {
			u = "https:" + u
		}
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			continue
		}
		byURL[u] = append(byURL[u], t)
	}
	urls := make([]string, 0, len(byURL))
	for u := range byURL {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	results := make(map[string]probe, len(urls))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, c.opts.Concurrency)

	for _, u := range urls {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, 0, ctx.Err()
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			defer func() { <-sem }()
			status, err := c.probe(ctx, u)
			mu.Lock()
			results[u] = probe{status: status, err: err}
			mu.Unlock()
		}(u)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	c.recorder.IncLinksChecked("external", len(urls))

	findings := make([]Finding, 0)
	for _, u := range urls {
		r := results[u]
		if r.err == nil {
			continue
		}
		for _, t := range byURL[u] {
			findings = append(findings, c.finding(t, r.status, r.err.Error()))
		}
	}
	return findings, len(urls), nil
}

// probe checks url, re-probing transient failures under the retry policy.
func (c *Checker) probe(ctx context.Context, url string) (int, error) {
	var status int
	var err error
	retryErr := c.opts.Retry.Do(ctx, func(attempt int) bool {
		if attempt > 0 {
			slog.Debug("Retrying external link", logfields.Link(url), slog.Int("attempt", attempt))
		}
		status, err = c.probeOnce(ctx, url)
		return !transient(status, err)
	})
	if retryErr != nil {
		return 0, retryErr
	}
	return status, err
}

// probeOnce issues HEAD, falling back to GET for servers that reject HEAD.
func (c *Checker) probeOnce(ctx context.Context, url string) (int, error) {
	status, err := c.request(ctx, http.MethodHead, url)
	if status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented {
		slog.Debug("HEAD rejected, retrying with GET", logfields.Link(url), slog.Int("status", status))
		status, err = c.request(ctx, http.MethodGet, url)
	}
	return status, err
}

// transient reports failures worth another attempt: transport errors,
// rate limiting and server errors.
func transient(status int, err error) bool {
	if err == nil {
		return false
	}
	return status == 0 || status == http.StatusTooManyRequests || (status >= 500 && status != http.StatusNotImplemented)
}

func (c *Checker) request(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, fmt.Errorf("invalid request: %w", err)
	}
	req.Header.Set("User-Agent", "codify-docs-linkcheck/"+version.Version)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	// The resource exists but needs credentials.
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return resp.StatusCode, nil
	}
	if resp.StatusCode >= 400 {
		return resp.StatusCode, fmt.Errorf("HTTP %s", resp.Status)
	}
	return resp.StatusCode, nil
}
