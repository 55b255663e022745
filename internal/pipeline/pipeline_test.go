package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uetop/codify-document/internal/config"
	"github.com/uetop/codify-document/internal/events"
	"github.com/uetop/codify-document/internal/history"
)

const testConfig = `version: "1"
site:
  base: /codify-api/
  lang: en-US
  title: Codify
  ignoreDeadLinks: false
  themeConfig:
    logo:
      src: /images/logo.svg
    nav:
      - text: Guide
        link: /guide/intro
    sidebar:
      - text: Started
        items:
          - text: Intro
            link: /guide/intro
          - text: Install
            link: /guide/install
docs:
  dir: docs
`

type capturePublisher struct {
	events.NoopPublisher
	mu        sync.Mutex
	broken    int
	completed []*events.RunCompletedEvent
}

func (c *capturePublisher) PublishBrokenLink(context.Context, *events.BrokenLinkEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.broken++
	return nil
}

func (c *capturePublisher) PublishRunCompleted(_ context.Context, ev *events.RunCompletedEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completed = append(c.completed, ev)
	return nil
}

func setup(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"codify-docs.yaml":            testConfig,
		"docs/index.md":               "# Home\n\n[Intro](./guide/intro.md)\n",
		"docs/guide/intro.md":         "---\ntitle: What is Codify\n---\nBody\n",
		"docs/public/images/logo.svg": "<svg/>",
	}
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	cfg, err := config.Load(filepath.Join(root, "codify-docs.yaml"))
	require.NoError(t, err)
	return cfg
}

func TestDiscover(t *testing.T) {
	cfg := setup(t)
	idx, err := New(cfg).Discover()
	require.NoError(t, err)

	require.Len(t, idx.Pages(), 2)
	assert.True(t, idx.HasRoute("/guide/intro"))
	assert.True(t, idx.HasAsset("/images/logo.svg"))
}

func TestRender(t *testing.T) {
	cfg := setup(t)
	p := New(cfg)

	report, err := p.Render(t.Context(), RenderOptions{})
	require.NoError(t, err)
	assert.True(t, report.Config.Changed)
	assert.Equal(t, filepath.Join(cfg.OutputDir(), "config.mts"), report.Config.Path)
	assert.Nil(t, report.LastUpdated)

	out := t.TempDir()
	report, err = p.Render(t.Context(), RenderOptions{Format: config.OutputJSON, OutDir: out})
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(out, "config.json"))
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "/codify-api/", decoded["base"])
}

func TestRender_LastUpdatedDisabledInSite(t *testing.T) {
	cfg := setup(t)
	cfg.Site.LastUpdated = false

	report, err := New(cfg).Render(t.Context(), RenderOptions{WithLastUpdated: true})
	require.NoError(t, err)
	assert.Nil(t, report.LastUpdated)
}

func TestCheck_RecordsAndPublishes(t *testing.T) {
	cfg := setup(t)
	store, err := history.Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	pub := &capturePublisher{}

	report, err := New(cfg, WithHistory(store), WithPublisher(pub)).Check(t.Context(), CheckOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Run.Pages)
	assert.Equal(t, 1, report.Run.Errors, "the install sidebar link has no page")
	assert.Equal(t, history.StatusFailed, report.Run.Status)
	assert.Equal(t, cfg.Snapshot(), report.Run.Snapshot)
	require.Len(t, report.Result.Findings, 1)
	assert.Equal(t, "/guide/install", report.Result.Findings[0].Link)

	runs, err := store.Recent(t.Context(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, report.Run.ID, runs[0].ID)

	assert.Equal(t, 1, pub.broken)
	require.Len(t, pub.completed, 1)
	assert.Equal(t, report.Run.ID, pub.completed[0].RunID)
	assert.Equal(t, "failed", pub.completed[0].Status)
}

func TestCheck_WithHTMLDir(t *testing.T) {
	cfg := setup(t)
	cfg.Site.IgnoreDeadLinks = true

	built := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(built, "index.html"),
		[]byte(`<a href="/codify-api/guide/intro">Intro</a><a href="/codify-api/gone">Gone</a>`), 0o600))

	report, err := New(cfg).Check(t.Context(), CheckOptions{HTMLDir: built})
	require.NoError(t, err)

	var links []string
	for _, f := range report.Result.Findings {
		links = append(links, f.Link)
	}
	assert.Equal(t, "/guide/install,/codify-api/guide/intro,/codify-api/gone", strings.Join(links, ","))
	assert.Equal(t, 0, report.Run.Errors)
	assert.Equal(t, 3, report.Run.Warnings)
	assert.Equal(t, history.StatusWarnings, report.Run.Status)
}
