package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uetop/codify-document/internal/config"
	"github.com/uetop/codify-document/internal/events"
	"github.com/uetop/codify-document/internal/pipeline"
)

const serviceConfig = `version: "1"
site:
  title: TITLE
  lang: en-US
  themeConfig:
    nav:
      - text: Guide
        link: /guide/intro
docs:
  dir: docs
watch:
  debounce: 50ms
`

type countingPublisher struct {
	events.NoopPublisher
	mu    sync.Mutex
	count int
}

func (c *countingPublisher) PublishRunCompleted(context.Context, *events.RunCompletedEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	return nil
}

func (c *countingPublisher) runs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func newTestService(t *testing.T) (*Service, *countingPublisher, string) {
	t.Helper()
	root := t.TempDir()
	cfgPath := filepath.Join(root, "codify-docs.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(strings.Replace(serviceConfig, "TITLE", "Codify", 1)), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs", "guide"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "guide", "intro.md"), []byte("# Intro\n"), 0o600))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	pub := &countingPublisher{}
	svc := NewService(cfgPath, cfg, func(c *config.Config) *pipeline.Pipeline {
		return pipeline.New(c, pipeline.WithPublisher(pub))
	})
	return svc, pub, cfgPath
}

func readRendered(t *testing.T, svc *Service) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(svc.current().Config().OutputDir(), "config.mts"))
	require.NoError(t, err)
	return string(data)
}

func TestService_OnChange(t *testing.T) {
	svc, pub, cfgPath := newTestService(t)
	ctx := t.Context()

	require.NoError(t, svc.render(ctx))
	assert.Contains(t, readRendered(t, svc), `"title": "Codify"`)

	svc.OnChange(ctx, Change{Docs: true})
	assert.Equal(t, 1, pub.runs())

	require.NoError(t, os.WriteFile(cfgPath, []byte(strings.Replace(serviceConfig, "TITLE", "Codify Docs", 1)), 0o600))
	svc.OnChange(ctx, Change{Config: true})
	assert.Equal(t, 2, pub.runs())
	assert.Contains(t, readRendered(t, svc), `"title": "Codify Docs"`)

	require.NoError(t, os.WriteFile(cfgPath, []byte("version: \"1\"\nsite: [broken\n"), 0o600))
	svc.OnChange(ctx, Change{Config: true})
	assert.Equal(t, 2, pub.runs(), "a failed reload does not run a check")
	assert.Equal(t, "Codify Docs", svc.current().Config().Site.Title)
}

func TestService_RenderSkipsUnchangedSnapshot(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := t.Context()

	require.NoError(t, svc.render(ctx))
	path := filepath.Join(svc.current().Config().OutputDir(), "config.mts")
	require.NoError(t, os.Remove(path))

	require.NoError(t, svc.render(ctx))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "render is skipped while the snapshot is unchanged")
}

func TestService_RunStopsOnCancel(t *testing.T) {
	svc, pub, _ := newTestService(t)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	assert.Eventually(t, func() bool { return pub.runs() >= 1 }, 3*time.Second, 20*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func (s *Service) watchedDocsDir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watched.docsDir
}

func TestService_RunFollowsMovedDocsDir(t *testing.T) {
	svc, pub, cfgPath := newTestService(t)
	root := filepath.Dir(cfgPath)
	oldPage := filepath.Join(root, "docs", "guide", "intro.md")
	newPage := filepath.Join(root, "site", "guide", "intro.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(newPage), 0o750))
	require.NoError(t, os.WriteFile(newPage, []byte("# Intro\n"), 0o600))

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	require.Eventually(t, func() bool { return svc.watchedDocsDir() != "" }, 3*time.Second, 20*time.Millisecond)
	moved := strings.Replace(serviceConfig, "TITLE", "Codify", 1)
	moved = strings.Replace(moved, "dir: docs", "dir: site", 1)
	require.NoError(t, os.WriteFile(cfgPath, []byte(moved), 0o600))

	siteDir := filepath.Join(root, "site")
	require.Eventually(t, func() bool { return svc.watchedDocsDir() == siteDir }, 3*time.Second, 20*time.Millisecond)

	before := pub.runs()
	require.Eventually(t, func() bool {
		// Rewrite until the new watches are registered.
		_ = os.WriteFile(newPage, []byte("# Intro\n\nEdited.\n"), 0o600)
		return pub.runs() > before
	}, 3*time.Second, 150*time.Millisecond, "edits under the new docs dir trigger a check")

	time.Sleep(200 * time.Millisecond)
	before = pub.runs()
	require.NoError(t, os.WriteFile(oldPage, []byte("# Intro\n\nStale.\n"), 0o600))
	assert.Never(t, func() bool { return pub.runs() > before }, 300*time.Millisecond, 20*time.Millisecond,
		"the old docs dir is no longer watched")
}

func TestService_ReloadRejectsMissingDocsDir(t *testing.T) {
	svc, pub, cfgPath := newTestService(t)
	ctx := t.Context()

	moved := strings.Replace(serviceConfig, "TITLE", "Codify", 1)
	moved = strings.Replace(moved, "dir: docs", "dir: nowhere", 1)
	require.NoError(t, os.WriteFile(cfgPath, []byte(moved), 0o600))

	svc.OnChange(ctx, Change{Config: true})
	assert.Equal(t, 0, pub.runs())
	assert.Equal(t, "docs", svc.current().Config().Docs.Dir)
}
