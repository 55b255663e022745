package gitinfo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uetop/codify-document/internal/docs"
)

func commitFile(t *testing.T, repo *git.Repository, root, rel, content string, when time.Time) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Add(rel)
	require.NoError(t, err)

	sig := &object.Signature{Name: "Test User", Email: "test@example.com", When: when}
	_, err = w.Commit("update "+rel, &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)
}

func TestLastUpdated(t *testing.T) {
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)

	t1 := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 2, 20, 9, 0, 0, 0, time.UTC)
	commitFile(t, repo, root, "docs/index.md", "# Home\n", t1)
	commitFile(t, repo, root, "docs/guide/intro.md", "# Intro\n", t1)
	commitFile(t, repo, root, "docs/guide/intro.md", "# Intro v2\n", t2)

	docsDir := filepath.Join(root, "docs")
	untracked := filepath.Join(docsDir, "draft.md")
	require.NoError(t, os.WriteFile(untracked, []byte("# Draft\n"), 0o600))

	pages := []docs.Page{
		{Path: filepath.Join(docsDir, "index.md"), Route: "/"},
		{Path: filepath.Join(docsDir, "guide", "intro.md"), Route: "/guide/intro"},
		{Path: untracked, Route: "/draft"},
	}
	times, err := LastUpdated(docsDir, pages)
	require.NoError(t, err)

	require.Len(t, times, 2)
	assert.True(t, times["/"].Equal(t1))
	assert.True(t, times["/guide/intro"].Equal(t2))
	_, ok := times["/draft"]
	assert.False(t, ok)
}

func TestLastUpdated_NotARepository(t *testing.T) {
	dir := t.TempDir()
	times, err := LastUpdated(dir, []docs.Page{{Path: filepath.Join(dir, "index.md"), Route: "/"}})
	require.NoError(t, err)
	assert.Empty(t, times)
}

func TestFileTime_EmptyRepository(t *testing.T) {
	root := t.TempDir()
	_, err := git.PlainInit(root, false)
	require.NoError(t, err)

	repo, err := Open(root)
	require.NoError(t, err)
	require.NotNil(t, repo)

	_, ok, err := repo.FileTime(filepath.Join(root, "index.md"))
	require.NoError(t, err)
	assert.False(t, ok)
}
