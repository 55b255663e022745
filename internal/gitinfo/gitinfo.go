// Package gitinfo resolves per-page last-updated times from git history.
package gitinfo

import (
	stderrors "errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/uetop/codify-document/internal/docs"
	"github.com/uetop/codify-document/internal/foundation/errors"
	"github.com/uetop/codify-document/internal/logfields"
)

// Repo is an opened repository containing the docs tree.
type Repo struct {
	repo *git.Repository
	root string
}

// Open finds the repository containing dir. It returns (nil, nil) when dir
// is not inside a repository.
func Open(dir string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if stderrors.Is(err, git.ErrRepositoryNotExists) {
		slog.Debug("Docs directory is not in a git repository", logfields.Path(dir))
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryGit, "failed to open repository").
			WithContext("path", dir).Build()
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryGit, "repository has no worktree").
			WithContext("path", dir).Build()
	}
	return &Repo{repo: repo, root: realPath(wt.Filesystem.Root())}, nil
}

// Root returns the worktree root.
func (r *Repo) Root() string { return r.root }

// FileTime returns the committer time of the newest commit touching path.
// ok is false when the file was never committed.
func (r *Repo) FileTime(path string) (t time.Time, ok bool, err error) {
	rel, err := filepath.Rel(r.root, realPath(path))
	if err != nil || strings.HasPrefix(rel, "..") {
		return time.Time{}, false, nil
	}
	rel = filepath.ToSlash(rel)

	iter, err := r.repo.Log(&git.LogOptions{FileName: &rel})
	if stderrors.Is(err, plumbing.ErrReferenceNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, errors.WrapError(err, errors.CategoryGit, "failed to read history").
			WithContext("path", rel).Build()
	}
	defer iter.Close()

	commit, err := iter.Next()
	if stderrors.Is(err, io.EOF) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, errors.WrapError(err, errors.CategoryGit, "failed to read history").
			WithContext("path", rel).Build()
	}
	return commit.Committer.When, true, nil
}

// LastUpdated maps each page route to its newest commit time. Pages outside
// a repository or never committed are omitted.
func LastUpdated(docsDir string, pages []docs.Page) (map[string]time.Time, error) {
	out := make(map[string]time.Time, len(pages))
	repo, err := Open(docsDir)
	if err != nil || repo == nil {
		return out, err
	}
	for _, p := range pages {
		when, ok, err := repo.FileTime(p.Path)
		if err != nil {
			return nil, err
		}
		if ok {
			out[p.Route] = when
		}
	}
	slog.Debug("Resolved last-updated times", logfields.Path(repo.Root()), slog.Int("pages", len(out)))
	return out, nil
}

func realPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
