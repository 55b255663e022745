// Package watch re-renders and re-checks the site when the configuration
// file or the docs tree changes.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/uetop/codify-document/internal/foundation/errors"
	"github.com/uetop/codify-document/internal/logfields"
)

// Change describes what was touched during one debounce window.
type Change struct {
	Config bool
	Docs   bool
}

// FileWatcher watches the config file and the docs tree and reports
// debounced changes.
type FileWatcher struct {
	configPath string
	docsDir    string
	debounce   time.Duration
	onChange   func(context.Context, Change)

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	pending Change
	timer   *time.Timer
}

// NewFileWatcher creates a watcher. onChange runs on its own goroutine after
// debounce has elapsed without further events.
func NewFileWatcher(configPath, docsDir string, debounce time.Duration, onChange func(context.Context, Change)) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to create file watcher").Build()
	}
	absConfig, err := filepath.Abs(configPath)
	if err != nil {
		_ = w.Close()
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve config path").Build()
	}
	absDocs, err := filepath.Abs(docsDir)
	if err != nil {
		_ = w.Close()
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve docs path").Build()
	}
	return &FileWatcher{
		configPath: absConfig,
		docsDir:    absDocs,
		debounce:   debounce,
		onChange:   onChange,
		watcher:    w,
	}, nil
}

// Run registers the watches and processes events until ctx is done.
func (fw *FileWatcher) Run(ctx context.Context) error {
	defer func() { _ = fw.watcher.Close() }()

	// The directory is more reliable than the file: editors replace files on save.
	configDir := filepath.Dir(fw.configPath)
	if err := fw.watcher.Add(configDir); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to watch config directory").
			WithContext("path", configDir).Build()
	}
	if err := fw.addTree(fw.docsDir); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to watch docs directory").
			WithContext("path", fw.docsDir).Build()
	}
	slog.Info("Watching for changes", logfields.Config(fw.configPath), logfields.Path(fw.docsDir))

	for {
		select {
		case <-ctx.Done():
			fw.mu.Lock()
			if fw.timer != nil {
				fw.timer.Stop()
			}
			fw.mu.Unlock()
			return nil
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			fw.handle(ctx, event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", logfields.Error(err))
		}
	}
}

func (fw *FileWatcher) handle(ctx context.Context, event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	name := filepath.Clean(event.Name)

	switch {
	case name == fw.configPath:
		if event.Op.Has(fsnotify.Remove) {
			slog.Warn("Config file removed", logfields.Config(name))
			return
		}
		slog.Debug("Config change detected", logfields.Config(name), slog.String("op", event.Op.String()))
		fw.schedule(ctx, Change{Config: true})
	case fw.inDocs(name):
		if hidden(strings.TrimPrefix(name, fw.docsDir)) {
			return
		}
		if event.Op.Has(fsnotify.Create) {
			// New directories need their own watch.
			if err := fw.addTree(name); err != nil {
				slog.Debug("Could not watch new path", logfields.Path(name), logfields.Error(err))
			}
		}
		slog.Debug("Docs change detected", logfields.Path(name), slog.String("op", event.Op.String()))
		fw.schedule(ctx, Change{Docs: true})
	}
}

// schedule merges c into the pending change and restarts the debounce timer.
func (fw *FileWatcher) schedule(ctx context.Context, c Change) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	fw.pending.Config = fw.pending.Config || c.Config
	fw.pending.Docs = fw.pending.Docs || c.Docs
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.debounce, func() {
		fw.mu.Lock()
		change := fw.pending
		fw.pending = Change{}
		fw.mu.Unlock()
		if ctx.Err() == nil {
			fw.onChange(ctx, change)
		}
	})
}

func (fw *FileWatcher) inDocs(name string) bool {
	return name == fw.docsDir || strings.HasPrefix(name, fw.docsDir+string(filepath.Separator))
}

// addTree watches dir and every non-hidden directory below it.
func (fw *FileWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if p != dir && (strings.HasPrefix(entry.Name(), ".") || entry.Name() == "node_modules") {
			return filepath.SkipDir
		}
		return fw.watcher.Add(p)
	})
}

// hidden reports whether any segment of rel starts with a dot.
func hidden(rel string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}
