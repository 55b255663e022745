package docs

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	derrors "github.com/uetop/codify-document/internal/docs/errors"
	"github.com/uetop/codify-document/internal/frontmatter"
	"github.com/uetop/codify-document/internal/logfields"
	"github.com/uetop/codify-document/internal/markdown"
)

// generatorDir holds the generator's own config and cache; it is never content.
const generatorDir = ".vitepress"

// Page is one Markdown source file and the route it is served at.
type Page struct {
	Path         string // Absolute path to the file
	RelativePath string // Slash-separated path relative to the docs directory
	Route        string // Route served by the site, without base
	Title        string // Frontmatter title, else first H1
	Fingerprint  string // Content fingerprint of frontmatter and body
	Links        []markdown.Link
}

// Section returns the first path segment of the route ("" for root pages).
func (p Page) Section() string {
	trimmed := strings.TrimPrefix(p.Route, "/")
	if i := strings.Index(trimmed, "/"); i >= 0 {
		return trimmed[:i]
	}
	return ""
}

// Discovery walks a docs directory.
type Discovery struct {
	root      string
	publicDir string
	exclude   []string
}

// NewDiscovery creates a discovery for root. publicDir is skipped as page
// content; exclude holds slash-separated globs matched against relative paths.
func NewDiscovery(root, publicDir string, exclude []string) *Discovery {
	return &Discovery{root: root, publicDir: publicDir, exclude: exclude}
}

// Discover returns all pages sorted by route, plus source assets (non-Markdown
// files) keyed by their served path.
func (d *Discovery) Discover() ([]Page, []string, error) {
	if info, err := os.Stat(d.root); err != nil || !info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", derrors.ErrDocsDirNotFound, d.root)
	}

	pages := make([]Page, 0)
	assets := make([]string, 0)
	seen := map[string]string{}

	err := filepath.WalkDir(d.root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if entry.IsDir() {
			if d.skipDir(p, entry.Name(), rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(entry.Name(), ".") || d.excluded(rel) {
			return nil
		}

		if !isMarkdownFile(entry.Name()) {
			assets = append(assets, "/"+rel)
			return nil
		}

		page, err := loadPage(p, rel)
		if err != nil {
			return err
		}
		if prev, dup := seen[page.Route]; dup {
			return fmt.Errorf("%w: %s and %s both map to %s", derrors.ErrRouteCollision, prev, rel, page.Route)
		}
		seen[page.Route] = rel
		pages = append(pages, *page)
		slog.Debug("Discovered page", logfields.Page(rel), logfields.Route(page.Route))
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", derrors.ErrDocsDirWalkFailed, err)
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].Route < pages[j].Route })
	sort.Strings(assets)
	slog.Info("Pages discovered", logfields.Path(d.root), slog.Int("pages", len(pages)), slog.Int("assets", len(assets)))
	return pages, assets, nil
}

func (d *Discovery) skipDir(abs, name, rel string) bool {
	if strings.HasPrefix(name, ".") || name == "node_modules" {
		return true
	}
	if d.publicDir != "" && filepath.Clean(abs) == filepath.Clean(d.publicDir) {
		return true
	}
	return d.excluded(rel)
}

func (d *Discovery) excluded(rel string) bool {
	for _, pattern := range d.exclude {
		pattern = strings.TrimSuffix(pattern, "/")
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		if rel == pattern || strings.HasPrefix(rel, pattern+"/") {
			return true
		}
	}
	return false
}

func loadPage(abs, rel string) (*Page, error) {
	// #nosec G304 -- path comes from walking the configured docs directory
	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrFileReadFailed, rel, err)
	}

	header, body, _, err := frontmatter.Split(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrFrontmatterInvalid, rel, err)
	}
	fields, err := frontmatter.Parse(header)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrFrontmatterInvalid, rel, err)
	}
	fp, err := Fingerprint(fields, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrFrontmatterInvalid, rel, err)
	}

	doc := markdown.Analyze(body)
	title := frontmatter.String(fields, "title")
	if title == "" {
		title = doc.Title
	}

	return &Page{
		Path:         abs,
		RelativePath: rel,
		Route:        RouteFor(rel),
		Title:        title,
		Fingerprint:  fp,
		Links:        doc.Links,
	}, nil
}

// RouteFor maps a slash-separated page path to its route:
// guide/intro.md -> /guide/intro, index.md -> /, guide/index.md -> /guide/.
func RouteFor(rel string) string {
	rel = strings.TrimSuffix(filepath.ToSlash(rel), path.Ext(rel))
	if rel == "index" {
		return "/"
	}
	if strings.HasSuffix(rel, "/index") {
		return "/" + strings.TrimSuffix(rel, "index")
	}
	return "/" + rel
}

func isMarkdownFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".markdown"
}
