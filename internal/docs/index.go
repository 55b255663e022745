package docs

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Index answers whether a link target exists in the site.
type Index struct {
	base   string
	pages  []Page
	routes map[string]int
	assets map[string]struct{}
}

// NewIndex builds an index from discovered pages and source assets. Files
// under publicDir are added as assets served from the site root.
func NewIndex(base string, pages []Page, assets []string, publicDir string) (*Index, error) {
	idx := &Index{
		base:   normalizeBase(base),
		pages:  pages,
		routes: make(map[string]int, len(pages)),
		assets: make(map[string]struct{}, len(assets)),
	}
	for i, p := range pages {
		idx.routes[p.Route] = i
	}
	for _, a := range assets {
		idx.assets[a] = struct{}{}
	}

	if publicDir == "" {
		return idx, nil
	}
	if _, err := os.Stat(publicDir); os.IsNotExist(err) {
		return idx, nil
	}
	err := filepath.WalkDir(publicDir, func(p string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return err
		}
		rel, err := filepath.Rel(publicDir, p)
		if err != nil {
			return err
		}
		idx.assets["/"+filepath.ToSlash(rel)] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// Pages returns the indexed pages in route order.
func (i *Index) Pages() []Page { return i.pages }

// Page returns the page served at the link target, if any.
func (i *Index) Page(link string) (*Page, bool) {
	target := i.stripBase(cleanTarget(link))
	for _, candidate := range routeCandidates(target) {
		if n, ok := i.routes[candidate]; ok {
			return &i.pages[n], true
		}
	}
	return nil, false
}

// HasRoute reports whether link resolves to a page. The site base, a .md or
// .html suffix, the query and the fragment are ignored.
func (i *Index) HasRoute(link string) bool {
	_, ok := i.Page(link)
	return ok
}

// HasAsset reports whether link resolves to a public or source asset.
func (i *Index) HasAsset(link string) bool {
	target := i.stripBase(cleanTarget(link))
	_, ok := i.assets[target]
	return ok
}

func (i *Index) stripBase(target string) string {
	if i.base != "/" && strings.HasPrefix(target, i.base) {
		return "/" + strings.TrimPrefix(target, i.base)
	}
	if i.base != "/" && target+"/" == i.base {
		return "/"
	}
	return target
}

// cleanTarget drops query and fragment and ensures a leading slash.
func cleanTarget(link string) string {
	if j := strings.IndexAny(link, "?#"); j >= 0 {
		link = link[:j]
	}
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return link
}

func routeCandidates(target string) []string {
	trimmed := target
	for _, ext := range []string{".md", ".html"} {
		trimmed = strings.TrimSuffix(trimmed, ext)
	}
	if strings.HasSuffix(trimmed, "/index") {
		trimmed = strings.TrimSuffix(trimmed, "index")
	}
	candidates := []string{trimmed}
	if !strings.HasSuffix(trimmed, "/") {
		candidates = append(candidates, trimmed+"/")
	} else if trimmed != "/" {
		candidates = append(candidates, strings.TrimSuffix(trimmed, "/"))
	}
	return candidates
}

func normalizeBase(base string) string {
	if base == "" {
		return "/"
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}
