package linkcheck

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/uetop/codify-document/internal/foundation/errors"
	"github.com/uetop/codify-document/internal/site"
)

// HTMLLink is a link attribute found in a built page.
type HTMLLink struct {
	URL  string
	Text string
	Tag  string
}

// linkAttrs maps elements to the attribute carrying their target.
var linkAttrs = map[string]string{
	"a":      "href",
	"link":   "href",
	"img":    "src",
	"script": "src",
	"source": "src",
	"video":  "src",
	"audio":  "src",
}

// ExtractHTMLLinks parses HTML and returns every link attribute.
func ExtractHTMLLinks(r io.Reader) ([]HTMLLink, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to parse HTML").Build()
	}

	var links []HTMLLink
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if attr, ok := linkAttrs[n.Data]; ok {
				if v := getAttr(n, attr); v != "" {
					text := getAttr(n, "alt")
					if n.Data == "a" {
						text = extractText(n)
					}
					links = append(links, HTMLLink{URL: v, Text: text, Tag: n.Data})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		text.WriteString(extractText(c))
	}
	return strings.TrimSpace(text.String())
}

// CheckHTML scans a built site directory and verifies that every internal
// href/src target exists in the output tree. Links under base are mapped
// onto dir.
func (c *Checker) CheckHTML(ctx context.Context, dir, base string) (*Result, error) {
	start := time.Now()
	res := &Result{Findings: make([]Finding, 0)}
	base = "/" + strings.Trim(base, "/") + "/"
	if base == "//" {
		base = "/"
	}

	err := filepath.WalkDir(dir, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(p), ".html") {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		res.Pages++

		// #nosec G304 -- path comes from walking the output directory
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		links, err := ExtractHTMLLinks(f)
		_ = f.Close()
		if err != nil {
			return err
		}

		for _, l := range links {
			if skipLink(l.URL) || site.IsExternal(l.URL) {
				continue
			}
			res.Checked++
			if !existsInOutput(dir, rel, base, l.URL) {
				t := target{origin: OriginHTML, source: rel, text: l.Text, link: l.URL}
				res.Findings = append(res.Findings, c.finding(t, 0, "missing in output"))
			}
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to scan built site").
			WithContext("path", dir).Build()
	}
	c.recorder.IncLinksChecked("html", res.Checked)

	res.Duration = time.Since(start)
	c.report(ctx, res)
	return res, nil
}

// existsInOutput resolves link as the generator serves it: /a, /a.html and
// /a/index.html are all the same page.
func existsInOutput(dir, fromRel, base, link string) bool {
	if i := strings.IndexAny(link, "?#"); i >= 0 {
		link = link[:i]
	}
	if link == "" {
		return true
	}

	var target string
	if strings.HasPrefix(link, "/") {
		if base != "/" {
			if !strings.HasPrefix(link+"/", base) && !strings.HasPrefix(link, base) {
				return false
			}
			link = "/" + strings.TrimPrefix(strings.TrimPrefix(link, strings.TrimSuffix(base, "/")), "/")
		}
		target = link
	} else {
		target = path.Join("/", path.Dir(fromRel), link)
		if strings.HasSuffix(link, "/") {
			target += "/"
		}
	}

	candidates := []string{target}
	if strings.HasSuffix(target, "/") {
		candidates = append(candidates, target+"index.html")
	} else {
		candidates = append(candidates, target+".html", target+"/index.html")
	}
	for _, cand := range candidates {
		info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(cand, "/"))))
		if err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}
