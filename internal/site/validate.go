package site

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/uetop/codify-document/internal/foundation/errors"
)

// Severity indicates the importance level of a validation issue.
type Severity int

const (
	SeverityWarning Severity = iota + 1
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Issue is a single structural problem found in the record.
type Issue struct {
	Path     string   `json:"path"`
	Rule     string   `json:"rule"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Report collects the issues of one validation pass.
type Report struct {
	Issues []Issue `json:"issues"`
}

// HasErrors returns true if any error-level issues exist.
func (r *Report) HasErrors() bool {
	return r.ErrorCount() > 0
}

func (r *Report) ErrorCount() int   { return r.count(SeverityError) }
func (r *Report) WarningCount() int { return r.count(SeverityWarning) }

func (r *Report) count(s Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			n++
		}
	}
	return n
}

// Err converts the first error-level issue into a classified validation error.
func (r *Report) Err() error {
	for _, issue := range r.Issues {
		if issue.Severity != SeverityError {
			continue
		}
		return errors.ValidationError(issue.Message).
			WithContext("path", issue.Path).
			WithContext("rule", issue.Rule).
			WithContext("issues", r.ErrorCount()).
			Build()
	}
	return nil
}

func (r *Report) add(sev Severity, path, rule, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Path: path, Rule: rule, Message: fmt.Sprintf(format, args...), Severity: sev})
}

// Validate checks the structural invariants of the record and returns every issue found.
func (c *SiteConfig) Validate() *Report {
	r := &Report{}

	if !strings.HasPrefix(c.Base, "/") || !strings.HasSuffix(c.Base, "/") {
		r.add(SeverityError, "base", "base-slashes", "base %q must start and end with '/'", c.Base)
	}
	if strings.TrimSpace(c.Title) == "" {
		r.add(SeverityError, "title", "title-required", "title must not be empty")
	}
	if _, err := language.Parse(c.Lang); c.Lang == "" || err != nil {
		r.add(SeverityError, "lang", "lang-tag", "lang %q is not a valid BCP 47 tag", c.Lang)
	}

	tc := c.ThemeConfig
	switch tc.Search.Provider {
	case SearchLocal, SearchAlgolia:
	default:
		r.add(SeverityError, "themeConfig.search.provider", "search-provider",
			"unsupported search provider %q", tc.Search.Provider)
	}
	if tc.Logo != nil {
		if tc.Logo.Src == "" {
			r.add(SeverityError, "themeConfig.logo.src", "logo-src", "logo src must not be empty")
		}
		if tc.Logo.Width < 0 || tc.Logo.Height < 0 {
			r.add(SeverityError, "themeConfig.logo", "logo-dimensions",
				"logo dimensions must not be negative (%dx%d)", tc.Logo.Width, tc.Logo.Height)
		}
	}

	for i, item := range tc.Nav {
		validateNavItem(r, fmt.Sprintf("themeConfig.nav[%d]", i), item, 0)
	}

	for i, section := range tc.Sidebar {
		path := fmt.Sprintf("themeConfig.sidebar[%d]", i)
		if strings.TrimSpace(section.Text) == "" {
			r.add(SeverityError, path+".text", "sidebar-text", "sidebar section text must not be empty")
		}
		if len(section.Items) == 0 {
			r.add(SeverityError, path+".items", "sidebar-items", "sidebar section %q has no items", section.Text)
		}
		seen := make(map[string]bool, len(section.Items))
		for j, item := range section.Items {
			itemPath := fmt.Sprintf("%s.items[%d]", path, j)
			validateNavItem(r, itemPath, item, 0)
			if item.Link == "" {
				continue
			}
			if seen[item.Link] {
				r.add(SeverityWarning, itemPath+".link", "sidebar-duplicate-link",
					"link %q appears more than once in section %q", item.Link, section.Text)
			}
			seen[item.Link] = true
		}
	}

	return r
}

// validateNavItem checks leaf/group invariants. Groups may nest one level only.
func validateNavItem(r *Report, path string, item NavItem, depth int) {
	if strings.TrimSpace(item.Text) == "" {
		r.add(SeverityError, path+".text", "nav-text", "entry text must not be empty")
	}
	if !item.IsGroup() {
		if item.Link == "" {
			r.add(SeverityError, path+".link", "nav-leaf-link", "entry %q has no link", item.Text)
		}
		return
	}
	if item.Link != "" {
		r.add(SeverityError, path, "nav-link-and-items", "entry %q has both a link and items", item.Text)
	}
	if len(item.Items) == 0 {
		r.add(SeverityError, path+".items", "nav-group-items", "group %q has no items", item.Text)
	}
	if depth > 0 {
		r.add(SeverityError, path, "nav-depth", "group %q is nested inside another group", item.Text)
		return
	}
	for i, child := range item.Items {
		validateNavItem(r, fmt.Sprintf("%s.items[%d]", path, i), child, depth+1)
	}
}
