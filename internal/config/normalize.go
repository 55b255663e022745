package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/uetop/codify-document/internal/foundation/errors"
	"github.com/uetop/codify-document/internal/foundation/normalization"
	"github.com/uetop/codify-document/internal/site"
)

// NormalizationResult captures adjustments & warnings from normalization pass.
type NormalizationResult struct{ Warnings []string }

var searchProviderNormalizer = normalization.NewNormalizer(map[string]site.SearchProvider{
	"local":   site.SearchLocal,
	"algolia": site.SearchAlgolia,
}, site.SearchLocal)

// NormalizeConfig canonicalizes enumerations and loosely written values before
// defaults are applied. It mutates c in place. Values it cannot interpret are left
// untouched for validation to report, except tool enums which fall back to defaults.
func NormalizeConfig(c *Config) (*NormalizationResult, error) {
	if c == nil {
		return nil, errors.InternalError("config nil").Build()
	}
	res := &NormalizationResult{}
	if c.Site != nil {
		normalizeSite(c.Site, res)
	}
	normalizeOutput(&c.Output, res)
	normalizeLogging(&c.Monitoring.Logging, res)
	normalizeRetry(&c.Check, res)
	if c.Check.Concurrency < 0 {
		res.Warnings = append(res.Warnings, warnChanged("check.concurrency", c.Check.Concurrency, 0))
		c.Check.Concurrency = 0
	}
	return res, nil
}

func normalizeSite(s *site.SiteConfig, res *NormalizationResult) {
	if base := strings.TrimSpace(s.Base); base != "" {
		fixed := base
		if !strings.HasPrefix(fixed, "/") {
			fixed = "/" + fixed
		}
		if !strings.HasSuffix(fixed, "/") {
			fixed += "/"
		}
		if fixed != s.Base {
			res.Warnings = append(res.Warnings, warnChanged("site.base", s.Base, fixed))
			s.Base = fixed
		}
	}

	if raw := strings.TrimSpace(s.Lang); raw != "" {
		if tag, err := language.Parse(raw); err == nil && tag.String() != s.Lang {
			res.Warnings = append(res.Warnings, warnChanged("site.lang", s.Lang, tag.String()))
			s.Lang = tag.String()
		}
	}

	tc := &s.ThemeConfig
	if raw := string(tc.Search.Provider); strings.TrimSpace(raw) != "" {
		if p, ok := searchProviderNormalizer.Lookup(raw); ok && p != tc.Search.Provider {
			res.Warnings = append(res.Warnings, warnChanged("site.themeConfig.search.provider", raw, p))
			tc.Search.Provider = p
		}
	}

	s.Title = strings.TrimSpace(s.Title)
	s.Description = strings.TrimSpace(s.Description)
	for i := range tc.Nav {
		trimNav(&tc.Nav[i])
	}
	for i := range tc.Sidebar {
		tc.Sidebar[i].Text = strings.TrimSpace(tc.Sidebar[i].Text)
		for j := range tc.Sidebar[i].Items {
			trimNav(&tc.Sidebar[i].Items[j])
		}
	}
}

func trimNav(item *site.NavItem) {
	item.Text = strings.TrimSpace(item.Text)
	item.Link = strings.TrimSpace(item.Link)
	for i := range item.Items {
		trimNav(&item.Items[i])
	}
}

func normalizeRetry(c *CheckConfig, res *NormalizationResult) {
	raw := string(c.RetryBackoff)
	if strings.TrimSpace(raw) == "" {
		return
	}
	if m, ok := retryBackoffNormalizer.Lookup(raw); ok {
		if m != c.RetryBackoff {
			res.Warnings = append(res.Warnings, warnChanged("check.retry_backoff", raw, m))
			c.RetryBackoff = m
		}
		return
	}
	res.Warnings = append(res.Warnings, warnUnknown("check.retry_backoff", raw, string(RetryBackoffLinear)))
	c.RetryBackoff = RetryBackoffLinear
}

func normalizeOutput(o *OutputConfig, res *NormalizationResult) {
	raw := string(o.Format)
	if strings.TrimSpace(raw) == "" {
		return
	}
	if f, ok := outputFormatNormalizer.Lookup(raw); ok {
		if f != o.Format {
			res.Warnings = append(res.Warnings, warnChanged("output.format", raw, f))
			o.Format = f
		}
		return
	}
	res.Warnings = append(res.Warnings, warnUnknown("output.format", raw, string(OutputTS)))
	o.Format = OutputTS
}

func normalizeLogging(l *LoggingConfig, res *NormalizationResult) {
	if raw := string(l.Level); strings.TrimSpace(raw) != "" {
		if lvl, ok := logLevelNormalizer.Lookup(raw); !ok {
			res.Warnings = append(res.Warnings, warnUnknown("monitoring.logging.level", raw, string(LogLevelInfo)))
			l.Level = LogLevelInfo
		} else if lvl != l.Level {
			res.Warnings = append(res.Warnings, warnChanged("monitoring.logging.level", raw, lvl))
			l.Level = lvl
		}
	}
	if raw := string(l.Format); strings.TrimSpace(raw) != "" {
		if f, ok := logFormatNormalizer.Lookup(raw); !ok {
			res.Warnings = append(res.Warnings, warnUnknown("monitoring.logging.format", raw, string(LogFormatText)))
			l.Format = LogFormatText
		} else if f != l.Format {
			res.Warnings = append(res.Warnings, warnChanged("monitoring.logging.format", raw, f))
			l.Format = f
		}
	}
}

func warnChanged(field string, from, to any) string {
	return fmt.Sprintf("normalized %s from '%v' to '%v'", field, from, to)
}

func warnUnknown(field, value, def string) string {
	return fmt.Sprintf("unknown %s '%s', defaulting to %s", field, value, def)
}
