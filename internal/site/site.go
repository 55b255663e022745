// Package site holds the documentation site configuration record consumed by the
// external static-site generator: page metadata, logo, search provider, the top
// navigation bar and the sidebar tree.
//
// Field tags use the generator's own key names so the record serializes directly
// into its config file.
package site

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
)

// SearchProvider selects the generator's search backend.
type SearchProvider string

const (
	SearchLocal   SearchProvider = "local"
	SearchAlgolia SearchProvider = "algolia"
)

// NavItem is a navigation entry. A leaf carries Link; a group carries Items.
type NavItem struct {
	Text  string    `json:"text" yaml:"text"`
	Link  string    `json:"link,omitempty" yaml:"link,omitempty"`
	Items []NavItem `json:"items,omitempty" yaml:"items,omitempty"`
}

// IsGroup reports whether the entry was declared with an items field.
func (n NavItem) IsGroup() bool {
	return n.Items != nil
}

// navGroup always emits items, so an empty group stays a group when decoded.
type navGroup struct {
	Text  string    `json:"text" yaml:"text"`
	Link  string    `json:"link,omitempty" yaml:"link,omitempty"`
	Items []NavItem `json:"items" yaml:"items"`
}

type navLeaf struct {
	Text string `json:"text" yaml:"text"`
	Link string `json:"link,omitempty" yaml:"link,omitempty"`
}

func (n NavItem) encodable() any {
	if n.IsGroup() {
		return navGroup{Text: n.Text, Link: n.Link, Items: n.Items}
	}
	return navLeaf{Text: n.Text, Link: n.Link}
}

// MarshalJSON leaves HTML escaping to the outer encoder.
func (n NavItem) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(n.encodable()); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (n NavItem) MarshalYAML() (any, error) { return n.encodable(), nil }

// SidebarSection is a titled, ordered group of sidebar links.
type SidebarSection struct {
	Text  string    `json:"text" yaml:"text"`
	Items []NavItem `json:"items" yaml:"items"`
}

// Logo references the header logo asset and its intrinsic size.
type Logo struct {
	Src    string `json:"src" yaml:"src"`
	Width  int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height int    `json:"height,omitempty" yaml:"height,omitempty"`
}

// Search selects the search provider.
type Search struct {
	Provider SearchProvider `json:"provider" yaml:"provider"`
}

// ThemeConfig bundles the presentation settings of the default theme.
type ThemeConfig struct {
	Logo    *Logo            `json:"logo,omitempty" yaml:"logo,omitempty"`
	Search  Search           `json:"search" yaml:"search"`
	Nav     []NavItem        `json:"nav" yaml:"nav"`
	Sidebar []SidebarSection `json:"sidebar" yaml:"sidebar"`
}

// SiteConfig is the root record handed to the generator.
type SiteConfig struct {
	Base            string      `json:"base" yaml:"base"`
	Lang            string      `json:"lang" yaml:"lang"`
	Title           string      `json:"title" yaml:"title"`
	Description     string      `json:"description" yaml:"description"`
	LastUpdated     bool        `json:"lastUpdated" yaml:"lastUpdated"`
	IgnoreDeadLinks bool        `json:"ignoreDeadLinks" yaml:"ignoreDeadLinks"`
	ThemeConfig     ThemeConfig `json:"themeConfig" yaml:"themeConfig"`
}

// FindNav returns the top-level nav entries labelled text, in declaration order.
func (c *SiteConfig) FindNav(text string) []NavItem {
	var out []NavItem
	for _, item := range c.ThemeConfig.Nav {
		if item.Text == text {
			out = append(out, item)
		}
	}
	return out
}

// Equal reports whether two records are identical. Groups and leaves never
// compare equal, even when a group has no items.
func (c *SiteConfig) Equal(o *SiteConfig) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.Base != o.Base || c.Lang != o.Lang || c.Title != o.Title || c.Description != o.Description ||
		c.LastUpdated != o.LastUpdated || c.IgnoreDeadLinks != o.IgnoreDeadLinks {
		return false
	}
	a, b := c.ThemeConfig, o.ThemeConfig
	if (a.Logo == nil) != (b.Logo == nil) || (a.Logo != nil && *a.Logo != *b.Logo) {
		return false
	}
	if a.Search != b.Search {
		return false
	}
	if !slices.EqualFunc(a.Nav, b.Nav, navEqual) {
		return false
	}
	return slices.EqualFunc(a.Sidebar, b.Sidebar, func(x, y SidebarSection) bool {
		return x.Text == y.Text && slices.EqualFunc(x.Items, y.Items, navEqual)
	})
}

func navEqual(x, y NavItem) bool {
	return x.Text == y.Text && x.Link == y.Link && x.IsGroup() == y.IsGroup() &&
		slices.EqualFunc(x.Items, y.Items, navEqual)
}

// IsExternal reports whether link points outside the site.
func IsExternal(link string) bool {
	l := strings.ToLower(link)
	for _, prefix := range []string{"http://", "https://", "mailto:", "tel:", "//"} {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}
