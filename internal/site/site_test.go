package site

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefault_LanguageGroup(t *testing.T) {
	cfg := Default()

	groups := cfg.FindNav("Language")
	require.Len(t, groups, 1)
	require.True(t, groups[0].IsGroup())
	require.Len(t, groups[0].Items, 2)
	assert.Equal(t, "en", groups[0].Items[0].Text)
	assert.Equal(t, "zh", groups[0].Items[1].Text)
}

func TestDefault_Metadata(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "/codify-api/", cfg.Base)
	assert.Equal(t, "en-US", cfg.Lang)
	assert.Equal(t, "Codify", cfg.Title)
	assert.True(t, cfg.LastUpdated)
	assert.True(t, cfg.IgnoreDeadLinks)
	assert.Equal(t, SearchLocal, cfg.ThemeConfig.Search.Provider)
	require.NotNil(t, cfg.ThemeConfig.Logo)
	assert.Equal(t, Logo{Src: "/images/logo.svg", Width: 24, Height: 24}, *cfg.ThemeConfig.Logo)

	var sections []string
	for _, s := range cfg.ThemeConfig.Sidebar {
		sections = append(sections, s.Text)
	}
	assert.Equal(t, []string{"Introduction", "Started", "Configuration", "Support", "Resource"}, sections)
}

func TestDefault_IsValid(t *testing.T) {
	report := Default().Validate()
	assert.Empty(t, report.Issues)
	assert.NoError(t, report.Err())
}

func TestDefault_ReturnsFreshCopy(t *testing.T) {
	a := Default()
	a.ThemeConfig.Nav[0].Text = "changed"
	a.ThemeConfig.Logo.Width = 99

	b := Default()
	assert.Equal(t, "Change log", b.ThemeConfig.Nav[0].Text)
	assert.Equal(t, 24, b.ThemeConfig.Logo.Width)
}

func TestJSONRoundTrip(t *testing.T) {
	original := Default()

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded SiteConfig
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, original.Equal(&decoded), "round trip changed the record")
	assert.Equal(t, original.ThemeConfig.Sidebar[2].Items[4].Link, decoded.ThemeConfig.Sidebar[2].Items[4].Link)
}

func TestYAMLRoundTrip(t *testing.T) {
	original := Default()

	data, err := yaml.Marshal(original)
	require.NoError(t, err)

	var decoded SiteConfig
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.True(t, original.Equal(&decoded))
}

func TestJSONUsesGeneratorKeys(t *testing.T) {
	data, err := json.Marshal(Default())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"base", "lang", "title", "description", "lastUpdated", "ignoreDeadLinks", "themeConfig"} {
		assert.Contains(t, raw, key)
	}
	theme, ok := raw["themeConfig"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"logo", "search", "nav", "sidebar"} {
		assert.Contains(t, theme, key)
	}

	nav := theme["nav"].([]any)
	first := nav[0].(map[string]any)
	assert.NotContains(t, first, "items", "leaf entries must not carry an items key")
}

func TestEqual_DetectsOrderChange(t *testing.T) {
	a := Default()
	b := Default()
	b.ThemeConfig.Sidebar[1].Items[0], b.ThemeConfig.Sidebar[1].Items[1] =
		b.ThemeConfig.Sidebar[1].Items[1], b.ThemeConfig.Sidebar[1].Items[0]

	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(Default()))
}

func TestLinks(t *testing.T) {
	links := Default().Links()

	require.Len(t, links, 21)
	assert.Equal(t, LinkRef{Path: "themeConfig.nav[0].link", Origin: OriginNav, Text: "Change log", Link: "/changelog"}, links[0])
	assert.Equal(t, "themeConfig.nav[3].items[1].link", links[4].Path)
	assert.Equal(t, "http://zh-doc.codify-api.com", links[4].Link)
	assert.Equal(t, OriginSidebar, links[5].Origin)
	assert.Equal(t, "/guide/intro", links[5].Link)
	assert.Equal(t, OriginLogo, links[len(links)-1].Origin)
}

func TestIsExternal(t *testing.T) {
	assert.True(t, IsExternal("https://codify.fun"))
	assert.True(t, IsExternal("HTTP://doc.codify-api.com"))
	assert.True(t, IsExternal("mailto:team@codify.fun"))
	assert.False(t, IsExternal("/guide/intro"))
	assert.False(t, IsExternal("./install.md"))
}

func TestRoundTrip_KeepsEmptyGroup(t *testing.T) {
	original := Default()
	original.ThemeConfig.Nav = append(original.ThemeConfig.Nav, NavItem{Text: "Empty", Items: []NavItem{}})
	want := original.Validate()
	require.Len(t, want.Issues, 1)
	require.Equal(t, "nav-group-items", want.Issues[0].Rule)

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), `{"text":"Empty","items":[]}`)
	assert.Contains(t, string(data), `{"text":"Guide","link":"/guide/intro"}`, "leaves carry no items key")
	var fromJSON SiteConfig
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.True(t, original.Equal(&fromJSON))
	assert.Equal(t, want.Issues, fromJSON.Validate().Issues)

	data, err = yaml.Marshal(original)
	require.NoError(t, err)
	var fromYAML SiteConfig
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	assert.True(t, original.Equal(&fromYAML))
	assert.Equal(t, want.Issues, fromYAML.Validate().Issues)
}

func TestEqual_DistinguishesGroupFromLeaf(t *testing.T) {
	a := Default()
	b := Default()
	a.ThemeConfig.Nav[0].Items = []NavItem{}
	assert.False(t, a.Equal(b))
}
