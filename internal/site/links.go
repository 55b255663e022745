package site

import "fmt"

// Origin names the part of the record a link was declared in.
type Origin string

const (
	OriginNav     Origin = "nav"
	OriginSidebar Origin = "sidebar"
	OriginLogo    Origin = "logo"
)

// LinkRef is a leaf link together with where it was declared.
type LinkRef struct {
	Path   string // e.g. themeConfig.sidebar[1].items[2].link
	Origin Origin
	Text   string
	Link   string
}

// Links returns every leaf link of the nav bar and sidebar in display order,
// followed by the logo source when one is set.
func (c *SiteConfig) Links() []LinkRef {
	var out []LinkRef
	for i, item := range c.ThemeConfig.Nav {
		out = collectLinks(out, fmt.Sprintf("themeConfig.nav[%d]", i), OriginNav, item)
	}
	for i, section := range c.ThemeConfig.Sidebar {
		for j, item := range section.Items {
			out = collectLinks(out, fmt.Sprintf("themeConfig.sidebar[%d].items[%d]", i, j), OriginSidebar, item)
		}
	}
	if logo := c.ThemeConfig.Logo; logo != nil && logo.Src != "" {
		out = append(out, LinkRef{Path: "themeConfig.logo.src", Origin: OriginLogo, Link: logo.Src})
	}
	return out
}

func collectLinks(out []LinkRef, path string, origin Origin, item NavItem) []LinkRef {
	if item.IsGroup() {
		for i, child := range item.Items {
			out = collectLinks(out, fmt.Sprintf("%s.items[%d]", path, i), origin, child)
		}
		return out
	}
	if item.Link == "" {
		return out
	}
	return append(out, LinkRef{Path: path + ".link", Origin: origin, Text: item.Text, Link: item.Link})
}
