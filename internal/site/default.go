package site

// DefaultBase is the path prefix the Codify docs are served under.
const DefaultBase = "/codify-api/"

// Default returns a fresh copy of the Codify documentation site configuration.
func Default() *SiteConfig {
	return &SiteConfig{
		Base:            DefaultBase,
		Lang:            "en-US",
		Title:           "Codify",
		Description:     "Deliver your design draft as code",
		LastUpdated:     true,
		IgnoreDeadLinks: true,
		ThemeConfig: ThemeConfig{
			Logo:   &Logo{Src: "/images/logo.svg", Width: 24, Height: 24},
			Search: Search{Provider: SearchLocal},
			Nav: []NavItem{
				{Text: "Change log", Link: "/changelog"},
				{Text: "Guide", Link: "/guide/intro"},
				{Text: "Codify", Link: "https://codify.fun"},
				{
					Text: "Language",
					Items: []NavItem{
						{Text: "en", Link: "http://doc.codify-api.com"},
						{Text: "zh", Link: "http://zh-doc.codify-api.com"},
					},
				},
			},
			Sidebar: []SidebarSection{
				{
					Text: "Introduction",
					Items: []NavItem{
						{Text: "What is Codify", Link: "/guide/intro"},
					},
				},
				{
					Text: "Started",
					Items: []NavItem{
						{Text: "Install", Link: "/guide/install"},
						{Text: "Getting Started", Link: "/guide/getting-started"},
						{Text: "Playground settings", Link: "/guide/playground-setting"},
						{Text: "Custom Properties", Link: "/guide/custom-properties"},
					},
				},
				{
					Text: "Configuration",
					Items: []NavItem{
						{Text: "Feature setting", Link: "/guide/feature-setting"},
						{Text: "Mappings", Link: "/guide/mappings"},
						{Text: "Style parsers", Link: "/guide/style-parsers"},
						{Text: "Render options", Link: "/guide/render-options"},
						{Text: "Component parsers", Link: "/guide/component-parsers"},
					},
				},
				{
					Text: "Support",
					Items: []NavItem{
						{Text: "FAQ", Link: "/guide/faq"},
						{Text: "Creating Components", Link: "/guide/createing-components"},
						{Text: "Design adjustment", Link: "/guide/design-draft-adjustment"},
					},
				},
				{
					Text: "Resource",
					Items: []NavItem{
						{Text: "Uikit", Link: "/guide/uikit"},
						{Text: "Demo", Link: "/guide/demo-project"},
					},
				},
			},
		},
	}
}
