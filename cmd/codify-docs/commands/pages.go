package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/uetop/codify-document/internal/pipeline"
)

// PagesCmd implements the 'pages' command.
type PagesCmd struct{}

func (p *PagesCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	pl := pipeline.New(cfg)
	idx, err := pl.Discover()
	if err != nil {
		return err
	}

	var times map[string]time.Time
	if cfg.Site.LastUpdated {
		if times, err = pl.LastUpdated(idx); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ROUTE\tTITLE\tFILE\tLAST UPDATED")
	for _, page := range idx.Pages() {
		updated := "-"
		if t, ok := times[page.Route]; ok {
			updated = t.UTC().Format(time.RFC3339)
		}
		title := page.Title
		if title == "" {
			title = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", page.Route, title, page.RelativePath, updated)
	}
	return w.Flush()
}
