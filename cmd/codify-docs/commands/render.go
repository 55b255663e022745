package commands

import (
	"fmt"

	"github.com/uetop/codify-document/internal/config"
	"github.com/uetop/codify-document/internal/pipeline"
)

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	Format          string `short:"f" help:"Output format (ts, json); defaults to output.format"`
	Out             string `short:"o" help:"Output directory; defaults to output.dir" type:"path"`
	WithLastUpdated bool   `name:"with-last-updated" help:"Also write lastUpdated.json from git history"`
}

func (r *RenderCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	opts := pipeline.RenderOptions{OutDir: r.Out, WithLastUpdated: r.WithLastUpdated}
	if r.Format != "" {
		if opts.Format, err = config.ParseOutputFormat(r.Format); err != nil {
			return err
		}
	}

	report, err := pipeline.New(cfg).Render(g.ctx(), opts)
	if err != nil {
		return err
	}
	out := g.out()
	state := "unchanged"
	if report.Config.Changed {
		state = "written"
	}
	_, _ = fmt.Fprintf(out, "%s (%s, %d bytes)\n", report.Config.Path, state, report.Config.Bytes)
	if report.LastUpdated != nil {
		_, _ = fmt.Fprintf(out, "%s (%d bytes)\n", report.LastUpdated.Path, report.LastUpdated.Bytes)
	}
	return nil
}
