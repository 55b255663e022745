package commands

import (
	"encoding/json"
	"fmt"

	"github.com/uetop/codify-document/internal/foundation/errors"
	"github.com/uetop/codify-document/internal/metrics"
	"github.com/uetop/codify-document/internal/pipeline"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	External *bool  `help:"Probe external links over HTTP; defaults to check.external" negatable:""`
	HTML     string `name:"html" help:"Also scan a built site directory for broken href/src targets" type:"path"`
	Format   string `short:"f" help:"Report format (text, json)" enum:"text,json" default:"text"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	res, err := openResources(cfg)
	if err != nil {
		return err
	}
	defer res.Close()

	report, err := res.pipeline(cfg, metrics.NoopRecorder{}).Check(g.ctx(), pipeline.CheckOptions{
		External: c.External,
		HTMLDir:  c.HTML,
	})
	if err != nil {
		return err
	}

	out := g.out()
	result := report.Result
	if c.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{"run": report.Run, "result": result}); err != nil {
			return err
		}
	} else {
		for _, f := range result.Findings {
			_, _ = fmt.Fprintf(out, "%-7s %-7s %s -> %s: %s\n", f.Severity, f.Origin, f.Source, f.Link, f.Reason)
		}
		_, _ = fmt.Fprintf(out, "%d page(s), %d link(s) checked, %d error(s), %d warning(s)\n",
			result.Pages, result.Checked, result.ErrorCount(), result.WarningCount())
	}

	if result.HasErrors() {
		return errors.ValidationError("broken links found").
			WithContext("errors", result.ErrorCount()).
			WithContext("run_id", report.Run.ID).Build()
	}
	return nil
}
