package commands

import (
	"encoding/json"
	"fmt"

	"github.com/uetop/codify-document/internal/config"
)

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct {
	Format string `short:"f" help:"Report format (text, json)" enum:"text,json" default:"text"`
}

func (v *ValidateCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Read(root.Config)
	if err != nil {
		return err
	}
	applyLogging(root, cfg)
	if err := config.ValidateSettings(cfg); err != nil {
		return err
	}

	report := cfg.Site.Validate()
	out := g.out()
	if v.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		for _, issue := range report.Issues {
			_, _ = fmt.Fprintf(out, "%-7s %s: %s [%s]\n", issue.Severity, issue.Path, issue.Message, issue.Rule)
		}
		_, _ = fmt.Fprintf(out, "%d error(s), %d warning(s)\n", report.ErrorCount(), report.WarningCount())
	}
	return report.Err()
}
