package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/uetop/codify-document/internal/foundation/errors"
	"github.com/uetop/codify-document/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" help:"Number of runs to show" default:"10"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if cfg.History.Path == "" {
		return errors.ConfigError("run history is disabled (set history.path)").Build()
	}
	store, err := history.Open(cfg.ResolvePath(cfg.History.Path))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.Recent(g.ctx(), h.Limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "STARTED\tSTATUS\tPAGES\tERRORS\tWARNINGS\tDURATION\tID")
	for _, r := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			r.StartedAt.Format(time.RFC3339), r.Status, r.Pages, r.Errors, r.Warnings,
			r.Duration.Round(time.Millisecond), r.ID)
	}
	return w.Flush()
}
