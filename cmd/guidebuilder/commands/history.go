package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/guidebuilder/internal/history"
)

// HistoryCmd lists recent runs from the build ledger.
type HistoryCmd struct {
	Limit int  `short:"n" default:"10" help:"Number of runs to show"`
	JSON  bool `name:"json" help:"Print JSON instead of a table"`
}

func (h *HistoryCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if cfg.History.Database == "" {
		return ferrors.ConfigError("build history is disabled").
			WithContext("setting", "history.database").
			Build()
	}
	store, err := history.OpenSQLite(cfg.History.Database)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := history.Recent(ctx, store, h.Limit)
	if err != nil {
		return err
	}

	w := g.out()
	if h.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tSTATUS\tSTARTED\tDURATION\tDETAIL")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(r.BuildID), r.Kind, r.Status,
			r.StartedAt.Local().Format(time.DateTime),
			r.Duration.Round(time.Millisecond), runDetail(r))
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runDetail(r history.BuildSummary) string {
	switch r.Kind {
	case history.KindRefresh:
		return fmt.Sprintf("updated=%d failed=%d", r.Updated, r.Failed)
	case history.KindSeed:
		return fmt.Sprintf("created=%d", r.Created)
	}
	var parts []string
	if r.Strategy != "" {
		parts = append(parts, "strategy="+r.Strategy)
	}
	parts = append(parts, fmt.Sprintf("pages=%d", r.Pages))
	if r.ErrorStage != "" {
		parts = append(parts, fmt.Sprintf("failed at %s: %s", r.ErrorStage, r.ErrorMessage))
	}
	return strings.Join(parts, " ")
}
