package commands

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"git.home.luguber.info/inful/guidebuilder/internal/build"
	"git.home.luguber.info/inful/guidebuilder/internal/config"
	"git.home.luguber.info/inful/guidebuilder/internal/logfields"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output   string `short:"o" help:"Override output.directory"`
	Clean    bool   `help:"Remove the output directory before rendering"`
	Strategy string `short:"s" help:"Override related.strategy (seeded or first-fit)"`
}

func (b *BuildCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if err := b.apply(cfg); err != nil {
		return err
	}

	rec := newRecorder(cfg)
	ledger, closeLedger, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer closeLedger()

	report, err := build.Run(ctx, cfg, build.WithRecorder(rec), build.WithLedger(ledger))
	writeTextfile(cfg, rec)
	if err != nil {
		return err
	}
	return printBuildReport(g, report)
}

func (b *BuildCmd) apply(cfg *config.Config) error {
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}
	if b.Clean {
		cfg.Output.Clean = true
	}
	return overrideStrategy(cfg, b.Strategy)
}

// overrideStrategy applies a --strategy flag with the same normalization as
// related.strategy in the config file.
func overrideStrategy(cfg *config.Config, raw string) error {
	if raw == "" {
		return nil
	}
	strategy, err := config.NormalizeStrategy(raw)
	if err != nil {
		return err
	}
	slog.Info("Related strategy overridden via CLI flag", logfields.Strategy(strategy))
	cfg.Related.Strategy = strategy
	return nil
}

func printBuildReport(g *Global, report *build.Report) error {
	w := g.out()
	fmt.Fprintf(w, "Built %d pages into %s (%s, %s)\n",
		report.Pages, report.OutputDir, report.Strategy, report.Duration.Round(time.Millisecond))
	counts := report.CategoryCounts()
	for _, c := range slices.Sorted(maps.Keys(counts)) {
		fmt.Fprintf(w, "  %-24s %d\n", c, counts[c])
	}
	if report.SitemapURLs > 0 {
		fmt.Fprintf(w, "Sitemap: %d URLs\n", report.SitemapURLs)
	}
	if report.LandingCopied {
		fmt.Fprintln(w, "Landing page copied")
	}
	_, err := fmt.Fprintf(w, "Build ID: %s\n", report.BuildID)
	return err
}
