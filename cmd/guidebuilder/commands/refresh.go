package commands

import (
	"context"
	"fmt"

	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/guidebuilder/internal/page"
	"git.home.luguber.info/inful/guidebuilder/internal/refresh"
	"git.home.luguber.info/inful/guidebuilder/internal/retry"
)

// RefreshCmd regenerates page content through the configured LLM provider.
type RefreshCmd struct {
	Slugs    string `env:"REFRESH_SLUGS" help:"Comma separated slugs to refresh (default: every page)"`
	Provider string `help:"Override refresh.provider (openai or gemini)"`
	Model    string `help:"Override refresh.model"`
}

func (r *RefreshCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if r.Provider != "" {
		cfg.Refresh.Provider = r.Provider
	}
	if r.Model != "" {
		cfg.Refresh.Model = r.Model
	}

	provider, err := refresh.NewProvider(ctx, cfg.Refresh)
	if err != nil {
		return err
	}
	ledger, closeLedger, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer closeLedger()
	rec := newRecorder(cfg)

	refresher := refresh.New(provider, page.NewLoader(cfg.Content.PagesDir, cfg.Content.Exclude),
		refresh.WithRetryPolicy(retry.FromConfig(cfg.Refresh.Retry)),
		refresh.WithRecorder(rec),
		refresh.WithLedger(ledger))

	res, err := refresher.Run(ctx, refresh.ParseSlugs(r.Slugs))
	writeTextfile(cfg, rec)
	if err != nil {
		return err
	}

	fmt.Fprintf(g.out(), "Refreshed %d, unchanged %d, skipped %d, failed %d\n",
		len(res.Updated), len(res.Unchanged), len(res.Skipped), len(res.Failed))
	if len(res.Failed) > 0 && len(res.Updated)+len(res.Unchanged) == 0 {
		return ferrors.LLMError("every requested page failed to refresh").
			WithContext("failed", len(res.Failed)).
			Build()
	}
	return nil
}
