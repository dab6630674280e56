package commands

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/guidebuilder/internal/linkverify"
	"git.home.luguber.info/inful/guidebuilder/internal/logfields"
	"git.home.luguber.info/inful/guidebuilder/internal/page"
)

// VerifyLinksCmd analyzes internal links between rendered guide pages.
type VerifyLinksCmd struct {
	Output      string `short:"o" help:"Override output.directory"`
	MinIncoming int    `name:"min-incoming" help:"Override link_check.min_incoming"`
	JSON        bool   `name:"json" help:"Print the report as JSON"`
	NoPublish   bool   `name:"no-publish" help:"Do not publish the report to NATS"`
}

func (v *VerifyLinksCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if v.Output != "" {
		cfg.Output.Directory = v.Output
	}
	if v.MinIncoming > 0 {
		cfg.LinkCheck.MinIncoming = v.MinIncoming
	}

	origin, err := url.Parse(cfg.Site.Origin)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "invalid site origin").
			WithContext("origin", cfg.Site.Origin).
			Build()
	}
	records, err := page.NewLoader(cfg.Content.PagesDir, cfg.Content.Exclude).Load(ctx)
	if err != nil {
		return err
	}
	report, err := linkverify.Analyze(ctx, records, linkverify.Options{
		OutputDir:   cfg.Output.Directory,
		HubPath:     cfg.Output.HubPath,
		Origin:      origin,
		MinIncoming: cfg.LinkCheck.MinIncoming,
	})
	if err != nil {
		return err
	}

	w := g.out()
	if v.JSON {
		err = linkverify.WriteJSON(w, report)
	} else {
		err = linkverify.WriteText(w, report)
	}
	if err != nil {
		return err
	}

	if cfg.LinkCheck.NATSURL == "" || v.NoPublish {
		return nil
	}
	pub, err := linkverify.NewNATSPublisher(cfg.LinkCheck.NATSURL, cfg.LinkCheck.Subject)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := pub.Close(); cerr != nil {
			slog.Warn("Failed to close NATS connection", logfields.Error(cerr))
		}
	}()
	return pub.Publish(ctx, linkverify.ReportEvent{
		Site:      cfg.Site.Origin,
		Timestamp: time.Now().UTC(),
		Report:    report,
	})
}
