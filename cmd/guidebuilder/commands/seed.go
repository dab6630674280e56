package commands

import (
	"context"
	"fmt"

	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/guidebuilder/internal/seed"
)

// SeedCmd scaffolds page records for topics that do not have one yet.
type SeedCmd struct {
	Topics string `short:"t" help:"Seed topics file, one topic per line (default: content.seeds_file)"`
	MaxNew int    `name:"max-new" env:"MAX_NEW_PAGES" help:"Maximum number of pages to create (default: seed.max_new)"`
}

func (s *SeedCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	path := s.Topics
	if path == "" {
		path = cfg.Content.SeedsFile
	}
	if path == "" {
		return ferrors.ConfigError("no seed topics file configured").
			WithContext("flag", "--topics").
			Build()
	}
	maxNew := cfg.Seed.MaxNew
	if s.MaxNew > 0 {
		maxNew = s.MaxNew
	}

	topics, err := seed.ReadTopics(path)
	if err != nil {
		return err
	}
	ledger, closeLedger, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer closeLedger()

	res, err := seed.Generate(ctx, topics, seed.Options{
		PagesDir: cfg.Content.PagesDir,
		MaxNew:   maxNew,
		CTA:      cfg.Site.CTA.PageCTA(),
		Ledger:   ledger,
	})
	if err != nil {
		return err
	}
	w := g.out()
	for _, slug := range res.Created {
		fmt.Fprintf(w, "created %s\n", slug)
	}
	_, err = fmt.Fprintf(w, "Created %d new pages\n", len(res.Created))
	return err
}
