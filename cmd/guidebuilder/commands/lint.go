package commands

import (
	"context"
	"os"

	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/guidebuilder/internal/lint"
)

// LintCmd implements the 'lint' command.
type LintCmd struct {
	Path   string `arg:"" optional:"" help:"Directory of page records (defaults to content.pages_dir)"`
	Format string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
	Quiet  bool   `short:"q" help:"Quiet mode: only show errors, suppress warnings"`
	Fix    bool   `help:"Rewrite missing or stale content fingerprints"`
}

func (l *LintCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	path := l.Path
	if path == "" {
		path = cfg.Content.PagesDir
	}
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		return ferrors.ConfigError("path does not exist").WithContext("path", path).Build()
	}

	linter := lint.NewLinter(&lint.Config{
		Quiet:   l.Quiet,
		Format:  l.Format,
		Fix:     l.Fix,
		Exclude: cfg.Content.Exclude,
	}, cfg.Sitemap.StaticPaths)

	result, err := linter.LintDir(ctx, path)
	if err != nil {
		return err
	}
	w := g.out()
	if err := lint.NewFormatter(l.Format).Format(w, result, path); err != nil {
		return err
	}
	if result.HasErrors() {
		return ferrors.ValidationError("lint found errors").
			WithContext("errors", result.ErrorCount()).
			WithContext("path", path).
			Build()
	}
	return nil
}
