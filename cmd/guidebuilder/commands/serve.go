package commands

import (
	"context"

	"git.home.luguber.info/inful/guidebuilder/internal/build"
	"git.home.luguber.info/inful/guidebuilder/internal/preview"
)

// ServeCmd builds the site, serves it locally and rebuilds when records change.
type ServeCmd struct {
	Host     string `help:"Override serve.host"`
	Port     int    `short:"p" help:"Override serve.port"`
	Output   string `short:"o" help:"Override output.directory"`
	Interval string `name:"rebuild-interval" help:"Override serve.rebuild_interval (e.g. 10m, empty disables)"`
}

func (s *ServeCmd) Run(ctx context.Context, _ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if s.Host != "" {
		cfg.Serve.Host = s.Host
	}
	if s.Port > 0 {
		cfg.Serve.Port = s.Port
	}
	if s.Output != "" {
		cfg.Output.Directory = s.Output
	}
	if s.Interval != "" {
		cfg.Serve.RebuildInterval = s.Interval
	}

	rec := newRecorder(cfg)
	ledger, closeLedger, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer closeLedger()

	srv, err := preview.New(preview.Options{
		Config:       cfg,
		BuildOptions: []build.Option{build.WithRecorder(rec), build.WithLedger(ledger)},
		Metrics:      rec.HTTPHandler(),
	})
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
