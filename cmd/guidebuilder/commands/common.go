package commands

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/guidebuilder/internal/config"
	"git.home.luguber.info/inful/guidebuilder/internal/history"
	"git.home.luguber.info/inful/guidebuilder/internal/logfields"
	"git.home.luguber.info/inful/guidebuilder/internal/metrics"
)

// envLogLevel overrides the log level (debug, info, warn, error).
const envLogLevel = "GUIDEBUILDER_LOG_LEVEL"

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
	// Stdout receives command output. Defaults to os.Stdout.
	Stdout io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (default: guidebuilder.yaml when present)"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build       BuildCmd       `cmd:"" help:"Render guide pages, the knowledge hub and the sitemap"`
	Related     RelatedCmd     `cmd:"" help:"Print each page's category and related pages without writing output"`
	Lint        LintCmd        `cmd:"" help:"Validate page records"`
	VerifyLinks VerifyLinksCmd `cmd:"" name:"verify-links" help:"Analyze internal links in the rendered site"`
	Refresh     RefreshCmd     `cmd:"" help:"Refresh page content from the configured LLM provider"`
	Seed        SeedCmd        `cmd:"" help:"Scaffold page records for new topics"`
	Serve       ServeCmd       `cmd:"" help:"Build, serve and rebuild the site on change"`
	History     HistoryCmd     `cmd:"" help:"Show recent builds, refreshes and seed runs"`
	Init        InitCmd        `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel gives -v precedence over GUIDEBUILDER_LOG_LEVEL.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(envLogLevel))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadConfig loads the configuration named by --config.
func loadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	slog.Debug("Configuration loaded",
		logfields.Path(cfg.Content.PagesDir),
		slog.String("output", cfg.Output.Directory))
	return cfg, nil
}

// openLedger opens the history database when one is configured. The returned
// close function is always safe to call.
func openLedger(cfg *config.Config) (*history.Ledger, func(), error) {
	if cfg.History.Database == "" {
		return nil, func() {}, nil
	}
	store, err := history.OpenSQLite(cfg.History.Database)
	if err != nil {
		return nil, func() {}, err
	}
	closeFn := func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close history database", logfields.Error(err))
		}
	}
	return history.NewLedger(store, nil), closeFn, nil
}

// newRecorder creates a Prometheus recorder on a private registry.
func newRecorder(cfg *config.Config) *metrics.PrometheusRecorder {
	return metrics.NewPrometheusRecorder(prom.NewRegistry(), cfg.Metrics.Namespace)
}

// writeTextfile exports metrics when metrics.textfile is configured.
func writeTextfile(cfg *config.Config, rec *metrics.PrometheusRecorder) {
	if cfg.Metrics.Textfile == "" {
		return
	}
	if err := rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		slog.Warn("Failed to write metrics textfile", logfields.Path(cfg.Metrics.Textfile), logfields.Error(err))
	}
}
