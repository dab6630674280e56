package build

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/guidebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/guidebuilder/internal/history"
	"git.home.luguber.info/inful/guidebuilder/internal/logfields"
	"git.home.luguber.info/inful/guidebuilder/internal/metrics"
	"git.home.luguber.info/inful/guidebuilder/internal/observability"
	"git.home.luguber.info/inful/guidebuilder/internal/page"
	"git.home.luguber.info/inful/guidebuilder/internal/related"
	"git.home.luguber.info/inful/guidebuilder/internal/render"
	"git.home.luguber.info/inful/guidebuilder/internal/sitemap"
	"git.home.luguber.info/inful/guidebuilder/internal/taxonomy"
)

// Option configures a Builder.
type Option func(*Builder)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) {
		if r != nil {
			b.recorder = r
		}
	}
}

// WithLedger records build events. A nil ledger disables history.
func WithLedger(l *history.Ledger) Option {
	return func(b *Builder) { b.ledger = l }
}

// WithClock overrides the time source used for durations and sitemap dates.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithTaxonomy replaces the default taxonomy.
func WithTaxonomy(tax *taxonomy.Taxonomy) Option {
	return func(b *Builder) {
		if tax != nil {
			b.tax = tax
		}
	}
}

// Builder executes the build pipeline for one configuration.
type Builder struct {
	cfg      *config.Config
	tax      *taxonomy.Taxonomy
	recorder metrics.Recorder
	ledger   *history.Ledger
	now      func() time.Time
}

// New creates a Builder with the default taxonomy and no metrics or history.
func New(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{
		cfg:      cfg,
		tax:      taxonomy.Default(),
		recorder: metrics.NoopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run is shorthand for New(cfg, opts...).Run(ctx).
func Run(ctx context.Context, cfg *config.Config, opts ...Option) (*Report, error) {
	return New(cfg, opts...).Run(ctx)
}

// plan is the in-memory result of loading and selecting, before anything is written.
type plan struct {
	records     []page.Record
	partition   *taxonomy.Partition
	assignments []Assignment
	related     [][]page.Record
}

// Run executes the complete pipeline. The returned report is non-nil even when
// the build fails; FailedStage then names the stage that stopped it.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	start := b.now()
	buildID := history.NewBuildID()
	ctx = observability.WithBuildID(ctx, buildID)

	report := &Report{BuildID: buildID, StartTime: start}
	if b.cfg == nil {
		return b.fail(ctx, report, StageLoad, ferrors.ConfigError("config required").Build())
	}
	report.OutputDir = b.cfg.Output.Directory

	strategy, err := related.StrategyByName(b.cfg.Related.Strategy)
	if err != nil {
		return b.fail(ctx, report, StageLoad, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid related strategy").
			Fatal().
			Build())
	}
	report.Strategy = strategy.Name()

	b.recordEvent(ctx, buildID, history.TypeBuildStarted, history.BuildStarted{
		Strategy:  strategy.Name(),
		PagesDir:  b.cfg.Content.PagesDir,
		OutputDir: b.cfg.Output.Directory,
	})
	observability.InfoContext(ctx, "Starting build",
		logfields.Path(b.cfg.Content.PagesDir),
		logfields.Strategy(strategy.Name()))

	p, stage, err := b.plan(ctx, strategy)
	if err != nil {
		return b.fail(ctx, report, stage, err)
	}
	report.Pages = len(p.records)
	report.Assignments = p.assignments
	report.Categories = make(map[taxonomy.Category]int)
	for c, n := range p.partition.Counts() {
		report.Categories[c] = n
		b.recorder.SetCategoryPages(string(c), n)
	}

	if b.cfg.Output.Clean {
		if err := b.stage(ctx, StageClean, func(context.Context) error {
			return cleanOutput(b.cfg.Output.Directory, b.cfg.Content.PagesDir)
		}); err != nil {
			return b.fail(ctx, report, StageClean, err)
		}
	}

	renderer, err := render.New(render.Site{
		Name:   b.cfg.Site.Name,
		Origin: b.cfg.Site.Origin,
		CTA:    b.cfg.Site.CTA.PageCTA(),
	})
	if err != nil {
		return b.fail(ctx, report, StageRender, err)
	}

	if err := b.stage(ctx, StageRender, func(ctx context.Context) error {
		return b.renderGuides(ctx, renderer, p)
	}); err != nil {
		return b.fail(ctx, report, StageRender, err)
	}
	b.recorder.SetPagesRendered(len(p.records))

	if err := b.stage(ctx, StageHub, func(context.Context) error {
		var buf bytes.Buffer
		if err := renderer.Hub(&buf, p.records); err != nil {
			return err
		}
		return writeFile(filepath.Join(b.cfg.Output.Directory, b.cfg.Output.HubPath), &buf)
	}); err != nil {
		return b.fail(ctx, report, StageHub, err)
	}

	if !b.cfg.Sitemap.Disabled {
		if err := b.stage(ctx, StageSitemap, func(context.Context) error {
			n, err := b.writeSitemap(p.records, start)
			report.SitemapURLs = n
			return err
		}); err != nil {
			return b.fail(ctx, report, StageSitemap, err)
		}
	}

	if landing := b.cfg.Content.LandingPage; landing != "" {
		if err := b.stage(ctx, StageLanding, func(context.Context) error {
			copied, err := copyFile(landing, filepath.Join(b.cfg.Output.Directory, "index.html"))
			report.LandingCopied = copied
			return err
		}); err != nil {
			return b.fail(ctx, report, StageLanding, err)
		}
	}

	b.finish(report, StatusSuccess)
	b.recorder.IncBuildOutcome(metrics.BuildSuccess)
	b.recordEvent(ctx, buildID, history.TypeBuildCompleted, history.BuildCompleted{
		Pages:       report.Pages,
		Categories:  report.CategoryCounts(),
		SitemapURLs: report.SitemapURLs,
		DurationMS:  report.Duration.Milliseconds(),
	})
	observability.InfoContext(ctx, "Build complete",
		logfields.Count(report.Pages),
		logfields.Path(b.cfg.Output.Directory),
		logfields.DurationMS(float64(report.Duration.Microseconds())/1000))
	return report, nil
}

// Assignments loads the corpus and computes every record's category and
// related set without writing anything.
func (b *Builder) Assignments(ctx context.Context) ([]Assignment, error) {
	if b.cfg == nil {
		return nil, ferrors.ConfigError("config required").Build()
	}
	strategy, err := related.StrategyByName(b.cfg.Related.Strategy)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid related strategy").Fatal().Build()
	}
	p, _, err := b.plan(ctx, strategy)
	if err != nil {
		return nil, err
	}
	return p.assignments, nil
}

// Assignments is shorthand for New(cfg).Assignments(ctx).
func Assignments(ctx context.Context, cfg *config.Config) ([]Assignment, error) {
	return New(cfg).Assignments(ctx)
}

func (b *Builder) plan(ctx context.Context, strategy related.Strategy) (*plan, string, error) {
	var p plan
	if err := b.stage(ctx, StageLoad, func(ctx context.Context) error {
		records, err := page.NewLoader(b.cfg.Content.PagesDir, b.cfg.Content.Exclude).Load(ctx)
		p.records = records
		return err
	}); err != nil {
		return nil, StageLoad, err
	}

	if err := b.stage(ctx, StagePartition, func(ctx context.Context) error {
		p.partition = b.tax.Build(p.records)
		selector := related.NewSelector(b.tax, strategy)
		p.assignments = make([]Assignment, 0, len(p.records))
		p.related = make([][]page.Record, 0, len(p.records))
		for _, rec := range p.records {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := selector.Select(rec, p.partition, p.records, b.cfg.Related.Count)
			b.recorder.ObserveRelatedLinks(len(res.Related))
			p.related = append(p.related, res.Related)
			p.assignments = append(p.assignments, Assignment{
				Slug:     rec.Slug,
				Title:    rec.Title,
				Category: res.Category,
				Related:  page.Slugs(res.Related),
			})
		}
		return nil
	}); err != nil {
		return nil, StagePartition, err
	}
	return &p, "", nil
}

func (b *Builder) renderGuides(ctx context.Context, renderer *render.Renderer, p *plan) error {
	for i, rec := range p.records {
		if err := ctx.Err(); err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := renderer.Guide(&buf, rec, p.assignments[i].Category, p.related[i]); err != nil {
			return err
		}
		path := filepath.Join(b.cfg.Output.Directory, rec.Slug, "index.html")
		if err := writeFile(path, &buf); err != nil {
			return err
		}
		observability.DebugContext(observability.WithSlug(ctx, rec.Slug), "Rendered guide",
			logfields.Category(string(p.assignments[i].Category)),
			logfields.Count(len(p.related[i])))
	}
	return nil
}

func (b *Builder) writeSitemap(records []page.Record, start time.Time) (int, error) {
	set := sitemap.Build(b.cfg.Site.Origin, b.cfg.Sitemap.StaticPaths, records, start.UTC().Format(sitemap.DateLayout))
	var buf bytes.Buffer
	if err := sitemap.Write(&buf, set); err != nil {
		return 0, ferrors.WrapError(err, ferrors.CategoryRender, "failed to encode sitemap").Fatal().Build()
	}
	if err := writeFile(filepath.Join(b.cfg.Output.Directory, "sitemap.xml"), &buf); err != nil {
		return 0, err
	}
	return len(set.URLs), nil
}

// stage runs fn with the stage name in the log context and records its duration and result.
func (b *Builder) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx = observability.WithStage(ctx, name)
	started := b.now()
	err := fn(ctx)
	b.recorder.ObserveStageDuration(name, b.now().Sub(started))
	if err != nil {
		b.recorder.IncStageResult(name, metrics.ResultFailed)
		return err
	}
	b.recorder.IncStageResult(name, metrics.ResultSuccess)
	observability.DebugContext(ctx, "Stage complete", logfields.Elapsed(started))
	return nil
}

func (b *Builder) fail(ctx context.Context, report *Report, stage string, err error) (*Report, error) {
	report.FailedStage = stage
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		b.finish(report, StatusCancelled)
		b.recorder.IncBuildOutcome(metrics.BuildCanceled)
	} else {
		b.finish(report, StatusFailed)
		b.recorder.IncBuildOutcome(metrics.BuildFailed)
	}
	b.recordEvent(ctx, report.BuildID, history.TypeBuildFailed, history.BuildFailed{Stage: stage, Error: err.Error()})
	observability.ErrorContext(observability.WithStage(ctx, stage), "Build failed", logfields.Error(err))
	return report, err
}

func (b *Builder) finish(report *Report, status Status) {
	report.Status = status
	report.EndTime = b.now()
	report.Duration = report.EndTime.Sub(report.StartTime)
	b.recorder.ObserveBuildDuration(report.Duration)
}

// recordEvent appends to the ledger. History is best effort and never fails a build.
func (b *Builder) recordEvent(ctx context.Context, buildID, eventType string, payload any) {
	if err := b.ledger.Record(context.WithoutCancel(ctx), buildID, eventType, payload); err != nil {
		observability.WarnContext(ctx, "Failed to record build event",
			slog.String("event_type", eventType),
			logfields.Error(err))
	}
}
