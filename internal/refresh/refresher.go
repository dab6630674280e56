package refresh

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/guidebuilder/internal/history"
	"git.home.luguber.info/inful/guidebuilder/internal/logfields"
	"git.home.luguber.info/inful/guidebuilder/internal/metrics"
	"git.home.luguber.info/inful/guidebuilder/internal/page"
	"git.home.luguber.info/inful/guidebuilder/internal/retry"
)

// Result lists what happened to each requested slug.
type Result struct {
	RunID     string
	Updated   []string // rewritten with new content
	Unchanged []string // provider answer matched the stored fingerprint
	Skipped   []string // no record file
	Failed    []string // provider or validation error
}

// Refresher drives a provider over a set of page records.
type Refresher struct {
	provider Provider
	loader   *page.Loader
	policy   retry.Policy
	recorder metrics.Recorder
	ledger   *history.Ledger
	now      func() time.Time
}

// Option configures a Refresher.
type Option func(*Refresher)

// WithRetryPolicy sets the retry policy for provider calls.
func WithRetryPolicy(p retry.Policy) Option { return func(r *Refresher) { r.policy = p } }

// WithRecorder sets the metrics recorder.
func WithRecorder(m metrics.Recorder) Option { return func(r *Refresher) { r.recorder = m } }

// WithLedger records the run in the build history.
func WithLedger(l *history.Ledger) Option { return func(r *Refresher) { r.ledger = l } }

// WithClock overrides the clock used for meta.updated_at.
func WithClock(now func() time.Time) Option { return func(r *Refresher) { r.now = now } }

// New creates a Refresher reading and writing records through loader.
func New(provider Provider, loader *page.Loader, opts ...Option) *Refresher {
	r := &Refresher{
		provider: provider,
		loader:   loader,
		policy:   retry.DefaultPolicy(),
		recorder: metrics.NoopRecorder{},
		now:      time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// ParseSlugs splits a comma separated slug list, dropping blanks.
func ParseSlugs(raw string) []string {
	var out []string
	for s := range strings.SplitSeq(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Run refreshes slugs, or every non-excluded record when slugs is empty.
// Per-page failures are logged and collected; only setup problems and
// cancellation abort the run.
func (r *Refresher) Run(ctx context.Context, slugs []string) (*Result, error) {
	if len(slugs) == 0 {
		stems, err := r.loader.Stems()
		if err != nil {
			return nil, err
		}
		slugs = stems
	}

	res := &Result{RunID: history.NewBuildID()}
	slog.Info("Refreshing pages",
		logfields.BuildID(res.RunID),
		logfields.Count(len(slugs)),
		logfields.Provider(r.provider.Name()),
		logfields.Model(r.provider.Model()))

	for _, slug := range slugs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		outcome, err := r.refreshOne(ctx, slug)
		switch {
		case err != nil && ctx.Err() != nil:
			return res, ctx.Err()
		case err != nil:
			res.Failed = append(res.Failed, slug)
			r.recorder.IncRefreshResult(metrics.ResultFailed)
			slog.Warn("Refresh failed", logfields.Slug(slug), logfields.Error(err))
		case outcome == outcomeSkipped:
			res.Skipped = append(res.Skipped, slug)
			r.recorder.IncRefreshResult(metrics.ResultSkipped)
			slog.Info("Skip page, file not found", logfields.Slug(slug))
		case outcome == outcomeUnchanged:
			res.Unchanged = append(res.Unchanged, slug)
			r.recorder.IncRefreshResult(metrics.ResultSkipped)
			slog.Info("Page unchanged", logfields.Slug(slug))
		default:
			res.Updated = append(res.Updated, slug)
			r.recorder.IncRefreshResult(metrics.ResultSuccess)
			slog.Info("Refreshed page", logfields.Slug(slug))
		}
	}

	if err := r.ledger.Record(ctx, res.RunID, history.TypePagesRefreshed, history.PagesRefreshed{
		Provider:  r.provider.Name(),
		Model:     r.provider.Model(),
		Updated:   res.Updated,
		Unchanged: res.Unchanged,
		Failed:    res.Failed,
		Skipped:   res.Skipped,
	}); err != nil {
		slog.Warn("Failed to record refresh history", logfields.Error(err))
	}
	return res, nil
}

type outcome int

const (
	outcomeUpdated outcome = iota
	outcomeUnchanged
	outcomeSkipped
)

func (r *Refresher) refreshOne(ctx context.Context, slug string) (outcome, error) {
	path := r.loader.Path(slug)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return outcomeSkipped, nil
		}
		return 0, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to stat page record").
			WithContext("path", path).
			Build()
	}

	raw, err := page.ReadRaw(path)
	if err != nil {
		return 0, err
	}
	name := TopicName(raw, slug)

	var profile *Profile
	err = r.policy.Do(ctx, func(ctx context.Context) error {
		var ferr error
		profile, ferr = r.provider.FetchProfile(ctx, name)
		return ferr
	}, func(attempt int, err error) {
		slog.Warn("Retrying provider call", logfields.Slug(slug), logfields.Attempt(attempt), logfields.Error(err))
	})
	if err != nil {
		return 0, err
	}

	Apply(raw, profile)
	_, changed, err := page.UpsertFingerprint(raw, r.now())
	if err != nil {
		return 0, err
	}
	if !changed {
		return outcomeUnchanged, nil
	}
	if err := page.WriteJSON(path, raw); err != nil {
		return 0, err
	}
	return outcomeUpdated, nil
}
