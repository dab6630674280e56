package build

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/guidebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/guidebuilder/internal/history"
	"git.home.luguber.info/inful/guidebuilder/internal/metrics"
	"git.home.luguber.info/inful/guidebuilder/internal/page"
	"git.home.luguber.info/inful/guidebuilder/internal/taxonomy"
)

var fixedNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type countingRecorder struct {
	metrics.NoopRecorder
	mu       sync.Mutex
	outcomes []metrics.BuildOutcome
	rendered int
	stages   map[string]metrics.ResultLabel
}

func (r *countingRecorder) IncBuildOutcome(o metrics.BuildOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func (r *countingRecorder) SetPagesRendered(n int) { r.rendered = n }

func (r *countingRecorder) IncStageResult(stage string, result metrics.ResultLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stages == nil {
		r.stages = make(map[string]metrics.ResultLabel)
	}
	r.stages[stage] = result
}

func writeRecord(t *testing.T, dir string, doc page.Document) {
	t.Helper()
	require.NoError(t, page.WriteJSON(filepath.Join(dir, doc.Slug+page.Ext), doc))
}

func guide(slug, topicKey, title, status string) page.Document {
	return page.Document{
		SchemaVersion: 1,
		TopicKey:      topicKey,
		Slug:          slug,
		Title:         title + " | BiteRight",
		Heading:       title,
		Verdict:       page.Verdict{Status: status, Summary: "Summary for " + topicKey + "."},
		Disclaimer:    "This guidance is informational only.",
	}
}

// testConfig lays out pages, output and a landing page under one temp dir.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Content.PagesDir = filepath.Join(root, "pages")
	cfg.Content.LandingPage = filepath.Join(root, "index.html")
	cfg.Output.Directory = filepath.Join(root, "dist")
	cfg.Related.Count = 3
	require.NoError(t, os.MkdirAll(cfg.Content.PagesDir, 0o755))
	require.NoError(t, os.WriteFile(cfg.Content.LandingPage, []byte("<h1>BiteRight</h1>\n"), 0o644))

	for _, d := range []page.Document{
		guide("is-soy-sauce-gluten-free", "soy-sauce", "Is soy sauce gluten free?", page.StatusUnsafe),
		guide("is-oyster-sauce-gluten-free", "oyster-sauce", "Is oyster sauce gluten free?", page.StatusCaution),
		guide("are-rice-noodles-gluten-free", "rice-noodles", "Are rice noodles gluten free?", page.StatusSafe),
		guide("is-beef-stew-gluten-free", "beef-stew", "Is beef stew gluten free?", page.StatusCaution),
		guide("is-miso-gluten-free", "miso", "Is miso gluten free?", page.StatusCaution),
		guide("is-test-gluten-free", "test", "Test", page.StatusSafe),
	} {
		writeRecord(t, cfg.Content.PagesDir, d)
	}
	return cfg
}

func openDoc(t *testing.T, path string) *goquery.Document {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)
	return doc
}

func TestRun_WritesSite(t *testing.T) {
	cfg := testConfig(t)
	store, err := history.OpenSQLite(history.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	rec := &countingRecorder{}

	report, err := Run(t.Context(), cfg,
		WithClock(clock),
		WithRecorder(rec),
		WithLedger(history.NewLedger(store, clock)))
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, report.Status)
	assert.Equal(t, "seeded", report.Strategy)
	assert.Equal(t, 5, report.Pages, "excluded test record is not built")
	assert.Equal(t, 2, report.Categories[taxonomy.Sauces])
	assert.Equal(t, 1, report.Categories[taxonomy.Noodles])
	assert.Equal(t, 1, report.Categories[taxonomy.Meals])
	assert.Equal(t, 1, report.Categories[taxonomy.Asian])
	assert.Equal(t, 0, report.Categories[taxonomy.Other])
	assert.True(t, report.LandingCopied)
	assert.Equal(t, len(config.DefaultStaticPaths)+5, report.SitemapURLs)
	assert.NotEmpty(t, report.BuildID)

	require.Len(t, report.Assignments, 5)
	for _, a := range report.Assignments {
		assert.Len(t, a.Related, 3, a.Slug)
		assert.NotContains(t, a.Related, a.Slug)
		assert.NotContains(t, a.Related, "is-test-gluten-free")

		doc := openDoc(t, filepath.Join(cfg.Output.Directory, a.Slug, "index.html"))
		assert.Equal(t, 3, doc.Find("section.related li.card").Length(), a.Slug)
	}

	hub := openDoc(t, filepath.Join(cfg.Output.Directory, "knowledge-hub", "index.html"))
	assert.Equal(t, 5, hub.Find("ul.hub li.card").Length())

	sm, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "sitemap.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(sm), "<loc>https://biterightgluten.com/is-miso-gluten-free/</loc>")
	assert.Contains(t, string(sm), "<lastmod>2026-05-04</lastmod>")

	landing, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<h1>BiteRight</h1>\n", string(landing))

	assert.Equal(t, []metrics.BuildOutcome{metrics.BuildSuccess}, rec.outcomes)
	assert.Equal(t, 5, rec.rendered)
	assert.Equal(t, metrics.ResultSuccess, rec.stages[StageSitemap])

	summaries, err := history.Recent(t.Context(), store, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, report.BuildID, summaries[0].BuildID)
	assert.Equal(t, history.StatusCompleted, summaries[0].Status)
	assert.Equal(t, 5, summaries[0].Pages)
}

func TestRun_IsDeterministic(t *testing.T) {
	cfg := testConfig(t)
	first, err := Run(t.Context(), cfg, WithClock(clock))
	require.NoError(t, err)
	before, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "is-miso-gluten-free", "index.html"))
	require.NoError(t, err)

	second, err := Run(t.Context(), cfg, WithClock(clock))
	require.NoError(t, err)
	after, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "is-miso-gluten-free", "index.html"))
	require.NoError(t, err)

	assert.Equal(t, first.Assignments, second.Assignments)
	assert.Equal(t, string(before), string(after))
	assert.NotEqual(t, first.BuildID, second.BuildID)
}

func TestRun_MalformedRecordFailsBuild(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Content.PagesDir, "is-bad-gluten-free.json"), []byte("{"), 0o644))
	store, err := history.OpenSQLite(history.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	rec := &countingRecorder{}

	report, err := Run(t.Context(), cfg, WithRecorder(rec), WithLedger(history.NewLedger(store, clock)))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryContent))
	require.NotNil(t, report)
	assert.Equal(t, StatusFailed, report.Status)
	assert.Equal(t, StageLoad, report.FailedStage)
	assert.Equal(t, []metrics.BuildOutcome{metrics.BuildFailed}, rec.outcomes)
	assert.NoDirExists(t, cfg.Output.Directory)

	summaries, err := history.Recent(t.Context(), store, 1)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, history.StatusFailed, summaries[0].Status)
	assert.Equal(t, StageLoad, summaries[0].ErrorStage)
}

func TestRun_MissingPagesDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.Content.PagesDir = filepath.Join(t.TempDir(), "missing")

	_, err := Run(t.Context(), cfg)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestRun_CleanRemovesStaleOutput(t *testing.T) {
	cfg := testConfig(t)
	stale := filepath.Join(cfg.Output.Directory, "is-removed-gluten-free", "index.html")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	_, err := Run(t.Context(), cfg)
	require.NoError(t, err)
	assert.FileExists(t, stale, "overwrite semantics keep unrelated files")

	cfg.Output.Clean = true
	_, err = Run(t.Context(), cfg)
	require.NoError(t, err)
	assert.NoFileExists(t, stale)
	assert.FileExists(t, filepath.Join(cfg.Output.Directory, "sitemap.xml"))
}

func TestRun_CleanRefusesToRemoveContent(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.Clean = true
	cfg.Output.Directory = filepath.Dir(cfg.Content.PagesDir)

	report, err := Run(t.Context(), cfg)
	require.Error(t, err)
	assert.Equal(t, StageClean, report.FailedStage)
	assert.DirExists(t, cfg.Content.PagesDir)
}

func TestRun_SitemapDisabledAndNoLanding(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sitemap.Disabled = true
	cfg.Content.LandingPage = filepath.Join(t.TempDir(), "absent.html")

	report, err := Run(t.Context(), cfg)
	require.NoError(t, err)
	assert.False(t, report.LandingCopied)
	assert.Zero(t, report.SitemapURLs)
	assert.NoFileExists(t, filepath.Join(cfg.Output.Directory, "sitemap.xml"))
}

func TestRun_Cancelled(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	rec := &countingRecorder{}

	report, err := Run(ctx, cfg, WithRecorder(rec))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusCancelled, report.Status)
	assert.Equal(t, []metrics.BuildOutcome{metrics.BuildCanceled}, rec.outcomes)
}

func TestRun_UnknownStrategy(t *testing.T) {
	cfg := testConfig(t)
	cfg.Related.Strategy = "random"

	_, err := Run(t.Context(), cfg)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestAssignments_WritesNothing(t *testing.T) {
	cfg := testConfig(t)
	cfg.Related.Strategy = "first-fit"

	got, err := Assignments(t.Context(), cfg)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.NoDirExists(t, cfg.Output.Directory)

	bySlug := make(map[string]Assignment, len(got))
	for _, a := range got {
		bySlug[a.Slug] = a
	}
	soy := bySlug["is-soy-sauce-gluten-free"]
	assert.Equal(t, taxonomy.Sauces, soy.Category)
	assert.Equal(t, "is-oyster-sauce-gluten-free", soy.Related[0], "first-fit takes same-category pages first")
	assert.True(t, strings.HasPrefix(soy.Title, "Is soy sauce"))
}
