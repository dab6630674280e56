package commands

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/guidebuilder/internal/build"
	"git.home.luguber.info/inful/guidebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/guidebuilder/internal/history"
	"git.home.luguber.info/inful/guidebuilder/internal/linkverify"
	"git.home.luguber.info/inful/guidebuilder/internal/page"
)

type fixture struct {
	root   *CLI
	cfg    *config.Config
	global *Global
	stdout *bytes.Buffer
}

// newFixture writes a config and two page records into a temp dir.
func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Content.PagesDir = filepath.Join(dir, "pages")
	cfg.Content.LandingPage = filepath.Join(dir, "missing-landing.html")
	cfg.Content.SeedsFile = filepath.Join(dir, "seeds.txt")
	cfg.Output.Directory = filepath.Join(dir, "dist")
	cfg.Refresh.APIKey = ""
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, os.MkdirAll(cfg.Content.PagesDir, 0o755))
	writePage(t, cfg, "is-soy-sauce-gluten-free", "soy-sauce", page.StatusUnsafe)
	writePage(t, cfg, "is-miso-gluten-free", "miso", page.StatusCaution)

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	path := filepath.Join(dir, config.DefaultPath)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	var out bytes.Buffer
	return &fixture{
		root:   &CLI{Config: path},
		cfg:    cfg,
		global: &Global{Logger: slog.Default(), Stdout: &out},
		stdout: &out,
	}
}

func writePage(t *testing.T, cfg *config.Config, slug, topicKey, status string) {
	t.Helper()
	doc := page.Document{
		SchemaVersion: 1,
		TopicKey:      topicKey,
		Slug:          slug,
		Title:         slug,
		Verdict:       page.Verdict{Status: status, Summary: "Check the label for wheat."},
		Disclaimer:    "This guidance is informational only.",
	}
	require.NoError(t, page.WriteJSON(filepath.Join(cfg.Content.PagesDir, slug+page.Ext), doc))
}

func TestParseLogLevel(t *testing.T) {
	t.Setenv(envLogLevel, "")
	assert.Equal(t, slog.LevelInfo, parseLogLevel(false))
	assert.Equal(t, slog.LevelDebug, parseLogLevel(true))

	t.Setenv(envLogLevel, "WARN")
	assert.Equal(t, slog.LevelWarn, parseLogLevel(false))
	assert.Equal(t, slog.LevelDebug, parseLogLevel(true))

	t.Setenv(envLogLevel, "error")
	assert.Equal(t, slog.LevelError, parseLogLevel(false))

	t.Setenv(envLogLevel, "nonsense")
	assert.Equal(t, slog.LevelInfo, parseLogLevel(false))
}

func TestBuildCmd_WritesSite(t *testing.T) {
	f := newFixture(t, nil)
	cmd := &BuildCmd{Strategy: "first-fit"}
	require.NoError(t, cmd.Run(t.Context(), f.global, f.root))

	assert.Contains(t, f.stdout.String(), "Built 2 pages")
	assert.Contains(t, f.stdout.String(), "first-fit")
	assert.FileExists(t, filepath.Join(f.cfg.Output.Directory, "is-miso-gluten-free", "index.html"))
	assert.FileExists(t, filepath.Join(f.cfg.Output.Directory, "sitemap.xml"))
}

func TestStrategyFlag_Normalized(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, (&BuildCmd{Strategy: " First-Fit "}).Run(t.Context(), f.global, f.root))
	assert.Contains(t, f.stdout.String(), "(first-fit, ")

	f.stdout.Reset()
	require.NoError(t, (&RelatedCmd{Strategy: "FIRSTFIT", JSON: true}).Run(t.Context(), f.global, f.root))
	assert.NotEmpty(t, f.stdout.String())

	err := (&RelatedCmd{Strategy: "random"}).Run(t.Context(), f.global, f.root)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))

	f.stdout.Reset()
	err = (&BuildCmd{Strategy: "random"}).Run(t.Context(), f.global, f.root)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	assert.Empty(t, f.stdout.String())
}

func TestBuildCmd_OutputOverrideAndTextfile(t *testing.T) {
	var textfile string
	f := newFixture(t, func(c *config.Config) {
		textfile = filepath.Join(filepath.Dir(c.Content.PagesDir), "metrics.prom")
		c.Metrics.Textfile = textfile
	})
	out := filepath.Join(t.TempDir(), "site")
	require.NoError(t, (&BuildCmd{Output: out}).Run(t.Context(), f.global, f.root))

	assert.FileExists(t, filepath.Join(out, "is-soy-sauce-gluten-free", "index.html"))
	data, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pages_rendered")
}

func TestRelatedCmd(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, (&RelatedCmd{JSON: true}).Run(t.Context(), f.global, f.root))

	var got []build.Assignment
	require.NoError(t, json.Unmarshal(f.stdout.Bytes(), &got))
	require.Len(t, got, 2)
	for _, a := range got {
		assert.NotContains(t, a.Related, a.Slug)
	}
	assert.NoDirExists(t, f.cfg.Output.Directory)

	f.stdout.Reset()
	require.NoError(t, (&RelatedCmd{Slug: "is-miso-gluten-free"}).Run(t.Context(), f.global, f.root))
	assert.Contains(t, f.stdout.String(), "is-miso-gluten-free [")
	assert.NotContains(t, f.stdout.String(), "is-soy-sauce-gluten-free [")

	err := (&RelatedCmd{Slug: "is-nothing-gluten-free"}).Run(t.Context(), f.global, f.root)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}

func TestLintCmd(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, (&LintCmd{Format: "text"}).Run(t.Context(), f.global, f.root))

	bad := filepath.Join(f.cfg.Content.PagesDir, "is-broken-gluten-free.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	f.stdout.Reset()
	err := (&LintCmd{Format: "json"}).Run(t.Context(), f.global, f.root)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
	assert.Contains(t, f.stdout.String(), "is-broken-gluten-free.json")

	err = (&LintCmd{Path: filepath.Join(t.TempDir(), "missing")}).Run(t.Context(), f.global, f.root)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestVerifyLinksCmd(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, (&BuildCmd{}).Run(t.Context(), f.global, f.root))
	f.stdout.Reset()

	require.NoError(t, (&VerifyLinksCmd{JSON: true, MinIncoming: 1}).Run(t.Context(), f.global, f.root))
	var rep linkverify.Report
	require.NoError(t, json.Unmarshal(f.stdout.Bytes(), &rep))
	assert.Len(t, rep.Pages, 2)
	assert.True(t, rep.HubExists)
	assert.Equal(t, 2, rep.HubLinked)
	assert.Equal(t, 1, rep.MinIncoming)
}

func TestRefreshCmd_RequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	f := newFixture(t, nil)
	err := (&RefreshCmd{}).Run(t.Context(), f.global, f.root)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestSeedCmd(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, os.WriteFile(f.cfg.Content.SeedsFile, []byte("Miso\nTest\nFish Sauce\nBeer\n"), 0o644))

	require.NoError(t, (&SeedCmd{MaxNew: 1}).Run(t.Context(), f.global, f.root))
	assert.Contains(t, f.stdout.String(), "Created 1 new pages")
	assert.FileExists(t, filepath.Join(f.cfg.Content.PagesDir, "is-fish-sauce-gluten-free.json"))
	assert.NoFileExists(t, filepath.Join(f.cfg.Content.PagesDir, "is-beer-gluten-free.json"))
}

func TestHistoryCmd(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.History.Database = filepath.Join(filepath.Dir(c.Content.PagesDir), "history.db")
	})
	require.NoError(t, (&BuildCmd{}).Run(t.Context(), f.global, f.root))
	f.stdout.Reset()

	require.NoError(t, (&HistoryCmd{Limit: 5, JSON: true}).Run(t.Context(), f.global, f.root))
	var runs []history.BuildSummary
	require.NoError(t, json.Unmarshal(f.stdout.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, history.KindBuild, runs[0].Kind)
	assert.Equal(t, history.StatusCompleted, runs[0].Status)
	assert.Equal(t, 2, runs[0].Pages)

	f.stdout.Reset()
	require.NoError(t, (&HistoryCmd{Limit: 5}).Run(t.Context(), f.global, f.root))
	assert.Contains(t, f.stdout.String(), "STATUS")
	assert.Contains(t, f.stdout.String(), "pages=2")
}

func TestHistoryCmd_Disabled(t *testing.T) {
	f := newFixture(t, nil)
	err := (&HistoryCmd{Limit: 5}).Run(t.Context(), f.global, f.root)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestInitCmd(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	g := &Global{Stdout: &out}
	cmd := &InitCmd{Output: dir}
	require.NoError(t, cmd.Run(g, &CLI{}))
	assert.FileExists(t, filepath.Join(dir, config.DefaultPath))
	assert.Contains(t, out.String(), "initialized successfully")

	require.Error(t, cmd.Run(g, &CLI{}))
	cmd.Force = true
	require.NoError(t, cmd.Run(g, &CLI{}))
}
