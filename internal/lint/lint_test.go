package lint

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/guidebuilder/internal/page"
)

const goodRecord = `{
  "schema_version": 1,
  "topic_key": "miso",
  "slug": "is-miso-gluten-free",
  "title": "Is Miso Gluten Free? | BiteRight",
  "verdict": {"status": "caution", "summary": "Depends on the koji."},
  "disclaimer": "This guidance is informational only.",
  "sections": [{"title": "Related", "body": "See [soy sauce](/is-soy-sauce-gluten-free/) and the [hub](/knowledge-hub/)."}]
}`

func write(t *testing.T, dir, stem, body string) string {
	t.Helper()
	path := filepath.Join(dir, stem+page.Ext)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func rulesHit(result *Result) map[string][]Severity {
	out := map[string][]Severity{}
	for _, issue := range result.Issues {
		out[issue.Rule] = append(out[issue.Rule], issue.Severity)
	}
	return out
}

func TestLintDirCleanRecords(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "is-miso-gluten-free", goodRecord)
	write(t, dir, "is-soy-sauce-gluten-free", `{
  "schema_version": 1, "topic_key": "soy-sauce", "slug": "is-soy-sauce-gluten-free",
  "title": "Soy", "verdict": {"status": "unsafe", "summary": "Wheat."},
  "disclaimer": "Always verify with the kitchen."
}`)

	l := NewLinter(&Config{}, []string{"/knowledge-hub/"})
	result, err := l.LintDir(t.Context(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, result.FilesTotal)
	assert.False(t, result.HasErrors())
	assert.False(t, result.HasWarnings())
	assert.Equal(t, 2, result.InfoCount(), "records without fingerprints are only noted")
}

func TestLintDirFindsProblems(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "broken", `{"slug": `)
	write(t, dir, "is-a-gluten-free", `{"slug": "is-b-gluten-free", "title": "A", "verdict": {"status": "risky"}, "disclaimer": "short"}`)
	write(t, dir, "is-b-gluten-free", `{"schema_version": 1, "topic_key": "b", "slug": "is-b-gluten-free", "title": "B",
  "verdict": {"status": "safe", "summary": "ok"}, "disclaimer": "Long enough text.",
  "sections": [{"title": "More", "body": "[gone](/is-gone-gluten-free/) ![img](/img/x.png)"}]}`)
	write(t, dir, "Bad_Slug", `{"schema_version": 1, "topic_key": "x", "slug": "Bad_Slug", "title": "X",
  "verdict": {"status": "safe", "summary": "ok"}, "disclaimer": "Long enough text."}`)
	write(t, dir, "is-test-gluten-free", `{}`)

	l := NewLinter(&Config{Exclude: []string{"is-test-gluten-free"}}, nil)
	result, err := l.LintDir(t.Context(), dir)
	require.NoError(t, err)
	assert.Equal(t, 4, result.FilesTotal)
	assert.True(t, result.HasErrors())

	hits := rulesHit(result)
	assert.Equal(t, []Severity{SeverityError}, hits["page-json"])
	assert.Len(t, hits["required-fields"], 2, "schema_version and topic_key missing")
	assert.Len(t, hits["slug-conventions"], 2, "mismatch for is-a, pattern for Bad_Slug")
	assert.ElementsMatch(t, []Severity{SeverityWarning, SeverityError}, hits["verdict"])
	assert.Equal(t, []Severity{SeverityError}, hits["disclaimer-length"])
	assert.Equal(t, []Severity{SeverityError}, hits["duplicate-slug"])
	assert.Equal(t, []Severity{SeverityWarning}, hits["section-links"])
}

func TestLintQuietKeepsErrorsOnly(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "is-a-gluten-free", `{"schema_version": 1, "topic_key": "a", "slug": "is-a-gluten-free", "title": "A",
  "verdict": {"status": "meh", "summary": "s"}, "disclaimer": "x"}`)

	result, err := NewLinter(&Config{Quiet: true}, nil).LintDir(t.Context(), dir)
	require.NoError(t, err)
	for _, issue := range result.Issues {
		assert.Equal(t, SeverityError, issue.Severity)
	}
	assert.Equal(t, 1, result.ErrorCount())
}

func TestLintFixFingerprints(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "is-miso-gluten-free", goodRecord)

	l := NewLinter(&Config{Fix: true}, []string{"/knowledge-hub/", "/is-soy-sauce-gluten-free/"})
	l.now = func() time.Time { return time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC) }

	result, err := l.LintDir(t.Context(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, result.Fixed)
	assert.Empty(t, result.Issues)

	raw, err := page.ReadRaw(path)
	require.NoError(t, err)
	assert.NotEmpty(t, page.StoredFingerprint(raw))
	assert.Equal(t, "2026-07-01", raw["meta"].(map[string]any)["updated_at"])

	// Editing content makes the fingerprint stale.
	raw["title"] = "Changed"
	require.NoError(t, page.WriteJSON(path, raw))
	result, err = NewLinter(&Config{}, []string{"/knowledge-hub/", "/is-soy-sauce-gluten-free/"}).LintDir(t.Context(), dir)
	require.NoError(t, err)
	assert.Equal(t, []Severity{SeverityWarning}, rulesHit(result)["content-fingerprint"])
}

func TestLintMissingDir(t *testing.T) {
	_, err := NewLinter(nil, nil).LintDir(t.Context(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestTextFormatter(t *testing.T) {
	result := &Result{
		FilesTotal: 2,
		Issues: []Issue{
			{FilePath: "b.json", Severity: SeverityWarning, Rule: "verdict", Message: "Unknown verdict.status"},
			{FilePath: "a.json", Severity: SeverityError, Rule: "slug-conventions", Message: "Slug mismatch", Fix: "Rename"},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, NewFormatter("text").Format(&buf, result, "content/pages"))
	out := buf.String()

	assert.Contains(t, out, "Linting page records in: content/pages")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("a.json")), bytes.Index(buf.Bytes(), []byte("b.json")))
	assert.Contains(t, out, "ERROR [slug-conventions]: Slug mismatch")
	assert.Contains(t, out, "Fix: Rename")
	assert.Contains(t, out, "1 error (blocks build)")
	assert.Contains(t, out, "1 warning (should fix)")
	assert.Contains(t, out, "prevent a build")
}

func TestTextFormatterClean(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextFormatter().Format(&buf, &Result{FilesTotal: 3}, "pages"))
	assert.Contains(t, buf.String(), "All page records pass linting.")
}

func TestJSONFormatter(t *testing.T) {
	result := &Result{
		FilesTotal: 1,
		Issues:     []Issue{{FilePath: "a.json", Severity: SeverityInfo, Rule: "content-fingerprint", Message: "No content fingerprint"}},
	}
	var buf bytes.Buffer
	require.NoError(t, NewFormatter("json").Format(&buf, result, "pages"))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, 1, out.InfoCount)
	require.Len(t, out.Issues, 1)
	assert.Equal(t, "INFO", out.Issues[0].Severity)
}
