package observability

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestContextValuesAccumulate(t *testing.T) {
	ctx := WithBuildID(t.Context(), "b-1")
	ctx = WithStage(ctx, "render")
	ctx = WithSlug(ctx, "is-miso-gluten-free")

	lc := GetContext(ctx)
	assert.Equal(t, LogContext{BuildID: "b-1", Stage: "render", Slug: "is-miso-gluten-free"}, lc)

	// Overriding the stage keeps the rest.
	lc = GetContext(WithStage(ctx, "hub"))
	assert.Equal(t, "hub", lc.Stage)
	assert.Equal(t, "b-1", lc.BuildID)
}

func TestLoggingIncludesContextAttributes(t *testing.T) {
	buf := captureLogs(t)
	ctx := WithStage(WithBuildID(t.Context(), "b-2"), "sitemap")

	InfoContext(ctx, "wrote sitemap", slog.Int("urls", 4))
	DebugContext(ctx, "debug line")
	WarnContext(ctx, "warn line")
	ErrorContext(ctx, "error line")

	out := buf.String()
	assert.Contains(t, out, "build_id=b-2")
	assert.Contains(t, out, "stage=sitemap")
	assert.Contains(t, out, "urls=4")
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "level=ERROR")
	assert.NotContains(t, out, "slug=")
}
