package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeySlug       = "slug"
	KeyCategory   = "category"
	KeyPath       = "path"
	KeyCount      = "count"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyProvider   = "provider"
	KeyModel      = "model"
	KeyAttempt    = "attempt"
	KeyStrategy   = "strategy"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Slug(s string) slog.Attr         { return slog.String(KeySlug, s) }
func Category(c string) slog.Attr     { return slog.String(KeyCategory, c) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Provider(p string) slog.Attr     { return slog.String(KeyProvider, p) }
func Model(m string) slog.Attr        { return slog.String(KeyModel, m) }
func Attempt(n int) slog.Attr         { return slog.Int(KeyAttempt, n) }
func Strategy(s string) slog.Attr     { return slog.String(KeyStrategy, s) }

// Elapsed reports the time since start in milliseconds.
func Elapsed(start time.Time) slog.Attr {
	return DurationMS(float64(time.Since(start).Microseconds()) / 1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
