package config

import (
	"net/url"
	"time"

	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
)

// Validate checks the configuration after defaults have been applied.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Site.Origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ferrors.ConfigError("site.origin must be an absolute URL").WithContext("origin", c.Site.Origin).Build()
	}
	if _, err := NormalizeStrategy(c.Related.Strategy); err != nil {
		return err
	}
	if _, err := providers.NormalizeWithError(c.Refresh.Provider); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "refresh.provider must be openai or gemini").
			WithContext("provider", c.Refresh.Provider).
			Build()
	}
	if c.Refresh.Temperature < 0 || c.Refresh.Temperature > 2 {
		return ferrors.ConfigError("refresh.temperature must be between 0 and 2").Build()
	}
	if c.Refresh.Retry.MaxRetries < 0 {
		return ferrors.ConfigError("refresh.retry.max_retries cannot be negative").Build()
	}
	for field, raw := range map[string]string{
		"refresh.timeout":             c.Refresh.Timeout,
		"refresh.retry.initial_delay": c.Refresh.Retry.InitialDelay,
		"refresh.retry.max_delay":     c.Refresh.Retry.MaxDelay,
		"serve.debounce":              c.Serve.Debounce,
		"serve.rebuild_interval":      c.Serve.RebuildInterval,
	} {
		if raw == "" {
			continue
		}
		if d, perr := time.ParseDuration(raw); perr != nil || d <= 0 {
			return ferrors.ConfigError("invalid duration").WithContext("field", field).WithContext("value", raw).Build()
		}
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return ferrors.ConfigError("serve.port out of range").WithContext("port", c.Serve.Port).Build()
	}
	return nil
}

// duration parses a validated duration, falling back when empty.
func duration(raw string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	return fallback
}

// TimeoutDuration returns the per-request provider timeout.
func (r RefreshConfig) TimeoutDuration() time.Duration { return duration(r.Timeout, 60*time.Second) }

func (r RetryConfig) InitialDuration() time.Duration { return duration(r.InitialDelay, time.Second) }

func (r RetryConfig) MaxDuration() time.Duration { return duration(r.MaxDelay, 30*time.Second) }

// DebounceDuration returns the quiet window before a watch-triggered rebuild.
func (s ServeConfig) DebounceDuration() time.Duration {
	return duration(s.Debounce, 300*time.Millisecond)
}

// RebuildIntervalDuration returns zero when periodic rebuilds are disabled.
func (s ServeConfig) RebuildIntervalDuration() time.Duration { return duration(s.RebuildInterval, 0) }

// NormalizeStrategy resolves a related strategy name case-insensitively
// ("First-Fit" and "firstfit" both give "first-fit").
func NormalizeStrategy(raw string) (string, error) {
	v, err := strategies.NormalizeWithError(raw)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryConfig, "related.strategy must be seeded or first-fit").
			WithContext("strategy", raw).
			Build()
	}
	return v, nil
}
