package config

import "git.home.luguber.info/inful/guidebuilder/internal/foundation/normalization"

// RetryBackoffMode enumerates supported backoff strategies for retries.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

var (
	backoffModes = normalization.New("retry backoff", map[string]RetryBackoffMode{
		string(RetryBackoffFixed):       RetryBackoffFixed,
		string(RetryBackoffLinear):      RetryBackoffLinear,
		string(RetryBackoffExponential): RetryBackoffExponential,
	}, "")
	strategies = normalization.New("related strategy", map[string]string{
		"seeded":    "seeded",
		"first-fit": "first-fit",
		"firstfit":  "first-fit",
	}, "")
	providers = normalization.New("refresh provider", map[string]string{
		"openai": "openai",
		"gemini": "gemini",
	}, "")
)

// NormalizeRetryBackoff converts user input (case-insensitive) into a typed mode, returning empty string for unknown.
func NormalizeRetryBackoff(raw string) RetryBackoffMode {
	return backoffModes.Normalize(raw)
}
