package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/guidebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
)

// TestDefaultPolicy verifies the baseline default values.
func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, config.RetryBackoffLinear, p.Mode)
	assert.Equal(t, time.Second, p.Initial)
	assert.Equal(t, 30*time.Second, p.Max)
	assert.Equal(t, 2, p.MaxRetries)
	require.NoError(t, p.Validate())
}

// TestNewPolicyOverrides checks override precedence and clamping when initial > max.
func TestNewPolicyOverrides(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, 5*time.Second, 2*time.Second, 5)
	assert.Equal(t, 2*time.Second, p.Initial, "initial > max is clamped")
	assert.Equal(t, 2*time.Second, p.Max)
	assert.Equal(t, config.RetryBackoffFixed, p.Mode)
	assert.Equal(t, 5, p.MaxRetries)

	unknown := NewPolicy("jitter", 0, 0, -1)
	assert.Equal(t, DefaultPolicy(), unknown)
}

// TestDelayModes ensures fixed, linear, exponential behave and respect cap.
func TestDelayModes(t *testing.T) {
	fixed := NewPolicy(config.RetryBackoffFixed, 100*time.Millisecond, 500*time.Millisecond, 3)
	for i := 1; i <= 3; i++ {
		assert.Equal(t, 100*time.Millisecond, fixed.Delay(i))
	}

	linear := NewPolicy(config.RetryBackoffLinear, 100*time.Millisecond, 250*time.Millisecond, 5)
	for attempt, want := range map[int]time.Duration{1: 100 * time.Millisecond, 2: 200 * time.Millisecond, 3: 250 * time.Millisecond, 4: 250 * time.Millisecond} {
		assert.Equal(t, want, linear.Delay(attempt), "linear attempt %d", attempt)
	}

	exp := NewPolicy(config.RetryBackoffExponential, 50*time.Millisecond, 160*time.Millisecond, 5)
	for attempt, want := range map[int]time.Duration{1: 50 * time.Millisecond, 2: 100 * time.Millisecond, 3: 160 * time.Millisecond, 4: 160 * time.Millisecond} {
		assert.Equal(t, want, exp.Delay(attempt), "exponential attempt %d", attempt)
	}

	assert.Zero(t, linear.Delay(0))
}

func TestFromConfig(t *testing.T) {
	p := FromConfig(config.RetryConfig{Backoff: config.RetryBackoffExponential, InitialDelay: "200ms", MaxDelay: "1s", MaxRetries: 4})
	assert.Equal(t, config.RetryBackoffExponential, p.Mode)
	assert.Equal(t, 200*time.Millisecond, p.Initial)
	assert.Equal(t, time.Second, p.Max)
	assert.Equal(t, 4, p.MaxRetries)
}

func TestDo(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 2)
	transient := ferrors.LLMError("rate limited").RateLimit().Build()

	t.Run("retries transient until success", func(t *testing.T) {
		calls := 0
		var retried []int
		err := p.Do(t.Context(), func(context.Context) error {
			calls++
			if calls < 3 {
				return transient
			}
			return nil
		}, func(attempt int, _ error) { retried = append(retried, attempt) })
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []int{1, 2}, retried)
	})

	t.Run("gives up after budget", func(t *testing.T) {
		calls := 0
		err := p.Do(t.Context(), func(context.Context) error {
			calls++
			return transient
		}, nil)
		require.ErrorIs(t, err, transient)
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent error is not retried", func(t *testing.T) {
		calls := 0
		permanent := errors.New("invalid response")
		err := p.Do(t.Context(), func(context.Context) error {
			calls++
			return permanent
		}, nil)
		require.ErrorIs(t, err, permanent)
		assert.Equal(t, 1, calls)
	})

	t.Run("context cancellation stops waiting", func(t *testing.T) {
		slow := NewPolicy(config.RetryBackoffFixed, time.Hour, time.Hour, 3)
		ctx, cancel := context.WithCancel(t.Context())
		err := slow.Do(ctx, func(context.Context) error {
			cancel()
			return transient
		}, nil)
		require.ErrorIs(t, err, context.Canceled)
	})
}
