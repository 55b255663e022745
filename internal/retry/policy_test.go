package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uetop/codify-document/internal/config"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, config.RetryBackoffLinear, p.Mode)
	assert.Equal(t, 500*time.Millisecond, p.Initial)
	assert.Equal(t, 5*time.Second, p.Max)
	assert.Zero(t, p.MaxRetries)
}

// Initial above max is clamped.
func TestNewPolicyOverrides(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, 5*time.Second, 2*time.Second, 5)
	assert.Equal(t, 2*time.Second, p.Initial)
	assert.Equal(t, 2*time.Second, p.Max)
	assert.Equal(t, config.RetryBackoffFixed, p.Mode)
	assert.Equal(t, 5, p.MaxRetries)
	require.NoError(t, p.Validate())
}

func TestNewPolicy_UnknownModeKeepsDefault(t *testing.T) {
	p := NewPolicy("bogus", 0, 0, -1)
	assert.Equal(t, DefaultPolicy(), p)
}

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
	assert.Zero(t, linear.Delay(-1))
}

func TestFromCheck(t *testing.T) {
	p := FromCheck(config.CheckConfig{Retries: 2, RetryBackoff: config.RetryBackoffExponential, RetryDelay: "20ms"})
	assert.Equal(t, 2, p.MaxRetries)
	assert.Equal(t, config.RetryBackoffExponential, p.Mode)
	assert.Equal(t, 20*time.Millisecond, p.Initial)
}

func TestDo(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 2)

	calls := 0
	require.NoError(t, p.Do(context.Background(), func(int) bool { calls++; return false }))
	assert.Equal(t, 3, calls, "first attempt plus two retries")

	calls = 0
	require.NoError(t, p.Do(context.Background(), func(attempt int) bool { calls++; return attempt == 1 }))
	assert.Equal(t, 2, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := NewPolicy(config.RetryBackoffFixed, time.Hour, time.Hour, 3)
	err := slow.Do(ctx, func(int) bool { return false })
	assert.ErrorIs(t, err, context.Canceled)

	var zero Policy
	calls = 0
	require.NoError(t, zero.Do(context.Background(), func(int) bool { calls++; return false }))
	assert.Equal(t, 1, calls)
}
