package poller

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives the limiter without real time. Sleeping advances the
// clock.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return ctx.Err()
}

func testLimiter(callsPerMinute int) (*RateLimiter, *fakeClock) {
	clock := newFakeClock()
	limiter := NewRateLimiter(callsPerMinute)
	limiter.now = clock.Now
	limiter.sleep = clock.Sleep
	return limiter, clock
}

// =============================================================================
// RateLimiter Tests
// =============================================================================

func TestWait_UnderLimitNeverSleeps(t *testing.T) {
	limiter, clock := testLimiter(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Wait(ctx))
	}
	assert.Empty(t, clock.sleeps)
}

func TestWait_BlocksUntilWindowFrees(t *testing.T) {
	limiter, clock := testLimiter(2)
	ctx := context.Background()

	require.NoError(t, limiter.Wait(ctx))
	clock.now = clock.now.Add(10 * time.Second)
	require.NoError(t, limiter.Wait(ctx))

	// Third call must wait until the first one leaves the rolling window.
	require.NoError(t, limiter.Wait(ctx))
	require.NotEmpty(t, clock.sleeps)
	assert.Equal(t, 50*time.Second, clock.sleeps[0])
}

func TestWait_OldCallsExpire(t *testing.T) {
	limiter, clock := testLimiter(1)
	ctx := context.Background()

	require.NoError(t, limiter.Wait(ctx))
	clock.now = clock.now.Add(61 * time.Second)
	require.NoError(t, limiter.Wait(ctx))
	assert.Empty(t, clock.sleeps)
}

func TestNewRateLimiter_ClampsNonPositiveLimit(t *testing.T) {
	for _, limit := range []int{0, -5} {
		limiter, clock := testLimiter(limit)
		ctx := context.Background()

		require.NoError(t, limiter.Wait(ctx))
		clock.now = clock.now.Add(61 * time.Second)
		require.NoError(t, limiter.Wait(ctx))
	}
}

func TestWait_CancelledContext(t *testing.T) {
	limiter, _ := testLimiter(1)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, limiter.Wait(ctx))
	cancel()

	err := limiter.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
