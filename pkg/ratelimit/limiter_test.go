package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedDelay(t *testing.T) {
	t.Run("Waits", func(t *testing.T) {
		limiter := NewFixedDelay(20 * time.Millisecond)
		assert.True(t, limiter.Allow())

		start := time.Now()
		require.NoError(t, limiter.Wait(context.Background()))
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("ZeroDelayReturnsImmediately", func(t *testing.T) {
		limiter := NewFixedDelay(0)

		start := time.Now()
		require.NoError(t, limiter.Wait(context.Background()))
		assert.Less(t, time.Since(start), 10*time.Millisecond)
	})

	t.Run("Cancelled", func(t *testing.T) {
		limiter := NewFixedDelay(time.Hour)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := limiter.Wait(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestTokenBucket(t *testing.T) {
	limiter := NewTokenBucket(time.Hour, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow(), "request %d should be allowed", i+1)
	}
	assert.False(t, limiter.Allow(), "4th request should be denied")

	limiter.Reset()
	assert.True(t, limiter.Allow(), "request after reset should be allowed")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	limiter.Allow()
	limiter.Allow()
	assert.Error(t, limiter.Wait(ctx))
}

func TestNewReadLimiter(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		limiter := NewReadLimiter(0, 10)
		for i := 0; i < 100; i++ {
			require.True(t, limiter.Allow())
		}
	})

	t.Run("Burst", func(t *testing.T) {
		limiter := NewReadLimiter(60, 2)
		assert.True(t, limiter.Allow())
		assert.True(t, limiter.Allow())
		assert.False(t, limiter.Allow())
	})
}
