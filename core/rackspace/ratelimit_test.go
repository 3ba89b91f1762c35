package rackspace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitSpacesCalls(t *testing.T) {
	// 6000 per minute = one call every 10ms.
	r := NewRateLimiter(6000, 0)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, r.Wait(context.Background(), BucketRead))
	}

	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestWaitZeroBudgetNeverBlocks(t *testing.T) {
	r := NewRateLimiter(0, 0)

	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, r.Wait(context.Background(), BucketWrite))
	}

	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestWaitUnknownBucketNeverBlocks(t *testing.T) {
	r := NewRateLimiter(1, 1)
	assert.NoError(t, r.Wait(context.Background(), "no-such-bucket"))
}

func TestWaitHonorsCancellation(t *testing.T) {
	// 1 per minute: the second call would wait a minute.
	r := NewRateLimiter(1, 0)
	require.NoError(t, r.Wait(context.Background(), BucketRead))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := r.Wait(ctx, BucketRead)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
