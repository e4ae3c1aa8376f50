package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sellerhub/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderKey(t *testing.T) {
	accountID := uuid.MustParse("6f1c1f0e-4a43-4d55-9a7e-2f3c3bb0a001")
	assert.Equal(t, "order:6f1c1f0e-4a43-4d55-9a7e-2f3c3bb0a001:2000001", OrderKey(accountID, "2000001"))
}

func TestMemoryOrderLocker_Acquire(t *testing.T) {
	ctx := context.Background()

	t.Run("acquires a free lock", func(t *testing.T) {
		l := NewMemoryOrderLocker(0)
		release, err := l.Acquire(ctx, "order:a", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 1, l.Held())

		require.NoError(t, release(ctx))
		assert.Equal(t, 0, l.Held())
	})

	t.Run("busy lock fails after the wait", func(t *testing.T) {
		l := NewMemoryOrderLocker(30*time.Millisecond, WithMemoryRetryInterval(5*time.Millisecond))
		_, err := l.Acquire(ctx, "order:b", time.Minute)
		require.NoError(t, err)

		start := time.Now()
		_, err = l.Acquire(ctx, "order:b", time.Minute)
		assert.ErrorIs(t, err, shared.ErrLockNotAcquired)
		assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	})

	t.Run("different keys do not contend", func(t *testing.T) {
		l := NewMemoryOrderLocker(0)
		_, err := l.Acquire(ctx, "order:c", time.Minute)
		require.NoError(t, err)
		_, err = l.Acquire(ctx, "order:d", time.Minute)
		assert.NoError(t, err)
	})

	t.Run("expired lock can be taken over", func(t *testing.T) {
		l := NewMemoryOrderLocker(0)
		now := time.Now()
		l.now = func() time.Time { return now }

		staleRelease, err := l.Acquire(ctx, "order:e", time.Second)
		require.NoError(t, err)

		now = now.Add(2 * time.Second)
		_, err = l.Acquire(ctx, "order:e", time.Second)
		require.NoError(t, err)

		// the stale holder must not release the new holder's lock
		require.NoError(t, staleRelease(ctx))
		assert.Equal(t, 1, l.Held())
	})

	t.Run("waits for release", func(t *testing.T) {
		l := NewMemoryOrderLocker(time.Second, WithMemoryRetryInterval(2*time.Millisecond))
		release, err := l.Acquire(ctx, "order:f", time.Minute)
		require.NoError(t, err)

		go func() {
			time.Sleep(20 * time.Millisecond)
			_ = release(ctx)
		}()

		_, err = l.Acquire(ctx, "order:f", time.Minute)
		assert.NoError(t, err)
	})

	t.Run("context cancellation stops waiting", func(t *testing.T) {
		l := NewMemoryOrderLocker(time.Minute, WithMemoryRetryInterval(2*time.Millisecond))
		_, err := l.Acquire(ctx, "order:g", time.Minute)
		require.NoError(t, err)

		cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		_, err = l.Acquire(cctx, "order:g", time.Minute)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestMemoryOrderLocker_MutualExclusion(t *testing.T) {
	l := NewMemoryOrderLocker(5*time.Second, WithMemoryRetryInterval(time.Millisecond))
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(ctx, "order:shared", time.Minute)
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			_ = release(ctx)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, l.Held())
}

func TestMemoryOrderLocker_Close(t *testing.T) {
	l := NewMemoryOrderLocker(0)
	_, err := l.Acquire(context.Background(), "order:h", time.Minute)
	require.NoError(t, err)

	require.NoError(t, l.Close())
	assert.Equal(t, 0, l.Held())
}
