// Package lock serializes work on a single marketplace order across goroutines
// and, with the Redis backend, across reconciler processes.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sellerhub/backend/internal/domain/shared"
)

const (
	defaultRetryInterval = 50 * time.Millisecond
	keyPrefix            = "sellerhub:lock:"
)

// ReleaseFunc releases a held lock. Releasing a lock that already expired, or
// that another holder re-acquired, is a no-op.
type ReleaseFunc func(ctx context.Context) error

// OrderLocker grants exclusive, expiring locks keyed by order
type OrderLocker interface {
	// Acquire blocks until the lock is held, the wait elapses or ctx is done.
	// A busy lock returns an error matching shared.ErrLockNotAcquired.
	Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error)

	// Close releases resources held by the locker
	Close() error
}

// OrderKey builds the lock key of one marketplace order
func OrderKey(accountID uuid.UUID, externalOrderID string) string {
	return fmt.Sprintf("order:%s:%s", accountID, externalOrderID)
}

// tryFunc makes one non-blocking acquisition attempt
type tryFunc func(ctx context.Context) (bool, error)

// acquireWithRetry polls try until it succeeds or wait elapses
func acquireWithRetry(ctx context.Context, key string, wait, interval time.Duration, try tryFunc) error {
	if interval <= 0 {
		interval = defaultRetryInterval
	}
	deadline := time.Now().Add(wait)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		ok, err := try(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("%w: %s", shared.ErrLockNotAcquired, key)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
