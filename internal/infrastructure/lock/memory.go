package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type heldLock struct {
	token     string
	expiresAt time.Time
}

// MemoryOrderLocker implements OrderLocker with an in-process map.
// It only serializes goroutines of one process.
type MemoryOrderLocker struct {
	mu       sync.Mutex
	locks    map[string]heldLock
	wait     time.Duration
	interval time.Duration
	now      func() time.Time
}

// MemoryOption configures a MemoryOrderLocker
type MemoryOption func(*MemoryOrderLocker)

// WithMemoryRetryInterval sets how often a busy lock is polled
func WithMemoryRetryInterval(d time.Duration) MemoryOption {
	return func(l *MemoryOrderLocker) {
		l.interval = d
	}
}

// NewMemoryOrderLocker creates an in-process locker that waits up to wait for a busy lock
func NewMemoryOrderLocker(wait time.Duration, opts ...MemoryOption) *MemoryOrderLocker {
	l := &MemoryOrderLocker{
		locks:    make(map[string]heldLock),
		wait:     wait,
		interval: defaultRetryInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Acquire takes the lock for key, waiting while another holder has it
func (l *MemoryOrderLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error) {
	token := uuid.NewString()
	err := acquireWithRetry(ctx, key, l.wait, l.interval, func(context.Context) (bool, error) {
		return l.tryAcquire(key, token, ttl), nil
	})
	if err != nil {
		return nil, err
	}
	return func(context.Context) error {
		l.release(key, token)
		return nil
	}, nil
}

func (l *MemoryOrderLocker) tryAcquire(key, token string, ttl time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if held, ok := l.locks[key]; ok && now.Before(held.expiresAt) {
		return false
	}
	l.locks[key] = heldLock{token: token, expiresAt: now.Add(ttl)}
	return true
}

func (l *MemoryOrderLocker) release(key, token string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if held, ok := l.locks[key]; ok && held.token == token {
		delete(l.locks, key)
	}
}

// Held returns the number of unexpired locks
func (l *MemoryOrderLocker) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	n := 0
	for _, held := range l.locks {
		if now.Before(held.expiresAt) {
			n++
		}
	}
	return n
}

// Close drops every held lock
func (l *MemoryOrderLocker) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locks = make(map[string]heldLock)
	return nil
}

// Ensure MemoryOrderLocker implements OrderLocker
var _ OrderLocker = (*MemoryOrderLocker)(nil)
