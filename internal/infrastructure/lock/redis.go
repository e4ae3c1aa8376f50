package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sellerhub/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// releaseScript deletes the key only while it still holds the caller's token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisOrderLocker implements OrderLocker with SET NX PX and a token-checked release
type RedisOrderLocker struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	wait       time.Duration
	interval   time.Duration
	logger     *zap.Logger
}

// RedisOption configures a RedisOrderLocker
type RedisOption func(*RedisOrderLocker)

// WithRedisRetryInterval sets how often a busy lock is polled
func WithRedisRetryInterval(d time.Duration) RedisOption {
	return func(l *RedisOrderLocker) {
		l.interval = d
	}
}

// WithRedisLogger sets the logger for the locker
func WithRedisLogger(logger *zap.Logger) RedisOption {
	return func(l *RedisOrderLocker) {
		l.logger = logger
	}
}

// NewRedisOrderLocker connects to Redis and verifies the connection
func NewRedisOrderLocker(cfg config.RedisConfig, wait time.Duration, opts ...RedisOption) (*RedisOrderLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	l := NewRedisOrderLockerWithClient(client, wait, opts...)
	l.ownsClient = true
	return l, nil
}

// NewRedisOrderLockerWithClient creates a locker with an existing Redis client.
// The caller retains ownership of the client.
func NewRedisOrderLockerWithClient(client *redis.Client, wait time.Duration, opts ...RedisOption) *RedisOrderLocker {
	l := &RedisOrderLocker{
		client:   client,
		wait:     wait,
		interval: defaultRetryInterval,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Acquire takes the lock for key, waiting while another holder has it
func (l *RedisOrderLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error) {
	redisKey := keyPrefix + key
	token := uuid.NewString()

	err := acquireWithRetry(ctx, key, l.wait, l.interval, func(ctx context.Context) (bool, error) {
		ok, err := l.client.SetNX(ctx, redisKey, token, ttl).Result()
		if err != nil {
			return false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		return ok, nil
	})
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		deleted, err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Int()
		if err != nil {
			return fmt.Errorf("failed to release lock %s: %w", key, err)
		}
		if deleted == 0 {
			l.logger.Warn("order lock expired before release", zap.String("key", key))
		}
		return nil
	}, nil
}

// Close closes the Redis client if the locker created it
func (l *RedisOrderLocker) Close() error {
	if l.ownsClient {
		return l.client.Close()
	}
	return nil
}

// Ensure RedisOrderLocker implements OrderLocker
var _ OrderLocker = (*RedisOrderLocker)(nil)
