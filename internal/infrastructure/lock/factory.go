package lock

import (
	"fmt"

	"github.com/sellerhub/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Backend names accepted by the factory
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Factory creates order lockers based on configuration
type Factory struct {
	syncConfig            config.SyncConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-process locks when Redis is unavailable
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory. Fallback defaults to the sync configuration.
func NewFactory(syncCfg config.SyncConfig, redisCfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		syncConfig:            syncCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: syncCfg.LockFallback,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create builds the locker named by the configured backend
func (f *Factory) Create() (OrderLocker, error) {
	switch f.syncConfig.LockBackend {
	case BackendMemory, "":
		f.logger.Info("using in-process order locks")
		return NewMemoryOrderLocker(f.syncConfig.LockWait), nil
	case BackendRedis:
		return f.createRedis()
	default:
		return nil, fmt.Errorf("unknown lock backend %q", f.syncConfig.LockBackend)
	}
}

func (f *Factory) createRedis() (OrderLocker, error) {
	locker, err := NewRedisOrderLocker(f.redisConfig, f.syncConfig.LockWait, WithRedisLogger(f.logger))
	if err == nil {
		f.logger.Info("using Redis order locks", zap.String("addr", f.redisConfig.Addr()))
		return locker, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for order locks but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-process order locks. "+
		"Concurrent reconciler processes are no longer serialized.",
		zap.Error(err),
	)
	return NewMemoryOrderLocker(f.syncConfig.LockWait), nil
}
