package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/albapepper/meditrack-alerts/internal/config"
)

// OpenQueue builds the retention queue selected by DEDUP_BACKEND. The
// returned close func releases the backend's connections.
func OpenQueue(ctx context.Context, cfg *config.Config) (Queue, func() error, error) {
	if cfg.DedupBackend != config.DedupRedis {
		return NewMemoryQueue(), func() error { return nil }, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisQueue(rdb), rdb.Close, nil
}
