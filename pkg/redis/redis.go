// Package redis dials the Redis instance used for rate limiting and the
// analysis generation lock.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/umojalearning/umoja-backend/config"
)

// New dials Redis from central config and verifies the connection with a
// ping before handing the client out.
func New(cfg config.RedisConfig) (*goredis.Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis addr is empty")
	}

	opts := &goredis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     orDefault(cfg.PoolSize, 10),
		MinIdleConns: orDefault(cfg.MinIdleConns, 2),
		DialTimeout:  seconds(cfg.DialTimeoutSeconds, 5),
		ReadTimeout:  seconds(cfg.ReadTimeoutSeconds, 3),
		WriteTimeout: seconds(cfg.WriteTimeoutSeconds, 3),
	}

	rdb := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return rdb, nil
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func seconds(v, def int) time.Duration {
	return time.Duration(orDefault(v, def)) * time.Second
}
