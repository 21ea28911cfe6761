package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Locker serializes first-time profile generation per user so concurrent
// requests cannot each pay for an upstream call.
type Locker interface {
	// TryLock attempts to take the named lock. When ok is true the caller
	// must invoke release when done. The lock expires on its own after ttl
	// in case the holder dies mid-call.
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

type redisLocker struct {
	rdb *goredis.Client
}

// NewRedisLocker returns a Locker backed by SET NX with expiry.
func NewRedisLocker(rdb *goredis.Client) Locker {
	return &redisLocker{rdb: rdb}
}

func (l *redisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		// Only delete our own lock; a slow holder must not clobber the
		// next taker after expiry.
		current, err := l.rdb.Get(context.Background(), key).Result()
		if err == nil && current == token {
			l.rdb.Del(context.Background(), key)
		}
	}
	return release, true, nil
}
