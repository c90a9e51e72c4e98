// Package locks provides short-lived named locks used to reject concurrent
// generation runs for the same user. With redis configured the lock is a
// SET NX key shared across instances; without it, a process-local map.
package locks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/brown2020/ikigaifinder/internal/platform/envutil"
	"github.com/brown2020/ikigaifinder/internal/platform/logger"
)

type Locker interface {
	// TryAcquire takes the named lock for at most ttl. It returns a release
	// func and true on success, or (nil, false) when someone else holds it.
	TryAcquire(ctx context.Context, name string, ttl time.Duration) (func(), bool, error)
}

// NewLocker picks the redis locker when REDIS_ADDR is configured, otherwise
// an in-process one. Single-instance deployments lose nothing with the
// local fallback.
func NewLocker(log *logger.Logger) Locker {
	addr := envutil.String("REDIS_ADDR", "")
	if addr == "" {
		return NewMemoryLocker()
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    envutil.String("REDIS_PASSWORD", ""),
		DialTimeout: 5 * time.Second,
	})
	return &redisLocker{
		log:      log.With("service", "RedisLocker"),
		rdb:      rdb,
		fallback: NewMemoryLocker(),
	}
}

type redisLocker struct {
	log      *logger.Logger
	rdb      *goredis.Client
	fallback Locker
}

func (l *redisLocker) TryAcquire(ctx context.Context, name string, ttl time.Duration) (func(), bool, error) {
	key := "lock:" + name
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		// redis being down must not take generation with it
		l.log.Warn("Redis lock unavailable; falling back to in-process lock", "error", err)
		return l.fallback.TryAcquire(ctx, name, ttl)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// delete only our own token so an expired-and-retaken lock survives
		const script = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.rdb.Eval(releaseCtx, script, []string{key}, token).Err(); err != nil {
			l.log.Warn("Failed to release redis lock", "key", key, "error", err)
		}
	}
	return release, true, nil
}

type memoryLocker struct {
	mu    sync.Mutex
	held  map[string]time.Time
	clock func() time.Time
}

func NewMemoryLocker() Locker {
	return &memoryLocker{held: make(map[string]time.Time), clock: time.Now}
}

func (l *memoryLocker) TryAcquire(_ context.Context, name string, ttl time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if until, ok := l.held[name]; ok && now.Before(until) {
		return nil, false, nil
	}
	l.held[name] = now.Add(ttl)

	release := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, name)
	}
	return release, true, nil
}
