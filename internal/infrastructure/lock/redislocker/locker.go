// Package redislocker serializes per-business mutations across API replicas.
package redislocker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

const (
	defaultTTL   = 15 * time.Second
	retryBackoff = 50 * time.Millisecond
	retryLimit   = 40
)

// ErrBusy reports a lock held by another request past the retry budget.
var ErrBusy = errors.New("business lock busy")

type Locker struct {
	rdb    *redis.Client
	locker *redislock.Client
	ttl    time.Duration
}

// Connect parses a redis:// URL and checks the server is reachable.
func Connect(ctx context.Context, url string, ttl time.Duration) (*Locker, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(rdb, ttl), nil
}

func New(rdb *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Locker{rdb: rdb, locker: redislock.New(rdb), ttl: ttl}
}

// Acquire takes lock:business:<id>, waiting briefly for a concurrent holder.
func (l *Locker) Acquire(ctx context.Context, businessID string) (func(), error) {
	key := "lock:business:" + businessID
	lock, err := l.locker.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(retryBackoff), retryLimit),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: %s", ErrBusy, businessID)
	}
	if err != nil {
		return nil, fmt.Errorf("obtain %s: %w", key, err)
	}
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			slog.Warn("business_lock_release_failed", "business_id", businessID, "error", err)
		}
	}, nil
}

func (l *Locker) Close() error {
	return l.rdb.Close()
}
