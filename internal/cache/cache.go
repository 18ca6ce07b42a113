// Package cache provides a Redis client wrapper and a distributed lock used
// to serialize daily set generation across instances.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/abhisek/practix/internal/logger"
)

// ErrLockHeld is returned when another holder owns the lock.
var ErrLockHeld = errors.New("cache: lock held")

// Cache wraps a Redis client.
type Cache struct {
	Client *redis.Client
}

// ParseURL validates a Redis connection URL.
func ParseURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	return opts, nil
}

// New creates a new cache client and checks the connection.
func New(ctx context.Context, url string) (*Cache, error) {
	opts, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}

	return &Cache{Client: client}, nil
}

// Close shuts down the cache client.
func (c *Cache) Close() error {
	return c.Client.Close()
}

// HealthCheck verifies the cache connection is alive.
func (c *Cache) HealthCheck(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// Lock is a held lock. Release it when done.
type Lock struct {
	client *redis.Client
	key    string
	token  string
}

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// TryLock acquires key for ttl without waiting.
func (c *Cache) TryLock(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	token := uuid.NewString()
	ok, err := c.Client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return &Lock{client: c.Client, key: key, token: token}, nil
}

// Lock acquires key, polling until wait elapses. It returns ErrLockHeld
// when the lock could not be taken in time.
func (c *Cache) Lock(ctx context.Context, key string, ttl, wait time.Duration) (*Lock, error) {
	deadline := time.Now().Add(wait)
	for {
		l, err := c.TryLock(ctx, key, ttl)
		if !errors.Is(err, ErrLockHeld) {
			return l, err
		}
		if time.Now().After(deadline) {
			return nil, ErrLockHeld
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// Release frees the lock if it is still ours.
func (l *Lock) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.key, err)
	}
	return nil
}

// KeyLocker adapts Cache to a per-key acquire/release interface.
type KeyLocker struct {
	cache *Cache
	ttl   time.Duration
	wait  time.Duration
	log   *logger.Logger
}

// NewKeyLocker returns a KeyLocker. ttl bounds how long a crashed holder
// keeps the key; wait bounds how long Acquire polls.
func NewKeyLocker(c *Cache, ttl, wait time.Duration, log *logger.Logger) *KeyLocker {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &KeyLocker{cache: c, ttl: ttl, wait: wait, log: logger.OrNop(log)}
}

// Acquire takes the lock for key and returns its release func.
func (k *KeyLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l, err := k.cache.Lock(ctx, key, k.ttl, k.wait)
	if err != nil {
		return nil, err
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
		defer cancel()
		if err := l.Release(ctx); err != nil {
			k.log.Warn("lock release failed", "key", key, "error", err)
		}
	}, nil
}
