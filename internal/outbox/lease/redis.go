// Package lease holds the Redis lock that keeps a single crawler active.
package lease

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultKey = "immersion:outbox:crawler-lease"

// acquireScript takes the lease when free and refreshes it when we hold it.
var acquireScript = redis.NewScript(`
local current = redis.call("GET", KEYS[1])
if current == false then
  redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
  return 1
end
if current == ARGV[1] then
  redis.call("PEXPIRE", KEYS[1], ARGV[2])
  return 1
end
return 0
`)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLease is a renewable lock owned by one process.
type RedisLease struct {
	client redis.Scripter
	key    string
	owner  string
	ttl    time.Duration
}

type Option func(*RedisLease)

func WithKey(key string) Option {
	return func(l *RedisLease) {
		l.key = key
	}
}

func WithOwner(owner string) Option {
	return func(l *RedisLease) {
		l.owner = owner
	}
}

func NewRedisLease(client redis.Scripter, ttl time.Duration, opts ...Option) *RedisLease {
	l := &RedisLease{
		client: client,
		key:    defaultKey,
		owner:  uuid.NewString(),
		ttl:    ttl,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *RedisLease) TryAcquire(ctx context.Context) (bool, error) {
	res, err := acquireScript.Run(ctx, l.client, []string{l.key}, l.owner, l.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("acquire crawler lease: %w", err)
	}
	return res == 1, nil
}

func (l *RedisLease) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.owner).Err(); err != nil {
		return fmt.Errorf("release crawler lease: %w", err)
	}
	return nil
}
