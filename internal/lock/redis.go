package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// unlockLua deletes the key only while it still carries the holder's token.
const unlockLua = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`

const defaultLockTTL = 10 * time.Second

// RedisConfig holds connection parameters for the Redis locker.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisLocker implements Locker with SETNX plus a TTL. Release runs a Lua
// script so a holder never deletes a lock that expired and was re-taken.
type RedisLocker struct {
	rdb      *redis.Client
	unlockSc *redis.Script
	ttl      time.Duration
}

// NewRedisLocker connects and pings Redis.
func NewRedisLocker(ctx context.Context, cfg RedisConfig) (*RedisLocker, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{
		rdb:      rdb,
		unlockSc: redis.NewScript(unlockLua),
		ttl:      ttl,
	}, nil
}

func (l *RedisLocker) Close() error {
	return l.rdb.Close()
}

func lockKey(key string) string {
	return "landau:lock:" + key
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.New().String()
	lk := lockKey(key)

	ok, err := l.rdb.SetNX(ctx, lk, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's context may already be cancelled.
			unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = l.unlockSc.Run(unlockCtx, l.rdb, []string{lk}, token).Err()
		})
	}, nil
}

var _ Locker = (*RedisLocker)(nil)
