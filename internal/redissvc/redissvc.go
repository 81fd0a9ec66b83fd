package redissvc

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type RedisService struct {
	rdb    *redis.Client
	prefix string
}

// Connect dials addr and pings it once. Keys written through the service are
// namespaced with prefix.
func Connect(ctx context.Context, addr string, db int, prefix string) (*RedisService, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", addr, err)
	}
	return NewRedisService(rdb, prefix), nil
}

func NewRedisService(rdb *redis.Client, prefix string) *RedisService {
	return &RedisService{
		rdb:    rdb,
		prefix: prefix,
	}
}

func (a *RedisService) Rdb() *redis.Client {
	return a.rdb
}

// Key joins parts onto the service prefix with ':'.
func (a *RedisService) Key(parts ...string) string {
	k := a.prefix
	for _, p := range parts {
		if k != "" {
			k += ":"
		}
		k += p
	}
	return k
}

func (a *RedisService) Close() error {
	return a.rdb.Close()
}
