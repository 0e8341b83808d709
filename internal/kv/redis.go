package kv

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "shelf:"
	redisDialTimeout   = 3 * time.Second
	redisIOTimeout     = 2 * time.Second
)

// RedisOptions configure a Redis-backed store.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // prepended to every key; defaults to "shelf:"
}

// Redis is a Store backed by a Redis server. Keys never expire.
type Redis struct {
	db     *redis.Client
	prefix string
}

// OpenRedis connects to Redis and verifies the connection with PING.
func OpenRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	if strings.TrimSpace(opts.Addr) == "" {
		return nil, storageErr("open redis", errors.New("redis address is empty"))
	}
	db := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  redisDialTimeout,
		ReadTimeout:  redisIOTimeout,
		WriteTimeout: redisIOTimeout,
	})
	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, storageErr("ping redis", err)
	}

	prefix := opts.Prefix
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &Redis{db: db, prefix: prefix}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.db.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storageErr("redis get "+key, err)
	}
	return val, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.db.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return storageErr("redis set "+key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.db.Del(ctx, r.prefix+key).Err(); err != nil {
		return storageErr("redis del "+key, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.db.Close()
}
