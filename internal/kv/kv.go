// Package kv provides the local durable key-value store shelf mirrors its
// collections into. Values are opaque strings; callers own the encoding.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Well-known keys. Each collection owns exactly one key.
const (
	KeyProducts        = "products"
	KeyUsers           = "users"
	KeyAuthenticated   = "isAuthenticated"
	KeyProductImageURL = "productImageUrl"
)

// ErrStorage marks failures at the storage boundary. Every error returned by a
// Store wraps it so callers can tell storage faults from everything else.
var ErrStorage = errors.New("storage failure")

// Store is a process-wide keyed string store. A missing key is reported with
// ok=false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options select and configure a Store backend.
type Options struct {
	Backend string

	// File backend.
	Path string

	// Redis backend.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Open builds the Store described by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		return OpenFile(opts.Path)
	case BackendRedis:
		return OpenRedis(ctx, RedisOptions{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
			Prefix:   opts.RedisPrefix,
		})
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
