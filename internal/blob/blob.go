// Package blob persists named opaque values. The lead store keeps its whole
// collection under one name.
package blob

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("blob: not found")

type Store interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Put(ctx context.Context, name string, data []byte) error
	Close() error
}

type Options struct {
	Driver      string
	SQLitePath  string
	DatabaseURL string
	RedisURL    string
}

// Open returns the backend selected by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(opts.Driver) {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return NewSQLite(opts.SQLitePath)
	case "postgres":
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("blob: open: DATABASE_URL is required for postgres")
		}
		return NewPostgres(ctx, opts.DatabaseURL)
	case "redis":
		if opts.RedisURL == "" {
			return nil, fmt.Errorf("blob: open: REDIS_URL is required for redis")
		}
		return NewRedis(ctx, opts.RedisURL)
	default:
		return nil, fmt.Errorf("blob: open: unknown driver %q", opts.Driver)
	}
}
