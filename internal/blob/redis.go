package blob

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type Redis struct {
	Client *redis.Client
	Prefix string
}

func NewRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("blob: redis: parse url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("blob: redis: ping: %w", err)
	}
	return &Redis{Client: client, Prefix: "blob:"}, nil
}

func (r *Redis) Get(ctx context.Context, name string) ([]byte, error) {
	v, err := r.Client.Get(ctx, r.Prefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("blob: redis: get %s: %w", name, err)
	}
	return v, nil
}

func (r *Redis) Put(ctx context.Context, name string, data []byte) error {
	if err := r.Client.Set(ctx, r.Prefix+name, data, 0).Err(); err != nil {
		return fmt.Errorf("blob: redis: put %s: %w", name, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.Client.Close()
}
