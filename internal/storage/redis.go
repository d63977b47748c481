package storage

import (
	"context"

	"gopkg.in/redis.v5"
)

// Redis stores values as plain strings under prefix+key.
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(addr, prefix string) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		prefix: prefix,
	}
}

func (r *Redis) Read(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	value, err := r.client.Get(r.prefix + key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *Redis) Write(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.client.Set(r.prefix+key, value, 0).Err()
}

func (r *Redis) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.client.Ping().Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
