package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisClient is the part of *redis.Client the store uses.
type redisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisDocumentStore stores each document under "collection:id" and keeps
// the ids of a collection in a list, newest first.
type RedisDocumentStore struct {
	client redisClient
	ttl    time.Duration
}

func NewRedisDocumentStore(addr, password string, db int, ttl time.Duration) *RedisDocumentStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisDocumentStore{
		client: rdb,
		ttl:    ttl,
	}
}

func (r *RedisDocumentStore) Put(ctx context.Context, collection, id string, doc []byte) error {
	if err := r.client.Set(ctx, documentKey(collection, id), doc, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", id, err)
	}
	if err := r.client.LPush(ctx, collection, id).Err(); err != nil {
		return fmt.Errorf("redis lpush %s: %w", collection, err)
	}
	return nil
}

func (r *RedisDocumentStore) Get(ctx context.Context, collection, id string) ([]byte, error) {
	val, err := r.client.Get(ctx, documentKey(collection, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", id, err)
	}
	return val, nil
}

func (r *RedisDocumentStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisDocumentStore) Close() error {
	return r.client.Close()
}
