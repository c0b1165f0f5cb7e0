package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the key the library is stored under.
const DefaultRedisKey = "shelfspace:library"

// RedisStore keeps the library as one JSON value in Redis.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to Redis and pings it. Ping failures are
// retryable.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, Retryable(unavailable(err, "connect to redis at %s", cfg.Addr))
	}
	return NewRedisStoreWithClient(client, cfg.Key), nil
}

// NewRedisStoreWithClient wraps an existing client. An empty key uses
// DefaultRedisKey.
func NewRedisStoreWithClient(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Load(ctx context.Context) (*Library, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return Default(), nil
	}
	if err != nil {
		return nil, unavailable(err, "get %s", s.key)
	}

	var lib Library
	if err := json.Unmarshal(data, &lib); err != nil {
		return nil, corrupt(err, "parse library at %s", s.key)
	}
	return normalize(&lib), nil
}

func (s *RedisStore) Save(ctx context.Context, lib *Library) error {
	data, err := json.Marshal(normalize(lib))
	if err != nil {
		return fmt.Errorf("marshal library: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return unavailable(err, "set %s", s.key)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
