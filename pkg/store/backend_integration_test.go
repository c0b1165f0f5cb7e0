//go:build integration

package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRedisStore_Integration(t *testing.T) {
	addr := os.Getenv("SHELFSPACE_REDIS_ADDR")
	if addr == "" {
		t.Skip("SHELFSPACE_REDIS_ADDR not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	key := "shelfspace:test:" + uuid.NewString()
	s, err := NewRedisStore(ctx, RedisConfig{Addr: addr, Key: key})
	if err != nil {
		t.Fatalf("NewRedisStore() error: %v", err)
	}
	t.Cleanup(func() {
		s.client.Del(context.Background(), key)
		s.Close()
	})

	exerciseStore(t, s)
}

func TestMongoStore_Integration(t *testing.T) {
	uri := os.Getenv("SHELFSPACE_MONGO_URI")
	if uri == "" {
		t.Skip("SHELFSPACE_MONGO_URI not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := NewMongoStore(ctx, MongoConfig{URI: uri, Database: "shelfspace_test", LibraryID: uuid.NewString()})
	if err != nil {
		t.Fatalf("NewMongoStore() error: %v", err)
	}
	t.Cleanup(func() {
		s.collection.Drop(context.Background())
		s.Close()
	})

	exerciseStore(t, s)
}
