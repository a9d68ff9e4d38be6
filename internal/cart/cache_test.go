package cart

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/squiirlabs/marketplace/internal/domain"
)

func setupCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisCache(client), mr
}

func TestRedisCache(t *testing.T) {
	entries := []domain.CartEntry{
		{Product: domain.Product{ID: "p1", Name: "Lamp", Price: 1000}, Quantity: 2},
		{Product: domain.Product{ID: "p2", Name: "Mug", Price: 500}, Quantity: 1},
	}

	t.Run("round trips entries", func(t *testing.T) {
		cache, _ := setupCache(t)
		ctx := context.Background()

		if err := cache.Set(ctx, "user-1", entries); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := cache.Get(ctx, "user-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(got))
		}
		if got[0].Product.ID != "p1" || got[0].Quantity != 2 {
			t.Errorf("unexpected first entry: %+v", got[0])
		}
	})

	t.Run("misses for unknown user", func(t *testing.T) {
		cache, _ := setupCache(t)

		if _, err := cache.Get(context.Background(), "nobody"); err != ErrCacheMiss {
			t.Errorf("expected ErrCacheMiss, got %v", err)
		}
	})

	t.Run("misses after delete", func(t *testing.T) {
		cache, _ := setupCache(t)
		ctx := context.Background()

		if err := cache.Set(ctx, "user-1", entries); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := cache.Delete(ctx, "user-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := cache.Get(ctx, "user-1"); err != ErrCacheMiss {
			t.Errorf("expected ErrCacheMiss, got %v", err)
		}
	})

	t.Run("misses after TTL expiry", func(t *testing.T) {
		cache, mr := setupCache(t)
		ctx := context.Background()

		if err := cache.Set(ctx, "user-1", entries); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		mr.FastForward(cache.baseTTL * 2)

		if _, err := cache.Get(ctx, "user-1"); err != ErrCacheMiss {
			t.Errorf("expected ErrCacheMiss, got %v", err)
		}
	})
}
