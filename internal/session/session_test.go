package session

import (
	"context"
	"testing"
	"time"

	"grouporder/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

func TestStores_RoundTrip(t *testing.T) {
	_, client := setupTestRedis(t)
	stores := map[string]Store{
		"redis":  NewRedisStore(client, "test", time.Hour),
		"memory": NewMemoryStore(time.Hour),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			token, err := store.Create(ctx, "u1")
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			userID, err := store.Resolve(ctx, token)
			require.NoError(t, err)
			assert.Equal(t, "u1", userID)

			require.NoError(t, store.Revoke(ctx, token))
			_, err = store.Resolve(ctx, token)
			assert.ErrorIs(t, err, domain.ErrUnauthenticated)

			_, err = store.Resolve(ctx, "unknown")
			assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		})
	}
}

func TestRedisStore_SetsTTL(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisStore(client, "test", 30*time.Minute)

	token, err := store.Create(context.Background(), "u1")
	require.NoError(t, err)

	key := "test:session:" + token
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 30*time.Minute, mr.TTL(key))

	mr.FastForward(31 * time.Minute)
	_, err = store.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestMemoryStore_Expires(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	token, err := store.Create(context.Background(), "u1")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
