//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"instadoc/internal/verification"
	"instadoc/pkg/platform/sentinel"
	"instadoc/pkg/testutil/containers"
)

func TestRedisChallengeStore(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	store := NewRedis(rc.Client)

	ch := verification.Challenge{
		Email:    "doc@example.com",
		Code:     "12345",
		IssuedAt: time.Now().UTC().Truncate(time.Second),
	}

	t.Run("get before put returns ErrNotFound", func(t *testing.T) {
		_, err := store.Get(ctx, "sess-1")
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("put then get round-trips", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "sess-1", ch))
		got, err := store.Get(ctx, "sess-1")
		require.NoError(t, err)
		require.Equal(t, ch.Code, got.Code)
		require.Equal(t, ch.Email, got.Email)
		require.True(t, ch.IssuedAt.Equal(got.IssuedAt))
	})

	t.Run("put overwrites", func(t *testing.T) {
		newer := ch
		newer.Code = "99999"
		require.NoError(t, store.Put(ctx, "sess-1", newer))
		got, err := store.Get(ctx, "sess-1")
		require.NoError(t, err)
		require.Equal(t, "99999", got.Code)
	})

	t.Run("delete consumes", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "sess-1"))
		_, err := store.Get(ctx, "sess-1")
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
