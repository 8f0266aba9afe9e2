package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client, time.Hour), mr
}

func TestLoad_UnknownSessionIsEmpty(t *testing.T) {
	store, mr := setupStore(t)

	h, err := store.Load(context.Background(), "nope")
	require.NoError(t, err)

	_, ok := h.Get("basket")
	assert.False(t, ok)
	assert.False(t, h.Modified())

	require.NoError(t, h.Save(context.Background()))
	assert.False(t, mr.Exists("session:nope"), "clean handle must not be written")
}

func TestSave_WritesFieldsAndTTL(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	h, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	h.Set("basket", `{"1":{"quantity":2,"price":"9.99"}}`)
	assert.True(t, h.Modified())

	require.NoError(t, h.Save(ctx))
	assert.False(t, h.Modified())
	assert.Equal(t, `{"1":{"quantity":2,"price":"9.99"}}`, mr.HGet("session:s1", "basket"))
	assert.Equal(t, time.Hour, mr.TTL("session:s1"))

	again, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	v, ok := again.Get("basket")
	assert.True(t, ok)
	assert.Equal(t, `{"1":{"quantity":2,"price":"9.99"}}`, v)
}

func TestSave_KeepsOtherFields(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()
	mr.HSet("session:s2", "locale", "ru")

	h, err := store.Load(ctx, "s2")
	require.NoError(t, err)
	h.Set("basket", "{}")
	require.NoError(t, h.Save(ctx))

	assert.Equal(t, "ru", mr.HGet("session:s2", "locale"))
	assert.Equal(t, "{}", mr.HGet("session:s2", "basket"))
}

func TestNewID_Unique(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
}
