package redisx

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := New(mr.Addr())
	defer rdb.Close()

	ctx := context.Background()
	key := fmt.Sprintf(KeyDedup, "basket-worker", "ev-1")

	first, err := MarkOnce(ctx, rdb, key, TTLDedup)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := MarkOnce(ctx, rdb, key, TTLDedup)
	require.NoError(t, err)
	assert.False(t, again)

	assert.True(t, mr.Exists(key))
	assert.Equal(t, 48*time.Hour, mr.TTL(key))
}
