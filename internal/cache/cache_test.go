package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*DocumentCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := New(context.Background(), Config{Addr: mr.Addr(), TTL: time.Minute})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c, mr
}

func TestDocumentCache_SetGet(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, Key("d1"), `{"id":"d1"}`))

	val, err := c.Get(ctx, Key("d1"))
	require.NoError(t, err)
	assert.Equal(t, `{"id":"d1"}`, val)
}

func TestDocumentCache_MissIsNotAnError(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t)

	val, err := c.Get(context.Background(), Key("missing"))
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestDocumentCache_Del(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, Key("d1"), "x"))
	require.NoError(t, c.Del(ctx, Key("d1"), Key("d2")))

	val, err := c.Get(ctx, Key("d1"))
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestDocumentCache_EntriesExpire(t *testing.T) {
	t.Parallel()

	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, Key("d1"), "x"))
	mr.FastForward(2 * time.Minute)

	val, err := c.Get(ctx, Key("d1"))
	require.NoError(t, err)
	assert.Empty(t, val)
}
