package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCallbackDeduper(t *testing.T) {
	d := newMemoryCallbackDeduper(time.Minute)
	ctx := context.Background()

	seen, err := d.Seen(ctx, "tx-1")
	require.NoError(t, err)
	assert.False(t, seen, "first sighting is not a replay")

	seen, err = d.Seen(ctx, "tx-1")
	require.NoError(t, err)
	assert.True(t, seen, "second sighting is a replay")

	seen, err = d.Seen(ctx, "tx-2")
	require.NoError(t, err)
	assert.False(t, seen, "different transaction is independent")
}

func TestMemoryCallbackDeduperExpiry(t *testing.T) {
	d := newMemoryCallbackDeduper(10 * time.Millisecond)
	ctx := context.Background()

	_, err := d.Seen(ctx, "tx-1")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	seen, err := d.Seen(ctx, "tx-1")
	require.NoError(t, err)
	assert.False(t, seen, "expired entry is forgotten")
}

func TestNewCallbackDeduperFallsBackWithoutRedis(t *testing.T) {
	d, err := NewCallbackDeduper("", "", 0, time.Minute)
	require.NoError(t, err)
	_, ok := d.(*memoryCallbackDeduper)
	assert.True(t, ok)
}
