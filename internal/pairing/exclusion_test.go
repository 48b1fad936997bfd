package pairing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvhs/alumnirank/internal/pairing"
)

func TestMemoryExclusionCache_OrderAndEviction(t *testing.T) {
	ctx := context.Background()
	cache := pairing.NewMemoryExclusionCache(3)

	require.NoError(t, cache.Add(ctx, "a", "b", "c"))

	recent, err := cache.Recent(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, recent)

	// Adding a fourth id evicts the least recent one.
	require.NoError(t, cache.Add(ctx, "d"))
	recent, err = cache.Recent(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "c", "b"}, recent)
}

func TestMemoryExclusionCache_ReAddRefreshes(t *testing.T) {
	ctx := context.Background()
	cache := pairing.NewMemoryExclusionCache(3)

	require.NoError(t, cache.Add(ctx, "a", "b", "c"))
	require.NoError(t, cache.Add(ctx, "a"))

	recent, err := cache.Recent(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "b"}, recent)

	// "a" was refreshed, so "b" is now the eviction candidate.
	require.NoError(t, cache.Add(ctx, "d"))
	recent, err = cache.Recent(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "a", "c"}, recent)
}

func TestMemoryExclusionCache_Clear(t *testing.T) {
	ctx := context.Background()
	cache := pairing.NewMemoryExclusionCache(5)

	require.NoError(t, cache.Add(ctx, "a", "b"))

	n, err := cache.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, cache.Clear(ctx))

	n, err = cache.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	recent, err := cache.Recent(ctx)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestMemoryExclusionCache_IgnoresEmptyIDs(t *testing.T) {
	ctx := context.Background()
	cache := pairing.NewMemoryExclusionCache(5)

	require.NoError(t, cache.Add(ctx, "", "a", ""))

	recent, err := cache.Recent(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, recent)
}
