package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/core/types"
	"tillbook/internal/infrastructure/store/memory"
)

// countingCache records hits so tests can tell cached reads from store
// reads. A nil inner hit means a miss.
type countingCache struct {
	items       map[id.ID]*Item
	gets, sets  int
	invalidates int
}

func newCountingCache() *countingCache {
	return &countingCache{items: make(map[id.ID]*Item)}
}

func (c *countingCache) Get(_ context.Context, itemID id.ID) (*Item, bool, error) {
	c.gets++
	item, ok := c.items[itemID]
	return item, ok, nil
}

func (c *countingCache) Set(_ context.Context, item *Item) error {
	c.sets++
	c.items[item.ID] = item
	return nil
}

func (c *countingCache) Invalidate(_ context.Context, itemID id.ID) error {
	c.invalidates++
	delete(c.items, itemID)
	return nil
}

func TestCRUD(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.New(), nil)

	item := NewItem("espresso", 18000, 6000)
	require.NoError(t, svc.Create(ctx, item))

	got, err := svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "espresso", got.Name)

	got.Name = "double espresso"
	require.NoError(t, svc.Update(ctx, got))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "double espresso", all[0].Name)

	require.NoError(t, svc.Delete(ctx, item.ID))
	_, err = svc.Get(ctx, item.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.New(), nil)

	item := NewItem("", 18000, 6000)
	assert.Error(t, svc.Create(ctx, item))

	item = NewItem("tea", -1, 0)
	assert.Error(t, svc.Create(ctx, item))
}

func TestTryReserve(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.New(), nil)

	item := NewItem("beans", 250000, 180000)
	item.TrackStock = true
	item.Stock = types.NewQuantityFromInt(5)
	require.NoError(t, svc.Create(ctx, item))

	ok, err := svc.TryReserve(ctx, item.ID, types.NewQuantityFromInt(3))
	require.NoError(t, err)
	assert.True(t, ok)

	// Insufficient: no mutation.
	ok, err = svc.TryReserve(ctx, item.ID, types.NewQuantityFromInt(3))
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(2), got.Stock)

	require.NoError(t, svc.Release(ctx, item.ID, types.NewQuantityFromInt(3)))
	got, err = svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(5), got.Stock)
}

func TestTryReserve_UntrackedAlwaysSucceeds(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.New(), nil)

	item := NewItem("service fee", 5000, 0)
	require.NoError(t, svc.Create(ctx, item))

	ok, err := svc.TryReserve(ctx, item.ID, types.NewQuantityFromInt(1000))
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, got.Stock.IsZero())
}

func TestGet_ReadsThroughCache(t *testing.T) {
	ctx := context.Background()
	cache := newCountingCache()
	svc := NewService(memory.New(), cache)

	item := NewItem("espresso", 18000, 6000)
	require.NoError(t, svc.Create(ctx, item))

	// First read misses and populates, second read hits.
	_, err := svc.Get(ctx, item.ID)
	require.NoError(t, err)
	_, err = svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.gets)
	assert.Equal(t, 1, cache.sets)
}

func TestReserve_InvalidatesCache(t *testing.T) {
	ctx := context.Background()
	cache := newCountingCache()
	svc := NewService(memory.New(), cache)

	item := NewItem("beans", 250000, 180000)
	item.TrackStock = true
	item.Stock = types.NewQuantityFromInt(5)
	require.NoError(t, svc.Create(ctx, item))

	_, err := svc.Get(ctx, item.ID) // populate cache
	require.NoError(t, err)

	ok, err := svc.TryReserve(ctx, item.ID, types.NewQuantityFromInt(2))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, cache.invalidates)

	// A fresh read must see the decremented counter, not the cached one.
	got, err := svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(3), got.Stock)
}
