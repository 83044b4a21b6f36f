package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/core/types"
	"tillbook/internal/domain/cart"
	"tillbook/internal/domain/catalog"
)

type trackingReserver struct {
	held map[id.ID]types.Quantity
}

func newTrackingReserver() *trackingReserver {
	return &trackingReserver{held: make(map[id.ID]types.Quantity)}
}

func (r *trackingReserver) TryReserve(_ context.Context, itemID id.ID, qty types.Quantity) (bool, error) {
	r.held[itemID] += qty
	return true, nil
}

func (r *trackingReserver) Release(_ context.Context, itemID id.ID, qty types.Quantity) error {
	r.held[itemID] -= qty
	return nil
}

func (r *trackingReserver) totalHeld() types.Quantity {
	var total types.Quantity
	for _, q := range r.held {
		total += q
	}
	return total
}

func TestOpenGetClose(t *testing.T) {
	r := newTrackingReserver()
	m := NewManager(r, time.Hour)

	s := m.Open(id.New(), "Ana")
	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.CashierName)
	assert.Len(t, m.List(), 1)

	require.NoError(t, m.Close(context.Background(), s.ID))
	_, err = m.Get(s.ID)
	assert.True(t, apperror.IsNotFound(err))

	err = m.Close(context.Background(), s.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestClose_ReleasesCartStock(t *testing.T) {
	ctx := context.Background()
	r := newTrackingReserver()
	m := NewManager(r, time.Hour)

	s := m.Open(id.New(), "Ana")
	item := catalog.NewItem("coffee", 15000, 5000)
	require.NoError(t, s.Cart.AddLine(ctx, item, types.NewQuantityFromInt(3), cart.AddOptions{}))
	require.Equal(t, types.NewQuantityFromInt(3), r.totalHeld())

	require.NoError(t, m.Close(ctx, s.ID))
	assert.True(t, r.totalHeld().IsZero())
}

func TestSweepIdle(t *testing.T) {
	ctx := context.Background()
	r := newTrackingReserver()
	m := NewManager(r, 30*time.Minute)

	stale := m.Open(id.New(), "Ana")
	item := catalog.NewItem("coffee", 15000, 5000)
	require.NoError(t, stale.Cart.AddLine(ctx, item, types.One, cart.AddOptions{}))
	stale.LastActive = time.Now().UTC().Add(-time.Hour)

	fresh := m.Open(id.New(), "Bo")

	swept := m.SweepIdle(ctx)
	assert.Equal(t, 1, swept)
	assert.True(t, r.totalHeld().IsZero())

	_, err := m.Get(stale.ID)
	assert.True(t, apperror.IsNotFound(err))
	_, err = m.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestSweepAll(t *testing.T) {
	ctx := context.Background()
	r := newTrackingReserver()
	m := NewManager(r, time.Hour)

	m.Open(id.New(), "Ana")
	s := m.Open(id.New(), "Bo")
	item := catalog.NewItem("coffee", 15000, 5000)
	require.NoError(t, s.Cart.AddLine(ctx, item, types.One, cart.AddOptions{}))

	swept := m.SweepAll(ctx)
	assert.Equal(t, 2, swept)
	assert.Empty(t, m.List())
	assert.True(t, r.totalHeld().IsZero())
}
