package order

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
	"tillbook/internal/domain/cashflow"
	"tillbook/internal/domain/catalog"
	"tillbook/internal/domain/creditbook"
	"tillbook/internal/infrastructure/store"
	"tillbook/internal/infrastructure/store/memory"
)

// stubReserver tracks stock for items registered in its map; unknown
// items are untracked and always reservable.
type stubReserver struct {
	stock map[id.ID]types.Quantity
}

func newStubReserver() *stubReserver {
	return &stubReserver{stock: make(map[id.ID]types.Quantity)}
}

func (r *stubReserver) TryReserve(_ context.Context, itemID id.ID, qty types.Quantity) (bool, error) {
	have, tracked := r.stock[itemID]
	if !tracked {
		return true, nil
	}
	if have < qty {
		return false, nil
	}
	r.stock[itemID] = have - qty
	return true, nil
}

func (r *stubReserver) Release(_ context.Context, itemID id.ID, qty types.Quantity) error {
	if _, tracked := r.stock[itemID]; tracked {
		r.stock[itemID] += qty
	}
	return nil
}

type fixture struct {
	store    store.Store
	reserver *stubReserver
	books    *creditbook.Service
	cash     *cashflow.Service
	orders   *Service
}

func newFixture() *fixture {
	st := memory.New()
	books := creditbook.NewService(st)
	cash := cashflow.NewService(st)
	r := newStubReserver()
	return &fixture{
		store:    st,
		reserver: r,
		books:    books,
		cash:     cash,
		orders:   NewService(st, books, r, cash),
	}
}

// openOrder builds a one-line order for a 10000 item and persists it as
// active, holding a stock reservation of one unit.
func (f *fixture) openOrder(t *testing.T) *Order {
	t.Helper()
	ctx := context.Background()

	item := catalog.NewItem("nasi goreng", 10000, 4000)
	item.TrackStock = true
	f.reserver.stock[item.ID] = types.NewQuantityFromInt(9)

	c := cart.New(f.reserver)
	require.NoError(t, c.AddLine(ctx, item, types.One, cart.AddOptions{}))

	o, err := f.orders.Open(ctx, c, id.New(), "Ana", "Pak Budi")
	require.NoError(t, err)
	c.Clear()
	return o
}

func TestCheckout_FullPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := f.openOrder(t)

	settled, err := f.orders.Checkout(ctx, o.ID, 10000, id.Nil())
	require.NoError(t, err)

	assert.True(t, settled.Paid)
	assert.Equal(t, types.MinorUnits(0), settled.Outstanding())
	assert.True(t, id.IsNil(settled.CreditBookID))

	// Moved from active to the day partition.
	_, err = f.orders.GetActive(ctx, o.ID)
	assert.True(t, apperror.IsNotFound(err))

	got, err := f.orders.GetHistorical(ctx, settled.HistoryBucket, o.ID)
	require.NoError(t, err)
	assert.Equal(t, settled.Total, got.Total)

	// The sale landed in the register cash flow.
	entries, err := f.cash.ListDay(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, types.MinorUnits(10000), entries[0].Amount)
	assert.Equal(t, cashflow.DirectionIn, entries[0].Direction)
}

func TestCheckout_OverpaymentRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := f.openOrder(t)

	_, err := f.orders.Checkout(ctx, o.ID, 12000, id.Nil())
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeOverpayment))

	// Nothing moved.
	_, err = f.orders.GetActive(ctx, o.ID)
	assert.NoError(t, err)
}

func TestCheckout_UnderpaidRequiresCreditBook(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := f.openOrder(t)

	_, err := f.orders.Checkout(ctx, o.ID, 6000, id.Nil())
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeCreditBookRequired))
}

func TestCheckout_CompletedBookRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := f.openOrder(t)

	book := creditbook.NewBook("Pak Budi", "")
	book.MarkCompleted()
	require.NoError(t, f.books.Create(ctx, book))

	_, err := f.orders.Checkout(ctx, o.ID, 6000, book.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeBookCompleted))
}

func TestCheckout_UnderpaidRecordsCredit(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := f.openOrder(t)

	book := creditbook.NewBook("Pak Budi", "")
	require.NoError(t, f.books.Create(ctx, book))

	settled, err := f.orders.Checkout(ctx, o.ID, 6000, book.ID)
	require.NoError(t, err)

	assert.False(t, settled.Paid)
	assert.Equal(t, types.MinorUnits(4000), settled.Outstanding())
	assert.Equal(t, book.ID, settled.CreditBookID)

	got, err := f.books.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, types.MinorUnits(4000), got.Balance)
	assert.True(t, got.IsAttached(o.ID))
	assert.Equal(t, got.Balance, got.RecordedBalance())
}

func TestPayCredit(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := f.openOrder(t)

	book := creditbook.NewBook("Pak Budi", "")
	require.NoError(t, f.books.Create(ctx, book))

	settled, err := f.orders.Checkout(ctx, o.ID, 6000, book.ID)
	require.NoError(t, err)
	bucket := settled.HistoryBucket

	// Paying more than outstanding is rejected.
	_, err = f.orders.PayCredit(ctx, bucket, o.ID, 5000)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeExcessPayment))

	// Partial payment shrinks the balance, order stays attached.
	paid, err := f.orders.PayCredit(ctx, bucket, o.ID, 1500)
	require.NoError(t, err)
	assert.False(t, paid.Paid)
	assert.Equal(t, types.MinorUnits(2500), paid.Outstanding())

	got, err := f.books.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, types.MinorUnits(2500), got.Balance)
	assert.True(t, got.IsAttached(o.ID))

	// Final payment detaches; the records stay for audit.
	paid, err = f.orders.PayCredit(ctx, bucket, o.ID, 2500)
	require.NoError(t, err)
	assert.True(t, paid.Paid)

	got, err = f.books.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, types.MinorUnits(0), got.Balance)
	assert.False(t, got.IsAttached(o.ID))
	assert.Len(t, got.Records, 3)
	assert.Equal(t, got.Balance, got.RecordedBalance())
}

func TestUncomplete_ReversesCreditAndStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := f.openOrder(t)
	itemID := o.Lines[0].ItemID

	book := creditbook.NewBook("Pak Budi", "")
	require.NoError(t, f.books.Create(ctx, book))

	settled, err := f.orders.Checkout(ctx, o.ID, 6000, book.ID)
	require.NoError(t, err)
	bucket := settled.HistoryBucket

	// One unit reserved out of 9.
	assert.Equal(t, types.NewQuantityFromInt(8), f.reserver.stock[itemID])

	reopened, err := f.orders.Uncomplete(ctx, bucket, o.ID)
	require.NoError(t, err)

	assert.False(t, reopened.Paid)
	assert.False(t, reopened.StockReserved)
	assert.True(t, id.IsNil(reopened.CreditBookID))
	assert.Empty(t, reopened.HistoryBucket)

	// Stock back on the shelf.
	assert.Equal(t, types.NewQuantityFromInt(9), f.reserver.stock[itemID])

	// Debt reversed in the ledger, order detached, invariant holds.
	got, err := f.books.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, types.MinorUnits(0), got.Balance)
	assert.False(t, got.IsAttached(o.ID))
	assert.Equal(t, got.Balance, got.RecordedBalance())

	// Back in the active collection, gone from history.
	_, err = f.orders.GetActive(ctx, o.ID)
	assert.NoError(t, err)
	_, err = f.orders.GetHistorical(ctx, bucket, o.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestUncompleteThenCheckout_ReReservesStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := f.openOrder(t)
	itemID := o.Lines[0].ItemID

	settled, err := f.orders.Checkout(ctx, o.ID, 10000, id.Nil())
	require.NoError(t, err)

	_, err = f.orders.Uncomplete(ctx, settled.HistoryBucket, o.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(9), f.reserver.stock[itemID])

	// Checking out again takes the reservation back first.
	again, err := f.orders.Checkout(ctx, o.ID, 10000, id.Nil())
	require.NoError(t, err)
	assert.True(t, again.StockReserved)
	assert.Equal(t, types.NewQuantityFromInt(8), f.reserver.stock[itemID])
}

func TestMergeIncoming_RollsBackOnInsufficientStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := f.openOrder(t)

	okItem := id.New()
	scarce := id.New()
	f.reserver.stock[okItem] = types.NewQuantityFromInt(5)
	f.reserver.stock[scarce] = types.NewQuantityFromInt(1)

	incoming := []cart.Line{
		{ItemID: okItem, ItemName: "tea", Quantity: types.NewQuantityFromInt(2), UnitPrice: 5000, UnitSize: types.One},
		{ItemID: scarce, ItemName: "cake", Quantity: types.NewQuantityFromInt(3), UnitPrice: 20000, UnitSize: types.One},
	}

	_, err := f.orders.MergeIncoming(ctx, o.ID, incoming)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	// The partial reservation was rolled back.
	assert.Equal(t, types.NewQuantityFromInt(5), f.reserver.stock[okItem])
	assert.Equal(t, types.NewQuantityFromInt(1), f.reserver.stock[scarce])

	got, err := f.orders.GetActive(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, got.Lines, 1)
}

func TestRemoveOneUnit_ReleasesStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := f.openOrder(t)
	itemID := o.Lines[0].ItemID

	incoming := []cart.Line{
		{ItemID: itemID, Quantity: types.NewQuantityFromInt(2), UnitPrice: 10000, UnitSize: types.One},
	}
	_, err := f.orders.MergeIncoming(ctx, o.ID, incoming)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(6), f.reserver.stock[itemID])

	got, err := f.orders.RemoveOneUnit(ctx, o.ID, itemID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(2), got.Lines[0].Quantity)
	assert.Equal(t, types.NewQuantityFromInt(7), f.reserver.stock[itemID])
}

func TestCancel_ReturnsReservation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := f.openOrder(t)
	itemID := o.Lines[0].ItemID

	require.NoError(t, f.orders.Cancel(ctx, o.ID))
	assert.Equal(t, types.NewQuantityFromInt(9), f.reserver.stock[itemID])

	_, err := f.orders.GetActive(ctx, o.ID)
	assert.True(t, apperror.IsNotFound(err))
}
