package order

import (
	"context"
	"fmt"
	"time"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/core/types"
	"tillbook/internal/domain/cart"
	"tillbook/internal/domain/cashflow"
	"tillbook/internal/domain/creditbook"
	"tillbook/internal/infrastructure/store"
	"tillbook/pkg/logger"
)

// Service drives the order lifecycle. The stores are independent keyed
// collections with no cross-store transactions: every multi-step mutation
// runs as an ordered sequence of awaited writes, ledger before history
// move, so a crash between steps leaves a loudly detectable state instead
// of a silently inconsistent one.
type Service struct {
	store store.Store
	books *creditbook.Service
	stock cart.StockReserver
	cash  *cashflow.Service // optional; nil skips cash-flow recording
}

// NewService creates an order service. cash may be nil.
func NewService(st store.Store, books *creditbook.Service, stock cart.StockReserver, cash *cashflow.Service) *Service {
	return &Service{
		store: st,
		books: books,
		stock: stock,
		cash:  cash,
	}
}

// --- Active orders ---

// Open builds an active order from a cart snapshot and persists it.
// The cart's stock reservation transfers to the order; the caller clears
// the cart afterwards without touching stock.
func (s *Service) Open(ctx context.Context, c *cart.Cart, cashierID id.ID, cashierName, customerName string) (*Order, error) {
	o := FromCart(c, cashierID, cashierName, customerName)
	if err := o.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, store.CollectionActiveOrders, o.ID.String(), o); err != nil {
		return nil, err
	}

	logger.Info(ctx, "order opened",
		"order_id", o.ID,
		"lines", len(o.Lines),
		"base_amount", o.BaseAmount,
	)
	return o, nil
}

// GetActive returns an active order.
func (s *Service) GetActive(ctx context.Context, orderID id.ID) (*Order, error) {
	return store.Get[Order](ctx, s.store, store.CollectionActiveOrders, orderID.String())
}

// ListActive returns all active orders.
func (s *Service) ListActive(ctx context.Context) ([]Order, error) {
	return store.List[Order](ctx, s.store, store.CollectionActiveOrders)
}

// SaveActive recalculates and persists a mutated active order.
func (s *Service) SaveActive(ctx context.Context, o *Order) error {
	if err := o.Validate(ctx); err != nil {
		return err
	}
	o.RecalculateTotal()
	o.Touch()
	return s.store.Put(ctx, store.CollectionActiveOrders, o.ID.String(), o)
}

// MergeIncoming adds new lines to an open order, reserving stock for the
// incoming quantities first. Nothing mutates when a reservation fails.
func (s *Service) MergeIncoming(ctx context.Context, orderID id.ID, incoming []cart.Line) (*Order, error) {
	o, err := s.GetActive(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.StockReserved {
		reserved := make([]cart.Line, 0, len(incoming))
		for _, line := range incoming {
			ok, err := s.stock.TryReserve(ctx, line.ItemID, line.Quantity)
			if err == nil && !ok {
				err = apperror.NewInsufficientStock(line.ItemID.String(), line.Quantity.Float64(), 0)
			}
			if err != nil {
				s.releaseLines(ctx, reserved)
				return nil, err
			}
			reserved = append(reserved, line)
		}
	}

	o.MergeIncoming(incoming)
	if err := s.store.Put(ctx, store.CollectionActiveOrders, o.ID.String(), o); err != nil {
		return nil, err
	}
	return o, nil
}

// RemoveOneUnit takes one sale unit off an order line and returns the
// matching stock reservation to the catalog.
func (s *Service) RemoveOneUnit(ctx context.Context, orderID, itemID id.ID) (*Order, error) {
	o, err := s.GetActive(ctx, orderID)
	if err != nil {
		return nil, err
	}

	removed, err := o.RemoveOneUnit(itemID)
	if err != nil {
		return nil, err
	}
	if o.StockReserved {
		if err := s.stock.Release(ctx, itemID, removed); err != nil {
			return nil, err
		}
	}

	if err := s.store.Put(ctx, store.CollectionActiveOrders, o.ID.String(), o); err != nil {
		return nil, err
	}
	return o, nil
}

// Cancel deletes an active order and returns its reserved stock.
func (s *Service) Cancel(ctx context.Context, orderID id.ID) error {
	o, err := s.GetActive(ctx, orderID)
	if err != nil {
		return err
	}
	if o.StockReserved {
		s.releaseLines(ctx, o.Lines)
	}
	if err := s.store.Delete(ctx, store.CollectionActiveOrders, orderID.String()); err != nil {
		return err
	}
	logger.Info(ctx, "order cancelled", "order_id", orderID)
	return nil
}

// --- Checkout ---

// Checkout settles an active order and moves it to date-partitioned
// history. Validation (overpayment, missing credit book) happens before
// any mutation. When underpaid, the credit delta is recorded in the
// ledger and the book is persisted before the order moves, so a failure
// in between is detectable from the attachment rather than silent.
func (s *Service) Checkout(ctx context.Context, orderID id.ID, payAmount types.MinorUnits, creditBookID id.ID) (*Order, error) {
	o, err := s.GetActive(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o.RecalculateTotal()

	if payAmount.IsNegative() {
		return nil, apperror.NewValidation("pay amount must not be negative").
			WithDetail("field", "payAmount")
	}
	if payAmount > o.Total {
		return nil, apperror.NewOverpayment(int64(payAmount), int64(o.Total))
	}

	creditDelta := o.Total - payAmount
	if creditDelta > 0 && id.IsNil(creditBookID) {
		return nil, apperror.NewCreditBookRequired(orderID.String())
	}

	var book *creditbook.Book
	if creditDelta > 0 {
		book, err = s.books.Get(ctx, creditBookID)
		if err != nil {
			return nil, err
		}
		if book.Completed {
			return nil, apperror.NewBusinessRule(apperror.CodeBookCompleted, "credit book is completed")
		}
	}

	// An uncompleted order no longer holds its reservation; take it again.
	if !o.StockReserved {
		if err := s.reserveLines(ctx, o.Lines); err != nil {
			return nil, err
		}
		o.StockReserved = true
	}

	now := time.Now().UTC()
	bucket := store.DayBucket(now)

	o.PayAmount = payAmount
	o.Paid = payAmount >= o.Total
	o.Date = now
	o.HistoryBucket = bucket
	o.Touch()

	// Ledger first: a crash after this write leaves the credit recorded
	// and the order still active, which Uncomplete can reconcile.
	if creditDelta > 0 {
		o.CreditBookID = book.ID
		book.AddRecord("Credit on "+o.ShortLabel(), creditDelta, creditbook.DirectionCashOut, orderKey(bucket, o.ID), "")
		book.AttachOrder(o.ID, o.ShortLabel(), bucket)
		if err := s.books.Save(ctx, book); err != nil {
			return nil, err
		}
	}

	if err := s.store.Put(ctx, store.HistoryCollection(now), o.ID.String(), o); err != nil {
		return nil, apperror.NewPersistence("checkout history write", err).
			WithDetail("order_id", o.ID.String())
	}
	if err := s.store.Delete(ctx, store.CollectionActiveOrders, o.ID.String()); err != nil {
		return nil, apperror.NewPersistence("checkout active delete", err).
			WithDetail("order_id", o.ID.String())
	}

	s.recordCash(ctx, "Sale "+o.ShortLabel(), payAmount, now)

	logger.Info(ctx, "order checked out",
		"order_id", o.ID,
		"total", o.Total,
		"pay_amount", payAmount,
		"credit", creditDelta,
		"bucket", bucket,
	)
	return o, nil
}

// --- Historical orders ---

// GetHistorical returns an order from a date-bucket partition.
func (s *Service) GetHistorical(ctx context.Context, bucket string, orderID id.ID) (*Order, error) {
	return store.Get[Order](ctx, s.store, store.HistoryCollectionForBucket(bucket), orderID.String())
}

// ListHistory returns the orders settled on a given day.
func (s *Service) ListHistory(ctx context.Context, date time.Time) ([]Order, error) {
	return store.List[Order](ctx, s.store, store.HistoryCollection(date))
}

// PayCredit applies a partial or final payment to a historical credit
// order: pay amount grows, the ledger balance shrinks by the same amount,
// and a fully paid order is detached from the book (its records remain).
func (s *Service) PayCredit(ctx context.Context, bucket string, orderID id.ID, amount types.MinorUnits) (*Order, error) {
	if !amount.IsPositive() {
		return nil, apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount")
	}

	o, err := s.GetHistorical(ctx, bucket, orderID)
	if err != nil {
		return nil, err
	}

	outstanding := o.Outstanding()
	if amount > outstanding {
		return nil, apperror.NewExcessPayment(int64(amount), int64(outstanding))
	}

	var book *creditbook.Book
	if !id.IsNil(o.CreditBookID) {
		book, err = s.books.Get(ctx, o.CreditBookID)
		if err != nil {
			return nil, err
		}
	}

	o.PayAmount += amount
	o.Paid = o.PayAmount >= o.Total
	o.Touch()

	if book != nil {
		book.AddRecord("Payment on "+o.ShortLabel(), amount, creditbook.DirectionCashIn, orderKey(bucket, o.ID), "")
		if o.Paid {
			book.DetachOrder(o.ID)
		}
		if err := s.books.Save(ctx, book); err != nil {
			return nil, err
		}
	}

	if err := s.store.Put(ctx, store.HistoryCollectionForBucket(bucket), o.ID.String(), o); err != nil {
		return nil, apperror.NewPersistence("credit payment order write", err).
			WithDetail("order_id", o.ID.String())
	}

	s.recordCash(ctx, "Credit payment "+o.ShortLabel(), amount, time.Now().UTC())

	logger.Info(ctx, "credit payment applied",
		"order_id", o.ID,
		"amount", amount,
		"paid", o.Paid,
	)
	return o, nil
}

// Uncomplete reverses a historical order back to active: all line
// quantities return to stock and the outstanding credit is reversed in
// the ledger. The attachment membership check makes re-running a partial
// reversal a no-op on the ledger side.
func (s *Service) Uncomplete(ctx context.Context, bucket string, orderID id.ID) (*Order, error) {
	o, err := s.GetHistorical(ctx, bucket, orderID)
	if err != nil {
		return nil, err
	}

	if !id.IsNil(o.CreditBookID) {
		book, err := s.books.Get(ctx, o.CreditBookID)
		if err != nil {
			return nil, err
		}
		// Membership guards idempotence: a delta already reversed (or
		// never applied) is skipped.
		if book.IsAttached(o.ID) {
			if outstanding := o.Outstanding(); outstanding > 0 {
				book.AddRecord("Uncompleted "+o.ShortLabel(), outstanding, creditbook.DirectionCashIn, orderKey(bucket, o.ID), "debt reversed")
			}
			book.DetachOrder(o.ID)
			if err := s.books.Save(ctx, book); err != nil {
				return nil, err
			}
		}
		o.CreditBookID = id.Nil()
	}

	if o.StockReserved {
		s.releaseLines(ctx, o.Lines)
		o.StockReserved = false
	}

	o.Paid = false
	o.HistoryBucket = ""
	o.Touch()

	if err := s.store.Put(ctx, store.CollectionActiveOrders, o.ID.String(), o); err != nil {
		return nil, apperror.NewPersistence("uncomplete active write", err).
			WithDetail("order_id", o.ID.String())
	}
	if err := s.store.Delete(ctx, store.HistoryCollectionForBucket(bucket), o.ID.String()); err != nil {
		return nil, apperror.NewPersistence("uncomplete history delete", err).
			WithDetail("order_id", o.ID.String())
	}

	logger.Info(ctx, "order uncompleted", "order_id", o.ID, "bucket", bucket)
	return o, nil
}

// --- helpers ---

func (s *Service) reserveLines(ctx context.Context, lines []cart.Line) error {
	reserved := make([]cart.Line, 0, len(lines))
	for _, line := range lines {
		ok, err := s.stock.TryReserve(ctx, line.ItemID, line.Quantity)
		if err == nil && !ok {
			err = apperror.NewInsufficientStock(line.ItemID.String(), line.Quantity.Float64(), 0)
		}
		if err != nil {
			s.releaseLines(ctx, reserved)
			return err
		}
		reserved = append(reserved, line)
	}
	return nil
}

func (s *Service) releaseLines(ctx context.Context, lines []cart.Line) {
	for _, line := range lines {
		if err := s.stock.Release(ctx, line.ItemID, line.Quantity); err != nil {
			// Surface loudly; a failed release is operator-reconcilable.
			logger.Error(ctx, "stock release failed",
				"item_id", line.ItemID,
				"qty", line.Quantity,
				"error", err,
			)
		}
	}
}

func (s *Service) recordCash(ctx context.Context, label string, amount types.MinorUnits, at time.Time) {
	if s.cash == nil || !amount.IsPositive() {
		return
	}
	if _, err := s.cash.Record(ctx, label, amount, cashflow.DirectionIn, at, ""); err != nil {
		logger.Error(ctx, "cash-flow record failed", "label", label, "error", err)
	}
}

func orderKey(bucket string, orderID id.ID) string {
	return fmt.Sprintf("%s/%s", bucket, orderID)
}
