// Package order provides the persisted sale record and its lifecycle:
// active (mutable, stock reserved) → historical (date-partitioned) →
// optionally uncompleted back to active with stock and credit reversed.
package order

import (
	"context"
	"time"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/entity"
	"tillbook/internal/core/id"
	"tillbook/internal/core/types"
	"tillbook/internal/domain/cart"
)

// MetaKind discriminates meta entries. A tagged variant replaces the
// fragile marker-prefix string convention: an entry is either a plain
// annotation or a signed cost adjustment, never both.
type MetaKind string

const (
	MetaAnnotation     MetaKind = "annotation"
	MetaCostAdjustment MetaKind = "cost_adjustment"
)

// MetaEntry is one labeled adjustment or note on an order.
type MetaEntry struct {
	Label  string           `json:"label"`
	Kind   MetaKind         `json:"kind"`
	Text   string           `json:"text,omitempty"`
	Amount types.MinorUnits `json:"amount,omitempty"`
}

// NewAnnotation creates a non-numeric meta entry.
func NewAnnotation(label, text string) MetaEntry {
	return MetaEntry{Label: label, Kind: MetaAnnotation, Text: text}
}

// NewCostAdjustment creates a signed cost delta. Positive amounts add to
// the total (e.g. delivery), negative amounts reduce it (e.g. goodwill).
func NewCostAdjustment(label string, amount types.MinorUnits) MetaEntry {
	return MetaEntry{Label: label, Kind: MetaCostAdjustment, Amount: amount}
}

// Order is the persisted representation of a sale.
type Order struct {
	entity.BaseDocument

	CashierID    id.ID  `json:"cashierId"`
	CashierName  string `json:"cashierName"`
	CustomerName string `json:"customerName,omitempty"`

	BaseAmount types.MinorUnits `json:"baseAmount"`
	Discount   types.MinorUnits `json:"discount"`
	Tax        types.MinorUnits `json:"tax"`
	PayAmount  types.MinorUnits `json:"payAmount"`

	// Total is derived but persisted for query convenience.
	// RecalculateTotal must run after any mutation of lines, discount,
	// tax, or meta entries before the order is persisted.
	Total types.MinorUnits `json:"total"`

	Lines []cart.Line `json:"lines"`
	Meta  []MetaEntry `json:"meta,omitempty"`

	// CreditBookID is a weak reference; deleting an order never deletes
	// the ledger.
	CreditBookID id.ID `json:"creditBookId,omitempty"`

	Paid bool `json:"paid"`

	// Kitchen-style workflow flags, unused by plain retail deployments.
	Cooking bool `json:"cooking,omitempty"`
	Ready   bool `json:"ready,omitempty"`

	// StockReserved reports whether the order currently holds its stock
	// reservation. True for orders built from a cart; false after an
	// uncomplete returned the quantities to the catalog.
	StockReserved bool `json:"stockReserved"`

	// HistoryBucket is the month_day_year partition key, set when the
	// order moves to history.
	HistoryBucket string `json:"historyBucket,omitempty"`

	Date time.Time `json:"date"`
}

// FromCart constructs a new active order from a cart snapshot. Ownership
// of the lines transfers to the order; the caller clears the cart without
// touching stock (the reservation moves with the snapshot).
func FromCart(c *cart.Cart, cashierID id.ID, cashierName, customerName string) *Order {
	o := &Order{
		BaseDocument:  entity.NewBaseDocument(),
		CashierID:     cashierID,
		CashierName:   cashierName,
		CustomerName:  customerName,
		Lines:         c.Lines(),
		BaseAmount:    c.Total(),
		StockReserved: true,
		Date:          time.Now().UTC(),
	}
	// Full payment by default; checkout may override.
	o.PayAmount = o.BaseAmount
	o.RecalculateTotal()
	return o
}

// RecalculateTotal recomputes the base amount from the lines and the
// stored total:
//
//	total = baseAmount + tax + positive adjustments − discount − |negative adjustments|
//
// Calling it twice without intervening mutation yields the same total.
func (o *Order) RecalculateTotal() {
	var base types.MinorUnits
	for i := range o.Lines {
		base += o.Lines[i].Total()
	}
	o.BaseAmount = base

	total := base + o.Tax - o.Discount
	for _, m := range o.Meta {
		if m.Kind == MetaCostAdjustment {
			total += m.Amount
		}
	}
	o.Total = total
}

// Outstanding is the unpaid remainder of the order total.
func (o *Order) Outstanding() types.MinorUnits {
	return o.Total - o.PayAmount
}

// IsCredit reports whether the order is underpaid.
func (o *Order) IsCredit() bool {
	return o.PayAmount < o.Total
}

// ProfitOrLoss computes the margin of the sale: goods revenue minus
// purchase cost, discount, and negative cost adjustments borne by the
// business. Positive adjustments are pass-through charges and do not
// count as margin.
func (o *Order) ProfitOrLoss() types.Money {
	var cost types.MinorUnits
	for i := range o.Lines {
		cost += o.Lines[i].CostOfGoods()
	}

	result := o.BaseAmount - cost - o.Discount
	for _, m := range o.Meta {
		if m.Kind == MetaCostAdjustment && m.Amount.IsNegative() {
			result += m.Amount
		}
	}
	return result.ToMoney()
}

// MergeIncoming folds new lines into the order: a line for an already
// present item increments its quantity, anything else is appended.
// Used when a customer adds more items to an open order.
func (o *Order) MergeIncoming(newLines []cart.Line) {
	for _, incoming := range newLines {
		merged := false
		for i := range o.Lines {
			if o.Lines[i].ItemID == incoming.ItemID {
				o.Lines[i].Quantity += incoming.Quantity
				merged = true
				break
			}
		}
		if !merged {
			o.Lines = append(o.Lines, incoming)
		}
	}
	o.RecalculateTotal()
	o.Touch()
}

// RemoveOneUnit decrements one sale unit of the matching line, dropping
// the line when it reaches zero. Returns the quantity actually removed
// so the caller can release the matching stock reservation.
func (o *Order) RemoveOneUnit(itemID id.ID) (types.Quantity, error) {
	for i := range o.Lines {
		if o.Lines[i].ItemID != itemID {
			continue
		}

		unit := o.Lines[i].UnitSize
		if unit.IsZero() {
			unit = types.One
		}

		removed := unit
		if o.Lines[i].Quantity <= unit {
			removed = o.Lines[i].Quantity
			o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
		} else {
			o.Lines[i].Quantity -= unit
		}

		o.RecalculateTotal()
		o.Touch()
		return removed, nil
	}
	return 0, apperror.NewNotFound("order line", itemID)
}

// ShortLabel is a compact order reference for ledger attachments.
func (o *Order) ShortLabel() string {
	s := o.ID.String()
	if len(s) > 8 {
		s = s[:8]
	}
	if o.CustomerName != "" {
		return o.CustomerName + " #" + s
	}
	return "#" + s
}

// Validate implements entity.Validatable.
func (o *Order) Validate(_ context.Context) error {
	if len(o.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	for n, line := range o.Lines {
		if id.IsNil(line.ItemID) {
			return apperror.NewValidation("line item is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", n+1)
		}
		if line.Quantity.IsNegative() {
			return apperror.NewValidation("line quantity must not be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", n+1)
		}
	}
	if o.PayAmount.IsNegative() {
		return apperror.NewValidation("pay amount must not be negative").
			WithDetail("field", "payAmount")
	}
	return nil
}

var _ entity.Validatable = (*Order)(nil)
