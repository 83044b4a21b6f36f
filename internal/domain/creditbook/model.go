// Package creditbook provides the customer credit ledger: a running
// account of amounts owed across multiple orders.
//
// Sign convention, applied on every mutation path: a positive balance
// means the customer owes the business. Extending credit (cash-out)
// increases the balance, payments (cash-in) decrease it. A negative
// balance means the business owes the customer.
package creditbook

import (
	"context"
	"time"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/entity"
	"tillbook/internal/core/id"
	"tillbook/internal/core/types"
)

// Direction is the cash side of a ledger record.
type Direction string

const (
	// DirectionCashIn records money received from the customer.
	DirectionCashIn Direction = "cash_in"

	// DirectionCashOut records credit extended to the customer.
	DirectionCashOut Direction = "cash_out"
)

// Record is one append-only ledger entry.
type Record struct {
	RecordID       id.ID            `json:"recordId"`
	LinkedOrderKey string           `json:"linkedOrderKey,omitempty"`
	Label          string           `json:"label"`
	Amount         types.MinorUnits `json:"amount"`
	Note           string           `json:"note,omitempty"`
	Timestamp      time.Time        `json:"timestamp"`
	Direction      Direction        `json:"direction"`
}

// OrderRef is a lightweight back-reference to an attached order.
// Used only for UI navigation, never as financial truth.
type OrderRef struct {
	OrderID         id.ID  `json:"orderId"`
	ShortLabel      string `json:"shortLabel"`
	SourcePartition string `json:"sourcePartition"`
}

// Book is a credit ledger for one customer.
type Book struct {
	entity.BaseDocument

	CustomerName string `json:"customerName"`
	Note         string `json:"note,omitempty"`

	Balance   types.MinorUnits `json:"balance"`
	Completed bool             `json:"completed"`

	Records        []Record   `json:"records"`
	AttachedOrders []OrderRef `json:"attachedOrders"`
}

// NewBook creates an empty ledger for a customer.
func NewBook(customerName, note string) *Book {
	return &Book{
		BaseDocument: entity.NewBaseDocument(),
		CustomerName: customerName,
		Note:         note,
	}
}

// AddRecord appends a ledger record and applies its balance delta:
// cash-out adds to the balance, cash-in subtracts.
func (b *Book) AddRecord(label string, amount types.MinorUnits, direction Direction, linkedOrderKey, note string) *Record {
	rec := Record{
		RecordID:       id.New(),
		LinkedOrderKey: linkedOrderKey,
		Label:          label,
		Amount:         amount,
		Note:           note,
		Timestamp:      time.Now().UTC(),
		Direction:      direction,
	}
	b.Records = append(b.Records, rec)

	if direction == DirectionCashOut {
		b.Balance += amount
	} else {
		b.Balance -= amount
	}
	b.Touch()

	return &b.Records[len(b.Records)-1]
}

// RemoveRecord drops a record by ID and reverses its balance delta.
// Used when reversing an order side effect that was recorded here.
func (b *Book) RemoveRecord(recordID id.ID) bool {
	for i, rec := range b.Records {
		if rec.RecordID != recordID {
			continue
		}
		if rec.Direction == DirectionCashOut {
			b.Balance -= rec.Amount
		} else {
			b.Balance += rec.Amount
		}
		b.Records = append(b.Records[:i], b.Records[i+1:]...)
		b.Touch()
		return true
	}
	return false
}

// AttachOrder links an order to the book. Idempotent: an existing
// attachment for the same order is replaced, never duplicated.
func (b *Book) AttachOrder(orderID id.ID, shortLabel, sourcePartition string) {
	b.DetachOrder(orderID)
	b.AttachedOrders = append(b.AttachedOrders, OrderRef{
		OrderID:         orderID,
		ShortLabel:      shortLabel,
		SourcePartition: sourcePartition,
	})
	b.Touch()
}

// DetachOrder removes the attachment for an order. Records are untouched.
// Returns false when the order was not attached.
func (b *Book) DetachOrder(orderID id.ID) bool {
	for i, ref := range b.AttachedOrders {
		if ref.OrderID == orderID {
			b.AttachedOrders = append(b.AttachedOrders[:i], b.AttachedOrders[i+1:]...)
			b.Touch()
			return true
		}
	}
	return false
}

// IsAttached reports whether an order is currently attached.
func (b *Book) IsAttached(orderID id.ID) bool {
	for _, ref := range b.AttachedOrders {
		if ref.OrderID == orderID {
			return true
		}
	}
	return false
}

// MarkCompleted sets the terminal flag. No balance side effects.
func (b *Book) MarkCompleted() {
	b.Completed = true
	b.Touch()
}

// Reopen clears the terminal flag.
func (b *Book) Reopen() {
	b.Completed = false
	b.Touch()
}

// RecordedBalance recomputes the balance from the records alone:
// sum of cash-out minus sum of cash-in.
func (b *Book) RecordedBalance() types.MinorUnits {
	var balance types.MinorUnits
	for _, rec := range b.Records {
		if rec.Direction == DirectionCashOut {
			balance += rec.Amount
		} else {
			balance -= rec.Amount
		}
	}
	return balance
}

// Validate implements entity.Validatable. The stored balance must equal
// the net effect of all records since creation.
func (b *Book) Validate(_ context.Context) error {
	if b.CustomerName == "" {
		return apperror.NewValidation("customer name is required").
			WithDetail("field", "customerName")
	}
	if recorded := b.RecordedBalance(); recorded != b.Balance {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "ledger balance does not match records").
			WithDetail("balance", int64(b.Balance)).
			WithDetail("recorded", int64(recorded))
	}
	return nil
}

var _ entity.Validatable = (*Book)(nil)
