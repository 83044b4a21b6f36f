// Package cashflow tracks money entering and leaving the register and
// derives per-day summaries.
package cashflow

import (
	"context"
	"time"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/entity"
	"tillbook/internal/core/types"
)

// Direction is the side of a cash-flow entry.
type Direction string

const (
	DirectionIn  Direction = "cash_in"
	DirectionOut Direction = "cash_out"
)

// Entry is one cash movement.
type Entry struct {
	entity.BaseDocument

	Label     string           `json:"label"`
	Amount    types.MinorUnits `json:"amount"`
	Direction Direction        `json:"direction"`
	Note      string           `json:"note,omitempty"`
	Date      time.Time        `json:"date"`

	// Bucket is the month_day_year partition key of Date.
	Bucket string `json:"bucket"`
}

// Validate implements entity.Validatable.
func (e *Entry) Validate(_ context.Context) error {
	if e.Label == "" {
		return apperror.NewValidation("label is required").
			WithDetail("field", "label")
	}
	if !e.Amount.IsPositive() {
		return apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount")
	}
	if e.Direction != DirectionIn && e.Direction != DirectionOut {
		return apperror.NewValidation("direction must be cash_in or cash_out").
			WithDetail("field", "direction")
	}
	return nil
}

// DailySummary is the derived net position of one day bucket.
type DailySummary struct {
	Bucket      string           `json:"bucket"`
	Date        time.Time        `json:"date"`
	CashIn      types.MinorUnits `json:"cashIn"`
	CashOut     types.MinorUnits `json:"cashOut"`
	Net         types.MinorUnits `json:"net"`
	EntryCount  int              `json:"entryCount"`
	GeneratedAt time.Time        `json:"generatedAt"`
}

var _ entity.Validatable = (*Entry)(nil)
