package cashflow

import (
	"context"
	"time"

	"tillbook/internal/core/entity"
	"tillbook/internal/core/types"
	"tillbook/internal/infrastructure/store"
	"tillbook/pkg/logger"
)

// Service records cash movements and builds daily summaries.
type Service struct {
	store store.Store
}

// NewService creates a cash-flow service.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Record persists one cash movement.
func (s *Service) Record(ctx context.Context, label string, amount types.MinorUnits, direction Direction, date time.Time, note string) (*Entry, error) {
	entry := &Entry{
		BaseDocument: entity.NewBaseDocument(),
		Label:        label,
		Amount:       amount,
		Direction:    direction,
		Note:         note,
		Date:         date.UTC(),
		Bucket:       store.DayBucket(date),
	}
	if err := entry.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, store.CollectionCashFlow, entry.ID.String(), entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns all cash-flow entries.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	return store.List[Entry](ctx, s.store, store.CollectionCashFlow)
}

// ListDay returns the entries of one day bucket.
func (s *Service) ListDay(ctx context.Context, date time.Time) ([]Entry, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	bucket := store.DayBucket(date)
	out := make([]Entry, 0)
	for _, e := range all {
		if e.Bucket == bucket {
			out = append(out, e)
		}
	}
	return out, nil
}

// Summarize computes and persists the daily summary for a date.
// Safe to re-run; the stored summary is replaced.
func (s *Service) Summarize(ctx context.Context, date time.Time) (*DailySummary, error) {
	entries, err := s.ListDay(ctx, date)
	if err != nil {
		return nil, err
	}

	summary := &DailySummary{
		Bucket:      store.DayBucket(date),
		Date:        date.UTC().Truncate(24 * time.Hour),
		EntryCount:  len(entries),
		GeneratedAt: time.Now().UTC(),
	}
	for _, e := range entries {
		if e.Direction == DirectionIn {
			summary.CashIn += e.Amount
		} else {
			summary.CashOut += e.Amount
		}
	}
	summary.Net = summary.CashIn - summary.CashOut

	if err := s.store.Put(ctx, store.CollectionSummaries, summary.Bucket, summary); err != nil {
		return nil, err
	}

	logger.Info(ctx, "daily cash-flow summary generated",
		"bucket", summary.Bucket,
		"cash_in", summary.CashIn,
		"cash_out", summary.CashOut,
		"net", summary.Net,
		"entries", summary.EntryCount,
	)
	return summary, nil
}

// GetSummary returns a previously generated daily summary.
func (s *Service) GetSummary(ctx context.Context, date time.Time) (*DailySummary, error) {
	return store.Get[DailySummary](ctx, s.store, store.CollectionSummaries, store.DayBucket(date))
}
