// Package store defines the keyed document store contract shared by the
// offline (PostgreSQL) and online (MongoDB) persistence modes. The concrete
// implementation is chosen once at startup and injected into every service.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tillbook/internal/core/apperror"
)

// Collection names used by the core. Historical orders live in
// date-bucketed collections produced by HistoryCollection.
const (
	CollectionItems        = "items"
	CollectionCustomers    = "customers"
	CollectionSuppliers    = "suppliers"
	CollectionCreditBooks  = "credit_books"
	CollectionActiveOrders = "active_orders"
	CollectionCashFlow     = "cash_flow"
	CollectionSummaries    = "cash_flow_summaries"
)

const historyPrefix = "order_history_"

// HistoryCollection returns the date-bucketed collection name for
// historical orders, e.g. "order_history_3_14_2026".
func HistoryCollection(t time.Time) string {
	return fmt.Sprintf("%s%d_%d_%d", historyPrefix, int(t.Month()), t.Day(), t.Year())
}

// DayBucket returns the bare month_day_year bucket key for a date.
func DayBucket(t time.Time) string {
	return fmt.Sprintf("%d_%d_%d", int(t.Month()), t.Day(), t.Year())
}

// HistoryCollectionForBucket rebuilds the collection name from a stored
// bucket key (e.g. a ledger attachment's source partition).
func HistoryCollectionForBucket(bucket string) string {
	return historyPrefix + bucket
}

// Store is the persistence strategy contract. Implementations are
// independent keyed stores: no cross-collection transactions are
// available, callers sequence writes and surface partial failures.
type Store interface {
	// GetAll returns every document in a collection.
	// A missing collection yields an empty slice, not an error.
	GetAll(ctx context.Context, collection string) ([]json.RawMessage, error)

	// GetByID returns a single document or a NOT_FOUND AppError.
	GetByID(ctx context.Context, collection, id string) (json.RawMessage, error)

	// Put upserts a document under the given id.
	Put(ctx context.Context, collection, id string, doc any) error

	// Delete removes a document. Deleting an absent document is a no-op.
	Delete(ctx context.Context, collection, id string) error

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connections.
	Close(ctx context.Context) error
}

// Get loads and decodes a single document.
func Get[T any](ctx context.Context, s Store, collection, id string) (*T, error) {
	raw, err := s.GetByID(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, apperror.NewPersistence("decode "+collection, err)
	}
	return &out, nil
}

// List loads and decodes all documents in a collection.
func List[T any](ctx context.Context, s Store, collection string) ([]T, error) {
	raws, err := s.GetAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, apperror.NewPersistence("decode "+collection, err)
		}
		out = append(out, item)
	}
	return out, nil
}
