package creditbook

import (
	"context"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/core/types"
	"tillbook/internal/infrastructure/store"
	"tillbook/pkg/logger"
)

// Service provides credit book persistence and manual ledger operations.
// Order-linked mutations (credit on checkout, payments, reversal) go
// through the order service, which persists the book it mutates.
type Service struct {
	store store.Store
}

// NewService creates a credit book service.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Create persists a new credit book.
func (s *Service) Create(ctx context.Context, book *Book) error {
	if err := book.Validate(ctx); err != nil {
		return err
	}
	if err := s.store.Put(ctx, store.CollectionCreditBooks, book.ID.String(), book); err != nil {
		return err
	}
	logger.Info(ctx, "credit book created", "book_id", book.ID, "customer", book.CustomerName)
	return nil
}

// Get returns a credit book by ID.
func (s *Service) Get(ctx context.Context, bookID id.ID) (*Book, error) {
	return store.Get[Book](ctx, s.store, store.CollectionCreditBooks, bookID.String())
}

// List returns all credit books.
func (s *Service) List(ctx context.Context) ([]Book, error) {
	return store.List[Book](ctx, s.store, store.CollectionCreditBooks)
}

// Save validates and persists a mutated book.
func (s *Service) Save(ctx context.Context, book *Book) error {
	if err := book.Validate(ctx); err != nil {
		return err
	}
	return s.store.Put(ctx, store.CollectionCreditBooks, book.ID.String(), book)
}

// AddManualRecord appends a record outside any order: lending to the
// customer (cash-out) or taking money from the customer (cash-in).
// The uniform sign convention applies regardless of which path created
// the book.
func (s *Service) AddManualRecord(ctx context.Context, bookID id.ID, label string, amount types.MinorUnits, direction Direction, note string) (*Book, error) {
	if !amount.IsPositive() {
		return nil, apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount")
	}

	book, err := s.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.Completed {
		return nil, apperror.NewBusinessRule(apperror.CodeBookCompleted, "credit book is completed")
	}

	book.AddRecord(label, amount, direction, "", note)
	if err := s.Save(ctx, book); err != nil {
		return nil, err
	}

	logger.Info(ctx, "manual ledger record added",
		"book_id", bookID,
		"direction", direction,
		"amount", amount,
		"balance", book.Balance,
	)
	return book, nil
}

// SetCompleted toggles the terminal flag.
func (s *Service) SetCompleted(ctx context.Context, bookID id.ID, completed bool) (*Book, error) {
	book, err := s.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if completed {
		book.MarkCompleted()
	} else {
		book.Reopen()
	}
	if err := s.Save(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// Delete removes a credit book. Orders keep only a weak reference, so
// deleting a book never cascades into order deletes (or vice versa).
func (s *Service) Delete(ctx context.Context, bookID id.ID) error {
	book, err := s.Get(ctx, bookID)
	if err != nil {
		return err
	}
	if len(book.AttachedOrders) > 0 {
		return apperror.NewConflict("credit book still has attached orders").
			WithDetail("attached", len(book.AttachedOrders))
	}
	return s.store.Delete(ctx, store.CollectionCreditBooks, bookID.String())
}
