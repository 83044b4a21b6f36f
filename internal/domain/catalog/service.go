package catalog

import (
	"context"
	"fmt"

	"tillbook/internal/core/id"
	"tillbook/internal/core/types"
	"tillbook/internal/infrastructure/store"
	"tillbook/pkg/logger"
)

// ItemCache is a read-through cache for catalog items. A nil cache is valid.
type ItemCache interface {
	Get(ctx context.Context, itemID id.ID) (*Item, bool, error)
	Set(ctx context.Context, item *Item) error
	Invalidate(ctx context.Context, itemID id.ID) error
}

// Service provides catalog CRUD and the stock reconciler.
type Service struct {
	store store.Store
	cache ItemCache
}

// NewService creates a catalog service. cache may be nil.
func NewService(st store.Store, cache ItemCache) *Service {
	return &Service{store: st, cache: cache}
}

// Create inserts a new item.
func (s *Service) Create(ctx context.Context, item *Item) error {
	if err := item.Validate(ctx); err != nil {
		return err
	}
	if err := s.store.Put(ctx, store.CollectionItems, item.ID.String(), item); err != nil {
		return err
	}
	logger.Info(ctx, "item created", "item_id", item.ID, "name", item.Name)
	return nil
}

// Update modifies an existing item and invalidates its cache entry.
func (s *Service) Update(ctx context.Context, item *Item) error {
	if err := item.Validate(ctx); err != nil {
		return err
	}
	if _, err := s.store.GetByID(ctx, store.CollectionItems, item.ID.String()); err != nil {
		return err
	}
	item.Touch()
	if err := s.store.Put(ctx, store.CollectionItems, item.ID.String(), item); err != nil {
		return err
	}
	s.invalidate(ctx, item.ID)
	return nil
}

// Delete removes an item from the catalog.
func (s *Service) Delete(ctx context.Context, itemID id.ID) error {
	if err := s.store.Delete(ctx, store.CollectionItems, itemID.String()); err != nil {
		return err
	}
	s.invalidate(ctx, itemID)
	return nil
}

// Get returns an item, consulting the cache first.
func (s *Service) Get(ctx context.Context, itemID id.ID) (*Item, error) {
	if s.cache != nil {
		item, ok, err := s.cache.Get(ctx, itemID)
		if err != nil {
			logger.Warn(ctx, "item cache read failed", "item_id", itemID, "error", err)
		} else if ok {
			return item, nil
		}
	}

	item, err := store.Get[Item](ctx, s.store, store.CollectionItems, itemID.String())
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, item); err != nil {
			logger.Warn(ctx, "item cache write failed", "item_id", itemID, "error", err)
		}
	}
	return item, nil
}

// List returns all catalog items.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	return store.List[Item](ctx, s.store, store.CollectionItems)
}

// --- Stock reconciler ---

// TryReserve atomically decrements stock if sufficient. Returns false with
// no mutation when a tracked item cannot cover the quantity; always
// succeeds (no-op) for items that do not track stock.
func (s *Service) TryReserve(ctx context.Context, itemID id.ID, qty types.Quantity) (bool, error) {
	if !qty.IsPositive() {
		return true, nil
	}

	// Stock reads bypass the cache: the counter must be fresh.
	item, err := store.Get[Item](ctx, s.store, store.CollectionItems, itemID.String())
	if err != nil {
		return false, err
	}
	if !item.TrackStock {
		return true, nil
	}
	if item.Stock < qty {
		return false, nil
	}

	item.Stock -= qty
	item.Touch()
	if err := s.store.Put(ctx, store.CollectionItems, itemID.String(), item); err != nil {
		return false, fmt.Errorf("reserve stock: %w", err)
	}
	s.invalidate(ctx, itemID)

	logger.Debug(ctx, "stock reserved", "item_id", itemID, "qty", qty, "remaining", item.Stock)
	return true, nil
}

// Release increments stock back. Idempotence against double-release is
// caller discipline, not enforced here.
func (s *Service) Release(ctx context.Context, itemID id.ID, qty types.Quantity) error {
	if !qty.IsPositive() {
		return nil
	}

	item, err := store.Get[Item](ctx, s.store, store.CollectionItems, itemID.String())
	if err != nil {
		return err
	}
	if !item.TrackStock {
		return nil
	}

	item.Stock += qty
	item.Touch()
	if err := s.store.Put(ctx, store.CollectionItems, itemID.String(), item); err != nil {
		return fmt.Errorf("release stock: %w", err)
	}
	s.invalidate(ctx, itemID)

	logger.Debug(ctx, "stock released", "item_id", itemID, "qty", qty, "available", item.Stock)
	return nil
}

func (s *Service) invalidate(ctx context.Context, itemID id.ID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, itemID); err != nil {
		logger.Warn(ctx, "item cache invalidation failed", "item_id", itemID, "error", err)
	}
}
