package party

import (
	"context"

	"tillbook/internal/core/id"
	"tillbook/internal/infrastructure/store"
	"tillbook/pkg/logger"
)

// Service provides CRUD for customer and supplier records.
type Service struct {
	store store.Store
}

// NewService creates a party service.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

func collectionFor(kind Kind) string {
	if kind == KindSupplier {
		return store.CollectionSuppliers
	}
	return store.CollectionCustomers
}

// Create persists a new party record.
func (s *Service) Create(ctx context.Context, p *Party) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	if err := s.store.Put(ctx, collectionFor(p.Kind), p.ID.String(), p); err != nil {
		return err
	}
	logger.Info(ctx, "party created", "party_id", p.ID, "kind", p.Kind, "name", p.Name)
	return nil
}

// Get returns a party by kind and ID.
func (s *Service) Get(ctx context.Context, kind Kind, partyID id.ID) (*Party, error) {
	return store.Get[Party](ctx, s.store, collectionFor(kind), partyID.String())
}

// List returns all parties of a kind.
func (s *Service) List(ctx context.Context, kind Kind) ([]Party, error) {
	return store.List[Party](ctx, s.store, collectionFor(kind))
}

// Update modifies an existing party record.
func (s *Service) Update(ctx context.Context, p *Party) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	if _, err := s.store.GetByID(ctx, collectionFor(p.Kind), p.ID.String()); err != nil {
		return err
	}
	p.Touch()
	return s.store.Put(ctx, collectionFor(p.Kind), p.ID.String(), p)
}

// Delete removes a party record.
func (s *Service) Delete(ctx context.Context, kind Kind, partyID id.ID) error {
	return s.store.Delete(ctx, collectionFor(kind), partyID.String())
}
