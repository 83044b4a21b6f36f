// Package party provides customer and supplier records.
package party

import (
	"context"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/entity"
)

// Kind distinguishes the two party collections.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindSupplier Kind = "supplier"
)

// Party is a customer or supplier record.
type Party struct {
	entity.BaseEntity

	Kind    Kind   `json:"kind"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Note    string `json:"note,omitempty"`
}

// NewParty creates a party record with a generated ID.
func NewParty(kind Kind, name string) *Party {
	return &Party{
		BaseEntity: entity.NewBaseEntity(),
		Kind:       kind,
		Name:       name,
	}
}

// Validate implements entity.Validatable.
func (p *Party) Validate(_ context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if p.Kind != KindCustomer && p.Kind != KindSupplier {
		return apperror.NewValidation("kind must be customer or supplier").
			WithDetail("field", "kind")
	}
	return nil
}

var _ entity.Validatable = (*Party)(nil)
