// Package catalog provides the product catalog and the stock reconciler.
// All stock mutations go through TryReserve/Release so the per-item stock
// counter has a single choke point.
package catalog

import (
	"context"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/entity"
	"tillbook/internal/core/id"
	"tillbook/internal/core/types"
)

// PriceTier is a quantity-threshold price break. A tier applies when the
// cart line quantity reaches Threshold and the line's selected variant
// matches Name (empty Name matches any variant).
type PriceTier struct {
	Threshold types.Quantity   `json:"threshold"`
	Name      string           `json:"name,omitempty"`
	UnitPrice types.MinorUnits `json:"unitPrice"`
}

// Component is one entry of a composite (bundle) item.
type Component struct {
	ItemID   id.ID          `json:"itemId"`
	Quantity types.Quantity `json:"quantity"`
}

// Item is a sellable catalog entry.
type Item struct {
	entity.BaseEntity

	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Barcode     string `json:"barcode,omitempty"`

	UnitPrice     types.MinorUnits `json:"unitPrice"`
	PurchasedCost types.MinorUnits `json:"purchasedCost"`

	// Stock is the available quantity. Meaningless when TrackStock is false.
	Stock      types.Quantity `json:"stock"`
	TrackStock bool           `json:"trackStock"`

	// UnitSize is the minimum unit of sale (1.0 for piece goods,
	// e.g. 0.1 for goods sold by the 100g).
	UnitSize types.Quantity `json:"unitSize"`

	Tiers      []PriceTier `json:"tiers,omitempty"`
	Components []Component `json:"components,omitempty"`
}

// NewItem creates a catalog item with a generated ID and whole-unit size.
func NewItem(name string, unitPrice, purchasedCost types.MinorUnits) *Item {
	return &Item{
		BaseEntity:    entity.NewBaseEntity(),
		Name:          name,
		UnitPrice:     unitPrice,
		PurchasedCost: purchasedCost,
		UnitSize:      types.One,
	}
}

// IsBundle reports whether the item is composed of other items.
func (i *Item) IsBundle() bool {
	return len(i.Components) > 0
}

// Validate implements entity.Validatable.
func (i *Item) Validate(_ context.Context) error {
	if i.Name == "" {
		return apperror.NewValidation("item name is required").
			WithDetail("field", "name")
	}
	if i.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price must not be negative").
			WithDetail("field", "unitPrice")
	}
	if !i.UnitSize.IsPositive() {
		return apperror.NewValidation("unit size must be positive").
			WithDetail("field", "unitSize")
	}
	for n, tier := range i.Tiers {
		if !tier.Threshold.IsPositive() {
			return apperror.NewValidation("tier threshold must be positive").
				WithDetail("field", "tiers").
				WithDetail("tierNo", n+1)
		}
	}
	for n, comp := range i.Components {
		if id.IsNil(comp.ItemID) {
			return apperror.NewValidation("component item is required").
				WithDetail("field", "components").
				WithDetail("componentNo", n+1)
		}
		if !comp.Quantity.IsPositive() {
			return apperror.NewValidation("component quantity must be positive").
				WithDetail("field", "components").
				WithDetail("componentNo", n+1)
		}
	}
	return nil
}

var _ entity.Validatable = (*Item)(nil)
