// Package cart provides the in-progress sale aggregator: line items,
// tiered pricing, manual price overrides, and eager stock reservation.
package cart

import (
	"context"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/core/types"
	"tillbook/internal/domain/catalog"
)

// StockReserver is the contract the cart requires from the catalog.
// catalog.Service satisfies it.
type StockReserver interface {
	// TryReserve atomically decrements stock if sufficient; returns false
	// (no mutation) when a tracked item cannot cover the quantity.
	TryReserve(ctx context.Context, itemID id.ID, qty types.Quantity) (bool, error)

	// Release increments stock back.
	Release(ctx context.Context, itemID id.ID, qty types.Quantity) error
}

// Line is one item-and-quantity entry of an in-progress sale. Prices and
// tiers are snapshots taken at add time, not live catalog references.
type Line struct {
	ItemID      id.ID  `json:"itemId"`
	ItemName    string `json:"itemName"`
	Description string `json:"description,omitempty"`

	Quantity types.Quantity `json:"quantity"`

	UnitPrice     types.MinorUnits `json:"unitPrice"`
	PurchasedCost types.MinorUnits `json:"purchasedCost"`

	VariantName string              `json:"variantName,omitempty"`
	Tiers       []catalog.PriceTier `json:"tiers,omitempty"`

	// ManualPrice overrides the computed line total when set.
	ManualPrice *types.MinorUnits `json:"manualPrice,omitempty"`

	// UnitSize is the item's minimum unit of sale, snapshot at add time.
	UnitSize types.Quantity `json:"unitSize"`

	// Children holds per-unit component lines for composite items.
	Children []Line `json:"children,omitempty"`
}

// Total computes the line total: the manual price when set, otherwise the
// best matching price tier, otherwise quantity times base unit price.
//
// A tier applies when its threshold does not exceed the quantity and its
// name matches the selected variant (unnamed tiers match any variant).
// The highest qualifying threshold wins; there is no partial-tier
// interpolation.
func (l *Line) Total() types.MinorUnits {
	if l.ManualPrice != nil {
		return *l.ManualPrice
	}

	price := l.UnitPrice
	var bestThreshold types.Quantity
	for _, tier := range l.Tiers {
		if tier.Threshold > l.Quantity {
			continue
		}
		if tier.Name != "" && tier.Name != l.VariantName {
			continue
		}
		if tier.Threshold > bestThreshold {
			bestThreshold = tier.Threshold
			price = tier.UnitPrice
		}
	}
	return price.MulQuantity(l.Quantity)
}

// CostOfGoods is the purchase cost consumed by this line.
func (l *Line) CostOfGoods() types.MinorUnits {
	return l.PurchasedCost.MulQuantity(l.Quantity)
}

// AddOptions controls AddLine behavior.
type AddOptions struct {
	// Replace sets the line quantity instead of incrementing it.
	// Reserved stock is returned first, then re-reserved.
	Replace bool

	// VariantTier selects a named price tier for the line.
	VariantTier string
}

// Cart aggregates the lines of one in-progress sale. It owns its lines
// exclusively until checkout. Every quantity change goes through the
// stock reserver before the line mutates, so a failed reservation leaves
// no partial state.
type Cart struct {
	reserver StockReserver
	lines    []Line
}

// New creates an empty cart backed by the given stock reserver.
func New(reserver StockReserver) *Cart {
	return &Cart{reserver: reserver}
}

func (c *Cart) findLine(itemID id.ID) int {
	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

// AddLine adds quantity of an item to the cart. An existing line for the
// item is incremented (or replaced per opts); otherwise a new line is
// created from a snapshot of the item. Fails with INSUFFICIENT_STOCK and
// no state change when the catalog cannot cover the quantity.
func (c *Cart) AddLine(ctx context.Context, item *catalog.Item, qty types.Quantity, opts AddOptions) error {
	if !qty.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("item_id", item.ID)
	}

	idx := c.findLine(item.ID)

	if idx >= 0 && opts.Replace {
		return c.replaceQuantity(ctx, idx, qty)
	}

	if idx >= 0 {
		ok, err := c.reserver.TryReserve(ctx, item.ID, qty)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NewInsufficientStock(item.ID.String(), qty.Float64(), 0)
		}
		c.lines[idx].Quantity += qty
		return nil
	}

	ok, err := c.reserver.TryReserve(ctx, item.ID, qty)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NewInsufficientStock(item.ID.String(), qty.Float64(), 0)
	}

	line := newLineFromItem(item, qty, opts.VariantTier)
	c.lines = append(c.lines, line)
	return nil
}

// replaceQuantity returns the line's reserved stock, then reserves the new
// quantity. If re-reservation fails the original reservation is restored.
func (c *Cart) replaceQuantity(ctx context.Context, idx int, qty types.Quantity) error {
	line := &c.lines[idx]

	if err := c.reserver.Release(ctx, line.ItemID, line.Quantity); err != nil {
		return err
	}
	ok, err := c.reserver.TryReserve(ctx, line.ItemID, qty)
	if err != nil {
		return err
	}
	if !ok {
		// Restore the original reservation. It was available a moment
		// ago, so this is expected to succeed.
		if _, err := c.reserver.TryReserve(ctx, line.ItemID, line.Quantity); err != nil {
			return err
		}
		return apperror.NewInsufficientStock(line.ItemID.String(), qty.Float64(), 0)
	}

	line.Quantity = qty
	return nil
}

func newLineFromItem(item *catalog.Item, qty types.Quantity, variant string) Line {
	line := Line{
		ItemID:        item.ID,
		ItemName:      item.Name,
		Description:   item.Description,
		Quantity:      qty,
		UnitPrice:     item.UnitPrice,
		PurchasedCost: item.PurchasedCost,
		VariantName:   variant,
		UnitSize:      item.UnitSize,
	}
	if line.UnitSize.IsZero() {
		line.UnitSize = types.One
	}
	if len(item.Tiers) > 0 {
		line.Tiers = make([]catalog.PriceTier, len(item.Tiers))
		copy(line.Tiers, item.Tiers)
	}
	for _, comp := range item.Components {
		line.Children = append(line.Children, Line{
			ItemID:   comp.ItemID,
			Quantity: comp.Quantity,
			UnitSize: types.One,
		})
	}
	return line
}

// RemoveLine decrements the matching line's quantity and releases the
// corresponding stock. When the remainder would not cover the item's unit
// of sale the whole line is dropped and all of its reserved stock is
// returned. Removing more than the line holds clamps at zero.
func (c *Cart) RemoveLine(ctx context.Context, itemID id.ID, qty types.Quantity) error {
	idx := c.findLine(itemID)
	if idx < 0 {
		return apperror.NewNotFound("cart line", itemID)
	}

	line := &c.lines[idx]

	if qty >= line.Quantity || line.Quantity-qty <= line.UnitSize {
		released := line.Quantity
		if err := c.reserver.Release(ctx, itemID, released); err != nil {
			return err
		}
		c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
		return nil
	}

	if err := c.reserver.Release(ctx, itemID, qty); err != nil {
		return err
	}
	line.Quantity -= qty
	return nil
}

// SetManualPrice overrides the computed line total.
func (c *Cart) SetManualPrice(itemID id.ID, price types.MinorUnits) error {
	idx := c.findLine(itemID)
	if idx < 0 {
		return apperror.NewNotFound("cart line", itemID)
	}
	p := price
	c.lines[idx].ManualPrice = &p
	return nil
}

// Clear empties all lines without touching stock. Callers reconcile stock
// before clearing (checkout already moved the reservation to the order).
func (c *Cart) Clear() {
	c.lines = nil
}

// Abandon releases every line's reserved stock and empties the cart.
// Used when a register session is closed or swept without checkout.
func (c *Cart) Abandon(ctx context.Context) error {
	for i := range c.lines {
		if err := c.reserver.Release(ctx, c.lines[i].ItemID, c.lines[i].Quantity); err != nil {
			return err
		}
	}
	c.lines = nil
	return nil
}

// Total is the sum of every line's computed total.
func (c *Cart) Total() types.MinorUnits {
	var total types.MinorUnits
	for i := range c.lines {
		total += c.lines[i].Total()
	}
	return total
}

// LineCount returns the number of lines in the cart.
func (c *Cart) LineCount() int {
	return len(c.lines)
}

// TotalForItem returns the computed total of the line for one item,
// zero when no line matches.
func (c *Cart) TotalForItem(itemID id.ID) types.MinorUnits {
	idx := c.findLine(itemID)
	if idx < 0 {
		return 0
	}
	return c.lines[idx].Total()
}

// Lines returns a deep copy of the cart's lines. The copy's ownership
// transfers to the caller (checkout snapshots move to the order).
func (c *Cart) Lines() []Line {
	return copyLines(c.lines)
}

func copyLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = l
		if l.ManualPrice != nil {
			p := *l.ManualPrice
			out[i].ManualPrice = &p
		}
		if len(l.Tiers) > 0 {
			out[i].Tiers = make([]catalog.PriceTier, len(l.Tiers))
			copy(out[i].Tiers, l.Tiers)
		}
		if len(l.Children) > 0 {
			out[i].Children = copyLines(l.Children)
		}
	}
	return out
}
