package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tillbook/internal/core/types"
	"tillbook/internal/domain/catalog"
)

// CatalogHandler handles catalog item CRUD.
type CatalogHandler struct {
	*BaseHandler
	catalog *catalog.Service
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(base *BaseHandler, svc *catalog.Service) *CatalogHandler {
	return &CatalogHandler{BaseHandler: base, catalog: svc}
}

type itemRequest struct {
	Name          string              `json:"name" binding:"required"`
	Description   string              `json:"description"`
	Barcode       string              `json:"barcode"`
	UnitPrice     types.MinorUnits    `json:"unitPrice"`
	PurchasedCost types.MinorUnits    `json:"purchasedCost"`
	Stock         types.Quantity      `json:"stock"`
	TrackStock    bool                `json:"trackStock"`
	UnitSize      *types.Quantity     `json:"unitSize"`
	Tiers         []catalog.PriceTier `json:"tiers"`
	Components    []catalog.Component `json:"components"`
}

func (r *itemRequest) apply(item *catalog.Item) {
	item.Name = r.Name
	item.Description = r.Description
	item.Barcode = r.Barcode
	item.UnitPrice = r.UnitPrice
	item.PurchasedCost = r.PurchasedCost
	item.Stock = r.Stock
	item.TrackStock = r.TrackStock
	if r.UnitSize != nil {
		item.UnitSize = *r.UnitSize
	}
	item.Tiers = r.Tiers
	item.Components = r.Components
}

// Create handles POST /items
func (h *CatalogHandler) Create(c *gin.Context) {
	var req itemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item := catalog.NewItem(req.Name, req.UnitPrice, req.PurchasedCost)
	req.apply(item)
	if err := h.catalog.Create(c.Request.Context(), item); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// List handles GET /items
func (h *CatalogHandler) List(c *gin.Context) {
	out, err := h.catalog.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

// Get handles GET /items/:id
func (h *CatalogHandler) Get(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	item, err := h.catalog.Get(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Update handles PUT /items/:id
func (h *CatalogHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req itemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.catalog.Get(ctx, itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	req.apply(item)
	if err := h.catalog.Update(ctx, item); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Delete handles DELETE /items/:id
func (h *CatalogHandler) Delete(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.Delete(c.Request.Context(), itemID); err != nil {
		h.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
