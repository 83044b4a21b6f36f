package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tillbook/internal/core/id"
	"tillbook/internal/core/types"
	"tillbook/internal/domain/cart"
	"tillbook/internal/domain/order"
)

// OrderHandler handles active and historical orders.
type OrderHandler struct {
	*BaseHandler
	orders *order.Service
}

// NewOrderHandler creates an order handler.
func NewOrderHandler(base *BaseHandler, orders *order.Service) *OrderHandler {
	return &OrderHandler{BaseHandler: base, orders: orders}
}

// ListActive handles GET /orders/active
func (h *OrderHandler) ListActive(c *gin.Context) {
	out, err := h.orders.ListActive(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

// GetActive handles GET /orders/active/:id
func (h *OrderHandler) GetActive(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	o, err := h.orders.GetActive(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type updateOrderRequest struct {
	CustomerName *string            `json:"customerName"`
	Discount     *types.MinorUnits  `json:"discount"`
	Tax          *types.MinorUnits  `json:"tax"`
	Meta         []order.MetaEntry  `json:"meta"`
	Cooking      *bool              `json:"cooking"`
	Ready        *bool              `json:"ready"`
}

// UpdateActive handles PUT /orders/active/:id
func (h *OrderHandler) UpdateActive(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req updateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := h.orders.GetActive(ctx, orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if req.CustomerName != nil {
		o.CustomerName = *req.CustomerName
	}
	if req.Discount != nil {
		o.Discount = *req.Discount
	}
	if req.Tax != nil {
		o.Tax = *req.Tax
	}
	if req.Meta != nil {
		o.Meta = req.Meta
	}
	if req.Cooking != nil {
		o.Cooking = *req.Cooking
	}
	if req.Ready != nil {
		o.Ready = *req.Ready
	}

	if err := h.orders.SaveActive(ctx, o); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type mergeLinesRequest struct {
	Lines []cart.Line `json:"lines" binding:"required"`
}

// MergeLines handles POST /orders/active/:id/lines
func (h *OrderHandler) MergeLines(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req mergeLinesRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := h.orders.MergeIncoming(c.Request.Context(), orderID, req.Lines)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// RemoveOneUnit handles DELETE /orders/active/:id/lines/:itemId
func (h *OrderHandler) RemoveOneUnit(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.ParseID(c, "itemId")
	if !ok {
		return
	}

	o, err := h.orders.RemoveOneUnit(c.Request.Context(), orderID, itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// Cancel handles DELETE /orders/active/:id
func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.orders.Cancel(c.Request.Context(), orderID); err != nil {
		h.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type checkoutRequest struct {
	PayAmount    types.MinorUnits `json:"payAmount"`
	CreditBookID string           `json:"creditBookId"`
}

// Checkout handles POST /orders/active/:id/checkout
func (h *OrderHandler) Checkout(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req checkoutRequest
	if !h.BindJSON(c, &req) {
		return
	}

	bookID := id.Nil()
	if req.CreditBookID != "" {
		parsed, err := id.Parse(req.CreditBookID)
		if err != nil {
			h.Error(c, errInvalidID("creditBookId"))
			return
		}
		bookID = parsed
	}

	o, err := h.orders.Checkout(c.Request.Context(), orderID, req.PayAmount, bookID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// ListHistory handles GET /orders/history?date=YYYY-MM-DD
func (h *OrderHandler) ListHistory(c *gin.Context) {
	date, ok := h.ParseDateQuery(c, "date")
	if !ok {
		return
	}
	out, err := h.orders.ListHistory(c.Request.Context(), date)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

// GetHistorical handles GET /orders/history/:bucket/:id
func (h *OrderHandler) GetHistorical(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	o, err := h.orders.GetHistorical(c.Request.Context(), c.Param("bucket"), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type payCreditRequest struct {
	Amount types.MinorUnits `json:"amount"`
}

// PayCredit handles POST /orders/history/:bucket/:id/pay
func (h *OrderHandler) PayCredit(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req payCreditRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := h.orders.PayCredit(c.Request.Context(), c.Param("bucket"), orderID, req.Amount)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// Uncomplete handles POST /orders/history/:bucket/:id/uncomplete
func (h *OrderHandler) Uncomplete(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	o, err := h.orders.Uncomplete(c.Request.Context(), c.Param("bucket"), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
