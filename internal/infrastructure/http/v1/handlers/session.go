package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tillbook/internal/core/id"
	"tillbook/internal/core/types"
	"tillbook/internal/domain/cart"
	"tillbook/internal/domain/catalog"
	"tillbook/internal/domain/order"
	"tillbook/internal/domain/session"
)

// SessionHandler handles register sessions and their carts.
type SessionHandler struct {
	*BaseHandler
	sessions *session.Manager
	catalog  *catalog.Service
	orders   *order.Service
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(base *BaseHandler, sessions *session.Manager, cat *catalog.Service, orders *order.Service) *SessionHandler {
	return &SessionHandler{
		BaseHandler: base,
		sessions:    sessions,
		catalog:     cat,
		orders:      orders,
	}
}

type openSessionRequest struct {
	CashierID   string `json:"cashierId" binding:"required"`
	CashierName string `json:"cashierName" binding:"required"`
}

// Open handles POST /sessions
func (h *SessionHandler) Open(c *gin.Context) {
	var req openSessionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	cashierID, err := id.Parse(req.CashierID)
	if err != nil {
		h.Error(c, errInvalidID("cashierId"))
		return
	}

	s := h.sessions.Open(cashierID, req.CashierName)
	c.JSON(http.StatusCreated, s)
}

// List handles GET /sessions
func (h *SessionHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": h.sessions.List()})
}

// Close handles DELETE /sessions/:id
func (h *SessionHandler) Close(c *gin.Context) {
	sid, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.sessions.Close(c.Request.Context(), sid); err != nil {
		h.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type addLineRequest struct {
	ItemID      string         `json:"itemId" binding:"required"`
	Quantity    types.Quantity `json:"quantity"`
	Replace     bool           `json:"replace"`
	VariantTier string         `json:"variantTier"`
}

// AddLine handles POST /sessions/:id/cart/lines
func (h *SessionHandler) AddLine(c *gin.Context) {
	ctx := c.Request.Context()

	s, ok := h.session(c)
	if !ok {
		return
	}
	var req addLineRequest
	if !h.BindJSON(c, &req) {
		return
	}
	itemID, err := id.Parse(req.ItemID)
	if err != nil {
		h.Error(c, errInvalidID("itemId"))
		return
	}

	item, err := h.catalog.Get(ctx, itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	err = s.Cart.AddLine(ctx, item, req.Quantity, cart.AddOptions{
		Replace:     req.Replace,
		VariantTier: req.VariantTier,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.cartState(c, s)
}

// RemoveLine handles DELETE /sessions/:id/cart/lines/:itemId
func (h *SessionHandler) RemoveLine(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	itemID, ok := h.ParseID(c, "itemId")
	if !ok {
		return
	}

	qty := types.One
	if raw := c.Query("quantity"); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.Error(c, errInvalidID("quantity"))
			return
		}
		qty = types.NewQuantityFromFloat64(f)
	}

	if err := s.Cart.RemoveLine(c.Request.Context(), itemID, qty); err != nil {
		h.Error(c, err)
		return
	}
	h.cartState(c, s)
}

type manualPriceRequest struct {
	Price types.MinorUnits `json:"price"`
}

// SetManualPrice handles PUT /sessions/:id/cart/lines/:itemId/price
func (h *SessionHandler) SetManualPrice(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	itemID, ok := h.ParseID(c, "itemId")
	if !ok {
		return
	}
	var req manualPriceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := s.Cart.SetManualPrice(itemID, req.Price); err != nil {
		h.Error(c, err)
		return
	}
	h.cartState(c, s)
}

// GetCart handles GET /sessions/:id/cart
func (h *SessionHandler) GetCart(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.cartState(c, s)
}

type openOrderRequest struct {
	CustomerName string `json:"customerName"`
}

// OpenOrder handles POST /sessions/:id/order - the cart snapshot becomes
// an active order and the cart empties (stock reservation moves with it).
func (h *SessionHandler) OpenOrder(c *gin.Context) {
	ctx := c.Request.Context()

	s, ok := h.session(c)
	if !ok {
		return
	}
	var req openOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := h.orders.Open(ctx, s.Cart, s.CashierID, s.CashierName, req.CustomerName)
	if err != nil {
		h.Error(c, err)
		return
	}
	s.Cart.Clear()

	c.JSON(http.StatusCreated, o)
}

func (h *SessionHandler) session(c *gin.Context) (*session.Session, bool) {
	sid, ok := h.ParseID(c, "id")
	if !ok {
		return nil, false
	}
	s, err := h.sessions.Get(sid)
	if err != nil {
		h.Error(c, err)
		return nil, false
	}
	return s, true
}

func (h *SessionHandler) cartState(c *gin.Context, s *session.Session) {
	c.JSON(http.StatusOK, gin.H{
		"sessionId": s.ID,
		"lines":     s.Cart.Lines(),
		"lineCount": s.Cart.LineCount(),
		"total":     s.Cart.Total(),
	})
}
