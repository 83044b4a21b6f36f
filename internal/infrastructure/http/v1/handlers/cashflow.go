package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tillbook/internal/core/types"
	"tillbook/internal/domain/cashflow"
)

// CashFlowHandler handles register cash movements and daily summaries.
type CashFlowHandler struct {
	*BaseHandler
	cash *cashflow.Service
}

// NewCashFlowHandler creates a cash flow handler.
func NewCashFlowHandler(base *BaseHandler, cash *cashflow.Service) *CashFlowHandler {
	return &CashFlowHandler{BaseHandler: base, cash: cash}
}

type recordEntryRequest struct {
	Label     string             `json:"label" binding:"required"`
	Amount    types.MinorUnits   `json:"amount"`
	Direction cashflow.Direction `json:"direction" binding:"required"`
	Note      string             `json:"note"`
	Date      *time.Time         `json:"date"`
}

// Record handles POST /cash-flow
func (h *CashFlowHandler) Record(c *gin.Context) {
	var req recordEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = *req.Date
	}
	entry, err := h.cash.Record(c.Request.Context(), req.Label, req.Amount, req.Direction, date, req.Note)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// ListDay handles GET /cash-flow?date=YYYY-MM-DD
func (h *CashFlowHandler) ListDay(c *gin.Context) {
	date, ok := h.ParseDateQuery(c, "date")
	if !ok {
		return
	}
	out, err := h.cash.ListDay(c.Request.Context(), date)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": out})
}

// Summarize handles POST /cash-flow/summary?date=YYYY-MM-DD
func (h *CashFlowHandler) Summarize(c *gin.Context) {
	date, ok := h.ParseDateQuery(c, "date")
	if !ok {
		return
	}
	summary, err := h.cash.Summarize(c.Request.Context(), date)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetSummary handles GET /cash-flow/summary?date=YYYY-MM-DD
func (h *CashFlowHandler) GetSummary(c *gin.Context) {
	date, ok := h.ParseDateQuery(c, "date")
	if !ok {
		return
	}
	summary, err := h.cash.GetSummary(c.Request.Context(), date)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
