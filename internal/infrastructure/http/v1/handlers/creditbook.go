package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tillbook/internal/core/types"
	"tillbook/internal/domain/creditbook"
)

// CreditBookHandler handles credit book ledgers.
type CreditBookHandler struct {
	*BaseHandler
	books *creditbook.Service
}

// NewCreditBookHandler creates a credit book handler.
func NewCreditBookHandler(base *BaseHandler, books *creditbook.Service) *CreditBookHandler {
	return &CreditBookHandler{BaseHandler: base, books: books}
}

type createBookRequest struct {
	CustomerName string `json:"customerName" binding:"required"`
	Note         string `json:"note"`
}

// Create handles POST /credit-books
func (h *CreditBookHandler) Create(c *gin.Context) {
	var req createBookRequest
	if !h.BindJSON(c, &req) {
		return
	}

	book := creditbook.NewBook(req.CustomerName, req.Note)
	if err := h.books.Create(c.Request.Context(), book); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

// List handles GET /credit-books
func (h *CreditBookHandler) List(c *gin.Context) {
	out, err := h.books.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": out})
}

// Get handles GET /credit-books/:id
func (h *CreditBookHandler) Get(c *gin.Context) {
	bookID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	book, err := h.books.Get(c.Request.Context(), bookID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

type addRecordRequest struct {
	Label     string               `json:"label" binding:"required"`
	Amount    types.MinorUnits     `json:"amount"`
	Direction creditbook.Direction `json:"direction" binding:"required"`
	Note      string               `json:"note"`
}

// AddRecord handles POST /credit-books/:id/records
func (h *CreditBookHandler) AddRecord(c *gin.Context) {
	bookID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req addRecordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	book, err := h.books.AddManualRecord(c.Request.Context(), bookID, req.Label, req.Amount, req.Direction, req.Note)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

type setCompletedRequest struct {
	Completed bool `json:"completed"`
}

// SetCompleted handles PUT /credit-books/:id/completed
func (h *CreditBookHandler) SetCompleted(c *gin.Context) {
	bookID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req setCompletedRequest
	if !h.BindJSON(c, &req) {
		return
	}

	book, err := h.books.SetCompleted(c.Request.Context(), bookID, req.Completed)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// Delete handles DELETE /credit-books/:id
func (h *CreditBookHandler) Delete(c *gin.Context) {
	bookID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.books.Delete(c.Request.Context(), bookID); err != nil {
		h.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
