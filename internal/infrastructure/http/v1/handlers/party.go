package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tillbook/internal/domain/party"
)

// PartyHandler handles customer and supplier records. The same handler is
// mounted under both /customers and /parties of the other kind; the kind is
// fixed at construction.
type PartyHandler struct {
	*BaseHandler
	parties *party.Service
	kind    party.Kind
}

// NewPartyHandler creates a party handler bound to one kind.
func NewPartyHandler(base *BaseHandler, parties *party.Service, kind party.Kind) *PartyHandler {
	return &PartyHandler{BaseHandler: base, parties: parties, kind: kind}
}

type partyRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Note    string `json:"note"`
}

// Create handles POST /customers (or /suppliers)
func (h *PartyHandler) Create(c *gin.Context) {
	var req partyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := party.NewParty(h.kind, req.Name)
	p.Phone = req.Phone
	p.Address = req.Address
	p.Note = req.Note
	if err := h.parties.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// List handles GET /customers (or /suppliers)
func (h *PartyHandler) List(c *gin.Context) {
	out, err := h.parties.List(c.Request.Context(), h.kind)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"parties": out})
}

// Get handles GET /customers/:id (or /suppliers/:id)
func (h *PartyHandler) Get(c *gin.Context) {
	partyID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	p, err := h.parties.Get(c.Request.Context(), h.kind, partyID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Update handles PUT /customers/:id (or /suppliers/:id)
func (h *PartyHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	partyID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req partyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.parties.Get(ctx, h.kind, partyID)
	if err != nil {
		h.Error(c, err)
		return
	}
	p.Name = req.Name
	p.Phone = req.Phone
	p.Address = req.Address
	p.Note = req.Note
	if err := h.parties.Update(ctx, p); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /customers/:id (or /suppliers/:id)
func (h *PartyHandler) Delete(c *gin.Context) {
	partyID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.parties.Delete(c.Request.Context(), h.kind, partyID); err != nil {
		h.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
