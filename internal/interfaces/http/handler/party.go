package handler

import (
	"github.com/gin-gonic/gin"
	accountingapp "github.com/retailbooks/backend/internal/application/accounting"
	partnerapp "github.com/retailbooks/backend/internal/application/partner"
)

// PartyHandler handles counterparty API endpoints
type PartyHandler struct {
	BaseHandler
	partyService   *partnerapp.PartyService
	voucherService *accountingapp.VoucherService
}

// NewPartyHandler creates a new PartyHandler
func NewPartyHandler(partyService *partnerapp.PartyService, voucherService *accountingapp.VoucherService) *PartyHandler {
	return &PartyHandler{
		partyService:   partyService,
		voucherService: voucherService,
	}
}

// Create handles POST /parties
func (h *PartyHandler) Create(c *gin.Context) {
	var req partnerapp.CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	party, err := h.partyService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, party)
}

// Get handles GET /parties/:id
func (h *PartyHandler) Get(c *gin.Context) {
	partyID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid party ID")
		return
	}

	party, err := h.partyService.Get(c.Request.Context(), partyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, party)
}

// List handles GET /parties
func (h *PartyHandler) List(c *gin.Context) {
	filter, err := buildFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if partyType := c.Query("party_type"); partyType != "" {
		filter.Filters["party_type"] = partyType
	}

	parties, err := h.partyService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, parties, filter.Page, filter.PageSize, len(parties))
}

// Deactivate handles POST /parties/:id/deactivate
func (h *PartyHandler) Deactivate(c *gin.Context) {
	partyID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid party ID")
		return
	}

	if err := h.partyService.Deactivate(c.Request.Context(), partyID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Balance handles GET /parties/:id/balance
func (h *PartyHandler) Balance(c *gin.Context) {
	partyID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid party ID")
		return
	}

	balance, err := h.voucherService.PartyBalance(c.Request.Context(), partyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"party_id": partyID, "balance": balance})
}
