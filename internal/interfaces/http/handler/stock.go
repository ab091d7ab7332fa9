package handler

import (
	"github.com/gin-gonic/gin"
	postingapp "github.com/retailbooks/backend/internal/application/posting"
)

// StockHandler handles stock movement API endpoints
type StockHandler struct {
	BaseHandler
	coordinator *postingapp.PostingCoordinator
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(coordinator *postingapp.PostingCoordinator) *StockHandler {
	return &StockHandler{coordinator: coordinator}
}

// VoidMovementRequest carries the reason for voiding a movement
type VoidMovementRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// PostMovement handles POST /stock-movements
func (h *StockHandler) PostMovement(c *gin.Context) {
	var req postingapp.PostMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if actor, err := getActorID(c); err == nil {
		req.PostedBy = actor
	}

	movement, err := h.coordinator.Execute(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, movement)
}

// Transfer handles POST /stock-movements/transfers
func (h *StockHandler) Transfer(c *gin.Context) {
	var req postingapp.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if actor, err := getActorID(c); err == nil {
		req.PostedBy = actor
	}

	transfer, err := h.coordinator.Transfer(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, transfer)
}

// Void handles POST /stock-movements/:id/void
func (h *StockHandler) Void(c *gin.Context) {
	stockMainID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid movement ID")
		return
	}
	var req VoidMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	actor, _ := getActorID(c)

	if err := h.coordinator.VoidEvent(c.Request.Context(), stockMainID, req.Reason, actor); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetMovement handles GET /stock-movements/:id
func (h *StockHandler) GetMovement(c *gin.Context) {
	stockMainID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid movement ID")
		return
	}

	movement, err := h.coordinator.GetMovement(c.Request.Context(), stockMainID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movement)
}

// StockLedger handles GET /products/:id/ledger
func (h *StockHandler) StockLedger(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	filter, err := buildFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ledger, err := h.coordinator.StockLedger(c.Request.Context(), productID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, ledger, filter.Page, filter.PageSize, len(ledger))
}

// GetInventoryState handles GET /products/:id/inventory
func (h *StockHandler) GetInventoryState(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	state, err := h.coordinator.GetInventoryState(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, state)
}
