package handler

import (
	"github.com/gin-gonic/gin"
	accountingapp "github.com/retailbooks/backend/internal/application/accounting"
)

// ChartHandler handles chart-of-accounts API endpoints
type ChartHandler struct {
	BaseHandler
	chartService *accountingapp.ChartOfAccountsService
}

// NewChartHandler creates a new ChartHandler
func NewChartHandler(chartService *accountingapp.ChartOfAccountsService) *ChartHandler {
	return &ChartHandler{chartService: chartService}
}

// CreateNodeRequest names a new classification node
type CreateNodeRequest struct {
	Name string `json:"name" binding:"required,max=200"`
}

// CreateFamily handles POST /chart/families
func (h *ChartHandler) CreateFamily(c *gin.Context) {
	var req CreateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	family, err := h.chartService.CreateFamily(c.Request.Context(), req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, family)
}

// CreateHead handles POST /chart/families/:id/heads
func (h *ChartHandler) CreateHead(c *gin.Context) {
	familyID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid family ID")
		return
	}
	var req CreateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	head, err := h.chartService.CreateHead(c.Request.Context(), familyID, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, head)
}

// CreateSubhead handles POST /chart/heads/:id/subheads
func (h *ChartHandler) CreateSubhead(c *gin.Context) {
	headID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid head ID")
		return
	}
	var req CreateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	subhead, err := h.chartService.CreateSubhead(c.Request.Context(), headID, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, subhead)
}

// GetTree handles GET /chart/tree
func (h *ChartHandler) GetTree(c *gin.Context) {
	tree, err := h.chartService.GetChartTree(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tree)
}

// CreateAccount handles POST /accounts
func (h *ChartHandler) CreateAccount(c *gin.Context) {
	var req accountingapp.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.chartService.CreateAccount(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

// GetAccount handles GET /accounts/:id
func (h *ChartHandler) GetAccount(c *gin.Context) {
	accountID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	account, err := h.chartService.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// DeleteAccount handles DELETE /accounts/:id
func (h *ChartHandler) DeleteAccount(c *gin.Context) {
	accountID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	if err := h.chartService.DeleteAccount(c.Request.Context(), accountID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
