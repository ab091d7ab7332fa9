package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	accountingapp "github.com/retailbooks/backend/internal/application/accounting"
)

// VoucherHandler handles journal voucher API endpoints
type VoucherHandler struct {
	BaseHandler
	voucherService *accountingapp.VoucherService
}

// NewVoucherHandler creates a new VoucherHandler
func NewVoucherHandler(voucherService *accountingapp.VoucherService) *VoucherHandler {
	return &VoucherHandler{voucherService: voucherService}
}

// ReverseVoucherRequest carries the reason for a reversal
type ReverseVoucherRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// Post handles POST /vouchers
func (h *VoucherHandler) Post(c *gin.Context) {
	var req accountingapp.PostVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if actor, err := getActorID(c); err == nil {
		req.PostedBy = actor
	}

	voucher, err := h.voucherService.Post(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, voucher)
}

// Reverse handles POST /vouchers/:id/reverse
func (h *VoucherHandler) Reverse(c *gin.Context) {
	voucherID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid voucher ID")
		return
	}
	var req ReverseVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	actor, _ := getActorID(c)

	reversal, err := h.voucherService.Reverse(c.Request.Context(), voucherID, req.Reason, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, reversal)
}

// GetByID handles GET /vouchers/:id
func (h *VoucherHandler) GetByID(c *gin.Context) {
	voucherID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid voucher ID")
		return
	}

	voucher, err := h.voucherService.GetByID(c.Request.Context(), voucherID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, voucher)
}

// GetBySource handles GET /vouchers/source/:table/:id
func (h *VoucherHandler) GetBySource(c *gin.Context) {
	sourceID, err := uuid.Parse(c.Param("source_id"))
	if err != nil {
		h.BadRequest(c, "Invalid source ID")
		return
	}
	sourceTable := c.Param("table")

	vouchers, err := h.voucherService.GetBySource(c.Request.Context(), sourceTable, sourceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, vouchers)
}

// DiscardDraft handles DELETE /vouchers/:id
func (h *VoucherHandler) DiscardDraft(c *gin.Context) {
	voucherID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid voucher ID")
		return
	}

	if err := h.voucherService.DiscardDraft(c.Request.Context(), voucherID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// TrialBalance handles GET /reports/trial-balance?from=...&to=...
func (h *VoucherHandler) TrialBalance(c *gin.Context) {
	from, err := time.Parse("2006-01-02", c.DefaultQuery("from", "1970-01-01"))
	if err != nil {
		h.BadRequest(c, "Invalid from date, expected YYYY-MM-DD")
		return
	}
	to, err := time.Parse("2006-01-02", c.DefaultQuery("to", time.Now().Format("2006-01-02")))
	if err != nil {
		h.BadRequest(c, "Invalid to date, expected YYYY-MM-DD")
		return
	}
	// Make the range inclusive of the whole closing day.
	to = to.Add(24*time.Hour - time.Nanosecond)

	report, err := h.voucherService.TrialBalance(c.Request.Context(), from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
