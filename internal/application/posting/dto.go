package posting

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
)

// MovementLineRequest is one product line of a stock movement.
// UnitCost carries the document cost for purchases and restores the original
// cost snapshot for returns; when omitted, purchases fall back to the
// discounted line price and other types to the current average cost.
type MovementLineRequest struct {
	ProductID    uuid.UUID        `json:"product_id" binding:"required"`
	CategoryID   *uuid.UUID       `json:"category_id,omitempty"`
	Quantity     decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPrice    decimal.Decimal  `json:"unit_price"`
	LineDiscount decimal.Decimal  `json:"line_discount"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"`
}

// PostMovementRequest is the input for posting a stock-affecting business
// event (sale, purchase, return, adjustment)
type PostMovementRequest struct {
	TransactionType stock.TransactionType `json:"transaction_type" binding:"required,transaction_type"`
	TransactionDate time.Time             `json:"transaction_date" binding:"required"`
	PartyID         *uuid.UUID            `json:"party_id,omitempty"`
	TaxAmount       decimal.Decimal       `json:"tax_amount"`
	PaidAmount      decimal.Decimal       `json:"paid_amount"`
	Remark          string                `json:"remark,omitempty"`
	Lines           []MovementLineRequest `json:"lines" binding:"required,min=1,dive"`
	PostedBy        uuid.UUID             `json:"-"`
}

// TransferRequest is the input for a stock transfer. It produces two
// documents, one per leg, sharing a transfer reference; the incoming leg
// receives at the cost the outgoing leg issued at.
type TransferRequest struct {
	TransactionDate time.Time             `json:"transaction_date" binding:"required"`
	Remark          string                `json:"remark,omitempty"`
	Lines           []MovementLineRequest `json:"lines" binding:"required,min=1,dive"`
	PostedBy        uuid.UUID             `json:"-"`
}

// MovementLineResponse is one line of a posted stock document
type MovementLineResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	LineDiscount decimal.Decimal `json:"line_discount"`
	LineTotal    decimal.Decimal `json:"line_total"`
	LineCost     decimal.Decimal `json:"line_cost"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
}

// MovementResponse is the API representation of a posted stock document
type MovementResponse struct {
	ID                uuid.UUID              `json:"id"`
	TransactionNumber string                 `json:"transaction_number"`
	TransactionType   stock.TransactionType  `json:"transaction_type"`
	TransactionDate   time.Time              `json:"transaction_date"`
	PartyID           *uuid.UUID             `json:"party_id,omitempty"`
	Subtotal          decimal.Decimal        `json:"subtotal"`
	DiscountAmount    decimal.Decimal        `json:"discount_amount"`
	TaxAmount         decimal.Decimal        `json:"tax_amount"`
	TotalAmount       decimal.Decimal        `json:"total_amount"`
	TotalCost         decimal.Decimal        `json:"total_cost"`
	PaidAmount        decimal.Decimal        `json:"paid_amount"`
	BalanceAmount     decimal.Decimal        `json:"balance_amount"`
	Status            stock.StockStatus      `json:"status"`
	VoucherID         *uuid.UUID             `json:"voucher_id,omitempty"`
	TransferRef       string                 `json:"transfer_ref,omitempty"`
	Remark            string                 `json:"remark,omitempty"`
	Lines             []MovementLineResponse `json:"lines"`
}

// TransferResponse carries both legs of a posted transfer
type TransferResponse struct {
	TransferRef string           `json:"transfer_ref"`
	Out         MovementResponse `json:"out"`
	In          MovementResponse `json:"in"`
}

// ToMovementResponse maps a stock document to its API representation
func ToMovementResponse(m *stock.StockMain) MovementResponse {
	lines := make([]MovementLineResponse, 0, len(m.Details))
	for i := range m.Details {
		d := &m.Details[i]
		lines = append(lines, MovementLineResponse{
			ID:           d.ID,
			ProductID:    d.ProductID,
			Quantity:     d.Quantity,
			UnitPrice:    d.UnitPrice,
			CostPrice:    d.CostPrice,
			LineDiscount: d.LineDiscount,
			LineTotal:    d.LineTotal,
			LineCost:     d.LineCost,
			BalanceAfter: d.BalanceAfter,
		})
	}
	return MovementResponse{
		ID:                m.ID,
		TransactionNumber: m.TransactionNumber,
		TransactionType:   m.TransactionType,
		TransactionDate:   m.TransactionDate,
		PartyID:           m.PartyID,
		Subtotal:          m.Subtotal,
		DiscountAmount:    m.DiscountAmount,
		TaxAmount:         m.TaxAmount,
		TotalAmount:       m.TotalAmount,
		TotalCost:         m.TotalCost,
		PaidAmount:        m.PaidAmount,
		BalanceAmount:     m.BalanceAmount,
		Status:            m.Status,
		VoucherID:         m.VoucherID,
		TransferRef:       m.TransferRef,
		Remark:            m.Remark,
		Lines:             lines,
	}
}

// InventoryStateResponse is the API representation of per-product inventory state
type InventoryStateResponse struct {
	ProductID      uuid.UUID       `json:"product_id"`
	QuantityOnHand decimal.Decimal `json:"quantity_on_hand"`
	AverageCost    decimal.Decimal `json:"average_cost"`
	TotalValue     decimal.Decimal `json:"total_value"`
}

// ToInventoryStateResponse maps an inventory state to its API representation
func ToInventoryStateResponse(s *stock.ProductInventoryState) InventoryStateResponse {
	return InventoryStateResponse{
		ProductID:      s.ProductID,
		QuantityOnHand: s.QuantityOnHand,
		AverageCost:    s.AverageCost,
		TotalValue:     s.TotalValue(),
	}
}
