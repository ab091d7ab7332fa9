package stock

import (
	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type names for the stock domain
const (
	EventTypeStockDocumentPosted  = "StockDocumentPosted"
	EventTypeStockDocumentVoided  = "StockDocumentVoided"
	EventTypeInventoryCostChanged = "InventoryCostChanged"
)

// StockDocumentPostedEvent is raised when a stock document transitions to Posted
type StockDocumentPostedEvent struct {
	shared.BaseDomainEvent
	StockMainID       uuid.UUID       `json:"stock_main_id"`
	TransactionNumber string          `json:"transaction_number"`
	TransactionType   TransactionType `json:"transaction_type"`
	PartyID           *uuid.UUID      `json:"party_id,omitempty"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	LineCount         int             `json:"line_count"`
}

// EventType returns the event type name
func (e *StockDocumentPostedEvent) EventType() string {
	return EventTypeStockDocumentPosted
}

// NewStockDocumentPostedEvent creates a new StockDocumentPostedEvent
func NewStockDocumentPostedEvent(m *StockMain) *StockDocumentPostedEvent {
	return &StockDocumentPostedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeStockDocumentPosted, "StockMain", m.ID),
		StockMainID:       m.ID,
		TransactionNumber: m.TransactionNumber,
		TransactionType:   m.TransactionType,
		PartyID:           m.PartyID,
		TotalAmount:       m.TotalAmount,
		TotalCost:         m.TotalCost,
		LineCount:         len(m.Details),
	}
}

// StockDocumentVoidedEvent is raised when a posted stock document is voided
type StockDocumentVoidedEvent struct {
	shared.BaseDomainEvent
	StockMainID       uuid.UUID       `json:"stock_main_id"`
	TransactionNumber string          `json:"transaction_number"`
	TransactionType   TransactionType `json:"transaction_type"`
	Reason            string          `json:"reason"`
	VoidedBy          *uuid.UUID      `json:"voided_by,omitempty"`
}

// EventType returns the event type name
func (e *StockDocumentVoidedEvent) EventType() string {
	return EventTypeStockDocumentVoided
}

// NewStockDocumentVoidedEvent creates a new StockDocumentVoidedEvent
func NewStockDocumentVoidedEvent(m *StockMain) *StockDocumentVoidedEvent {
	return &StockDocumentVoidedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeStockDocumentVoided, "StockMain", m.ID),
		StockMainID:       m.ID,
		TransactionNumber: m.TransactionNumber,
		TransactionType:   m.TransactionType,
		Reason:            m.VoidReason,
		VoidedBy:          m.VoidedBy,
	}
}

// InventoryCostChangedEvent is raised when a product's average cost moves
type InventoryCostChangedEvent struct {
	shared.BaseDomainEvent
	ProductID      uuid.UUID       `json:"product_id"`
	OldAverageCost decimal.Decimal `json:"old_average_cost"`
	NewAverageCost decimal.Decimal `json:"new_average_cost"`
	QuantityOnHand decimal.Decimal `json:"quantity_on_hand"`
}

// EventType returns the event type name
func (e *InventoryCostChangedEvent) EventType() string {
	return EventTypeInventoryCostChanged
}

// NewInventoryCostChangedEvent creates a new InventoryCostChangedEvent
func NewInventoryCostChangedEvent(s *ProductInventoryState, oldCost decimal.Decimal) *InventoryCostChangedEvent {
	return &InventoryCostChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInventoryCostChanged, "ProductInventoryState", s.ID),
		ProductID:       s.ProductID,
		OldAverageCost:  oldCost,
		NewAverageCost:  s.AverageCost,
		QuantityOnHand:  s.QuantityOnHand,
	}
}
