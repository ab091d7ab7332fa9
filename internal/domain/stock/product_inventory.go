package stock

import (
	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// avgCostScale is the decimal precision kept on the moving average cost
const avgCostScale = 4

// ProductInventoryState holds the mutable aggregate state per product:
// current quantity on hand and moving weighted average cost. It is the one
// piece of shared state every stock movement must update transactionally,
// guarded by optimistic locking.
type ProductInventoryState struct {
	shared.BaseAggregateRoot
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	QuantityOnHand decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AverageCost    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductInventoryState) TableName() string {
	return "product_inventory_states"
}

// NewProductInventoryState creates the inventory state for a product
func NewProductInventoryState(productID uuid.UUID) (*ProductInventoryState, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	return &ProductInventoryState{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		QuantityOnHand:    decimal.Zero,
		AverageCost:       decimal.Zero,
	}, nil
}

// Receive increases quantity on hand and recomputes the moving weighted
// average cost: (oldQty*oldAvg + qty*cost) / (oldQty+qty).
func (s *ProductInventoryState) Receive(quantity, unitCost decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	oldCost := s.AverageCost
	oldQuantity := s.QuantityOnHand

	// A receipt into zero or written-off stock resets the average outright.
	if oldQuantity.LessThanOrEqual(decimal.Zero) {
		s.AverageCost = unitCost
	} else {
		totalValue := oldQuantity.Mul(oldCost).Add(quantity.Mul(unitCost))
		totalQuantity := oldQuantity.Add(quantity)
		s.AverageCost = totalValue.Div(totalQuantity).Round(avgCostScale)
	}

	s.QuantityOnHand = s.QuantityOnHand.Add(quantity)
	s.Touch()
	s.IncrementVersion()

	if !oldCost.Equal(s.AverageCost) {
		s.AddDomainEvent(NewInventoryCostChangedEvent(s, oldCost))
	}

	return nil
}

// Issue decreases quantity on hand and returns the unit cost snapshot for
// the movement (the current average cost). The average cost itself does not
// change on issue. Fails with INSUFFICIENT_STOCK when the requested quantity
// exceeds quantity on hand, unless allowNegative is set.
func (s *ProductInventoryState) Issue(quantity decimal.Decimal, allowNegative bool) (decimal.Decimal, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !allowNegative && s.QuantityOnHand.LessThan(quantity) {
		return decimal.Zero, shared.NewDomainError(shared.ErrCodeInsufficientStock,
			"Requested quantity exceeds quantity on hand")
	}

	costSnapshot := s.AverageCost
	s.QuantityOnHand = s.QuantityOnHand.Sub(quantity)
	s.Touch()
	s.IncrementVersion()

	return costSnapshot, nil
}

// RestoreIssue reverses a previous issue by adding the quantity back at the
// cost snapshotted on the original line. When no intervening transaction
// touched the product the pre-transaction average cost is restored exactly.
func (s *ProductInventoryState) RestoreIssue(quantity, costSnapshot decimal.Decimal) error {
	return s.Receive(quantity, costSnapshot)
}

// RevertReceipt reverses a previous receipt: quantity is removed and the
// average cost is recomputed backwards from the receipt's cost. Fails with
// NEGATIVE_INVENTORY when the remaining quantity would go below zero.
func (s *ProductInventoryState) RevertReceipt(quantity, unitCost decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	remaining := s.QuantityOnHand.Sub(quantity)
	if remaining.IsNegative() {
		return shared.NewDomainError(shared.ErrCodeNegativeInventory,
			"Reverting the receipt would drive quantity on hand below zero")
	}

	oldCost := s.AverageCost
	if remaining.IsZero() {
		s.AverageCost = decimal.Zero
	} else {
		totalValue := s.QuantityOnHand.Mul(s.AverageCost).Sub(quantity.Mul(unitCost))
		if totalValue.IsNegative() {
			totalValue = decimal.Zero
		}
		s.AverageCost = totalValue.Div(remaining).Round(avgCostScale)
	}

	s.QuantityOnHand = remaining
	s.Touch()
	s.IncrementVersion()

	if !oldCost.Equal(s.AverageCost) {
		s.AddDomainEvent(NewInventoryCostChangedEvent(s, oldCost))
	}

	return nil
}

// HasStock returns true if quantity on hand is positive
func (s *ProductInventoryState) HasStock() bool {
	return s.QuantityOnHand.IsPositive()
}

// CanFulfill returns true if quantity on hand covers the requested quantity
func (s *ProductInventoryState) CanFulfill(quantity decimal.Decimal) bool {
	return s.QuantityOnHand.GreaterThanOrEqual(quantity)
}

// TotalValue returns quantity on hand valued at the current average cost
func (s *ProductInventoryState) TotalValue() decimal.Decimal {
	return s.QuantityOnHand.Mul(s.AverageCost)
}
