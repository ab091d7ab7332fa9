package stock

import (
	"github.com/retailbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MovementTotals carries the monetary effect of an applied stock movement.
// The posting coordinator builds the matching voucher lines from these.
type MovementTotals struct {
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Tax        decimal.Decimal
	GrandTotal decimal.Decimal
	TotalCost  decimal.Decimal
}

// ValuationService applies a stock document's quantity and cost effects to
// per-product inventory state. It owns the costing rules: receipts use the
// document cost and recompute the moving average; issues snapshot the
// current average cost onto the line.
type ValuationService struct{}

// NewValuationService creates a new ValuationService
func NewValuationService() *ValuationService {
	return &ValuationService{}
}

// ApplyMovement mutates the given inventory states according to the
// document's transaction type and writes the cost snapshot onto every line.
// states must contain an entry for each line's product. The document is not
// transitioned; callers Post it afterwards with the returned totals.
func (s *ValuationService) ApplyMovement(
	doc *StockMain,
	states map[string]*ProductInventoryState,
	costOverrides map[string]decimal.Decimal,
) (*MovementTotals, error) {
	if doc == nil {
		return nil, shared.NewDomainError("INVALID_DOCUMENT", "Stock document cannot be nil")
	}
	if !doc.TransactionType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Transaction type is not valid")
	}

	totals := &MovementTotals{
		Subtotal:   decimal.Zero,
		Discount:   decimal.Zero,
		Tax:        decimal.Zero,
		GrandTotal: decimal.Zero,
		TotalCost:  decimal.Zero,
	}

	for i := range doc.Details {
		line := &doc.Details[i]
		state, ok := states[line.ProductID.String()]
		if !ok || state == nil {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Missing inventory state for product "+line.ProductID.String())
		}

		if doc.TransactionType.IsIncrease() {
			cost, err := s.receiptCost(doc.TransactionType, state, costOverrides, line)
			if err != nil {
				return nil, err
			}
			if err := state.Receive(line.Quantity, cost); err != nil {
				return nil, err
			}
			line.SetCost(cost)
		} else {
			cost, err := state.Issue(line.Quantity, doc.TransactionType.AllowsNegativeStock())
			if err != nil {
				return nil, err
			}
			line.SetCost(cost)
		}

		line.BalanceAfter = state.QuantityOnHand
		totals.Subtotal = totals.Subtotal.Add(line.Quantity.Mul(line.UnitPrice))
		totals.Discount = totals.Discount.Add(line.LineDiscount)
		totals.TotalCost = totals.TotalCost.Add(line.LineCost)
	}

	totals.GrandTotal = totals.Subtotal.Sub(totals.Discount)
	return totals, nil
}

// receiptCost resolves the unit cost for an increasing line. Purchases and
// transfer-in legs carry the document cost; sales returns and adjustment
// increases restore at the override when supplied (the original line's cost
// snapshot), falling back to the current average cost.
func (s *ValuationService) receiptCost(
	txType TransactionType,
	state *ProductInventoryState,
	costOverrides map[string]decimal.Decimal,
	line *StockDetail,
) (decimal.Decimal, error) {
	if override, ok := costOverrides[line.ProductID.String()]; ok {
		if override.IsNegative() {
			return decimal.Zero, shared.NewDomainError("INVALID_COST", "Cost override cannot be negative")
		}
		return override, nil
	}
	if txType.UsesDocumentCost() {
		return decimal.Zero, shared.NewDomainError("INVALID_COST",
			"Transaction type "+txType.String()+" requires a document cost for product "+line.ProductID.String())
	}
	return state.AverageCost, nil
}

// RevertMovement undoes a previously applied movement using the cost
// snapshots captured on the document's lines. Issues are restored at their
// snapshot cost; receipts are backed out with the average recomputed in
// reverse, so the pre-transaction state returns exactly when no intervening
// transaction touched the product.
func (s *ValuationService) RevertMovement(
	doc *StockMain,
	states map[string]*ProductInventoryState,
) error {
	if doc == nil {
		return shared.NewDomainError("INVALID_DOCUMENT", "Stock document cannot be nil")
	}

	for i := range doc.Details {
		line := &doc.Details[i]
		state, ok := states[line.ProductID.String()]
		if !ok || state == nil {
			return shared.NewDomainError("INVALID_PRODUCT", "Missing inventory state for product "+line.ProductID.String())
		}

		if doc.TransactionType.IsIncrease() {
			if err := state.RevertReceipt(line.Quantity, line.CostPrice); err != nil {
				return err
			}
		} else {
			if err := state.RestoreIssue(line.Quantity, line.CostPrice); err != nil {
				return err
			}
		}
	}

	return nil
}
