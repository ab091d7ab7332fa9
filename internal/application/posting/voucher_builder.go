package posting

import (
	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/accounting"
	"github.com/retailbooks/backend/internal/domain/shared"
	"github.com/retailbooks/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
)

// stockSourceTable is the source table written onto auto-generated vouchers
const stockSourceTable = "stock_mains"

type legKey struct {
	accountID uuid.UUID
	debit     bool
}

// legAccumulator collects voucher legs per account and side, preserving
// insertion order. Amounts on the same account and side merge into one line.
type legAccumulator struct {
	order   []legKey
	amounts map[legKey]decimal.Decimal
	parties map[legKey]*uuid.UUID
}

func newLegAccumulator() *legAccumulator {
	return &legAccumulator{
		amounts: make(map[legKey]decimal.Decimal),
		parties: make(map[legKey]*uuid.UUID),
	}
}

func (a *legAccumulator) add(accountID uuid.UUID, debit bool, amount decimal.Decimal, partyID *uuid.UUID) {
	if !amount.IsPositive() {
		return
	}
	key := legKey{accountID: accountID, debit: debit}
	if _, ok := a.amounts[key]; !ok {
		a.order = append(a.order, key)
	}
	a.amounts[key] = a.amounts[key].Add(amount)
	if partyID != nil {
		a.parties[key] = partyID
	}
}

func (a *legAccumulator) debit(accountID uuid.UUID, amount decimal.Decimal) {
	a.add(accountID, true, amount, nil)
}

func (a *legAccumulator) credit(accountID uuid.UUID, amount decimal.Decimal) {
	a.add(accountID, false, amount, nil)
}

func (a *legAccumulator) debitParty(accountID uuid.UUID, amount decimal.Decimal, partyID *uuid.UUID) {
	a.add(accountID, true, amount, partyID)
}

func (a *legAccumulator) creditParty(accountID uuid.UUID, amount decimal.Decimal, partyID *uuid.UUID) {
	a.add(accountID, false, amount, partyID)
}

func (a *legAccumulator) build() ([]*accounting.VoucherDetail, error) {
	lines := make([]*accounting.VoucherDetail, 0, len(a.order))
	for _, key := range a.order {
		amount := a.amounts[key]
		debit, credit := decimal.Zero, amount
		if key.debit {
			debit, credit = amount, decimal.Zero
		}
		line, err := accounting.NewVoucherDetail(key.accountID, debit, credit)
		if err != nil {
			return nil, err
		}
		if party := a.parties[key]; party != nil {
			line.WithParty(*party)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// buildVoucherDraft constructs the voucher recording a stock document's
// monetary effect. Revenue, inventory and cost legs resolve per line through
// the account selector so category mappings apply; cash, tax and party legs
// aggregate at document level. reqLines runs parallel to doc.Details and
// supplies the category each line belongs to.
func buildVoucherDraft(
	selector *AccountSelector,
	doc *stock.StockMain,
	reqLines []MovementLineRequest,
	totals *stock.MovementTotals,
	taxAmount, paidAmount decimal.Decimal,
	remark string,
) (*accounting.Voucher, error) {
	if len(reqLines) != len(doc.Details) {
		return nil, shared.NewDomainError("INVALID_LINE", "Request lines do not match document lines")
	}

	legs := newLegAccumulator()
	balance := totals.GrandTotal.Add(taxAmount).Sub(paidAmount)

	switch doc.TransactionType {
	case stock.TransactionTypeSale:
		for i := range doc.Details {
			line := &doc.Details[i]
			category := reqLines[i].CategoryID
			legs.credit(selector.SalesAccount(category), line.LineTotal)
			legs.debit(selector.COGSAccount(category), line.LineCost)
			legs.credit(selector.InventoryAccount(category), line.LineCost)
		}
		legs.credit(selector.TaxAccount(), taxAmount)
		legs.debit(selector.CashAccount(), paidAmount)
		legs.debitParty(selector.ReceivableAccount(), balance, doc.PartyID)

	case stock.TransactionTypeSalesReturn:
		for i := range doc.Details {
			line := &doc.Details[i]
			category := reqLines[i].CategoryID
			legs.debit(selector.SalesReturnsAccount(), line.LineTotal)
			legs.debit(selector.InventoryAccount(category), line.LineCost)
			legs.credit(selector.COGSAccount(category), line.LineCost)
		}
		legs.debit(selector.TaxAccount(), taxAmount)
		legs.credit(selector.CashAccount(), paidAmount)
		legs.creditParty(selector.ReceivableAccount(), balance, doc.PartyID)

	case stock.TransactionTypePurchase:
		for i := range doc.Details {
			line := &doc.Details[i]
			legs.debit(selector.InventoryAccount(reqLines[i].CategoryID), line.LineTotal)
		}
		legs.debit(selector.TaxAccount(), taxAmount)
		legs.credit(selector.CashAccount(), paidAmount)
		legs.creditParty(selector.PayableAccount(), balance, doc.PartyID)

	case stock.TransactionTypePurchaseReturn:
		// Inventory is relieved at the cost snapshot; the gap between the
		// return price and that cost lands on cost of goods sold.
		for i := range doc.Details {
			line := &doc.Details[i]
			category := reqLines[i].CategoryID
			legs.credit(selector.InventoryAccount(category), line.LineCost)
			variance := line.LineTotal.Sub(line.LineCost)
			if variance.IsPositive() {
				legs.credit(selector.COGSAccount(category), variance)
			} else if variance.IsNegative() {
				legs.debit(selector.COGSAccount(category), variance.Neg())
			}
		}
		legs.credit(selector.TaxAccount(), taxAmount)
		legs.debit(selector.CashAccount(), paidAmount)
		legs.debitParty(selector.PayableAccount(), balance, doc.PartyID)

	case stock.TransactionTypeAdjustmentIncrease:
		for i := range doc.Details {
			line := &doc.Details[i]
			category := reqLines[i].CategoryID
			legs.debit(selector.InventoryAccount(category), line.LineCost)
			legs.credit(selector.COGSAccount(category), line.LineCost)
		}

	case stock.TransactionTypeAdjustmentDecrease:
		for i := range doc.Details {
			line := &doc.Details[i]
			category := reqLines[i].CategoryID
			legs.debit(selector.COGSAccount(category), line.LineCost)
			legs.credit(selector.InventoryAccount(category), line.LineCost)
		}

	default:
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE",
			"Transaction type "+doc.TransactionType.String()+" does not generate a voucher")
	}

	lines, err := legs.build()
	if err != nil {
		return nil, err
	}

	draft, err := accounting.NewVoucherDraft(doc.TransactionType.VoucherType(), doc.TransactionDate, remark)
	if err != nil {
		return nil, err
	}
	draft.WithSource(stockSourceTable, doc.ID)
	for _, line := range lines {
		if err := draft.AddLine(line); err != nil {
			return nil, err
		}
	}
	return draft, nil
}
