package posting

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/accounting"
	"github.com/retailbooks/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// appliedDocument builds the stock document for a request and runs the
// valuation against fresh (or pre-stocked) inventory state, mirroring what
// the coordinator does before generating the voucher.
func appliedDocument(t *testing.T, req PostMovementRequest, initialQty, initialCost int64) (*stock.StockMain, *stock.MovementTotals) {
	t.Helper()
	doc, overrides, err := buildDocument(req)
	require.NoError(t, err)

	states := make(map[string]*stock.ProductInventoryState)
	for _, line := range req.Lines {
		if _, ok := states[line.ProductID.String()]; ok {
			continue
		}
		state, err := stock.NewProductInventoryState(line.ProductID)
		require.NoError(t, err)
		if initialQty > 0 {
			require.NoError(t, state.Receive(decimal.NewFromInt(initialQty), decimal.NewFromInt(initialCost)))
		}
		states[line.ProductID.String()] = state
	}

	totals, err := stock.NewValuationService().ApplyMovement(doc, states, overrides)
	require.NoError(t, err)
	return doc, totals
}

func TestBuildVoucherDraftBalances(t *testing.T) {
	selector, err := NewAccountSelector(testSystemAccounts(), nil)
	require.NoError(t, err)
	partyID := uuid.New()

	cases := []struct {
		name        string
		txType      stock.TransactionType
		voucherType accounting.VoucherType
		initialQty  int64
		tax         int64
		paid        int64
	}{
		{"sale", stock.TransactionTypeSale, accounting.VoucherTypeSale, 100, 15, 100},
		{"sales return", stock.TransactionTypeSalesReturn, accounting.VoucherTypeSalesReturn, 100, 15, 0},
		{"purchase", stock.TransactionTypePurchase, accounting.VoucherTypePurchase, 0, 10, 50},
		{"purchase return", stock.TransactionTypePurchaseReturn, accounting.VoucherTypePurchaseReturn, 100, 0, 0},
		{"adjustment increase", stock.TransactionTypeAdjustmentIncrease, accounting.VoucherTypeJournal, 100, 0, 0},
		{"adjustment decrease", stock.TransactionTypeAdjustmentDecrease, accounting.VoucherTypeJournal, 100, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := movementReq(tc.txType, uuid.New(), 10, 12)
			req.PartyID = &partyID
			req.TaxAmount = decimal.NewFromInt(tc.tax)
			req.PaidAmount = decimal.NewFromInt(tc.paid)

			doc, totals := appliedDocument(t, req, tc.initialQty, 8)
			draft, err := buildVoucherDraft(selector, doc, req.Lines, totals, req.TaxAmount, req.PaidAmount, "")
			require.NoError(t, err)

			assert.NoError(t, draft.Validate())
			assert.Equal(t, tc.voucherType, draft.VoucherType)
			assert.Equal(t, stockSourceTable, draft.SourceTable)
			require.NotNil(t, draft.SourceID)
			assert.Equal(t, doc.ID, *draft.SourceID)
		})
	}
}

func TestBuildVoucherDraftSaleLegs(t *testing.T) {
	system := testSystemAccounts()
	selector, err := NewAccountSelector(system, nil)
	require.NoError(t, err)
	partyID := uuid.New()

	req := movementReq(stock.TransactionTypeSale, uuid.New(), 30, 15)
	req.PartyID = &partyID
	req.PaidAmount = decimal.NewFromInt(200)

	doc, totals := appliedDocument(t, req, 100, 10)
	draft, err := buildVoucherDraft(selector, doc, req.Lines, totals, decimal.Zero, req.PaidAmount, "")
	require.NoError(t, err)

	// 450 revenue, 300 cost relief, 200 cash now, 250 on the customer.
	byAccount := make(map[uuid.UUID]*accounting.VoucherDetail)
	for i := range draft.Details {
		byAccount[draft.Details[i].AccountID] = &draft.Details[i]
	}
	assert.True(t, byAccount[system.Sales].Credit.Equal(decimal.NewFromInt(450)))
	assert.True(t, byAccount[system.COGS].Debit.Equal(decimal.NewFromInt(300)))
	assert.True(t, byAccount[system.Inventory].Credit.Equal(decimal.NewFromInt(300)))
	assert.True(t, byAccount[system.Cash].Debit.Equal(decimal.NewFromInt(200)))

	receivable := byAccount[system.Receivable]
	require.NotNil(t, receivable)
	assert.True(t, receivable.Debit.Equal(decimal.NewFromInt(250)))
	require.NotNil(t, receivable.PartyID)
	assert.Equal(t, partyID, *receivable.PartyID)
}

func TestBuildVoucherDraftPurchaseReturnVariance(t *testing.T) {
	system := testSystemAccounts()
	selector, err := NewAccountSelector(system, nil)
	require.NoError(t, err)

	// Goods bought at 8 go back at 12: inventory is relieved at cost and the
	// 40 gap lands on cost of goods sold.
	req := movementReq(stock.TransactionTypePurchaseReturn, uuid.New(), 10, 12)
	doc, totals := appliedDocument(t, req, 100, 8)
	draft, err := buildVoucherDraft(selector, doc, req.Lines, totals, decimal.Zero, decimal.Zero, "")
	require.NoError(t, err)
	require.NoError(t, draft.Validate())

	byAccount := make(map[uuid.UUID]*accounting.VoucherDetail)
	for i := range draft.Details {
		byAccount[draft.Details[i].AccountID] = &draft.Details[i]
	}
	assert.True(t, byAccount[system.Inventory].Credit.Equal(decimal.NewFromInt(80)))
	assert.True(t, byAccount[system.COGS].Credit.Equal(decimal.NewFromInt(40)))
	assert.True(t, byAccount[system.Payable].Debit.Equal(decimal.NewFromInt(120)))
}

func TestBuildVoucherDraftLineMismatch(t *testing.T) {
	selector, err := NewAccountSelector(testSystemAccounts(), nil)
	require.NoError(t, err)

	doc, err := stock.NewStockMain(stock.TransactionTypeSale, time.Now(), nil)
	require.NoError(t, err)

	_, err = buildVoucherDraft(selector, doc, []MovementLineRequest{{ProductID: uuid.New()}}, &stock.MovementTotals{}, decimal.Zero, decimal.Zero, "")
	assert.Error(t, err)
}
