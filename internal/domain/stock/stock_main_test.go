package stock

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftWithLine(t *testing.T, txType TransactionType) *StockMain {
	t.Helper()
	doc, err := NewStockMain(txType, time.Now(), nil)
	require.NoError(t, err)

	line, err := NewStockDetail(uuid.New(), decimal.NewFromInt(10), decimal.NewFromInt(15), decimal.Zero)
	require.NoError(t, err)
	line.SetCost(decimal.NewFromInt(9))
	require.NoError(t, doc.AddLine(line))
	return doc
}

func TestNewStockMain(t *testing.T) {
	t.Run("creates a draft", func(t *testing.T) {
		partyID := uuid.New()
		doc, err := NewStockMain(TransactionTypeSale, time.Now(), &partyID)
		require.NoError(t, err)
		assert.Equal(t, StockStatusDraft, doc.Status)
		assert.Empty(t, doc.TransactionNumber)
		assert.Equal(t, partyID, *doc.PartyID)
	})

	t.Run("rejects invalid transaction type", func(t *testing.T) {
		_, err := NewStockMain(TransactionType("BOGUS"), time.Now(), nil)
		assert.True(t, shared.IsCode(err, "INVALID_TRANSACTION_TYPE"))
	})

	t.Run("rejects zero date", func(t *testing.T) {
		_, err := NewStockMain(TransactionTypeSale, time.Time{}, nil)
		assert.Error(t, err)
	})

	t.Run("rejects nil party pointer target", func(t *testing.T) {
		nilID := uuid.Nil
		_, err := NewStockMain(TransactionTypeSale, time.Now(), &nilID)
		assert.Error(t, err)
	})
}

func TestNewStockDetailValidation(t *testing.T) {
	productID := uuid.New()

	t.Run("computes line total net of discount", func(t *testing.T) {
		line, err := NewStockDetail(productID, decimal.NewFromInt(4), decimal.NewFromInt(25), decimal.NewFromInt(10))
		require.NoError(t, err)
		assert.True(t, line.LineTotal.Equal(decimal.NewFromInt(90)))
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := NewStockDetail(productID, decimal.Zero, decimal.NewFromInt(5), decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("rejects discount above line amount", func(t *testing.T) {
		_, err := NewStockDetail(productID, decimal.NewFromInt(1), decimal.NewFromInt(5), decimal.NewFromInt(6))
		assert.True(t, shared.IsCode(err, "INVALID_DISCOUNT"))
	})

	t.Run("set cost derives line cost from quantity", func(t *testing.T) {
		line, err := NewStockDetail(productID, decimal.NewFromInt(6), decimal.NewFromInt(20), decimal.Zero)
		require.NoError(t, err)
		line.SetCost(decimal.RequireFromString("12.5"))
		assert.True(t, line.LineCost.Equal(decimal.NewFromInt(75)))
	})
}

func TestStockMainPost(t *testing.T) {
	actor := uuid.New()

	t.Run("computes totals from lines", func(t *testing.T) {
		doc := draftWithLine(t, TransactionTypeSale)
		require.NoError(t, doc.Post("SAL-20260101-00001", decimal.NewFromInt(15), decimal.NewFromInt(100), actor))

		assert.Equal(t, StockStatusPosted, doc.Status)
		assert.True(t, doc.Subtotal.Equal(decimal.NewFromInt(150)))
		assert.True(t, doc.TotalAmount.Equal(decimal.NewFromInt(165)))
		assert.True(t, doc.TotalCost.Equal(decimal.NewFromInt(90)))
		assert.True(t, doc.BalanceAmount.Equal(decimal.NewFromInt(65)))
		assert.Len(t, doc.GetDomainEvents(), 1)
	})

	t.Run("rejects paid amount above total", func(t *testing.T) {
		doc := draftWithLine(t, TransactionTypeSale)
		err := doc.Post("SAL-20260101-00002", decimal.Zero, decimal.NewFromInt(151), actor)
		assert.True(t, shared.IsCode(err, "INVALID_AMOUNT"))
		assert.Equal(t, StockStatusDraft, doc.Status)
	})

	t.Run("rejects empty document", func(t *testing.T) {
		doc, err := NewStockMain(TransactionTypeSale, time.Now(), nil)
		require.NoError(t, err)
		err = doc.Post("SAL-20260101-00003", decimal.Zero, decimal.Zero, actor)
		assert.True(t, shared.IsCode(err, "EMPTY_DOCUMENT"))
	})

	t.Run("cannot post twice", func(t *testing.T) {
		doc := draftWithLine(t, TransactionTypeSale)
		require.NoError(t, doc.Post("SAL-20260101-00004", decimal.Zero, decimal.Zero, actor))
		err := doc.Post("SAL-20260101-00005", decimal.Zero, decimal.Zero, actor)
		assert.True(t, shared.IsCode(err, "INVALID_STATE"))
	})

	t.Run("cannot add lines after posting", func(t *testing.T) {
		doc := draftWithLine(t, TransactionTypeSale)
		require.NoError(t, doc.Post("SAL-20260101-00006", decimal.Zero, decimal.Zero, actor))
		line, err := NewStockDetail(uuid.New(), decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.Zero)
		require.NoError(t, err)
		assert.Error(t, doc.AddLine(line))
	})
}

func TestStockMainLinkVoucher(t *testing.T) {
	doc := draftWithLine(t, TransactionTypePurchase)
	require.NoError(t, doc.LinkVoucher(uuid.New()))
	assert.NotNil(t, doc.VoucherID)

	assert.Error(t, doc.LinkVoucher(uuid.Nil))
}

func TestStockMainVoid(t *testing.T) {
	actor := uuid.New()

	t.Run("voids a posted document", func(t *testing.T) {
		doc := draftWithLine(t, TransactionTypeSale)
		require.NoError(t, doc.Post("SAL-20260101-00010", decimal.Zero, decimal.Zero, actor))
		require.NoError(t, doc.Void("wrong customer", actor))

		assert.Equal(t, StockStatusVoided, doc.Status)
		assert.Equal(t, "wrong customer", doc.VoidReason)
		assert.NotNil(t, doc.VoidedAt)
		assert.Equal(t, actor, *doc.VoidedBy)
	})

	t.Run("cannot void a draft", func(t *testing.T) {
		doc := draftWithLine(t, TransactionTypeSale)
		err := doc.Void("reason", actor)
		assert.True(t, shared.IsCode(err, shared.ErrCodeNotPosted))
	})

	t.Run("cannot void twice", func(t *testing.T) {
		doc := draftWithLine(t, TransactionTypeSale)
		require.NoError(t, doc.Post("SAL-20260101-00011", decimal.Zero, decimal.Zero, actor))
		require.NoError(t, doc.Void("first", actor))
		assert.True(t, shared.IsCode(doc.Void("second", actor), shared.ErrCodeNotPosted))
	})

	t.Run("requires reason and actor", func(t *testing.T) {
		doc := draftWithLine(t, TransactionTypeSale)
		require.NoError(t, doc.Post("SAL-20260101-00012", decimal.Zero, decimal.Zero, actor))
		assert.Error(t, doc.Void("", actor))
		assert.Error(t, doc.Void("reason", uuid.Nil))
	})
}

func TestTransactionTypePolicies(t *testing.T) {
	t.Run("direction", func(t *testing.T) {
		assert.True(t, TransactionTypePurchase.IsIncrease())
		assert.True(t, TransactionTypeSalesReturn.IsIncrease())
		assert.True(t, TransactionTypeSale.IsDecrease())
		assert.True(t, TransactionTypeTransferOut.IsDecrease())
		assert.False(t, TransactionType("BOGUS").IsDecrease())
	})

	t.Run("costing rule", func(t *testing.T) {
		assert.True(t, TransactionTypePurchase.UsesDocumentCost())
		assert.True(t, TransactionTypeTransferIn.UsesDocumentCost())
		assert.False(t, TransactionTypeSalesReturn.UsesDocumentCost())
		assert.False(t, TransactionTypeAdjustmentIncrease.UsesDocumentCost())
	})

	t.Run("only adjustment decrease may overdraw stock", func(t *testing.T) {
		assert.True(t, TransactionTypeAdjustmentDecrease.AllowsNegativeStock())
		assert.False(t, TransactionTypeSale.AllowsNegativeStock())
	})

	t.Run("transfer legs post no voucher", func(t *testing.T) {
		assert.False(t, TransactionTypeTransferIn.CreatesVoucher())
		assert.False(t, TransactionTypeTransferOut.CreatesVoucher())
		assert.True(t, TransactionTypeSale.CreatesVoucher())
		assert.True(t, TransactionTypeAdjustmentDecrease.CreatesVoucher())
	})

	t.Run("opposite cancels the quantity effect", func(t *testing.T) {
		for _, tt := range []TransactionType{
			TransactionTypeSale, TransactionTypePurchase,
			TransactionTypeSalesReturn, TransactionTypePurchaseReturn,
			TransactionTypeTransferIn, TransactionTypeTransferOut,
			TransactionTypeAdjustmentIncrease, TransactionTypeAdjustmentDecrease,
		} {
			assert.NotEqual(t, tt.IsIncrease(), tt.Opposite().IsIncrease(), tt)
		}
	})
}
