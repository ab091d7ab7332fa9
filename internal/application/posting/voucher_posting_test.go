package posting

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/accounting"
	"github.com/retailbooks/backend/internal/domain/shared"
	"github.com/retailbooks/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collidingVoucherRepo makes the next N Save calls report a duplicate number
type collidingVoucherRepo struct {
	*memVoucherRepo
	collisions int
}

func (r *collidingVoucherRepo) Save(ctx context.Context, voucher *accounting.Voucher) error {
	if r.collisions > 0 {
		r.collisions--
		return shared.ErrAlreadyExists
	}
	return r.memVoucherRepo.Save(ctx, voucher)
}

type collidingStockRepo struct {
	*memStockRepo
	collisions int
}

func (r *collidingStockRepo) Save(ctx context.Context, main *stock.StockMain) error {
	if r.collisions > 0 {
		r.collisions--
		return shared.ErrAlreadyExists
	}
	return r.memStockRepo.Save(ctx, main)
}

func balancedDraft(t *testing.T) *accounting.Voucher {
	t.Helper()
	draft, err := accounting.NewVoucherDraft(accounting.VoucherTypeJournal, time.Now(), "")
	require.NoError(t, err)

	debit, err := accounting.NewVoucherDetail(uuid.New(), decimal.NewFromInt(100), decimal.Zero)
	require.NoError(t, err)
	credit, err := accounting.NewVoucherDetail(uuid.New(), decimal.Zero, decimal.NewFromInt(100))
	require.NoError(t, err)
	require.NoError(t, draft.AddLine(debit))
	require.NoError(t, draft.AddLine(credit))
	return draft
}

func TestPostWithNumber(t *testing.T) {
	ctx := context.Background()

	t.Run("posts and saves in one attempt", func(t *testing.T) {
		repo := newMemVoucherRepo()
		draft := balancedDraft(t)

		require.NoError(t, PostWithNumber(ctx, repo, draft, uuid.New()))
		assert.Equal(t, accounting.VoucherStatusPosted, draft.Status)
		assert.Equal(t, "JV-20260101-00001", draft.VoucherNumber)
	})

	t.Run("collision surfaces as a concurrency conflict without retrying", func(t *testing.T) {
		repo := &collidingVoucherRepo{memVoucherRepo: newMemVoucherRepo(), collisions: 1}
		draft := balancedDraft(t)

		err := PostWithNumber(ctx, repo, draft, uuid.New())
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		// Exactly one number was consumed; the replay allocates the next one.
		assert.Equal(t, 1, repo.seq)
	})

	t.Run("replay keeps the posted state and swaps the number", func(t *testing.T) {
		repo := &collidingVoucherRepo{memVoucherRepo: newMemVoucherRepo(), collisions: 1}
		draft := balancedDraft(t)
		postedBy := uuid.New()

		err := PostWithNumber(ctx, repo, draft, postedBy)
		require.ErrorIs(t, err, shared.ErrConcurrencyConflict)

		require.NoError(t, PostWithNumber(ctx, repo, draft, postedBy))
		assert.Equal(t, accounting.VoucherStatusPosted, draft.Status)
		assert.Equal(t, "JV-20260101-00002", draft.VoucherNumber)
		assert.Len(t, repo.vouchers, 1)
	})
}

func TestReverseWithNumber(t *testing.T) {
	ctx := context.Background()

	postedVoucher := func(t *testing.T, repo accounting.VoucherRepository) *accounting.Voucher {
		t.Helper()
		draft := balancedDraft(t)
		require.NoError(t, PostWithNumber(ctx, repo, draft, uuid.New()))
		return draft
	}

	t.Run("links and saves the reversal", func(t *testing.T) {
		repo := newMemVoucherRepo()
		voucher := postedVoucher(t, repo)

		reversal, err := ReverseWithNumber(ctx, repo, voucher, "entry error", uuid.New())
		require.NoError(t, err)
		assert.Equal(t, accounting.VoucherStatusReversed, voucher.Status)
		require.NotNil(t, voucher.ReversedByVoucherID)
		assert.Equal(t, reversal.ID, *voucher.ReversedByVoucherID)
	})

	t.Run("collision surfaces as a concurrency conflict", func(t *testing.T) {
		inner := newMemVoucherRepo()
		voucher := postedVoucher(t, inner)
		repo := &collidingVoucherRepo{memVoucherRepo: inner, collisions: 2}

		_, err := ReverseWithNumber(ctx, repo, voucher, "entry error", uuid.New())
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestPostDocumentCollision(t *testing.T) {
	ctx := context.Background()
	repo := &collidingStockRepo{memStockRepo: newMemStockRepo(), collisions: 1}

	doc, err := stock.NewStockMain(stock.TransactionTypePurchase, time.Now(), nil)
	require.NoError(t, err)
	line, err := stock.NewStockDetail(uuid.New(), decimal.NewFromInt(5), decimal.NewFromInt(10), decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, doc.AddLine(line))

	err = postDocument(ctx, repo, doc, decimal.Zero, decimal.Zero, uuid.New())
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.Equal(t, 1, repo.seq)

	require.NoError(t, postDocument(ctx, repo, doc, decimal.Zero, decimal.Zero, uuid.New()))
	assert.Equal(t, stock.StockStatusPosted, doc.Status)
	assert.Equal(t, "PURCHASE-20260101-00002", doc.TransactionNumber)
}
