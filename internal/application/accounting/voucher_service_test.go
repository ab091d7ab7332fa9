package accounting

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/application/posting"
	"github.com/retailbooks/backend/internal/domain/accounting"
	"github.com/retailbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccountRepo struct {
	accounts map[uuid.UUID]*accounting.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uuid.UUID]*accounting.Account)}
}

func (r *fakeAccountRepo) add(t *testing.T, active bool) uuid.UUID {
	t.Helper()
	account, err := accounting.NewAccount(fmt.Sprintf("A-%d", len(r.accounts)+1), "Test Account", uuid.New(), accounting.AccountTypeAsset)
	require.NoError(t, err)
	account.IsActive = active
	r.accounts[account.ID] = account
	return account.ID
}

func (r *fakeAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*accounting.Account, error) {
	if a, ok := r.accounts[id]; ok {
		return a, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeAccountRepo) FindByCode(_ context.Context, code string) (*accounting.Account, error) {
	for _, a := range r.accounts {
		if a.Code == code {
			return a, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeAccountRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]accounting.Account, error) {
	out := make([]accounting.Account, 0, len(ids))
	for _, id := range ids {
		if a, ok := r.accounts[id]; ok {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) FindBySubhead(_ context.Context, subheadID uuid.UUID, _ shared.Filter) ([]accounting.Account, error) {
	out := make([]accounting.Account, 0)
	for _, a := range r.accounts {
		if a.SubheadID == subheadID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) FindAll(_ context.Context, _ shared.Filter) ([]accounting.Account, error) {
	return nil, nil
}

func (r *fakeAccountRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	_, err := r.FindByCode(context.Background(), code)
	return err == nil, nil
}

func (r *fakeAccountRepo) Save(_ context.Context, account *accounting.Account) error {
	r.accounts[account.ID] = account
	return nil
}

func (r *fakeAccountRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.accounts, id)
	return nil
}

func (r *fakeAccountRepo) CountReferences(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}

type fakeVoucherRepo struct {
	vouchers map[uuid.UUID]*accounting.Voucher
	seq      int
	// saveCollisions makes the next N Save calls report a duplicate number
	saveCollisions int
}

func newFakeVoucherRepo() *fakeVoucherRepo {
	return &fakeVoucherRepo{vouchers: make(map[uuid.UUID]*accounting.Voucher)}
}

func (r *fakeVoucherRepo) FindByID(_ context.Context, id uuid.UUID) (*accounting.Voucher, error) {
	if v, ok := r.vouchers[id]; ok {
		return v, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeVoucherRepo) FindByNumber(_ context.Context, number string) (*accounting.Voucher, error) {
	for _, v := range r.vouchers {
		if v.VoucherNumber == number {
			return v, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeVoucherRepo) FindBySource(_ context.Context, sourceTable string, sourceID uuid.UUID) ([]accounting.Voucher, error) {
	out := make([]accounting.Voucher, 0)
	for _, v := range r.vouchers {
		if v.SourceTable == sourceTable && v.SourceID != nil && *v.SourceID == sourceID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakeVoucherRepo) FindByAccount(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]accounting.Voucher, error) {
	return nil, nil
}

func (r *fakeVoucherRepo) FindAll(_ context.Context, _ shared.Filter) ([]accounting.Voucher, error) {
	return nil, nil
}

func (r *fakeVoucherRepo) Save(_ context.Context, voucher *accounting.Voucher) error {
	if r.saveCollisions > 0 {
		r.saveCollisions--
		return shared.ErrAlreadyExists
	}
	r.vouchers[voucher.ID] = voucher
	return nil
}

func (r *fakeVoucherRepo) DeleteDraft(_ context.Context, id uuid.UUID) error {
	delete(r.vouchers, id)
	return nil
}

func (r *fakeVoucherRepo) NextVoucherNumber(_ context.Context) (string, error) {
	r.seq++
	return fmt.Sprintf("JV-20260101-%05d", r.seq), nil
}

func (r *fakeVoucherRepo) TrialBalance(_ context.Context, _, _ time.Time) ([]accounting.AccountBalance, error) {
	rows := make([]accounting.AccountBalance, 0)
	totals := make(map[uuid.UUID]*accounting.AccountBalance)
	order := make([]uuid.UUID, 0)
	for _, v := range r.vouchers {
		if v.Status != accounting.VoucherStatusPosted && v.Status != accounting.VoucherStatusReversed {
			continue
		}
		for i := range v.Details {
			d := &v.Details[i]
			row, ok := totals[d.AccountID]
			if !ok {
				row = &accounting.AccountBalance{AccountID: d.AccountID, TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
				totals[d.AccountID] = row
				order = append(order, d.AccountID)
			}
			row.TotalDebit = row.TotalDebit.Add(d.Debit)
			row.TotalCredit = row.TotalCredit.Add(d.Credit)
		}
	}
	for _, id := range order {
		rows = append(rows, *totals[id])
	}
	return rows, nil
}

func (r *fakeVoucherRepo) PartyBalance(_ context.Context, partyID uuid.UUID) (decimal.Decimal, error) {
	balance := decimal.Zero
	for _, v := range r.vouchers {
		if v.Status != accounting.VoucherStatusPosted && v.Status != accounting.VoucherStatusReversed {
			continue
		}
		for i := range v.Details {
			d := &v.Details[i]
			if d.PartyID != nil && *d.PartyID == partyID {
				balance = balance.Add(d.Debit).Sub(d.Credit)
			}
		}
	}
	return balance, nil
}

var (
	_ accounting.AccountRepository = (*fakeAccountRepo)(nil)
	_ accounting.VoucherRepository = (*fakeVoucherRepo)(nil)
)

type voucherServiceFixture struct {
	service  *VoucherService
	accounts *fakeAccountRepo
	vouchers *fakeVoucherRepo
}

func newVoucherServiceFixture() *voucherServiceFixture {
	accounts := newFakeAccountRepo()
	vouchers := newFakeVoucherRepo()
	scope := posting.NewNoOpTransactionScope(accounts, vouchers, nil, nil, nil)
	return &voucherServiceFixture{
		service:  NewVoucherService(scope, nil),
		accounts: accounts,
		vouchers: vouchers,
	}
}

func journalReq(debitAccount, creditAccount uuid.UUID, amount int64) PostVoucherRequest {
	return PostVoucherRequest{
		VoucherType: accounting.VoucherTypeJournal,
		VoucherDate: time.Now(),
		Remark:      "opening entry",
		Lines: []VoucherLineRequest{
			{AccountID: debitAccount, Debit: decimal.NewFromInt(amount)},
			{AccountID: creditAccount, Credit: decimal.NewFromInt(amount)},
		},
		PostedBy: uuid.New(),
	}
}

func TestVoucherServicePost(t *testing.T) {
	ctx := context.Background()

	t.Run("posts a balanced voucher", func(t *testing.T) {
		f := newVoucherServiceFixture()
		debit := f.accounts.add(t, true)
		credit := f.accounts.add(t, true)

		resp, err := f.service.Post(ctx, journalReq(debit, credit, 500))
		require.NoError(t, err)

		assert.Equal(t, accounting.VoucherStatusPosted, resp.Status)
		assert.NotEmpty(t, resp.VoucherNumber)
		assert.True(t, resp.TotalDebit.Equal(decimal.NewFromInt(500)))
		assert.True(t, resp.TotalCredit.Equal(decimal.NewFromInt(500)))
		assert.Len(t, f.vouchers.vouchers, 1)
	})

	t.Run("rejects an unbalanced voucher before any write", func(t *testing.T) {
		f := newVoucherServiceFixture()
		debit := f.accounts.add(t, true)
		credit := f.accounts.add(t, true)

		req := journalReq(debit, credit, 500)
		req.Lines[1].Credit = decimal.NewFromInt(499)
		_, err := f.service.Post(ctx, req)

		assert.True(t, shared.IsCode(err, shared.ErrCodeUnbalanced))
		assert.Empty(t, f.vouchers.vouchers)
	})

	t.Run("rejects a line on a missing account", func(t *testing.T) {
		f := newVoucherServiceFixture()
		debit := f.accounts.add(t, true)

		_, err := f.service.Post(ctx, journalReq(debit, uuid.New(), 100))
		assert.True(t, shared.IsCode(err, shared.ErrCodeInvalidAccount))
		assert.Empty(t, f.vouchers.vouchers)
	})

	t.Run("rejects a line on an inactive account", func(t *testing.T) {
		f := newVoucherServiceFixture()
		debit := f.accounts.add(t, true)
		inactive := f.accounts.add(t, false)

		_, err := f.service.Post(ctx, journalReq(debit, inactive, 100))
		assert.True(t, shared.IsCode(err, shared.ErrCodeInvalidAccount))
	})

	t.Run("retries number collisions with a fresh number", func(t *testing.T) {
		f := newVoucherServiceFixture()
		debit := f.accounts.add(t, true)
		credit := f.accounts.add(t, true)
		f.vouchers.saveCollisions = 1

		resp, err := f.service.Post(ctx, journalReq(debit, credit, 200))
		require.NoError(t, err)
		assert.Equal(t, "JV-20260101-00002", resp.VoucherNumber)
		assert.Equal(t, accounting.VoucherStatusPosted, resp.Status)
	})

	t.Run("gives up after repeated collisions", func(t *testing.T) {
		f := newVoucherServiceFixture()
		debit := f.accounts.add(t, true)
		credit := f.accounts.add(t, true)
		f.vouchers.saveCollisions = 10

		_, err := f.service.Post(ctx, journalReq(debit, credit, 200))
		assert.True(t, shared.IsCode(err, "CONCURRENCY_CONFLICT"))
	})
}

func TestVoucherServiceReverse(t *testing.T) {
	ctx := context.Background()
	f := newVoucherServiceFixture()
	debit := f.accounts.add(t, true)
	credit := f.accounts.add(t, true)
	actor := uuid.New()

	posted, err := f.service.Post(ctx, journalReq(debit, credit, 300))
	require.NoError(t, err)

	t.Run("creates a linked reversal", func(t *testing.T) {
		reversal, err := f.service.Reverse(ctx, posted.ID, "entry error", actor)
		require.NoError(t, err)

		assert.Equal(t, accounting.VoucherTypeReversal, reversal.VoucherType)
		assert.Equal(t, accounting.VoucherStatusPosted, reversal.Status)
		require.NotNil(t, reversal.ReversesVoucherID)
		assert.Equal(t, posted.ID, *reversal.ReversesVoucherID)

		original, err := f.service.GetByID(ctx, posted.ID)
		require.NoError(t, err)
		assert.Equal(t, accounting.VoucherStatusReversed, original.Status)
		require.NotNil(t, original.ReversedByVoucherID)
		assert.Equal(t, reversal.ID, *original.ReversedByVoucherID)

		// Sides are swapped line for line.
		require.Len(t, reversal.Lines, len(posted.Lines))
		for i := range posted.Lines {
			assert.True(t, reversal.Lines[i].Debit.Equal(posted.Lines[i].Credit))
			assert.True(t, reversal.Lines[i].Credit.Equal(posted.Lines[i].Debit))
		}
	})

	t.Run("second reversal fails cleanly", func(t *testing.T) {
		_, err := f.service.Reverse(ctx, posted.ID, "again", actor)
		assert.True(t, shared.IsCode(err, shared.ErrCodeAlreadyReversed))
	})

	t.Run("unknown voucher reports not found", func(t *testing.T) {
		_, err := f.service.Reverse(ctx, uuid.New(), "reason", actor)
		assert.True(t, shared.IsCode(err, "NOT_FOUND"))
	})
}

func TestVoucherServiceDiscardDraft(t *testing.T) {
	ctx := context.Background()
	f := newVoucherServiceFixture()

	t.Run("discards a draft", func(t *testing.T) {
		draft, err := accounting.NewVoucherDraft(accounting.VoucherTypeJournal, time.Now(), "")
		require.NoError(t, err)
		require.NoError(t, f.vouchers.Save(ctx, draft))

		require.NoError(t, f.service.DiscardDraft(ctx, draft.ID))
		_, err = f.vouchers.FindByID(ctx, draft.ID)
		assert.Error(t, err)
	})

	t.Run("refuses to discard a posted voucher", func(t *testing.T) {
		debit := f.accounts.add(t, true)
		credit := f.accounts.add(t, true)
		posted, err := f.service.Post(ctx, journalReq(debit, credit, 50))
		require.NoError(t, err)

		err = f.service.DiscardDraft(ctx, posted.ID)
		assert.True(t, shared.IsCode(err, "INVALID_STATE"))
	})
}

func TestVoucherServiceGetBySource(t *testing.T) {
	ctx := context.Background()
	f := newVoucherServiceFixture()
	debit := f.accounts.add(t, true)
	credit := f.accounts.add(t, true)

	sourceID := uuid.New()
	req := journalReq(debit, credit, 75)
	req.SourceTable = "stock_mains"
	req.SourceID = &sourceID
	_, err := f.service.Post(ctx, req)
	require.NoError(t, err)

	found, err := f.service.GetBySource(ctx, "stock_mains", sourceID)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "stock_mains", found[0].SourceTable)

	none, err := f.service.GetBySource(ctx, "stock_mains", uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestVoucherServiceTrialBalance(t *testing.T) {
	ctx := context.Background()
	f := newVoucherServiceFixture()
	cash := f.accounts.add(t, true)
	capital := f.accounts.add(t, true)
	sales := f.accounts.add(t, true)

	_, err := f.service.Post(ctx, journalReq(cash, capital, 1000))
	require.NoError(t, err)
	_, err = f.service.Post(ctx, journalReq(cash, sales, 250))
	require.NoError(t, err)

	resp, err := f.service.TrialBalance(ctx, time.Now().AddDate(0, 0, -1), time.Now().AddDate(0, 0, 1))
	require.NoError(t, err)

	assert.True(t, resp.Balanced)
	assert.True(t, resp.TotalDebit.Equal(decimal.NewFromInt(1250)))
	assert.True(t, resp.TotalCredit.Equal(decimal.NewFromInt(1250)))
	assert.Len(t, resp.Rows, 3)
}

func TestVoucherServicePartyBalance(t *testing.T) {
	ctx := context.Background()
	f := newVoucherServiceFixture()
	receivable := f.accounts.add(t, true)
	sales := f.accounts.add(t, true)
	partyID := uuid.New()

	req := journalReq(receivable, sales, 400)
	req.Lines[0].PartyID = &partyID
	_, err := f.service.Post(ctx, req)
	require.NoError(t, err)

	balance, err := f.service.PartyBalance(ctx, partyID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(400)))
}
