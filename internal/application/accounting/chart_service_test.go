package accounting

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/accounting"
	"github.com/retailbooks/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChartRepo struct {
	families map[uuid.UUID]*accounting.AccountFamily
	heads    map[uuid.UUID]*accounting.AccountHead
	subheads map[uuid.UUID]*accounting.AccountSubhead
}

func newFakeChartRepo() *fakeChartRepo {
	return &fakeChartRepo{
		families: make(map[uuid.UUID]*accounting.AccountFamily),
		heads:    make(map[uuid.UUID]*accounting.AccountHead),
		subheads: make(map[uuid.UUID]*accounting.AccountSubhead),
	}
}

func (r *fakeChartRepo) FindFamilyByID(_ context.Context, id uuid.UUID) (*accounting.AccountFamily, error) {
	if f, ok := r.families[id]; ok {
		return f, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeChartRepo) FindHeadByID(_ context.Context, id uuid.UUID) (*accounting.AccountHead, error) {
	if h, ok := r.heads[id]; ok {
		return h, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeChartRepo) FindSubheadByID(_ context.Context, id uuid.UUID) (*accounting.AccountSubhead, error) {
	if s, ok := r.subheads[id]; ok {
		return s, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeChartRepo) FindAllFamilies(_ context.Context) ([]accounting.AccountFamily, error) {
	out := make([]accounting.AccountFamily, 0, len(r.families))
	for _, f := range r.families {
		out = append(out, *f)
	}
	return out, nil
}

func (r *fakeChartRepo) FindHeadsByFamily(_ context.Context, familyID uuid.UUID) ([]accounting.AccountHead, error) {
	out := make([]accounting.AccountHead, 0)
	for _, h := range r.heads {
		if h.FamilyID == familyID {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (r *fakeChartRepo) FindSubheadsByHead(_ context.Context, headID uuid.UUID) ([]accounting.AccountSubhead, error) {
	out := make([]accounting.AccountSubhead, 0)
	for _, s := range r.subheads {
		if s.HeadID == headID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeChartRepo) SaveFamily(_ context.Context, family *accounting.AccountFamily) error {
	r.families[family.ID] = family
	return nil
}

func (r *fakeChartRepo) SaveHead(_ context.Context, head *accounting.AccountHead) error {
	r.heads[head.ID] = head
	return nil
}

func (r *fakeChartRepo) SaveSubhead(_ context.Context, subhead *accounting.AccountSubhead) error {
	r.subheads[subhead.ID] = subhead
	return nil
}

var _ accounting.ChartRepository = (*fakeChartRepo)(nil)

type chartServiceFixture struct {
	service  *ChartOfAccountsService
	chart    *fakeChartRepo
	accounts *fakeAccountRepo
}

func newChartServiceFixture() *chartServiceFixture {
	chart := newFakeChartRepo()
	accounts := newFakeAccountRepo()
	return &chartServiceFixture{
		service:  NewChartOfAccountsService(chart, accounts, nil),
		chart:    chart,
		accounts: accounts,
	}
}

// buildHierarchy creates one Family → Head → Subhead chain
func (f *chartServiceFixture) buildHierarchy(t *testing.T) *accounting.AccountSubhead {
	t.Helper()
	ctx := context.Background()
	family, err := f.service.CreateFamily(ctx, "Assets")
	require.NoError(t, err)
	head, err := f.service.CreateHead(ctx, family.ID, "Current Assets")
	require.NoError(t, err)
	subhead, err := f.service.CreateSubhead(ctx, head.ID, "Cash and Bank")
	require.NoError(t, err)
	return subhead
}

func TestChartServiceHierarchy(t *testing.T) {
	ctx := context.Background()

	t.Run("builds the full chain", func(t *testing.T) {
		f := newChartServiceFixture()
		subhead := f.buildHierarchy(t)
		assert.NotEqual(t, uuid.Nil, subhead.ID)
	})

	t.Run("head requires an existing family", func(t *testing.T) {
		f := newChartServiceFixture()
		_, err := f.service.CreateHead(ctx, uuid.New(), "Current Assets")
		assert.True(t, shared.IsCode(err, shared.ErrCodeInvalidHierarchy))
	})

	t.Run("subhead requires an existing head", func(t *testing.T) {
		f := newChartServiceFixture()
		_, err := f.service.CreateSubhead(ctx, uuid.New(), "Inventory")
		assert.True(t, shared.IsCode(err, shared.ErrCodeInvalidHierarchy))
	})
}

func TestChartServiceCreateAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a leaf account", func(t *testing.T) {
		f := newChartServiceFixture()
		subhead := f.buildHierarchy(t)

		resp, err := f.service.CreateAccount(ctx, CreateAccountRequest{
			Code:        "1001",
			Name:        "Petty Cash",
			SubheadID:   subhead.ID,
			AccountType: accounting.AccountTypeAsset,
		})
		require.NoError(t, err)
		assert.Equal(t, "1001", resp.Code)
		assert.Equal(t, accounting.NormalBalanceDebit, resp.NormalBalance)
		assert.True(t, resp.IsActive)
	})

	t.Run("rejects a duplicate code", func(t *testing.T) {
		f := newChartServiceFixture()
		subhead := f.buildHierarchy(t)

		req := CreateAccountRequest{Code: "1001", Name: "Petty Cash", SubheadID: subhead.ID, AccountType: accounting.AccountTypeAsset}
		_, err := f.service.CreateAccount(ctx, req)
		require.NoError(t, err)

		_, err = f.service.CreateAccount(ctx, req)
		assert.True(t, shared.IsCode(err, shared.ErrCodeDuplicateCode))
	})

	t.Run("rejects an unknown subhead", func(t *testing.T) {
		f := newChartServiceFixture()
		_, err := f.service.CreateAccount(ctx, CreateAccountRequest{
			Code:        "1001",
			Name:        "Petty Cash",
			SubheadID:   uuid.New(),
			AccountType: accounting.AccountTypeAsset,
		})
		assert.True(t, shared.IsCode(err, shared.ErrCodeInvalidHierarchy))
	})
}

func TestChartServiceDeleteAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("refuses to delete a system account", func(t *testing.T) {
		f := newChartServiceFixture()
		account, err := accounting.NewSystemAccount("SYS-CASH", "Cash", uuid.New(), accounting.AccountTypeAsset)
		require.NoError(t, err)
		f.accounts.accounts[account.ID] = account

		err = f.service.DeleteAccount(ctx, account.ID)
		assert.True(t, shared.IsCode(err, "SYSTEM_ACCOUNT"))
	})

	t.Run("deletes an unreferenced account", func(t *testing.T) {
		f := newChartServiceFixture()
		id := f.accounts.add(t, true)
		require.NoError(t, f.service.DeleteAccount(ctx, id))
		_, err := f.service.GetAccount(ctx, id)
		assert.Error(t, err)
	})
}

func TestChartServiceGetChartTree(t *testing.T) {
	ctx := context.Background()
	f := newChartServiceFixture()
	subhead := f.buildHierarchy(t)

	_, err := f.service.CreateAccount(ctx, CreateAccountRequest{
		Code:        "1001",
		Name:        "Petty Cash",
		SubheadID:   subhead.ID,
		AccountType: accounting.AccountTypeAsset,
	})
	require.NoError(t, err)

	tree, err := f.service.GetChartTree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Heads, 1)
	require.Len(t, tree[0].Heads[0].Subheads, 1)
	require.Len(t, tree[0].Heads[0].Subheads[0].Accounts, 1)
	assert.Equal(t, "1001", tree[0].Heads[0].Subheads[0].Accounts[0].Code)
}
