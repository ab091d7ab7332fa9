package partner

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/partner"
	"github.com/retailbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePartyRepo struct {
	parties map[uuid.UUID]*partner.Party
}

func newFakePartyRepo() *fakePartyRepo {
	return &fakePartyRepo{parties: make(map[uuid.UUID]*partner.Party)}
}

func (r *fakePartyRepo) FindByID(_ context.Context, id uuid.UUID) (*partner.Party, error) {
	if p, ok := r.parties[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakePartyRepo) FindByCode(_ context.Context, code string) (*partner.Party, error) {
	for _, p := range r.parties {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakePartyRepo) FindAll(_ context.Context, filter shared.Filter) ([]partner.Party, error) {
	out := make([]partner.Party, 0, len(r.parties))
	for _, p := range r.parties {
		if v, ok := filter.Filters["party_type"]; ok && p.PartyType.String() != v {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakePartyRepo) Save(_ context.Context, party *partner.Party) error {
	for id, p := range r.parties {
		if p.Code == party.Code && id != party.ID {
			return shared.ErrAlreadyExists
		}
	}
	r.parties[party.ID] = party
	return nil
}

func (r *fakePartyRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.parties, id)
	return nil
}

var _ partner.PartyRepository = (*fakePartyRepo)(nil)

func TestPartyServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("registers a party with a credit limit", func(t *testing.T) {
		service := NewPartyService(newFakePartyRepo(), nil)
		resp, err := service.Create(ctx, CreatePartyRequest{
			Code:        "CUST-001",
			Name:        "Acme Traders",
			PartyType:   partner.PartyTypeCustomer,
			Phone:       "555-0100",
			CreditLimit: decimal.NewFromInt(5000),
		})
		require.NoError(t, err)
		assert.Equal(t, "CUST-001", resp.Code)
		assert.True(t, resp.CreditLimit.Equal(decimal.NewFromInt(5000)))
		assert.True(t, resp.IsActive)
	})

	t.Run("rejects a duplicate code", func(t *testing.T) {
		service := NewPartyService(newFakePartyRepo(), nil)
		req := CreatePartyRequest{Code: "CUST-001", Name: "Acme", PartyType: partner.PartyTypeCustomer}
		_, err := service.Create(ctx, req)
		require.NoError(t, err)

		req.Name = "Other Acme"
		_, err = service.Create(ctx, req)
		assert.True(t, shared.IsCode(err, shared.ErrCodeDuplicateCode))
	})

	t.Run("rejects an invalid party type", func(t *testing.T) {
		service := NewPartyService(newFakePartyRepo(), nil)
		_, err := service.Create(ctx, CreatePartyRequest{Code: "X", Name: "X", PartyType: partner.PartyType("VENDOR")})
		assert.Error(t, err)
	})
}

func TestPartyServiceDeactivate(t *testing.T) {
	ctx := context.Background()
	repo := newFakePartyRepo()
	service := NewPartyService(repo, nil)

	resp, err := service.Create(ctx, CreatePartyRequest{Code: "SUP-001", Name: "Bulk Supplies", PartyType: partner.PartyTypeSupplier})
	require.NoError(t, err)

	require.NoError(t, service.Deactivate(ctx, resp.ID))
	got, err := service.Get(ctx, resp.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	assert.Error(t, service.Deactivate(ctx, uuid.New()))
}

func TestPartyServiceList(t *testing.T) {
	ctx := context.Background()
	repo := newFakePartyRepo()
	service := NewPartyService(repo, nil)

	for _, p := range []CreatePartyRequest{
		{Code: "CUST-001", Name: "Acme", PartyType: partner.PartyTypeCustomer},
		{Code: "SUP-001", Name: "Bulk", PartyType: partner.PartyTypeSupplier},
		{Code: "P-001", Name: "Dual", PartyType: partner.PartyTypeBoth},
	} {
		_, err := service.Create(ctx, p)
		require.NoError(t, err)
	}

	all, err := service.List(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Len(t, all, 3)

	filter := shared.DefaultFilter()
	filter.Filters["party_type"] = "CUSTOMER"
	customers, err := service.List(ctx, filter)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "CUST-001", customers[0].Code)
}
