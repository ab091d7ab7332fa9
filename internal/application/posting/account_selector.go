package posting

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/accounting"
	"github.com/retailbooks/backend/internal/domain/shared"
)

// System account codes. These accounts are seeded by the migrations and
// resolved to ids at startup; the coordinator falls back to them whenever a
// product category carries no mapping of its own.
const (
	SystemAccountCodeInventory    = "SYS-INVENTORY"
	SystemAccountCodeCOGS         = "SYS-COGS"
	SystemAccountCodeSales        = "SYS-SALES"
	SystemAccountCodeSalesReturns = "SYS-SALES-RETURNS"
	SystemAccountCodeCash         = "SYS-CASH"
	SystemAccountCodeReceivable   = "SYS-AR"
	SystemAccountCodePayable      = "SYS-AP"
	SystemAccountCodeTax          = "SYS-TAX"
)

// SystemAccounts holds the resolved ids of the seeded default accounts
type SystemAccounts struct {
	Inventory    uuid.UUID
	COGS         uuid.UUID
	Sales        uuid.UUID
	SalesReturns uuid.UUID
	Cash         uuid.UUID
	Receivable   uuid.UUID
	Payable      uuid.UUID
	Tax          uuid.UUID
}

// Validate checks that every system account id is set
func (a SystemAccounts) Validate() error {
	ids := []uuid.UUID{
		a.Inventory, a.COGS, a.Sales, a.SalesReturns,
		a.Cash, a.Receivable, a.Payable, a.Tax,
	}
	for _, id := range ids {
		if id == uuid.Nil {
			return shared.NewDomainError(shared.ErrCodeInvalidAccount, "System account registry is incomplete")
		}
	}
	return nil
}

// LoadSystemAccounts resolves the seeded system accounts by code
func LoadSystemAccounts(ctx context.Context, repo accounting.AccountRepository) (SystemAccounts, error) {
	var accounts SystemAccounts
	for code, target := range map[string]*uuid.UUID{
		SystemAccountCodeInventory:    &accounts.Inventory,
		SystemAccountCodeCOGS:         &accounts.COGS,
		SystemAccountCodeSales:        &accounts.Sales,
		SystemAccountCodeSalesReturns: &accounts.SalesReturns,
		SystemAccountCodeCash:         &accounts.Cash,
		SystemAccountCodeReceivable:   &accounts.Receivable,
		SystemAccountCodePayable:      &accounts.Payable,
		SystemAccountCodeTax:          &accounts.Tax,
	} {
		account, err := repo.FindByCode(ctx, code)
		if err != nil {
			return SystemAccounts{}, shared.NewDomainError(shared.ErrCodeInvalidAccount,
				"System account "+code+" is not seeded")
		}
		*target = account.ID
	}
	return accounts, nil
}

// CategoryAccounts maps a product category to its preferred ledger accounts.
// The records come from the product catalog, an external collaborator; a nil
// id on any field means "use the system default".
type CategoryAccounts struct {
	CategoryID     uuid.UUID
	SaleAccountID  uuid.UUID
	StockAccountID uuid.UUID
	COGSAccountID  uuid.UUID
}

// CategoryAccountRepository stores the per-category account mappings the
// product catalog pushes in. The selector is rebuilt from FindAll at startup.
type CategoryAccountRepository interface {
	FindAll(ctx context.Context) ([]CategoryAccounts, error)
	Save(ctx context.Context, mapping CategoryAccounts) error
}

// AccountSelector resolves the ledger accounts for auto-generated voucher
// lines: per-category mapping first, system defaults second.
type AccountSelector struct {
	system     SystemAccounts
	byCategory map[uuid.UUID]CategoryAccounts
}

// NewAccountSelector creates a selector over the system registry and the
// category mappings
func NewAccountSelector(system SystemAccounts, mappings []CategoryAccounts) (*AccountSelector, error) {
	if err := system.Validate(); err != nil {
		return nil, err
	}
	byCategory := make(map[uuid.UUID]CategoryAccounts, len(mappings))
	for _, m := range mappings {
		if m.CategoryID == uuid.Nil {
			return nil, shared.NewDomainError(shared.ErrCodeInvalidAccount, "Category mapping requires a category id")
		}
		byCategory[m.CategoryID] = m
	}
	return &AccountSelector{system: system, byCategory: byCategory}, nil
}

// SalesAccount returns the revenue account for a category
func (s *AccountSelector) SalesAccount(categoryID *uuid.UUID) uuid.UUID {
	if categoryID != nil {
		if m, ok := s.byCategory[*categoryID]; ok && m.SaleAccountID != uuid.Nil {
			return m.SaleAccountID
		}
	}
	return s.system.Sales
}

// InventoryAccount returns the stock asset account for a category
func (s *AccountSelector) InventoryAccount(categoryID *uuid.UUID) uuid.UUID {
	if categoryID != nil {
		if m, ok := s.byCategory[*categoryID]; ok && m.StockAccountID != uuid.Nil {
			return m.StockAccountID
		}
	}
	return s.system.Inventory
}

// COGSAccount returns the cost-of-goods-sold account for a category
func (s *AccountSelector) COGSAccount(categoryID *uuid.UUID) uuid.UUID {
	if categoryID != nil {
		if m, ok := s.byCategory[*categoryID]; ok && m.COGSAccountID != uuid.Nil {
			return m.COGSAccountID
		}
	}
	return s.system.COGS
}

// SalesReturnsAccount returns the contra-revenue account for returns
func (s *AccountSelector) SalesReturnsAccount() uuid.UUID { return s.system.SalesReturns }

// CashAccount returns the cash account
func (s *AccountSelector) CashAccount() uuid.UUID { return s.system.Cash }

// ReceivableAccount returns the accounts receivable control account
func (s *AccountSelector) ReceivableAccount() uuid.UUID { return s.system.Receivable }

// PayableAccount returns the accounts payable control account
func (s *AccountSelector) PayableAccount() uuid.UUID { return s.system.Payable }

// TaxAccount returns the tax clearing account
func (s *AccountSelector) TaxAccount() uuid.UUID { return s.system.Tax }
