package accounting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ChartRepository persists the classification levels of the chart of accounts
type ChartRepository interface {
	// FindFamilyByID finds an account family by ID
	FindFamilyByID(ctx context.Context, id uuid.UUID) (*AccountFamily, error)

	// FindHeadByID finds an account head by ID
	FindHeadByID(ctx context.Context, id uuid.UUID) (*AccountHead, error)

	// FindSubheadByID finds an account subhead by ID
	FindSubheadByID(ctx context.Context, id uuid.UUID) (*AccountSubhead, error)

	// FindAllFamilies lists every family
	FindAllFamilies(ctx context.Context) ([]AccountFamily, error)

	// FindHeadsByFamily lists the heads under a family
	FindHeadsByFamily(ctx context.Context, familyID uuid.UUID) ([]AccountHead, error)

	// FindSubheadsByHead lists the subheads under a head
	FindSubheadsByHead(ctx context.Context, headID uuid.UUID) ([]AccountSubhead, error)

	// SaveFamily creates or updates a family
	SaveFamily(ctx context.Context, family *AccountFamily) error

	// SaveHead creates or updates a head
	SaveHead(ctx context.Context, head *AccountHead) error

	// SaveSubhead creates or updates a subhead
	SaveSubhead(ctx context.Context, subhead *AccountSubhead) error
}

// AccountRepository persists leaf accounts
type AccountRepository interface {
	// FindByID finds an account by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// FindByCode finds an account by its unique code
	FindByCode(ctx context.Context, code string) (*Account, error)

	// FindByIDs finds multiple accounts by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Account, error)

	// FindBySubhead lists the accounts under a subhead
	FindBySubhead(ctx context.Context, subheadID uuid.UUID, filter shared.Filter) ([]Account, error)

	// FindAll lists accounts with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Account, error)

	// ExistsByCode reports whether an account with the code exists
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// Save creates or updates an account
	Save(ctx context.Context, account *Account) error

	// Delete removes an account. Implementations must reject the delete when
	// any voucher line references the account.
	Delete(ctx context.Context, id uuid.UUID) error

	// CountReferences counts voucher lines referencing the account
	CountReferences(ctx context.Context, id uuid.UUID) (int64, error)
}

// AccountBalance is one row of a trial balance report
type AccountBalance struct {
	AccountID   uuid.UUID       `json:"account_id"`
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	AccountType AccountType     `json:"account_type"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
}

// VoucherRepository persists vouchers and their lines
type VoucherRepository interface {
	// FindByID finds a voucher with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*Voucher, error)

	// FindByNumber finds a voucher by its unique voucher number
	FindByNumber(ctx context.Context, voucherNumber string) (*Voucher, error)

	// FindBySource finds the vouchers generated by a business record
	FindBySource(ctx context.Context, sourceTable string, sourceID uuid.UUID) ([]Voucher, error)

	// FindByAccount lists posted vouchers containing lines on the account
	FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]Voucher, error)

	// FindAll lists vouchers with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Voucher, error)

	// Save creates or updates a voucher and its lines
	Save(ctx context.Context, voucher *Voucher) error

	// DeleteDraft hard-deletes a draft voucher and its lines. Posted and
	// Reversed vouchers are permanent records.
	DeleteDraft(ctx context.Context, id uuid.UUID) error

	// NextVoucherNumber allocates the next voucher number. Uniqueness is
	// guaranteed by the vouchers.voucher_number unique index; callers retry
	// on collision.
	NextVoucherNumber(ctx context.Context) (string, error)

	// TrialBalance aggregates posted voucher lines into per-account debit and
	// credit totals over the period
	TrialBalance(ctx context.Context, from, to time.Time) ([]AccountBalance, error)

	// PartyBalance computes a party's running balance from posted voucher
	// lines tagged with the party: sum(debit) - sum(credit).
	PartyBalance(ctx context.Context, partyID uuid.UUID) (decimal.Decimal, error)
}
