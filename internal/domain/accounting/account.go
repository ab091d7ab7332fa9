package accounting

import (
	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/shared"
)

// AccountType classifies an account and determines its normal balance side
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// String returns the string representation of AccountType
func (t AccountType) String() string {
	return string(t)
}

// IsValid returns true if the account type is valid
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// NormalBalance is the side on which an account naturally increases
type NormalBalance string

const (
	NormalBalanceDebit  NormalBalance = "DEBIT"
	NormalBalanceCredit NormalBalance = "CREDIT"
)

// NormalBalance derives the normal balance side from the account type.
// Used for reporting semantics only; posting validity checks magnitude
// equality, not sign-by-type correctness.
func (t AccountType) NormalBalance() NormalBalance {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return NormalBalanceDebit
	default:
		return NormalBalanceCredit
	}
}

// AccountFamily is the top level of the chart-of-accounts hierarchy.
// Families, heads and subheads are pure classification nodes with no
// business attributes beyond a display name.
type AccountFamily struct {
	shared.BaseEntity
	Name string `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (AccountFamily) TableName() string {
	return "account_families"
}

// NewAccountFamily creates a new account family
func NewAccountFamily(name string) (*AccountFamily, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Family name cannot be empty")
	}
	return &AccountFamily{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
	}, nil
}

// AccountHead is the second level of the hierarchy, owned by a family
type AccountHead struct {
	shared.BaseEntity
	FamilyID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name     string    `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (AccountHead) TableName() string {
	return "account_heads"
}

// NewAccountHead creates a new account head under a family
func NewAccountHead(familyID uuid.UUID, name string) (*AccountHead, error) {
	if familyID == uuid.Nil {
		return nil, shared.NewDomainError(shared.ErrCodeInvalidHierarchy, "Family ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Head name cannot be empty")
	}
	return &AccountHead{
		BaseEntity: shared.NewBaseEntity(),
		FamilyID:   familyID,
		Name:       name,
	}, nil
}

// ReparentTo moves the head under a different family. Subheads keep their
// head reference, so their family changes transitively; existing subheads
// are never repointed implicitly to another head.
func (h *AccountHead) ReparentTo(familyID uuid.UUID) error {
	if familyID == uuid.Nil {
		return shared.NewDomainError(shared.ErrCodeInvalidHierarchy, "Family ID cannot be empty")
	}
	h.FamilyID = familyID
	h.Touch()
	return nil
}

// AccountSubhead is the third level of the hierarchy, owned by a head
type AccountSubhead struct {
	shared.BaseEntity
	HeadID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name   string    `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (AccountSubhead) TableName() string {
	return "account_subheads"
}

// NewAccountSubhead creates a new account subhead under a head
func NewAccountSubhead(headID uuid.UUID, name string) (*AccountSubhead, error) {
	if headID == uuid.Nil {
		return nil, shared.NewDomainError(shared.ErrCodeInvalidHierarchy, "Head ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Subhead name cannot be empty")
	}
	return &AccountSubhead{
		BaseEntity: shared.NewBaseEntity(),
		HeadID:     headID,
		Name:       name,
	}, nil
}

// MoveToHead explicitly repoints the subhead to a different head
func (s *AccountSubhead) MoveToHead(headID uuid.UUID) error {
	if headID == uuid.Nil {
		return shared.NewDomainError(shared.ErrCodeInvalidHierarchy, "Head ID cannot be empty")
	}
	s.HeadID = headID
	s.Touch()
	return nil
}

// Account is the leaf of the chart-of-accounts hierarchy. Every voucher line
// references exactly one account.
type Account struct {
	shared.BaseAggregateRoot
	Code            string      `gorm:"type:varchar(30);not null;uniqueIndex"`
	Name            string      `gorm:"type:varchar(200);not null"`
	SubheadID       uuid.UUID   `gorm:"type:uuid;not null;index"`
	AccountType     AccountType `gorm:"type:varchar(20);not null;index"`
	IsSystemAccount bool        `gorm:"not null;default:false"`
	IsActive        bool        `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Account) TableName() string {
	return "accounts"
}

// NewAccount creates a new leaf account
func NewAccount(code, name string, subheadID uuid.UUID, accountType AccountType) (*Account, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Account code cannot be empty")
	}
	if len(code) > 30 {
		return nil, shared.NewDomainError("INVALID_CODE", "Account code cannot exceed 30 characters")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Account name cannot be empty")
	}
	if subheadID == uuid.Nil {
		return nil, shared.NewDomainError(shared.ErrCodeInvalidHierarchy, "Subhead ID cannot be empty")
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_TYPE", "Account type is not valid")
	}

	account := &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		SubheadID:         subheadID,
		AccountType:       accountType,
		IsActive:          true,
	}

	account.AddDomainEvent(NewAccountCreatedEvent(account))

	return account, nil
}

// NewSystemAccount creates an account that ordinary operations cannot delete
// or repoint. System accounts back the auto-voucher account selection.
func NewSystemAccount(code, name string, subheadID uuid.UUID, accountType AccountType) (*Account, error) {
	account, err := NewAccount(code, name, subheadID, accountType)
	if err != nil {
		return nil, err
	}
	account.IsSystemAccount = true
	return account, nil
}

// NormalBalance returns the side on which this account naturally increases
func (a *Account) NormalBalance() NormalBalance {
	return a.AccountType.NormalBalance()
}

// Rename changes the display name
func (a *Account) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Account name cannot be empty")
	}
	a.Name = name
	a.Touch()
	a.IncrementVersion()
	return nil
}

// MoveToSubhead repoints the account to a different subhead. Rejected for
// system accounts.
func (a *Account) MoveToSubhead(subheadID uuid.UUID) error {
	if a.IsSystemAccount {
		return shared.NewDomainError("SYSTEM_ACCOUNT", "System accounts cannot be repointed")
	}
	if subheadID == uuid.Nil {
		return shared.NewDomainError(shared.ErrCodeInvalidHierarchy, "Subhead ID cannot be empty")
	}
	a.SubheadID = subheadID
	a.Touch()
	a.IncrementVersion()
	return nil
}

// Deactivate marks the account inactive. Inactive accounts are rejected by
// voucher posting but remain valid targets of historical lines.
func (a *Account) Deactivate() error {
	if a.IsSystemAccount {
		return shared.NewDomainError("SYSTEM_ACCOUNT", "System accounts cannot be deactivated")
	}
	if !a.IsActive {
		return shared.ErrInvalidState
	}
	a.IsActive = false
	a.Touch()
	a.IncrementVersion()
	return nil
}

// Activate marks the account active again
func (a *Account) Activate() {
	if a.IsActive {
		return
	}
	a.IsActive = true
	a.Touch()
	a.IncrementVersion()
}
