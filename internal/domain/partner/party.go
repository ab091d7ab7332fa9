package partner

import (
	"github.com/retailbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PartyType classifies a counterparty
type PartyType string

const (
	PartyTypeCustomer PartyType = "CUSTOMER"
	PartyTypeSupplier PartyType = "SUPPLIER"
	PartyTypeBoth     PartyType = "BOTH"
)

// String returns the string representation of PartyType
func (t PartyType) String() string {
	return string(t)
}

// IsValid returns true if the party type is valid
func (t PartyType) IsValid() bool {
	switch t {
	case PartyTypeCustomer, PartyTypeSupplier, PartyTypeBoth:
		return true
	}
	return false
}

// Party is a unified counterparty record (customer or supplier) referenced
// by stock documents and voucher lines. Running balances are never stored
// here; they are computed on demand from posted voucher lines tagged with
// the party, so the ledger stays the single source of truth.
type Party struct {
	shared.BaseAggregateRoot
	Code        string          `gorm:"type:varchar(30);not null;uniqueIndex"`
	Name        string          `gorm:"type:varchar(200);not null"`
	PartyType   PartyType       `gorm:"type:varchar(20);not null;index"`
	Phone       string          `gorm:"type:varchar(30)"`
	Address     string          `gorm:"type:varchar(500)"`
	CreditLimit decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IsActive    bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Party) TableName() string {
	return "parties"
}

// NewParty creates a new party
func NewParty(code, name string, partyType PartyType) (*Party, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Party code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Party name cannot be empty")
	}
	if !partyType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PARTY_TYPE", "Party type is not valid")
	}

	return &Party{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		PartyType:         partyType,
		CreditLimit:       decimal.Zero,
		IsActive:          true,
	}, nil
}

// SetCreditLimit sets the credit limit for the party
func (p *Party) SetCreditLimit(limit decimal.Decimal) error {
	if limit.IsNegative() {
		return shared.NewDomainError("INVALID_CREDIT_LIMIT", "Credit limit cannot be negative")
	}
	p.CreditLimit = limit
	p.Touch()
	p.IncrementVersion()
	return nil
}

// IsCustomer returns true if the party can act as a customer
func (p *Party) IsCustomer() bool {
	return p.PartyType == PartyTypeCustomer || p.PartyType == PartyTypeBoth
}

// IsSupplier returns true if the party can act as a supplier
func (p *Party) IsSupplier() bool {
	return p.PartyType == PartyTypeSupplier || p.PartyType == PartyTypeBoth
}

// Deactivate marks the party inactive
func (p *Party) Deactivate() {
	if !p.IsActive {
		return
	}
	p.IsActive = false
	p.Touch()
	p.IncrementVersion()
}
