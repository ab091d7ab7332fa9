package accounting

import (
	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type names for the accounting domain
const (
	EventTypeAccountCreated  = "AccountCreated"
	EventTypeVoucherPosted   = "VoucherPosted"
	EventTypeVoucherReversed = "VoucherReversed"
)

// AccountCreatedEvent is raised when a new leaf account is created
type AccountCreatedEvent struct {
	shared.BaseDomainEvent
	AccountID   uuid.UUID   `json:"account_id"`
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	AccountType AccountType `json:"account_type"`
	IsSystem    bool        `json:"is_system"`
}

// EventType returns the event type name
func (e *AccountCreatedEvent) EventType() string {
	return EventTypeAccountCreated
}

// NewAccountCreatedEvent creates a new AccountCreatedEvent
func NewAccountCreatedEvent(a *Account) *AccountCreatedEvent {
	return &AccountCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountCreated, "Account", a.ID),
		AccountID:       a.ID,
		Code:            a.Code,
		Name:            a.Name,
		AccountType:     a.AccountType,
		IsSystem:        a.IsSystemAccount,
	}
}

// VoucherPostedEvent is raised when a voucher transitions to Posted
type VoucherPostedEvent struct {
	shared.BaseDomainEvent
	VoucherID     uuid.UUID       `json:"voucher_id"`
	VoucherNumber string          `json:"voucher_number"`
	VoucherType   VoucherType     `json:"voucher_type"`
	TotalDebit    decimal.Decimal `json:"total_debit"`
	TotalCredit   decimal.Decimal `json:"total_credit"`
	SourceTable   string          `json:"source_table,omitempty"`
	SourceID      *uuid.UUID      `json:"source_id,omitempty"`
	LineCount     int             `json:"line_count"`
}

// EventType returns the event type name
func (e *VoucherPostedEvent) EventType() string {
	return EventTypeVoucherPosted
}

// NewVoucherPostedEvent creates a new VoucherPostedEvent
func NewVoucherPostedEvent(v *Voucher) *VoucherPostedEvent {
	return &VoucherPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVoucherPosted, "Voucher", v.ID),
		VoucherID:       v.ID,
		VoucherNumber:   v.VoucherNumber,
		VoucherType:     v.VoucherType,
		TotalDebit:      v.TotalDebit,
		TotalCredit:     v.TotalCredit,
		SourceTable:     v.SourceTable,
		SourceID:        v.SourceID,
		LineCount:       len(v.Details),
	}
}

// VoucherReversedEvent is raised when a posted voucher is reversed
type VoucherReversedEvent struct {
	shared.BaseDomainEvent
	VoucherID         uuid.UUID       `json:"voucher_id"`
	VoucherNumber     string          `json:"voucher_number"`
	ReversalVoucherID uuid.UUID       `json:"reversal_voucher_id"`
	ReversalNumber    string          `json:"reversal_number"`
	TotalDebit        decimal.Decimal `json:"total_debit"`
	Reason            string          `json:"reason"`
}

// EventType returns the event type name
func (e *VoucherReversedEvent) EventType() string {
	return EventTypeVoucherReversed
}

// NewVoucherReversedEvent creates a new VoucherReversedEvent
func NewVoucherReversedEvent(original, reversal *Voucher) *VoucherReversedEvent {
	return &VoucherReversedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeVoucherReversed, "Voucher", original.ID),
		VoucherID:         original.ID,
		VoucherNumber:     original.VoucherNumber,
		ReversalVoucherID: reversal.ID,
		ReversalNumber:    reversal.VoucherNumber,
		TotalDebit:        original.TotalDebit,
		Reason:            reversal.Remark,
	}
}
