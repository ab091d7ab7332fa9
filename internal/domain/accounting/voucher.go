package accounting

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// VoucherType represents the kind of business document behind a voucher
type VoucherType string

const (
	VoucherTypeJournal        VoucherType = "JOURNAL"
	VoucherTypePayment        VoucherType = "PAYMENT"
	VoucherTypeReceipt        VoucherType = "RECEIPT"
	VoucherTypeSale           VoucherType = "SALE"
	VoucherTypePurchase       VoucherType = "PURCHASE"
	VoucherTypeSalesReturn    VoucherType = "SALES_RETURN"
	VoucherTypePurchaseReturn VoucherType = "PURCHASE_RETURN"
	VoucherTypeExpense        VoucherType = "EXPENSE"
	VoucherTypeReversal       VoucherType = "REVERSAL"
)

// String returns the string representation of VoucherType
func (t VoucherType) String() string {
	return string(t)
}

// IsValid returns true if the voucher type is valid
func (t VoucherType) IsValid() bool {
	switch t {
	case VoucherTypeJournal, VoucherTypePayment, VoucherTypeReceipt,
		VoucherTypeSale, VoucherTypePurchase, VoucherTypeSalesReturn,
		VoucherTypePurchaseReturn, VoucherTypeExpense, VoucherTypeReversal:
		return true
	}
	return false
}

// VoucherStatus represents the lifecycle state of a voucher
type VoucherStatus string

const (
	VoucherStatusDraft    VoucherStatus = "DRAFT"
	VoucherStatusPosted   VoucherStatus = "POSTED"
	VoucherStatusReversed VoucherStatus = "REVERSED"
)

// String returns the string representation of VoucherStatus
func (s VoucherStatus) String() string {
	return string(s)
}

// CanPost returns true if a voucher in this status can be posted
func (s VoucherStatus) CanPost() bool {
	return s == VoucherStatusDraft
}

// CanReverse returns true if a voucher in this status can be reversed
func (s VoucherStatus) CanReverse() bool {
	return s == VoucherStatusPosted
}

// CanDiscard returns true if a voucher in this status may be hard-deleted
func (s VoucherStatus) CanDiscard() bool {
	return s == VoucherStatusDraft
}

// VoucherDetail is one debit-or-credit line within a voucher. Exactly one of
// Debit/Credit is nonzero and strictly positive. Party and Product tags allow
// sub-ledger reporting without separate ledger tables.
type VoucherDetail struct {
	shared.BaseEntity
	VoucherID uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Debit     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Credit    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PartyID   *uuid.UUID      `gorm:"type:uuid;index"`
	ProductID *uuid.UUID      `gorm:"type:uuid;index"`
	Remark    string          `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (VoucherDetail) TableName() string {
	return "voucher_details"
}

// NewVoucherDetail creates a voucher line. Exactly one of debit/credit must
// be nonzero and the nonzero side must be strictly positive.
func NewVoucherDetail(accountID uuid.UUID, debit, credit decimal.Decimal) (*VoucherDetail, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError(shared.ErrCodeInvalidAccount, "Account ID cannot be empty")
	}
	if debit.IsNegative() || credit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Line amounts cannot be negative")
	}
	if debit.IsZero() == credit.IsZero() {
		return nil, shared.NewDomainError("INVALID_LINE", "Exactly one of debit/credit must be nonzero")
	}

	return &VoucherDetail{
		BaseEntity: shared.NewBaseEntity(),
		AccountID:  accountID,
		Debit:      debit,
		Credit:     credit,
	}, nil
}

// WithParty tags the line with a party for sub-ledger reporting
func (d *VoucherDetail) WithParty(partyID uuid.UUID) *VoucherDetail {
	d.PartyID = &partyID
	return d
}

// WithProduct tags the line with a product for sub-ledger reporting
func (d *VoucherDetail) WithProduct(productID uuid.UUID) *VoucherDetail {
	d.ProductID = &productID
	return d
}

// WithRemark sets a free-text remark on the line
func (d *VoucherDetail) WithRemark(remark string) *VoucherDetail {
	d.Remark = remark
	return d
}

// IsDebit returns true if this is a debit line
func (d *VoucherDetail) IsDebit() bool {
	return !d.Debit.IsZero()
}

// Amount returns the nonzero side of the line
func (d *VoucherDetail) Amount() decimal.Decimal {
	if d.IsDebit() {
		return d.Debit
	}
	return d.Credit
}

// swapped returns a copy of the line with debit and credit exchanged
func (d *VoucherDetail) swapped() VoucherDetail {
	line := VoucherDetail{
		BaseEntity: shared.NewBaseEntity(),
		AccountID:  d.AccountID,
		Debit:      d.Credit,
		Credit:     d.Debit,
		PartyID:    d.PartyID,
		ProductID:  d.ProductID,
		Remark:     d.Remark,
	}
	return line
}

// Voucher is one double-entry journal record, the unit of posting. A posted
// voucher is a permanent record; the only supported correction is a reversal
// voucher with swapped lines.
type Voucher struct {
	shared.BaseAggregateRoot
	VoucherNumber       string          `gorm:"type:varchar(50);uniqueIndex"`
	VoucherType         VoucherType     `gorm:"type:varchar(20);not null;index"`
	VoucherDate         time.Time       `gorm:"not null;index"`
	TotalDebit          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalCredit         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status              VoucherStatus   `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	SourceTable         string          `gorm:"type:varchar(50);index:idx_voucher_source"`
	SourceID            *uuid.UUID      `gorm:"type:uuid;index:idx_voucher_source"`
	ReversesVoucherID   *uuid.UUID      `gorm:"type:uuid;uniqueIndex"`
	ReversedByVoucherID *uuid.UUID      `gorm:"type:uuid;uniqueIndex"`
	Remark              string          `gorm:"type:varchar(500)"`
	PostedAt            *time.Time
	PostedBy            *uuid.UUID      `gorm:"type:uuid"`
	Details             []VoucherDetail `gorm:"foreignKey:VoucherID;references:ID"`
}

// TableName returns the table name for GORM
func (Voucher) TableName() string {
	return "vouchers"
}

// NewVoucherDraft creates a draft voucher with no lines
func NewVoucherDraft(voucherType VoucherType, date time.Time, remark string) (*Voucher, error) {
	if !voucherType.IsValid() {
		return nil, shared.NewDomainError("INVALID_VOUCHER_TYPE", "Voucher type is not valid")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Voucher date is required")
	}

	return &Voucher{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		VoucherType:       voucherType,
		VoucherDate:       date,
		TotalDebit:        decimal.Zero,
		TotalCredit:       decimal.Zero,
		Status:            VoucherStatusDraft,
		Remark:            remark,
		Details:           make([]VoucherDetail, 0),
	}, nil
}

// WithSource back-points the voucher at the business record that caused it
func (v *Voucher) WithSource(table string, id uuid.UUID) *Voucher {
	v.SourceTable = table
	v.SourceID = &id
	return v
}

// AddLine appends a line to a draft voucher
func (v *Voucher) AddLine(line *VoucherDetail) error {
	if !v.Status.CanPost() {
		return shared.NewDomainError("INVALID_STATE", "Lines can only be added to a draft voucher")
	}
	line.VoucherID = v.ID
	v.Details = append(v.Details, *line)
	return nil
}

// Validate checks the posting invariants without changing state
func (v *Voucher) Validate() error {
	if len(v.Details) < 2 {
		return shared.NewDomainError(shared.ErrCodeEmptyVoucher, "A voucher requires at least 2 lines")
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for i := range v.Details {
		line := &v.Details[i]
		if line.AccountID == uuid.Nil {
			return shared.NewDomainError(shared.ErrCodeInvalidAccount, "Line account ID cannot be empty")
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return shared.NewDomainError("INVALID_LINE", "Line amounts cannot be negative")
		}
		if line.Debit.IsZero() == line.Credit.IsZero() {
			return shared.NewDomainError("INVALID_LINE", "Exactly one of debit/credit must be nonzero")
		}
		totalDebit = totalDebit.Add(line.Debit)
		totalCredit = totalCredit.Add(line.Credit)
	}

	// Exact decimal equality, never an epsilon comparison.
	if !totalDebit.Equal(totalCredit) {
		return shared.NewDomainError(shared.ErrCodeUnbalanced,
			fmt.Sprintf("Voucher is unbalanced: debit %s, credit %s", totalDebit.String(), totalCredit.String()))
	}

	return nil
}

// Post validates the draft and transitions it to Posted with the assigned
// voucher number. Numbers are assigned by the repository sequence and are
// never reused, even after reversal.
func (v *Voucher) Post(voucherNumber string, postedBy uuid.UUID) error {
	if !v.Status.CanPost() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot post voucher in %s status", v.Status))
	}
	if voucherNumber == "" {
		return shared.NewDomainError("INVALID_VOUCHER_NUMBER", "Voucher number cannot be empty")
	}
	if err := v.Validate(); err != nil {
		return err
	}

	totalDebit := decimal.Zero
	for i := range v.Details {
		v.Details[i].VoucherID = v.ID
		totalDebit = totalDebit.Add(v.Details[i].Debit)
	}

	now := time.Now()
	v.VoucherNumber = voucherNumber
	v.TotalDebit = totalDebit
	v.TotalCredit = totalDebit
	v.Status = VoucherStatusPosted
	v.PostedAt = &now
	if postedBy != uuid.Nil {
		v.PostedBy = &postedBy
	}
	v.UpdatedAt = now
	v.IncrementVersion()

	v.AddDomainEvent(NewVoucherPostedEvent(v))

	return nil
}

// BuildReversal creates the reversal voucher for a posted voucher and links
// both records. The original transitions to Reversed, a terminal state.
// Fails with ALREADY_REVERSED if a reversal link already exists and
// NOT_POSTED if the voucher is not in Posted status.
func (v *Voucher) BuildReversal(voucherNumber, reason string, reversedBy uuid.UUID) (*Voucher, error) {
	if v.ReversedByVoucherID != nil {
		return nil, shared.NewDomainError(shared.ErrCodeAlreadyReversed, "Voucher has already been reversed")
	}
	if !v.Status.CanReverse() {
		return nil, shared.NewDomainError(shared.ErrCodeNotPosted, fmt.Sprintf("Cannot reverse voucher in %s status", v.Status))
	}
	if voucherNumber == "" {
		return nil, shared.NewDomainError("INVALID_VOUCHER_NUMBER", "Voucher number cannot be empty")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Reversal reason is required")
	}

	now := time.Now()
	reversal := &Voucher{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		VoucherNumber:     voucherNumber,
		VoucherType:       VoucherTypeReversal,
		VoucherDate:       now,
		TotalDebit:        v.TotalCredit,
		TotalCredit:       v.TotalDebit,
		Status:            VoucherStatusPosted,
		SourceTable:       v.SourceTable,
		SourceID:          v.SourceID,
		ReversesVoucherID: &v.ID,
		Remark:            reason,
		PostedAt:          &now,
		Details:           make([]VoucherDetail, 0, len(v.Details)),
	}
	if reversedBy != uuid.Nil {
		reversal.PostedBy = &reversedBy
		reversal.CreatedBy = &reversedBy
	}

	for i := range v.Details {
		line := v.Details[i].swapped()
		line.VoucherID = reversal.ID
		reversal.Details = append(reversal.Details, line)
	}

	v.Status = VoucherStatusReversed
	v.ReversedByVoucherID = &reversal.ID
	v.UpdatedAt = now
	v.IncrementVersion()

	v.AddDomainEvent(NewVoucherReversedEvent(v, reversal))

	return reversal, nil
}

// IsBalanced reports whether the persisted totals agree
func (v *Voucher) IsBalanced() bool {
	return v.TotalDebit.Equal(v.TotalCredit)
}

// LineCount returns the number of detail lines
func (v *Voucher) LineCount() int {
	return len(v.Details)
}
