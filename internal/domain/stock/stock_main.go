package stock

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockStatus represents the lifecycle state of a stock document
type StockStatus string

const (
	StockStatusDraft  StockStatus = "DRAFT"
	StockStatusPosted StockStatus = "POSTED"
	StockStatusVoided StockStatus = "VOIDED"
)

// String returns the string representation of StockStatus
func (s StockStatus) String() string {
	return string(s)
}

// CanPost returns true if a document in this status can be posted
func (s StockStatus) CanPost() bool {
	return s == StockStatusDraft
}

// CanVoid returns true if a document in this status can be voided.
// Void is terminal and reachable only from Posted.
func (s StockStatus) CanVoid() bool {
	return s == StockStatusPosted
}

// StockDetail is one product line of a stock document. CostPrice is captured
// at posting time (historical cost) and never recomputed retroactively.
type StockDetail struct {
	shared.BaseEntity
	StockMainID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineDiscount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LineTotal    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineCost     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (StockDetail) TableName() string {
	return "stock_details"
}

// NewStockDetail creates a stock document line. Quantity is always positive;
// the document's transaction type decides direction.
func NewStockDetail(productID uuid.UUID, quantity, unitPrice, lineDiscount decimal.Decimal) (*StockDetail, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if lineDiscount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Line discount cannot be negative")
	}
	gross := quantity.Mul(unitPrice)
	if lineDiscount.GreaterThan(gross) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Line discount cannot exceed the line amount")
	}

	return &StockDetail{
		BaseEntity:   shared.NewBaseEntity(),
		ProductID:    productID,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		LineDiscount: lineDiscount,
		LineTotal:    gross.Sub(lineDiscount),
	}, nil
}

// SetCost writes the cost snapshot and derived line cost onto the line
func (d *StockDetail) SetCost(costPrice decimal.Decimal) {
	d.CostPrice = costPrice
	d.LineCost = d.Quantity.Mul(costPrice)
}

// StockMain is one stock-affecting business document (sale, purchase receipt,
// return, transfer leg). It exclusively owns its StockDetail lines and links
// to the voucher recording its monetary effect.
type StockMain struct {
	shared.BaseAggregateRoot
	TransactionNumber string          `gorm:"type:varchar(50);uniqueIndex"`
	TransactionType   TransactionType `gorm:"type:varchar(30);not null;index"`
	TransactionDate   time.Time       `gorm:"not null;index"`
	PartyID           *uuid.UUID      `gorm:"type:uuid;index"`
	Subtotal          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalCost         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaidAmount        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	BalanceAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status            StockStatus     `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	VoucherID         *uuid.UUID      `gorm:"type:uuid;index"`
	TransferRef       string          `gorm:"type:varchar(50);index"`
	Remark            string          `gorm:"type:varchar(500)"`
	VoidedAt          *time.Time
	VoidedBy          *uuid.UUID    `gorm:"type:uuid"`
	VoidReason        string        `gorm:"type:varchar(500)"`
	Details           []StockDetail `gorm:"foreignKey:StockMainID;references:ID"`
}

// TableName returns the table name for GORM
func (StockMain) TableName() string {
	return "stock_mains"
}

// NewStockMain creates a draft stock document
func NewStockMain(transactionType TransactionType, date time.Time, partyID *uuid.UUID) (*StockMain, error) {
	if !transactionType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Transaction type is not valid")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Transaction date is required")
	}
	if partyID != nil && *partyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "Party ID cannot be the nil UUID")
	}

	return &StockMain{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TransactionType:   transactionType,
		TransactionDate:   date,
		PartyID:           partyID,
		Subtotal:          decimal.Zero,
		DiscountAmount:    decimal.Zero,
		TaxAmount:         decimal.Zero,
		TotalAmount:       decimal.Zero,
		TotalCost:         decimal.Zero,
		PaidAmount:        decimal.Zero,
		BalanceAmount:     decimal.Zero,
		Status:            StockStatusDraft,
		Details:           make([]StockDetail, 0),
	}, nil
}

// WithTransferRef ties a transfer leg to its sibling document
func (m *StockMain) WithTransferRef(ref string) *StockMain {
	m.TransferRef = ref
	return m
}

// WithRemark sets a free-text remark
func (m *StockMain) WithRemark(remark string) *StockMain {
	m.Remark = remark
	return m
}

// AddLine appends a line to a draft document
func (m *StockMain) AddLine(line *StockDetail) error {
	if !m.Status.CanPost() {
		return shared.NewDomainError("INVALID_STATE", "Lines can only be added to a draft document")
	}
	line.StockMainID = m.ID
	m.Details = append(m.Details, *line)
	return nil
}

// Post transitions the document to Posted, computing the monetary totals
// from its lines. Cost prices must already be written onto the lines by the
// valuation service.
func (m *StockMain) Post(transactionNumber string, taxAmount, paidAmount decimal.Decimal, postedBy uuid.UUID) error {
	if !m.Status.CanPost() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot post document in %s status", m.Status))
	}
	if transactionNumber == "" {
		return shared.NewDomainError("INVALID_TRANSACTION_NUMBER", "Transaction number cannot be empty")
	}
	if len(m.Details) == 0 {
		return shared.NewDomainError("EMPTY_DOCUMENT", "A stock document requires at least 1 line")
	}
	if taxAmount.IsNegative() || paidAmount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Tax and paid amounts cannot be negative")
	}

	subtotal := decimal.Zero
	discount := decimal.Zero
	totalCost := decimal.Zero
	for i := range m.Details {
		m.Details[i].StockMainID = m.ID
		subtotal = subtotal.Add(m.Details[i].Quantity.Mul(m.Details[i].UnitPrice))
		discount = discount.Add(m.Details[i].LineDiscount)
		totalCost = totalCost.Add(m.Details[i].LineCost)
	}

	total := subtotal.Sub(discount).Add(taxAmount)
	if paidAmount.GreaterThan(total) {
		return shared.NewDomainError("INVALID_AMOUNT", "Paid amount cannot exceed the document total")
	}

	now := time.Now()
	m.TransactionNumber = transactionNumber
	m.Subtotal = subtotal
	m.DiscountAmount = discount
	m.TaxAmount = taxAmount
	m.TotalAmount = total
	m.TotalCost = totalCost
	m.PaidAmount = paidAmount
	m.BalanceAmount = total.Sub(paidAmount)
	m.Status = StockStatusPosted
	if postedBy != uuid.Nil {
		m.CreatedBy = &postedBy
	}
	m.UpdatedAt = now
	m.IncrementVersion()

	m.AddDomainEvent(NewStockDocumentPostedEvent(m))

	return nil
}

// LinkVoucher writes the id of the voucher recording this document's
// monetary effect. Required before commit for every transaction type whose
// CreatesVoucher policy demands it.
func (m *StockMain) LinkVoucher(voucherID uuid.UUID) error {
	if voucherID == uuid.Nil {
		return shared.NewDomainError("INVALID_VOUCHER", "Voucher ID cannot be empty")
	}
	m.VoucherID = &voucherID
	m.Touch()
	return nil
}

// Void transitions a posted document to Voided, recording reason, actor and
// timestamp. The caller reverses the quantity/cost effects and the linked
// voucher in the same unit of work.
func (m *StockMain) Void(reason string, actor uuid.UUID) error {
	if !m.Status.CanVoid() {
		return shared.NewDomainError(shared.ErrCodeNotPosted, fmt.Sprintf("Cannot void document in %s status", m.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Void reason is required")
	}
	if actor == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Voiding user ID is required")
	}

	now := time.Now()
	m.Status = StockStatusVoided
	m.VoidReason = reason
	m.VoidedBy = &actor
	m.VoidedAt = &now
	m.UpdatedAt = now
	m.IncrementVersion()

	m.AddDomainEvent(NewStockDocumentVoidedEvent(m))

	return nil
}

// RequiresVoucher reports whether this document must carry a voucher link
// once posted
func (m *StockMain) RequiresVoucher() bool {
	return m.TransactionType.CreatesVoucher()
}
