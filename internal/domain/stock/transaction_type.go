package stock

import (
	"github.com/retailbooks/backend/internal/domain/accounting"
)

// TransactionType drives the sign convention and posting policy of a stock
// document. Quantities on detail lines are always positive; the type decides
// direction, costing rule, and whether a voucher is required.
type TransactionType string

const (
	TransactionTypeSale               TransactionType = "SALE"
	TransactionTypePurchase           TransactionType = "PURCHASE"
	TransactionTypeSalesReturn        TransactionType = "SALES_RETURN"
	TransactionTypePurchaseReturn     TransactionType = "PURCHASE_RETURN"
	TransactionTypeTransferIn         TransactionType = "TRANSFER_IN"
	TransactionTypeTransferOut        TransactionType = "TRANSFER_OUT"
	TransactionTypeAdjustmentIncrease TransactionType = "ADJUSTMENT_INCREASE"
	TransactionTypeAdjustmentDecrease TransactionType = "ADJUSTMENT_DECREASE"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeSale,
		TransactionTypePurchase,
		TransactionTypeSalesReturn,
		TransactionTypePurchaseReturn,
		TransactionTypeTransferIn,
		TransactionTypeTransferOut,
		TransactionTypeAdjustmentIncrease,
		TransactionTypeAdjustmentDecrease:
		return true
	}
	return false
}

// IsIncrease returns true if this transaction type increases quantity on hand
func (t TransactionType) IsIncrease() bool {
	switch t {
	case TransactionTypePurchase,
		TransactionTypeSalesReturn,
		TransactionTypeTransferIn,
		TransactionTypeAdjustmentIncrease:
		return true
	}
	return false
}

// IsDecrease returns true if this transaction type decreases quantity on hand
func (t TransactionType) IsDecrease() bool {
	return t.IsValid() && !t.IsIncrease()
}

// UsesDocumentCost returns true when line cost comes from the business
// document (supplier price, transfer leg cost). Decreasing movements always
// snapshot the current average cost instead.
func (t TransactionType) UsesDocumentCost() bool {
	switch t {
	case TransactionTypePurchase, TransactionTypeTransferIn:
		return true
	}
	return false
}

// AllowsNegativeStock returns true for transaction types permitted to drive
// quantity on hand below zero (adjustment write-offs).
func (t TransactionType) AllowsNegativeStock() bool {
	return t == TransactionTypeAdjustmentDecrease
}

// CreatesVoucher returns true when a posted document of this type must carry
// a linked voucher recording its monetary effect. Transfer legs move value
// at cost between locations and post no voucher; both legs share one
// transfer reference instead.
func (t TransactionType) CreatesVoucher() bool {
	switch t {
	case TransactionTypeTransferIn, TransactionTypeTransferOut:
		return false
	}
	return t.IsValid()
}

// VoucherType maps the transaction type to the voucher type of its
// auto-generated voucher
func (t TransactionType) VoucherType() accounting.VoucherType {
	switch t {
	case TransactionTypeSale:
		return accounting.VoucherTypeSale
	case TransactionTypePurchase:
		return accounting.VoucherTypePurchase
	case TransactionTypeSalesReturn:
		return accounting.VoucherTypeSalesReturn
	case TransactionTypePurchaseReturn:
		return accounting.VoucherTypePurchaseReturn
	default:
		return accounting.VoucherTypeJournal
	}
}

// Opposite returns the transaction type whose quantity effect cancels this
// one. Used to build the compensating movement when a document is voided.
func (t TransactionType) Opposite() TransactionType {
	switch t {
	case TransactionTypeSale:
		return TransactionTypeSalesReturn
	case TransactionTypeSalesReturn:
		return TransactionTypeSale
	case TransactionTypePurchase:
		return TransactionTypePurchaseReturn
	case TransactionTypePurchaseReturn:
		return TransactionTypePurchase
	case TransactionTypeTransferIn:
		return TransactionTypeTransferOut
	case TransactionTypeTransferOut:
		return TransactionTypeTransferIn
	case TransactionTypeAdjustmentIncrease:
		return TransactionTypeAdjustmentDecrease
	default:
		return TransactionTypeAdjustmentIncrease
	}
}
