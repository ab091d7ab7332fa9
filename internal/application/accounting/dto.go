package accounting

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/accounting"
	"github.com/shopspring/decimal"
)

// VoucherLineRequest is one debit-or-credit line of a voucher draft
type VoucherLineRequest struct {
	AccountID uuid.UUID       `json:"account_id" binding:"required"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	PartyID   *uuid.UUID      `json:"party_id,omitempty"`
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	Remark    string          `json:"remark,omitempty"`
}

// PostVoucherRequest is the input for posting a journal voucher
type PostVoucherRequest struct {
	VoucherType accounting.VoucherType `json:"voucher_type" binding:"required,voucher_type"`
	VoucherDate time.Time              `json:"voucher_date" binding:"required"`
	Remark      string                 `json:"remark,omitempty"`
	SourceTable string                 `json:"source_table,omitempty"`
	SourceID    *uuid.UUID             `json:"source_id,omitempty"`
	Lines       []VoucherLineRequest   `json:"lines" binding:"required,min=2,dive"`
	PostedBy    uuid.UUID              `json:"-"`
}

// VoucherLineResponse is one line of a voucher in API responses
type VoucherLineResponse struct {
	ID        uuid.UUID       `json:"id"`
	AccountID uuid.UUID       `json:"account_id"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	PartyID   *uuid.UUID      `json:"party_id,omitempty"`
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	Remark    string          `json:"remark,omitempty"`
}

// VoucherResponse is the API representation of a voucher
type VoucherResponse struct {
	ID                  uuid.UUID                `json:"id"`
	VoucherNumber       string                   `json:"voucher_number"`
	VoucherType         accounting.VoucherType   `json:"voucher_type"`
	VoucherDate         time.Time                `json:"voucher_date"`
	TotalDebit          decimal.Decimal          `json:"total_debit"`
	TotalCredit         decimal.Decimal          `json:"total_credit"`
	Status              accounting.VoucherStatus `json:"status"`
	SourceTable         string                   `json:"source_table,omitempty"`
	SourceID            *uuid.UUID               `json:"source_id,omitempty"`
	ReversesVoucherID   *uuid.UUID               `json:"reverses_voucher_id,omitempty"`
	ReversedByVoucherID *uuid.UUID               `json:"reversed_by_voucher_id,omitempty"`
	Remark              string                   `json:"remark,omitempty"`
	PostedAt            *time.Time               `json:"posted_at,omitempty"`
	Lines               []VoucherLineResponse    `json:"lines"`
}

// ToVoucherResponse maps a voucher aggregate to its API representation
func ToVoucherResponse(v *accounting.Voucher) VoucherResponse {
	lines := make([]VoucherLineResponse, 0, len(v.Details))
	for i := range v.Details {
		d := &v.Details[i]
		lines = append(lines, VoucherLineResponse{
			ID:        d.ID,
			AccountID: d.AccountID,
			Debit:     d.Debit,
			Credit:    d.Credit,
			PartyID:   d.PartyID,
			ProductID: d.ProductID,
			Remark:    d.Remark,
		})
	}
	return VoucherResponse{
		ID:                  v.ID,
		VoucherNumber:       v.VoucherNumber,
		VoucherType:         v.VoucherType,
		VoucherDate:         v.VoucherDate,
		TotalDebit:          v.TotalDebit,
		TotalCredit:         v.TotalCredit,
		Status:              v.Status,
		SourceTable:         v.SourceTable,
		SourceID:            v.SourceID,
		ReversesVoucherID:   v.ReversesVoucherID,
		ReversedByVoucherID: v.ReversedByVoucherID,
		Remark:              v.Remark,
		PostedAt:            v.PostedAt,
		Lines:               lines,
	}
}

// CreateAccountRequest is the input for creating a leaf account
type CreateAccountRequest struct {
	Code        string                 `json:"code" binding:"required,max=30"`
	Name        string                 `json:"name" binding:"required,max=200"`
	SubheadID   uuid.UUID              `json:"subhead_id" binding:"required"`
	AccountType accounting.AccountType `json:"account_type" binding:"required,account_type"`
}

// AccountResponse is the API representation of an account
type AccountResponse struct {
	ID              uuid.UUID                `json:"id"`
	Code            string                   `json:"code"`
	Name            string                   `json:"name"`
	SubheadID       uuid.UUID                `json:"subhead_id"`
	AccountType     accounting.AccountType   `json:"account_type"`
	NormalBalance   accounting.NormalBalance `json:"normal_balance"`
	IsSystemAccount bool                     `json:"is_system_account"`
	IsActive        bool                     `json:"is_active"`
}

// ToAccountResponse maps an account to its API representation
func ToAccountResponse(a *accounting.Account) AccountResponse {
	return AccountResponse{
		ID:              a.ID,
		Code:            a.Code,
		Name:            a.Name,
		SubheadID:       a.SubheadID,
		AccountType:     a.AccountType,
		NormalBalance:   a.NormalBalance(),
		IsSystemAccount: a.IsSystemAccount,
		IsActive:        a.IsActive,
	}
}

// ChartSubheadNode is one subhead with its leaf accounts
type ChartSubheadNode struct {
	ID       uuid.UUID         `json:"id"`
	Name     string            `json:"name"`
	Accounts []AccountResponse `json:"accounts"`
}

// ChartHeadNode is one head with its subheads
type ChartHeadNode struct {
	ID       uuid.UUID          `json:"id"`
	Name     string             `json:"name"`
	Subheads []ChartSubheadNode `json:"subheads"`
}

// ChartFamilyNode is one family with its heads
type ChartFamilyNode struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Heads []ChartHeadNode `json:"heads"`
}

// TrialBalanceResponse is the trial balance report
type TrialBalanceResponse struct {
	From        time.Time                   `json:"from"`
	To          time.Time                   `json:"to"`
	Rows        []accounting.AccountBalance `json:"rows"`
	TotalDebit  decimal.Decimal             `json:"total_debit"`
	TotalCredit decimal.Decimal             `json:"total_credit"`
	Balanced    bool                        `json:"balanced"`
}
