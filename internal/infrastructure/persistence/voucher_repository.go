package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/accounting"
	"github.com/retailbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// voucherNumberPrefix prefixes every allocated voucher number; the full
// format is JV-YYYYMMDD-NNNNN with a per-day sequence.
const voucherNumberPrefix = "JV"

// GormVoucherRepository implements VoucherRepository using GORM
type GormVoucherRepository struct {
	db *gorm.DB
}

// NewGormVoucherRepository creates a new GormVoucherRepository
func NewGormVoucherRepository(db *gorm.DB) *GormVoucherRepository {
	return &GormVoucherRepository{db: db}
}

// FindByID finds a voucher with its lines
func (r *GormVoucherRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.Voucher, error) {
	var voucher accounting.Voucher
	if err := r.db.WithContext(ctx).
		Preload("Details").
		First(&voucher, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &voucher, nil
}

// FindByNumber finds a voucher by its unique voucher number
func (r *GormVoucherRepository) FindByNumber(ctx context.Context, voucherNumber string) (*accounting.Voucher, error) {
	var voucher accounting.Voucher
	if err := r.db.WithContext(ctx).
		Preload("Details").
		First(&voucher, "voucher_number = ?", voucherNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &voucher, nil
}

// FindBySource finds the vouchers generated by a business record
func (r *GormVoucherRepository) FindBySource(ctx context.Context, sourceTable string, sourceID uuid.UUID) ([]accounting.Voucher, error) {
	var vouchers []accounting.Voucher
	if err := r.db.WithContext(ctx).
		Preload("Details").
		Where("source_table = ? AND source_id = ?", sourceTable, sourceID).
		Order("created_at ASC").
		Find(&vouchers).Error; err != nil {
		return nil, err
	}
	return vouchers, nil
}

// FindByAccount lists posted vouchers containing lines on the account
func (r *GormVoucherRepository) FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]accounting.Voucher, error) {
	var vouchers []accounting.Voucher
	query := r.db.WithContext(ctx).
		Preload("Details").
		Where("id IN (?)",
			r.db.Model(&accounting.VoucherDetail{}).
				Select("voucher_id").
				Where("account_id = ?", accountID)).
		Where("status IN ?", []string{
			accounting.VoucherStatusPosted.String(),
			accounting.VoucherStatusReversed.String(),
		})
	query = applyFilter(query, filter, "voucher_date ASC, voucher_number ASC")
	if err := query.Find(&vouchers).Error; err != nil {
		return nil, err
	}
	return vouchers, nil
}

// FindAll lists vouchers with filtering
func (r *GormVoucherRepository) FindAll(ctx context.Context, filter shared.Filter) ([]accounting.Voucher, error) {
	var vouchers []accounting.Voucher
	query := r.db.WithContext(ctx).Preload("Details").Model(&accounting.Voucher{})
	for key, value := range filter.Filters {
		switch key {
		case "voucher_type":
			query = query.Where("voucher_type = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "date_from":
			query = query.Where("voucher_date >= ?", value)
		case "date_to":
			query = query.Where("voucher_date <= ?", value)
		}
	}
	query = applyFilter(query, filter, "voucher_date DESC, voucher_number DESC")
	if err := query.Find(&vouchers).Error; err != nil {
		return nil, err
	}
	return vouchers, nil
}

// Save creates or updates a voucher and its lines. A collision on the
// voucher-number unique index maps to shared.ErrAlreadyExists so callers can
// retry with a fresh number.
func (r *GormVoucherRepository) Save(ctx context.Context, voucher *accounting.Voucher) error {
	if err := r.db.WithContext(ctx).Save(voucher).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// DeleteDraft hard-deletes a draft voucher and its lines
func (r *GormVoucherRepository) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&accounting.VoucherDetail{}, "voucher_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&accounting.Voucher{},
			"id = ? AND status = ?", id, accounting.VoucherStatusDraft.String())
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// NextVoucherNumber allocates the next voucher number: JV-YYYYMMDD-NNNNN
// with a per-day sequence. Strictly increasing within a day, never gapless;
// the unique index is the real uniqueness guarantee and callers retry on
// collision.
func (r *GormVoucherRepository) NextVoucherNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", voucherNumberPrefix, time.Now().Format("20060102"))

	var maxNumber string
	err := r.db.WithContext(ctx).
		Model(&accounting.Voucher{}).
		Select("voucher_number").
		Where("voucher_number LIKE ?", prefix+"%").
		Order("voucher_number DESC").
		Limit(1).
		Pluck("voucher_number", &maxNumber).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	seq := nextSequence(maxNumber)
	return fmt.Sprintf("%s%05d", prefix, seq), nil
}

// TrialBalance aggregates voucher lines into per-account debit and credit
// totals over the period. Reversed vouchers stay in the report together with
// their reversals, so the pair nets to zero instead of vanishing.
func (r *GormVoucherRepository) TrialBalance(ctx context.Context, from, to time.Time) ([]accounting.AccountBalance, error) {
	var rows []accounting.AccountBalance
	err := r.db.WithContext(ctx).
		Table("voucher_details AS d").
		Select(`a.id AS account_id,
			a.code AS account_code,
			a.name AS account_name,
			a.account_type AS account_type,
			COALESCE(SUM(d.debit), 0) AS total_debit,
			COALESCE(SUM(d.credit), 0) AS total_credit`).
		Joins("JOIN vouchers v ON v.id = d.voucher_id").
		Joins("JOIN accounts a ON a.id = d.account_id").
		Where("v.status IN ?", []string{
			accounting.VoucherStatusPosted.String(),
			accounting.VoucherStatusReversed.String(),
		}).
		Where("v.voucher_date >= ? AND v.voucher_date <= ?", from, to).
		Group("a.id, a.code, a.name, a.account_type").
		Order("a.code ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// PartyBalance computes a party's running balance from voucher lines tagged
// with the party: sum(debit) - sum(credit)
func (r *GormVoucherRepository) PartyBalance(ctx context.Context, partyID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Balance decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("voucher_details AS d").
		Select("COALESCE(SUM(d.debit), 0) - COALESCE(SUM(d.credit), 0) AS balance").
		Joins("JOIN vouchers v ON v.id = d.voucher_id").
		Where("v.status IN ?", []string{
			accounting.VoucherStatusPosted.String(),
			accounting.VoucherStatusReversed.String(),
		}).
		Where("d.party_id = ?", partyID).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Balance, nil
}

// nextSequence parses the trailing sequence of the highest existing number
// and returns the next value, starting at 1 when none exists
func nextSequence(maxNumber string) int {
	seq := 0
	if maxNumber != "" {
		parts := strings.Split(maxNumber, "-")
		if len(parts) >= 3 {
			if _, err := fmt.Sscanf(parts[len(parts)-1], "%d", &seq); err != nil {
				seq = 0
			}
		}
	}
	return seq + 1
}

var _ accounting.VoucherRepository = (*GormVoucherRepository)(nil)
