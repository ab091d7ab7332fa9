package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/accounting"
	"github.com/retailbooks/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormAccountRepository implements AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID finds an account by ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.Account, error) {
	var account accounting.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindByCode finds an account by its unique code
func (r *GormAccountRepository) FindByCode(ctx context.Context, code string) (*accounting.Account, error) {
	var account accounting.Account
	if err := r.db.WithContext(ctx).First(&account, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindByIDs finds multiple accounts by their IDs
func (r *GormAccountRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]accounting.Account, error) {
	if len(ids) == 0 {
		return []accounting.Account{}, nil
	}
	var accounts []accounting.Account
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// FindBySubhead lists the accounts under a subhead
func (r *GormAccountRepository) FindBySubhead(ctx context.Context, subheadID uuid.UUID, filter shared.Filter) ([]accounting.Account, error) {
	var accounts []accounting.Account
	query := applyFilter(
		r.db.WithContext(ctx).Model(&accounting.Account{}).Where("subhead_id = ?", subheadID),
		filter, "code ASC",
	)
	if err := query.Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// FindAll lists accounts with filtering
func (r *GormAccountRepository) FindAll(ctx context.Context, filter shared.Filter) ([]accounting.Account, error) {
	var accounts []accounting.Account
	query := r.db.WithContext(ctx).Model(&accounting.Account{})
	for key, value := range filter.Filters {
		switch key {
		case "account_type":
			query = query.Where("account_type = ?", value)
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "search":
			if s, ok := value.(string); ok && s != "" {
				pattern := "%" + strings.ToLower(s) + "%"
				query = query.Where("LOWER(code) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern)
			}
		}
	}
	query = applyFilter(query, filter, "code ASC")
	if err := query.Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// ExistsByCode reports whether an account with the code exists
func (r *GormAccountRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&accounting.Account{}).
		Where("code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an account. A unique-index collision on the code
// maps to shared.ErrAlreadyExists.
func (r *GormAccountRepository) Save(ctx context.Context, account *accounting.Account) error {
	if err := r.db.WithContext(ctx).Save(account).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Delete removes an account, rejecting the delete when any voucher line
// references it
func (r *GormAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	refs, err := r.CountReferences(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return shared.NewDomainError(shared.ErrCodeAccountInUse, "Account is referenced by voucher lines")
	}

	result := r.db.WithContext(ctx).Delete(&accounting.Account{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountReferences counts voucher lines referencing the account
func (r *GormAccountRepository) CountReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&accounting.VoucherDetail{}).
		Where("account_id = ?", id).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ accounting.AccountRepository = (*GormAccountRepository)(nil)
