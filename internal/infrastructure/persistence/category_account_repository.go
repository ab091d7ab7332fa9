package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/application/posting"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CategoryAccountRecord is the persisted shape of a category mapping. The
// account columns are nullable; NULL means "use the system default".
type CategoryAccountRecord struct {
	CategoryID     uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SaleAccountID  *uuid.UUID `gorm:"type:uuid"`
	StockAccountID *uuid.UUID `gorm:"type:uuid"`
	COGSAccountID  *uuid.UUID `gorm:"type:uuid;column:cogs_account_id"`
	CreatedAt      time.Time  `gorm:"not null"`
	UpdatedAt      time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CategoryAccountRecord) TableName() string {
	return "category_accounts"
}

// GormCategoryAccountRepository implements CategoryAccountRepository using GORM
type GormCategoryAccountRepository struct {
	db *gorm.DB
}

// NewGormCategoryAccountRepository creates a new GormCategoryAccountRepository
func NewGormCategoryAccountRepository(db *gorm.DB) *GormCategoryAccountRepository {
	return &GormCategoryAccountRepository{db: db}
}

// FindAll loads every category mapping
func (r *GormCategoryAccountRepository) FindAll(ctx context.Context) ([]posting.CategoryAccounts, error) {
	var records []CategoryAccountRecord
	if err := r.db.WithContext(ctx).
		Order("category_id").
		Find(&records).Error; err != nil {
		return nil, err
	}

	out := make([]posting.CategoryAccounts, 0, len(records))
	for i := range records {
		out = append(out, toCategoryAccounts(&records[i]))
	}
	return out, nil
}

// Save upserts the mapping for a category
func (r *GormCategoryAccountRepository) Save(ctx context.Context, mapping posting.CategoryAccounts) error {
	record := toCategoryAccountRecord(mapping)
	record.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "category_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"sale_account_id", "stock_account_id", "cogs_account_id", "updated_at"}),
		}).
		Create(&record).Error
}

func toCategoryAccounts(record *CategoryAccountRecord) posting.CategoryAccounts {
	deref := func(id *uuid.UUID) uuid.UUID {
		if id == nil {
			return uuid.Nil
		}
		return *id
	}
	return posting.CategoryAccounts{
		CategoryID:     record.CategoryID,
		SaleAccountID:  deref(record.SaleAccountID),
		StockAccountID: deref(record.StockAccountID),
		COGSAccountID:  deref(record.COGSAccountID),
	}
}

func toCategoryAccountRecord(mapping posting.CategoryAccounts) CategoryAccountRecord {
	ref := func(id uuid.UUID) *uuid.UUID {
		if id == uuid.Nil {
			return nil
		}
		return &id
	}
	return CategoryAccountRecord{
		CategoryID:     mapping.CategoryID,
		SaleAccountID:  ref(mapping.SaleAccountID),
		StockAccountID: ref(mapping.StockAccountID),
		COGSAccountID:  ref(mapping.COGSAccountID),
		CreatedAt:      time.Now(),
	}
}

var _ posting.CategoryAccountRepository = (*GormCategoryAccountRepository)(nil)
