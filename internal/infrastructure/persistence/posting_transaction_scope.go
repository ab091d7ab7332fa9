package persistence

import (
	"context"

	"github.com/retailbooks/backend/internal/application/posting"
	"github.com/retailbooks/backend/internal/domain/accounting"
	"github.com/retailbooks/backend/internal/domain/partner"
	"github.com/retailbooks/backend/internal/domain/stock"
	"gorm.io/gorm"
)

// GormTransactionScope implements posting.TransactionScope using GORM
// transactions. Everything executed inside a scope commits or rolls back as
// one atomic unit of work.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos posting.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides repositories scoped to one transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// AccountRepo returns the account repository scoped to the transaction
func (r *gormTransactionalRepositories) AccountRepo() accounting.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

// VoucherRepo returns the voucher repository scoped to the transaction
func (r *gormTransactionalRepositories) VoucherRepo() accounting.VoucherRepository {
	return NewGormVoucherRepository(r.tx)
}

// StockRepo returns the stock document repository scoped to the transaction
func (r *gormTransactionalRepositories) StockRepo() stock.StockMainRepository {
	return NewGormStockMainRepository(r.tx)
}

// InventoryRepo returns the product inventory repository scoped to the transaction
func (r *gormTransactionalRepositories) InventoryRepo() stock.ProductInventoryRepository {
	return NewGormProductInventoryRepository(r.tx)
}

// PartyRepo returns the party repository scoped to the transaction
func (r *gormTransactionalRepositories) PartyRepo() partner.PartyRepository {
	return NewGormPartyRepository(r.tx)
}

var _ posting.TransactionScope = (*GormTransactionScope)(nil)
var _ posting.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
