package posting

import (
	"context"

	"github.com/retailbooks/backend/internal/domain/accounting"
	"github.com/retailbooks/backend/internal/domain/partner"
	"github.com/retailbooks/backend/internal/domain/stock"
)

// TransactionScope provides transactional access to the posting repositories.
// Everything executed inside a scope commits or rolls back as one atomic
// unit of work; a stock document and its voucher are never persisted apart.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all posting repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// AccountRepo returns the account repository scoped to the transaction
	AccountRepo() accounting.AccountRepository
	// VoucherRepo returns the voucher repository scoped to the transaction
	VoucherRepo() accounting.VoucherRepository
	// StockRepo returns the stock document repository scoped to the transaction
	StockRepo() stock.StockMainRepository
	// InventoryRepo returns the product inventory repository scoped to the transaction
	InventoryRepo() stock.ProductInventoryRepository
	// PartyRepo returns the party repository scoped to the transaction
	PartyRepo() partner.PartyRepository
}

// NoOpTransactionScope is a transaction scope that doesn't open real
// transactions. Used in tests with in-memory repositories.
type NoOpTransactionScope struct {
	accountRepo   accounting.AccountRepository
	voucherRepo   accounting.VoucherRepository
	stockRepo     stock.StockMainRepository
	inventoryRepo stock.ProductInventoryRepository
	partyRepo     partner.PartyRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(
	accountRepo accounting.AccountRepository,
	voucherRepo accounting.VoucherRepository,
	stockRepo stock.StockMainRepository,
	inventoryRepo stock.ProductInventoryRepository,
	partyRepo partner.PartyRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		accountRepo:   accountRepo,
		voucherRepo:   voucherRepo,
		stockRepo:     stockRepo,
		inventoryRepo: inventoryRepo,
		partyRepo:     partyRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// AccountRepo returns the account repository
func (s *NoOpTransactionScope) AccountRepo() accounting.AccountRepository {
	return s.accountRepo
}

// VoucherRepo returns the voucher repository
func (s *NoOpTransactionScope) VoucherRepo() accounting.VoucherRepository {
	return s.voucherRepo
}

// StockRepo returns the stock document repository
func (s *NoOpTransactionScope) StockRepo() stock.StockMainRepository {
	return s.stockRepo
}

// InventoryRepo returns the product inventory repository
func (s *NoOpTransactionScope) InventoryRepo() stock.ProductInventoryRepository {
	return s.inventoryRepo
}

// PartyRepo returns the party repository
func (s *NoOpTransactionScope) PartyRepo() partner.PartyRepository {
	return s.partyRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
