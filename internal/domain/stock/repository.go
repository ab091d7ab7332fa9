package stock

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/shared"
)

// StockMainRepository persists stock documents and their lines
type StockMainRepository interface {
	// FindByID finds a stock document with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*StockMain, error)

	// FindByNumber finds a stock document by its unique transaction number
	FindByNumber(ctx context.Context, transactionNumber string) (*StockMain, error)

	// FindByParty lists stock documents for a party
	FindByParty(ctx context.Context, partyID uuid.UUID, filter shared.Filter) ([]StockMain, error)

	// FindByProduct lists posted documents containing lines on the product,
	// ordered by transaction date. Backs the stock ledger report.
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]StockMain, error)

	// FindByTransferRef finds both legs of a transfer
	FindByTransferRef(ctx context.Context, transferRef string) ([]StockMain, error)

	// FindAll lists stock documents with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]StockMain, error)

	// Save creates or updates a stock document and its lines
	Save(ctx context.Context, main *StockMain) error

	// NextTransactionNumber allocates the next transaction number for the
	// given type prefix. Uniqueness is guaranteed by the unique index on
	// stock_mains.transaction_number; callers retry on collision.
	NextTransactionNumber(ctx context.Context, transactionType TransactionType) (string, error)
}

// ProductInventoryRepository persists per-product inventory state
type ProductInventoryRepository interface {
	// FindByProduct finds the inventory state for a product
	FindByProduct(ctx context.Context, productID uuid.UUID) (*ProductInventoryState, error)

	// GetOrCreate returns the existing state for a product or creates a
	// zero-quantity one, safe under concurrent creation
	GetOrCreate(ctx context.Context, productID uuid.UUID) (*ProductInventoryState, error)

	// FindByProducts loads the states for multiple products
	FindByProducts(ctx context.Context, productIDs []uuid.UUID) ([]ProductInventoryState, error)

	// Save creates or updates the state unconditionally
	Save(ctx context.Context, state *ProductInventoryState) error

	// SaveWithLock saves with optimistic locking: the update applies only if
	// the stored version matches the version the state was loaded at, and
	// fails with a domain error otherwise. Guards concurrent read-modify-write
	// of quantity on hand and average cost.
	SaveWithLock(ctx context.Context, state *ProductInventoryState) error
}
