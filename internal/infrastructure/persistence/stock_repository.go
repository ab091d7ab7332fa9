package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/shared"
	"github.com/retailbooks/backend/internal/domain/stock"
	"gorm.io/gorm"
)

// transactionNumberPrefixes maps each transaction type to its document
// number prefix; the full format is PFX-YYYYMMDD-NNNNN. Both adjustment
// directions share one sequence.
var transactionNumberPrefixes = map[stock.TransactionType]string{
	stock.TransactionTypeSale:               "SAL",
	stock.TransactionTypePurchase:           "PUR",
	stock.TransactionTypeSalesReturn:        "SRT",
	stock.TransactionTypePurchaseReturn:     "PRT",
	stock.TransactionTypeTransferIn:         "TRI",
	stock.TransactionTypeTransferOut:        "TRO",
	stock.TransactionTypeAdjustmentIncrease: "ADJ",
	stock.TransactionTypeAdjustmentDecrease: "ADJ",
}

// GormStockMainRepository implements StockMainRepository using GORM
type GormStockMainRepository struct {
	db *gorm.DB
}

// NewGormStockMainRepository creates a new GormStockMainRepository
func NewGormStockMainRepository(db *gorm.DB) *GormStockMainRepository {
	return &GormStockMainRepository{db: db}
}

// FindByID finds a stock document with its lines
func (r *GormStockMainRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.StockMain, error) {
	var main stock.StockMain
	if err := r.db.WithContext(ctx).
		Preload("Details").
		First(&main, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &main, nil
}

// FindByNumber finds a stock document by its unique transaction number
func (r *GormStockMainRepository) FindByNumber(ctx context.Context, transactionNumber string) (*stock.StockMain, error) {
	var main stock.StockMain
	if err := r.db.WithContext(ctx).
		Preload("Details").
		First(&main, "transaction_number = ?", transactionNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &main, nil
}

// FindByParty lists stock documents for a party
func (r *GormStockMainRepository) FindByParty(ctx context.Context, partyID uuid.UUID, filter shared.Filter) ([]stock.StockMain, error) {
	var mains []stock.StockMain
	query := applyFilter(
		r.db.WithContext(ctx).Preload("Details").
			Model(&stock.StockMain{}).
			Where("party_id = ?", partyID),
		filter, "transaction_date DESC, transaction_number DESC",
	)
	if err := query.Find(&mains).Error; err != nil {
		return nil, err
	}
	return mains, nil
}

// FindByProduct lists posted documents containing lines on the product,
// ordered by transaction date. Backs the stock ledger report.
func (r *GormStockMainRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]stock.StockMain, error) {
	var mains []stock.StockMain
	query := r.db.WithContext(ctx).Preload("Details").
		Model(&stock.StockMain{}).
		Where("id IN (?)",
			r.db.Model(&stock.StockDetail{}).
				Select("stock_main_id").
				Where("product_id = ?", productID)).
		Where("status = ?", stock.StockStatusPosted.String())
	query = applyFilter(query, filter, "transaction_date ASC, transaction_number ASC")
	if err := query.Find(&mains).Error; err != nil {
		return nil, err
	}
	return mains, nil
}

// FindByTransferRef finds both legs of a transfer
func (r *GormStockMainRepository) FindByTransferRef(ctx context.Context, transferRef string) ([]stock.StockMain, error) {
	var mains []stock.StockMain
	if err := r.db.WithContext(ctx).
		Preload("Details").
		Where("transfer_ref = ?", transferRef).
		Order("transaction_number ASC").
		Find(&mains).Error; err != nil {
		return nil, err
	}
	return mains, nil
}

// FindAll lists stock documents with filtering
func (r *GormStockMainRepository) FindAll(ctx context.Context, filter shared.Filter) ([]stock.StockMain, error) {
	var mains []stock.StockMain
	query := r.db.WithContext(ctx).Preload("Details").Model(&stock.StockMain{})
	for key, value := range filter.Filters {
		switch key {
		case "transaction_type":
			query = query.Where("transaction_type = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "date_from":
			query = query.Where("transaction_date >= ?", value)
		case "date_to":
			query = query.Where("transaction_date <= ?", value)
		}
	}
	query = applyFilter(query, filter, "transaction_date DESC, transaction_number DESC")
	if err := query.Find(&mains).Error; err != nil {
		return nil, err
	}
	return mains, nil
}

// Save creates or updates a stock document and its lines. A collision on the
// transaction-number unique index maps to shared.ErrAlreadyExists.
func (r *GormStockMainRepository) Save(ctx context.Context, main *stock.StockMain) error {
	if err := r.db.WithContext(ctx).Save(main).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// NextTransactionNumber allocates the next transaction number for the given
// type: PFX-YYYYMMDD-NNNNN with a per-day, per-prefix sequence. The unique
// index on transaction_number guarantees uniqueness; callers retry on
// collision.
func (r *GormStockMainRepository) NextTransactionNumber(ctx context.Context, transactionType stock.TransactionType) (string, error) {
	typePrefix, ok := transactionNumberPrefixes[transactionType]
	if !ok {
		return "", shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Transaction type is not valid")
	}
	prefix := fmt.Sprintf("%s-%s-", typePrefix, time.Now().Format("20060102"))

	var maxNumber string
	err := r.db.WithContext(ctx).
		Model(&stock.StockMain{}).
		Select("transaction_number").
		Where("transaction_number LIKE ?", prefix+"%").
		Order("transaction_number DESC").
		Limit(1).
		Pluck("transaction_number", &maxNumber).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	seq := nextSequence(maxNumber)
	return fmt.Sprintf("%s%05d", prefix, seq), nil
}

var _ stock.StockMainRepository = (*GormStockMainRepository)(nil)
