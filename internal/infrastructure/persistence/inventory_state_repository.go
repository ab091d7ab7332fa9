package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/shared"
	"github.com/retailbooks/backend/internal/domain/stock"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductInventoryRepository implements ProductInventoryRepository using GORM
type GormProductInventoryRepository struct {
	db *gorm.DB
}

// NewGormProductInventoryRepository creates a new GormProductInventoryRepository
func NewGormProductInventoryRepository(db *gorm.DB) *GormProductInventoryRepository {
	return &GormProductInventoryRepository{db: db}
}

// FindByProduct finds the inventory state for a product
func (r *GormProductInventoryRepository) FindByProduct(ctx context.Context, productID uuid.UUID) (*stock.ProductInventoryState, error) {
	var state stock.ProductInventoryState
	if err := r.db.WithContext(ctx).
		First(&state, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &state, nil
}

// GetOrCreate returns the existing state for a product or creates a
// zero-quantity one. ON CONFLICT DO NOTHING closes the concurrent-creation
// race on the product_id unique index.
func (r *GormProductInventoryRepository) GetOrCreate(ctx context.Context, productID uuid.UUID) (*stock.ProductInventoryState, error) {
	state, err := r.FindByProduct(ctx, productID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	state, err = stock.NewProductInventoryState(productID)
	if err != nil {
		return nil, err
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}},
			DoNothing: true,
		}).
		Create(state)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// Lost the race; the winner's row is the state of record.
		return r.FindByProduct(ctx, productID)
	}
	return state, nil
}

// FindByProducts loads the states for multiple products
func (r *GormProductInventoryRepository) FindByProducts(ctx context.Context, productIDs []uuid.UUID) ([]stock.ProductInventoryState, error) {
	if len(productIDs) == 0 {
		return []stock.ProductInventoryState{}, nil
	}
	var states []stock.ProductInventoryState
	if err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Find(&states).Error; err != nil {
		return nil, err
	}
	return states, nil
}

// Save creates or updates the state unconditionally
func (r *GormProductInventoryRepository) Save(ctx context.Context, state *stock.ProductInventoryState) error {
	return r.db.WithContext(ctx).Save(state).Error
}

// SaveWithLock saves with optimistic locking: the update applies only if the
// stored version matches the version the state was loaded at. The domain
// increments Version on every mutation, so the stored row must still be at
// Version-1.
func (r *GormProductInventoryRepository) SaveWithLock(ctx context.Context, state *stock.ProductInventoryState) error {
	result := r.db.WithContext(ctx).
		Model(state).
		Where("id = ? AND version = ?", state.ID, state.Version-1).
		Updates(map[string]interface{}{
			"quantity_on_hand": state.QuantityOnHand,
			"average_cost":     state.AverageCost,
			"version":          state.Version,
			"updated_at":       state.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

var _ stock.ProductInventoryRepository = (*GormProductInventoryRepository)(nil)
