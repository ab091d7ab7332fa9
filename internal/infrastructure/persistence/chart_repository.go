package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/accounting"
	"github.com/retailbooks/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormChartRepository implements ChartRepository using GORM
type GormChartRepository struct {
	db *gorm.DB
}

// NewGormChartRepository creates a new GormChartRepository
func NewGormChartRepository(db *gorm.DB) *GormChartRepository {
	return &GormChartRepository{db: db}
}

// FindFamilyByID finds an account family by ID
func (r *GormChartRepository) FindFamilyByID(ctx context.Context, id uuid.UUID) (*accounting.AccountFamily, error) {
	var family accounting.AccountFamily
	if err := r.db.WithContext(ctx).First(&family, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &family, nil
}

// FindHeadByID finds an account head by ID
func (r *GormChartRepository) FindHeadByID(ctx context.Context, id uuid.UUID) (*accounting.AccountHead, error) {
	var head accounting.AccountHead
	if err := r.db.WithContext(ctx).First(&head, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &head, nil
}

// FindSubheadByID finds an account subhead by ID
func (r *GormChartRepository) FindSubheadByID(ctx context.Context, id uuid.UUID) (*accounting.AccountSubhead, error) {
	var subhead accounting.AccountSubhead
	if err := r.db.WithContext(ctx).First(&subhead, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &subhead, nil
}

// FindAllFamilies lists every family
func (r *GormChartRepository) FindAllFamilies(ctx context.Context) ([]accounting.AccountFamily, error) {
	var families []accounting.AccountFamily
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&families).Error; err != nil {
		return nil, err
	}
	return families, nil
}

// FindHeadsByFamily lists the heads under a family
func (r *GormChartRepository) FindHeadsByFamily(ctx context.Context, familyID uuid.UUID) ([]accounting.AccountHead, error) {
	var heads []accounting.AccountHead
	if err := r.db.WithContext(ctx).
		Where("family_id = ?", familyID).
		Order("name ASC").
		Find(&heads).Error; err != nil {
		return nil, err
	}
	return heads, nil
}

// FindSubheadsByHead lists the subheads under a head
func (r *GormChartRepository) FindSubheadsByHead(ctx context.Context, headID uuid.UUID) ([]accounting.AccountSubhead, error) {
	var subheads []accounting.AccountSubhead
	if err := r.db.WithContext(ctx).
		Where("head_id = ?", headID).
		Order("name ASC").
		Find(&subheads).Error; err != nil {
		return nil, err
	}
	return subheads, nil
}

// SaveFamily creates or updates a family
func (r *GormChartRepository) SaveFamily(ctx context.Context, family *accounting.AccountFamily) error {
	return r.db.WithContext(ctx).Save(family).Error
}

// SaveHead creates or updates a head
func (r *GormChartRepository) SaveHead(ctx context.Context, head *accounting.AccountHead) error {
	return r.db.WithContext(ctx).Save(head).Error
}

// SaveSubhead creates or updates a subhead
func (r *GormChartRepository) SaveSubhead(ctx context.Context, subhead *accounting.AccountSubhead) error {
	return r.db.WithContext(ctx).Save(subhead).Error
}

var _ accounting.ChartRepository = (*GormChartRepository)(nil)
