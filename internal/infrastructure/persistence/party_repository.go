package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/partner"
	"github.com/retailbooks/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormPartyRepository implements PartyRepository using GORM
type GormPartyRepository struct {
	db *gorm.DB
}

// NewGormPartyRepository creates a new GormPartyRepository
func NewGormPartyRepository(db *gorm.DB) *GormPartyRepository {
	return &GormPartyRepository{db: db}
}

// FindByID finds a party by ID
func (r *GormPartyRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Party, error) {
	var party partner.Party
	if err := r.db.WithContext(ctx).First(&party, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &party, nil
}

// FindByCode finds a party by its unique code
func (r *GormPartyRepository) FindByCode(ctx context.Context, code string) (*partner.Party, error) {
	var party partner.Party
	if err := r.db.WithContext(ctx).First(&party, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &party, nil
}

// FindAll lists parties with filtering
func (r *GormPartyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Party, error) {
	var parties []partner.Party
	query := r.db.WithContext(ctx).Model(&partner.Party{})
	for key, value := range filter.Filters {
		switch key {
		case "party_type":
			query = query.Where("party_type = ?", value)
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
	if err := query.Find(&parties).Error; err != nil {
		return nil, err
	}
	return parties, nil
}

// Save creates or updates a party. A unique-index collision on the code maps
// to shared.ErrAlreadyExists.
func (r *GormPartyRepository) Save(ctx context.Context, party *partner.Party) error {
	if err := r.db.WithContext(ctx).Save(party).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Delete removes a party that has no ledger references
func (r *GormPartyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var refs int64
	if err := r.db.WithContext(ctx).
		Table("voucher_details").
		Where("party_id = ?", id).
		Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return shared.NewDomainError("PARTY_IN_USE", "Party is referenced by voucher lines")
	}

	result := r.db.WithContext(ctx).Delete(&partner.Party{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ partner.PartyRepository = (*GormPartyRepository)(nil)
