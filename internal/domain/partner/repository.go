package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/shared"
)

// PartyRepository persists counterparty records
type PartyRepository interface {
	// FindByID finds a party by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Party, error)

	// FindByCode finds a party by its unique code
	FindByCode(ctx context.Context, code string) (*Party, error)

	// FindAll lists parties with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Party, error)

	// Save creates or updates a party
	Save(ctx context.Context, party *Party) error

	// Delete removes a party that has no ledger references
	Delete(ctx context.Context, id uuid.UUID) error
}
