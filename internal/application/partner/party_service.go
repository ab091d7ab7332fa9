package partner

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/partner"
	"github.com/retailbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreatePartyRequest is the input for registering a counterparty
type CreatePartyRequest struct {
	Code        string            `json:"code" binding:"required,max=30"`
	Name        string            `json:"name" binding:"required,max=200"`
	PartyType   partner.PartyType `json:"party_type" binding:"required,party_type"`
	Phone       string            `json:"phone,omitempty" binding:"max=30"`
	Address     string            `json:"address,omitempty" binding:"max=500"`
	CreditLimit decimal.Decimal   `json:"credit_limit"`
}

// PartyResponse is the API representation of a party
type PartyResponse struct {
	ID          uuid.UUID         `json:"id"`
	Code        string            `json:"code"`
	Name        string            `json:"name"`
	PartyType   partner.PartyType `json:"party_type"`
	Phone       string            `json:"phone,omitempty"`
	Address     string            `json:"address,omitempty"`
	CreditLimit decimal.Decimal   `json:"credit_limit"`
	IsActive    bool              `json:"is_active"`
}

// ToPartyResponse maps a party to its API representation
func ToPartyResponse(p *partner.Party) PartyResponse {
	return PartyResponse{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		PartyType:   p.PartyType,
		Phone:       p.Phone,
		Address:     p.Address,
		CreditLimit: p.CreditLimit,
		IsActive:    p.IsActive,
	}
}

// PartyService manages counterparty records
type PartyService struct {
	partyRepo partner.PartyRepository
	logger    *zap.Logger
}

// NewPartyService creates a new PartyService
func NewPartyService(partyRepo partner.PartyRepository, logger *zap.Logger) *PartyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PartyService{partyRepo: partyRepo, logger: logger}
}

// Create registers a new party
func (s *PartyService) Create(ctx context.Context, req CreatePartyRequest) (*PartyResponse, error) {
	party, err := partner.NewParty(req.Code, req.Name, req.PartyType)
	if err != nil {
		return nil, err
	}
	party.Phone = req.Phone
	party.Address = req.Address
	if !req.CreditLimit.IsZero() {
		if err := party.SetCreditLimit(req.CreditLimit); err != nil {
			return nil, err
		}
	}

	if err := s.partyRepo.Save(ctx, party); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError(shared.ErrCodeDuplicateCode, "A party with code "+req.Code+" already exists")
		}
		return nil, err
	}

	s.logger.Info("party created",
		zap.String("party_id", party.ID.String()),
		zap.String("code", party.Code),
		zap.String("party_type", party.PartyType.String()),
	)

	resp := ToPartyResponse(party)
	return &resp, nil
}

// Get returns a party by id
func (s *PartyService) Get(ctx context.Context, partyID uuid.UUID) (*PartyResponse, error) {
	party, err := s.partyRepo.FindByID(ctx, partyID)
	if err != nil {
		return nil, err
	}
	resp := ToPartyResponse(party)
	return &resp, nil
}

// List returns parties with filtering
func (s *PartyService) List(ctx context.Context, filter shared.Filter) ([]PartyResponse, error) {
	parties, err := s.partyRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]PartyResponse, 0, len(parties))
	for i := range parties {
		out = append(out, ToPartyResponse(&parties[i]))
	}
	return out, nil
}

// Deactivate marks a party inactive; its history stays intact
func (s *PartyService) Deactivate(ctx context.Context, partyID uuid.UUID) error {
	party, err := s.partyRepo.FindByID(ctx, partyID)
	if err != nil {
		return err
	}
	party.Deactivate()
	if err := s.partyRepo.Save(ctx, party); err != nil {
		return err
	}
	s.logger.Info("party deactivated", zap.String("party_id", partyID.String()))
	return nil
}
