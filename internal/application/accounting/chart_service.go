package accounting

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/accounting"
	"github.com/retailbooks/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ChartOfAccountsService manages the four-level classification hierarchy and
// its leaf accounts
type ChartOfAccountsService struct {
	chartRepo   accounting.ChartRepository
	accountRepo accounting.AccountRepository
	logger      *zap.Logger
}

// NewChartOfAccountsService creates a new ChartOfAccountsService
func NewChartOfAccountsService(
	chartRepo accounting.ChartRepository,
	accountRepo accounting.AccountRepository,
	logger *zap.Logger,
) *ChartOfAccountsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChartOfAccountsService{
		chartRepo:   chartRepo,
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// CreateFamily creates a top-level account family
func (s *ChartOfAccountsService) CreateFamily(ctx context.Context, name string) (*accounting.AccountFamily, error) {
	family, err := accounting.NewAccountFamily(name)
	if err != nil {
		return nil, err
	}
	if err := s.chartRepo.SaveFamily(ctx, family); err != nil {
		return nil, err
	}
	return family, nil
}

// CreateHead creates an account head under an existing family
func (s *ChartOfAccountsService) CreateHead(ctx context.Context, familyID uuid.UUID, name string) (*accounting.AccountHead, error) {
	if _, err := s.chartRepo.FindFamilyByID(ctx, familyID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.ErrCodeInvalidHierarchy, "Family does not exist")
		}
		return nil, err
	}

	head, err := accounting.NewAccountHead(familyID, name)
	if err != nil {
		return nil, err
	}
	if err := s.chartRepo.SaveHead(ctx, head); err != nil {
		return nil, err
	}
	return head, nil
}

// CreateSubhead creates an account subhead under an existing head
func (s *ChartOfAccountsService) CreateSubhead(ctx context.Context, headID uuid.UUID, name string) (*accounting.AccountSubhead, error) {
	if _, err := s.chartRepo.FindHeadByID(ctx, headID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.ErrCodeInvalidHierarchy, "Head does not exist")
		}
		return nil, err
	}

	subhead, err := accounting.NewAccountSubhead(headID, name)
	if err != nil {
		return nil, err
	}
	if err := s.chartRepo.SaveSubhead(ctx, subhead); err != nil {
		return nil, err
	}
	return subhead, nil
}

// CreateAccount creates a leaf account. Fails with DUPLICATE_CODE when the
// code is taken and INVALID_HIERARCHY when the subhead is unknown.
func (s *ChartOfAccountsService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*AccountResponse, error) {
	exists, err := s.accountRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.ErrCodeDuplicateCode, "An account with code "+req.Code+" already exists")
	}

	if _, err := s.chartRepo.FindSubheadByID(ctx, req.SubheadID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.ErrCodeInvalidHierarchy, "Subhead does not exist")
		}
		return nil, err
	}

	account, err := accounting.NewAccount(req.Code, req.Name, req.SubheadID, req.AccountType)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		// Unique index on code closes the check-then-insert race.
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError(shared.ErrCodeDuplicateCode, "An account with code "+req.Code+" already exists")
		}
		return nil, err
	}
	account.ClearDomainEvents()

	s.logger.Info("account created",
		zap.String("account_id", account.ID.String()),
		zap.String("code", account.Code),
		zap.String("account_type", account.AccountType.String()),
	)

	resp := ToAccountResponse(account)
	return &resp, nil
}

// ResolveNormalBalance returns the normal balance side of an account,
// derived from its account type
func (s *ChartOfAccountsService) ResolveNormalBalance(ctx context.Context, accountID uuid.UUID) (accounting.NormalBalance, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return "", err
	}
	return account.NormalBalance(), nil
}

// DeleteAccount removes an account. Rejected with ACCOUNT_IN_USE once any
// voucher line references it, and always rejected for system accounts.
func (s *ChartOfAccountsService) DeleteAccount(ctx context.Context, accountID uuid.UUID) error {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.IsSystemAccount {
		return shared.NewDomainError("SYSTEM_ACCOUNT", "System accounts cannot be deleted")
	}

	refs, err := s.accountRepo.CountReferences(ctx, accountID)
	if err != nil {
		return err
	}
	if refs > 0 {
		return shared.NewDomainError(shared.ErrCodeAccountInUse, "Account is referenced by posted voucher lines")
	}

	if err := s.accountRepo.Delete(ctx, accountID); err != nil {
		return err
	}

	s.logger.Info("account deleted", zap.String("account_id", accountID.String()))
	return nil
}

// GetAccount returns a single account
func (s *ChartOfAccountsService) GetAccount(ctx context.Context, accountID uuid.UUID) (*AccountResponse, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	resp := ToAccountResponse(account)
	return &resp, nil
}

// GetChartTree assembles the full Family → Head → Subhead → Account tree
func (s *ChartOfAccountsService) GetChartTree(ctx context.Context) ([]ChartFamilyNode, error) {
	families, err := s.chartRepo.FindAllFamilies(ctx)
	if err != nil {
		return nil, err
	}

	tree := make([]ChartFamilyNode, 0, len(families))
	for _, family := range families {
		familyNode := ChartFamilyNode{ID: family.ID, Name: family.Name, Heads: make([]ChartHeadNode, 0)}

		heads, err := s.chartRepo.FindHeadsByFamily(ctx, family.ID)
		if err != nil {
			return nil, err
		}
		for _, head := range heads {
			headNode := ChartHeadNode{ID: head.ID, Name: head.Name, Subheads: make([]ChartSubheadNode, 0)}

			subheads, err := s.chartRepo.FindSubheadsByHead(ctx, head.ID)
			if err != nil {
				return nil, err
			}
			for _, subhead := range subheads {
				subheadNode := ChartSubheadNode{ID: subhead.ID, Name: subhead.Name, Accounts: make([]AccountResponse, 0)}

				accounts, err := s.accountRepo.FindBySubhead(ctx, subhead.ID, shared.DefaultFilter())
				if err != nil {
					return nil, err
				}
				for i := range accounts {
					subheadNode.Accounts = append(subheadNode.Accounts, ToAccountResponse(&accounts[i]))
				}
				headNode.Subheads = append(headNode.Subheads, subheadNode)
			}
			familyNode.Heads = append(familyNode.Heads, headNode)
		}
		tree = append(tree, familyNode)
	}

	return tree, nil
}
