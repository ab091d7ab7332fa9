package accounting

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/application/posting"
	"github.com/retailbooks/backend/internal/domain/accounting"
	"github.com/retailbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxNumberAttempts bounds how often a posting unit of work is replayed on
// voucher-number collisions before surfacing a concurrency conflict. Each
// replay runs in a fresh transaction; a collision aborts the open one on
// postgres, so retrying inside it can never succeed.
const maxNumberAttempts = 3

// VoucherService validates and commits double-entry journal vouchers.
// Posting and reversal each run inside one atomic unit of work.
type VoucherService struct {
	scope          posting.TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewVoucherService creates a new VoucherService
func NewVoucherService(scope posting.TransactionScope, logger *zap.Logger) *VoucherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VoucherService{
		scope:          scope,
		eventPublisher: shared.NoOpEventPublisher{},
		logger:         logger,
	}
}

// SetEventPublisher sets the publisher used for domain events
func (s *VoucherService) SetEventPublisher(publisher shared.EventPublisher) {
	if publisher != nil {
		s.eventPublisher = publisher
	}
}

// Post validates and commits a voucher draft, assigning the next sequential
// voucher number. Fails with UNBALANCED, EMPTY_VOUCHER or INVALID_ACCOUNT
// before any write; no state changes on rejection.
func (s *VoucherService) Post(ctx context.Context, req PostVoucherRequest) (*VoucherResponse, error) {
	draft, err := buildDraft(req)
	if err != nil {
		return nil, err
	}

	// Structural validation happens before the transaction is opened so bad
	// input never costs a round trip.
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		err = s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
			if err := ValidateAccounts(ctx, repos.AccountRepo(), draft); err != nil {
				return err
			}
			return posting.PostWithNumber(ctx, repos.VoucherRepo(), draft, req.PostedBy)
		})
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) || attempt+1 >= maxNumberAttempts {
			return nil, err
		}
	}
	posted := draft

	s.publishEvents(ctx, posted)

	s.logger.Info("voucher posted",
		zap.String("voucher_id", posted.ID.String()),
		zap.String("voucher_number", posted.VoucherNumber),
		zap.String("voucher_type", posted.VoucherType.String()),
		zap.String("total_debit", posted.TotalDebit.String()),
	)

	resp := ToVoucherResponse(posted)
	return &resp, nil
}

// Reverse creates the reversal voucher for a posted voucher and links both
// records inside one transaction. Fails with ALREADY_REVERSED or NOT_POSTED
// on lifecycle violations; a second reversal attempt fails cleanly without
// corrupting state.
func (s *VoucherService) Reverse(ctx context.Context, voucherID uuid.UUID, reason string, actor uuid.UUID) (*VoucherResponse, error) {
	var original, reversal *accounting.Voucher

	for attempt := 0; ; attempt++ {
		err := s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
			voucher, err := repos.VoucherRepo().FindByID(ctx, voucherID)
			if err != nil {
				return err
			}

			rev, err := posting.ReverseWithNumber(ctx, repos.VoucherRepo(), voucher, reason, actor)
			if err != nil {
				return err
			}

			original = voucher
			reversal = rev
			return nil
		})
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) || attempt+1 >= maxNumberAttempts {
			return nil, err
		}
	}

	s.publishEvents(ctx, original)

	s.logger.Info("voucher reversed",
		zap.String("voucher_id", original.ID.String()),
		zap.String("reversal_voucher_id", reversal.ID.String()),
		zap.String("reversal_number", reversal.VoucherNumber),
	)

	resp := ToVoucherResponse(reversal)
	return &resp, nil
}

// DiscardDraft hard-deletes a draft voucher. Posted and Reversed vouchers
// are permanent records and cannot be discarded.
func (s *VoucherService) DiscardDraft(ctx context.Context, voucherID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
		voucher, err := repos.VoucherRepo().FindByID(ctx, voucherID)
		if err != nil {
			return err
		}
		if !voucher.Status.CanDiscard() {
			return shared.NewDomainError("INVALID_STATE", "Only draft vouchers can be discarded")
		}
		return repos.VoucherRepo().DeleteDraft(ctx, voucherID)
	})
}

// GetByID returns a voucher with its lines
func (s *VoucherService) GetByID(ctx context.Context, voucherID uuid.UUID) (*VoucherResponse, error) {
	var resp *VoucherResponse
	err := s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
		voucher, err := repos.VoucherRepo().FindByID(ctx, voucherID)
		if err != nil {
			return err
		}
		r := ToVoucherResponse(voucher)
		resp = &r
		return nil
	})
	return resp, err
}

// GetBySource returns the vouchers generated by a business record
func (s *VoucherService) GetBySource(ctx context.Context, sourceTable string, sourceID uuid.UUID) ([]VoucherResponse, error) {
	var out []VoucherResponse
	err := s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
		vouchers, err := repos.VoucherRepo().FindBySource(ctx, sourceTable, sourceID)
		if err != nil {
			return err
		}
		out = make([]VoucherResponse, 0, len(vouchers))
		for i := range vouchers {
			out = append(out, ToVoucherResponse(&vouchers[i]))
		}
		return nil
	})
	return out, err
}

// TrialBalance aggregates posted voucher lines into per-account totals over
// the period and checks overall debit/credit equality
func (s *VoucherService) TrialBalance(ctx context.Context, from, to time.Time) (*TrialBalanceResponse, error) {
	var resp *TrialBalanceResponse
	err := s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
		rows, err := repos.VoucherRepo().TrialBalance(ctx, from, to)
		if err != nil {
			return err
		}

		totalDebit := decimal.Zero
		totalCredit := decimal.Zero
		for _, row := range rows {
			totalDebit = totalDebit.Add(row.TotalDebit)
			totalCredit = totalCredit.Add(row.TotalCredit)
		}

		resp = &TrialBalanceResponse{
			From:        from,
			To:          to,
			Rows:        rows,
			TotalDebit:  totalDebit,
			TotalCredit: totalCredit,
			Balanced:    totalDebit.Equal(totalCredit),
		}
		return nil
	})
	return resp, err
}

// PartyBalance computes a party's running balance from posted voucher lines
// tagged with the party
func (s *VoucherService) PartyBalance(ctx context.Context, partyID uuid.UUID) (decimal.Decimal, error) {
	balance := decimal.Zero
	err := s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
		b, err := repos.VoucherRepo().PartyBalance(ctx, partyID)
		if err != nil {
			return err
		}
		balance = b
		return nil
	})
	return balance, err
}

func (s *VoucherService) publishEvents(ctx context.Context, voucher *accounting.Voucher) {
	events := voucher.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	voucher.ClearDomainEvents()
}

// buildDraft assembles a voucher aggregate from the request
func buildDraft(req PostVoucherRequest) (*accounting.Voucher, error) {
	draft, err := accounting.NewVoucherDraft(req.VoucherType, req.VoucherDate, req.Remark)
	if err != nil {
		return nil, err
	}
	if req.SourceTable != "" && req.SourceID != nil {
		draft.WithSource(req.SourceTable, *req.SourceID)
	}
	if req.PostedBy != uuid.Nil {
		draft.SetCreatedBy(req.PostedBy)
	}

	for _, lineReq := range req.Lines {
		line, err := accounting.NewVoucherDetail(lineReq.AccountID, lineReq.Debit, lineReq.Credit)
		if err != nil {
			return nil, err
		}
		if lineReq.PartyID != nil {
			line.WithParty(*lineReq.PartyID)
		}
		if lineReq.ProductID != nil {
			line.WithProduct(*lineReq.ProductID)
		}
		if lineReq.Remark != "" {
			line.WithRemark(lineReq.Remark)
		}
		if err := draft.AddLine(line); err != nil {
			return nil, err
		}
	}

	return draft, nil
}

// ValidateAccounts checks every line account resolves to an existing, active
// account. Shared with the posting coordinator.
func ValidateAccounts(ctx context.Context, accountRepo accounting.AccountRepository, draft *accounting.Voucher) error {
	seen := make(map[uuid.UUID]struct{}, len(draft.Details))
	ids := make([]uuid.UUID, 0, len(draft.Details))
	for i := range draft.Details {
		id := draft.Details[i].AccountID
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	accounts, err := accountRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}

	active := make(map[uuid.UUID]bool, len(accounts))
	for i := range accounts {
		active[accounts[i].ID] = accounts[i].IsActive
	}
	for _, id := range ids {
		isActive, found := active[id]
		if !found {
			return shared.NewDomainError(shared.ErrCodeInvalidAccount, "Account "+id.String()+" does not exist")
		}
		if !isActive {
			return shared.NewDomainError(shared.ErrCodeInvalidAccount, "Account "+id.String()+" is inactive")
		}
	}
	return nil
}
