package posting

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/accounting"
	"github.com/retailbooks/backend/internal/domain/shared"
)

// PostWithNumber assigns the next voucher number, posts the draft and saves
// it. A collision on the voucher-number unique index aborts the surrounding
// database transaction on postgres, so it surfaces as ErrConcurrencyConflict
// for the caller to replay the whole unit of work in a fresh transaction.
func PostWithNumber(ctx context.Context, repo accounting.VoucherRepository, draft *accounting.Voucher, postedBy uuid.UUID) error {
	number, err := repo.NextVoucherNumber(ctx)
	if err != nil {
		return err
	}

	if draft.Status == accounting.VoucherStatusDraft {
		if err := draft.Post(number, postedBy); err != nil {
			return err
		}
	} else {
		// Replay path: keep the posted state, swap the colliding number.
		draft.VoucherNumber = number
	}

	if err := repo.Save(ctx, draft); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return shared.ErrConcurrencyConflict
		}
		return err
	}
	return nil
}

// ReverseWithNumber builds, links and saves the reversal for a posted
// voucher. Number collisions surface as ErrConcurrencyConflict the same way
// as PostWithNumber; the caller replays with a fresh read of the voucher.
func ReverseWithNumber(ctx context.Context, repo accounting.VoucherRepository, voucher *accounting.Voucher, reason string, actor uuid.UUID) (*accounting.Voucher, error) {
	number, err := repo.NextVoucherNumber(ctx)
	if err != nil {
		return nil, err
	}

	reversal, err := voucher.BuildReversal(number, reason, actor)
	if err != nil {
		return nil, err
	}

	if err := repo.Save(ctx, voucher); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.ErrConcurrencyConflict
		}
		return nil, err
	}
	if err := repo.Save(ctx, reversal); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.ErrConcurrencyConflict
		}
		return nil, err
	}
	return reversal, nil
}
