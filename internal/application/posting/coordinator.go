package posting

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retailbooks/backend/internal/domain/accounting"
	"github.com/retailbooks/backend/internal/domain/shared"
	"github.com/retailbooks/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxConflictRetries bounds how often a whole unit of work is replayed after
// an optimistic-lock conflict or unique-number collision before giving up.
// Collisions abort the open transaction on postgres, so they are never
// retried in place; the replay runs in a fresh transaction with fresh reads.
const maxConflictRetries = 3

// PostingCoordinator is the single entry point for stock-affecting business
// events. Each event runs in one atomic unit of work: inventory state,
// the stock document and its voucher commit together or not at all.
type PostingCoordinator struct {
	scope          TransactionScope
	valuation      *stock.ValuationService
	selector       *AccountSelector
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPostingCoordinator creates a new PostingCoordinator
func NewPostingCoordinator(scope TransactionScope, selector *AccountSelector, logger *zap.Logger) *PostingCoordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostingCoordinator{
		scope:          scope,
		valuation:      stock.NewValuationService(),
		selector:       selector,
		eventPublisher: shared.NoOpEventPublisher{},
		logger:         logger,
	}
}

// SetEventPublisher sets the publisher used for domain events
func (c *PostingCoordinator) SetEventPublisher(publisher shared.EventPublisher) {
	if publisher != nil {
		c.eventPublisher = publisher
	}
}

// Execute posts a stock-affecting business event: it applies the quantity and
// cost effects, posts the stock document, generates and posts the matching
// voucher, and links the two. Optimistic-lock conflicts replay the whole unit
// with fresh reads a bounded number of times.
func (c *PostingCoordinator) Execute(ctx context.Context, req PostMovementRequest) (*MovementResponse, error) {
	switch req.TransactionType {
	case stock.TransactionTypeTransferIn, stock.TransactionTypeTransferOut:
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Transfer legs are posted through Transfer")
	}
	if !req.TransactionType.CreatesVoucher() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Transaction type is not valid")
	}
	if req.TransactionType == stock.TransactionTypeAdjustmentIncrease ||
		req.TransactionType == stock.TransactionTypeAdjustmentDecrease {
		if !req.TaxAmount.IsZero() || !req.PaidAmount.IsZero() {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Adjustments carry no tax or payment")
		}
	}

	var lastErr error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		resp, err := c.executeOnce(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *PostingCoordinator) executeOnce(ctx context.Context, req PostMovementRequest) (*MovementResponse, error) {
	doc, overrides, err := buildDocument(req)
	if err != nil {
		return nil, err
	}

	var voucher *accounting.Voucher
	var states map[string]*stock.ProductInventoryState

	err = c.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		states, err = loadStates(ctx, repos.InventoryRepo(), doc)
		if err != nil {
			return err
		}

		totals, err := c.valuation.ApplyMovement(doc, states, overrides)
		if err != nil {
			return err
		}

		// A zero-value adjustment moves quantity but no money; it posts
		// without a voucher rather than failing on an empty one.
		if !isZeroValueAdjustment(doc.TransactionType, totals) {
			voucher, err = buildVoucherDraft(c.selector, doc, req.Lines, totals, req.TaxAmount, req.PaidAmount, req.Remark)
			if err != nil {
				return err
			}
			if err := PostWithNumber(ctx, repos.VoucherRepo(), voucher, req.PostedBy); err != nil {
				return err
			}
		}

		if err := postDocument(ctx, repos.StockRepo(), doc, req.TaxAmount, req.PaidAmount, req.PostedBy); err != nil {
			return err
		}
		if voucher != nil {
			if err := doc.LinkVoucher(voucher.ID); err != nil {
				return err
			}
			if err := repos.StockRepo().Save(ctx, doc); err != nil {
				return err
			}
		}

		return saveStates(ctx, repos.InventoryRepo(), states)
	})
	if err != nil {
		return nil, err
	}

	c.publishEvents(ctx, doc, voucher, states)

	voucherNumber := ""
	if voucher != nil {
		voucherNumber = voucher.VoucherNumber
	}
	c.logger.Info("stock movement posted",
		zap.String("stock_main_id", doc.ID.String()),
		zap.String("transaction_number", doc.TransactionNumber),
		zap.String("transaction_type", doc.TransactionType.String()),
		zap.String("voucher_number", voucherNumber),
		zap.String("total_amount", doc.TotalAmount.String()),
	)

	resp := ToMovementResponse(doc)
	return &resp, nil
}

// Transfer moves stock between locations as two documents sharing one
// transfer reference. The incoming leg receives at the cost the outgoing leg
// issued at, so the transfer is value-neutral and posts no voucher.
func (c *PostingCoordinator) Transfer(ctx context.Context, req TransferRequest) (*TransferResponse, error) {
	var lastErr error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		resp, err := c.transferOnce(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *PostingCoordinator) transferOnce(ctx context.Context, req TransferRequest) (*TransferResponse, error) {
	transferRef := uuid.New().String()

	outDoc, err := buildTransferLeg(stock.TransactionTypeTransferOut, req, transferRef)
	if err != nil {
		return nil, err
	}
	inDoc, err := buildTransferLeg(stock.TransactionTypeTransferIn, req, transferRef)
	if err != nil {
		return nil, err
	}

	var states map[string]*stock.ProductInventoryState

	err = c.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		states, err = loadStates(ctx, repos.InventoryRepo(), outDoc)
		if err != nil {
			return err
		}

		if _, err := c.valuation.ApplyMovement(outDoc, states, nil); err != nil {
			return err
		}

		// The outgoing leg snapshots the issue cost; the incoming leg
		// receives at exactly that cost.
		overrides := make(map[string]decimal.Decimal, len(outDoc.Details))
		for i := range outDoc.Details {
			overrides[outDoc.Details[i].ProductID.String()] = outDoc.Details[i].CostPrice
		}
		if _, err := c.valuation.ApplyMovement(inDoc, states, overrides); err != nil {
			return err
		}

		for _, doc := range []*stock.StockMain{outDoc, inDoc} {
			if err := postDocument(ctx, repos.StockRepo(), doc, decimal.Zero, decimal.Zero, req.PostedBy); err != nil {
				return err
			}
		}

		return saveStates(ctx, repos.InventoryRepo(), states)
	})
	if err != nil {
		return nil, err
	}

	c.publishEvents(ctx, outDoc, nil, states)
	c.publishEvents(ctx, inDoc, nil, nil)

	c.logger.Info("stock transfer posted",
		zap.String("transfer_ref", transferRef),
		zap.String("out_number", outDoc.TransactionNumber),
		zap.String("in_number", inDoc.TransactionNumber),
	)

	return &TransferResponse{
		TransferRef: transferRef,
		Out:         ToMovementResponse(outDoc),
		In:          ToMovementResponse(inDoc),
	}, nil
}

// VoidEvent unwinds a posted stock document: quantity and cost effects are
// reverted from the line snapshots, the document transitions to Voided and
// the linked voucher is reversed, all in one atomic unit of work. Voiding
// one leg of a transfer voids both legs; unwinding a single leg would
// fabricate or destroy stock.
func (c *PostingCoordinator) VoidEvent(ctx context.Context, stockMainID uuid.UUID, reason string, actor uuid.UUID) error {
	var lastErr error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err := c.voidOnce(ctx, stockMainID, reason, actor)
		if err == nil {
			return nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

func (c *PostingCoordinator) voidOnce(ctx context.Context, stockMainID uuid.UUID, reason string, actor uuid.UUID) error {
	var docs []*stock.StockMain
	var voucher *accounting.Voucher
	var states map[string]*stock.ProductInventoryState

	err := c.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		doc, err := repos.StockRepo().FindByID(ctx, stockMainID)
		if err != nil {
			return err
		}

		docs = []*stock.StockMain{doc}
		if doc.TransferRef != "" {
			legs, err := repos.StockRepo().FindByTransferRef(ctx, doc.TransferRef)
			if err != nil {
				return err
			}
			docs = docs[:0]
			for i := range legs {
				docs = append(docs, &legs[i])
			}
		}
		for _, d := range docs {
			if !d.Status.CanVoid() {
				return shared.NewDomainError(shared.ErrCodeNotPosted, "Only posted documents can be voided")
			}
		}

		states, err = loadStates(ctx, repos.InventoryRepo(), docs...)
		if err != nil {
			return err
		}
		for _, d := range docs {
			if err := c.valuation.RevertMovement(d, states); err != nil {
				return err
			}
			if err := d.Void(reason, actor); err != nil {
				return err
			}
		}

		for _, d := range docs {
			if d.VoucherID != nil {
				voucher, err = repos.VoucherRepo().FindByID(ctx, *d.VoucherID)
				if err != nil {
					return err
				}
				if _, err := ReverseWithNumber(ctx, repos.VoucherRepo(), voucher, reason, actor); err != nil {
					return err
				}
			}
			if err := repos.StockRepo().Save(ctx, d); err != nil {
				return err
			}
		}
		return saveStates(ctx, repos.InventoryRepo(), states)
	})
	if err != nil {
		return err
	}

	for _, d := range docs {
		c.publishEvents(ctx, d, nil, nil)
		c.logger.Info("stock movement voided",
			zap.String("stock_main_id", d.ID.String()),
			zap.String("transaction_number", d.TransactionNumber),
			zap.String("reason", reason),
		)
	}
	c.publishEvents(ctx, nil, voucher, states)

	return nil
}

// GetMovement returns a stock document with its lines
func (c *PostingCoordinator) GetMovement(ctx context.Context, stockMainID uuid.UUID) (*MovementResponse, error) {
	var resp *MovementResponse
	err := c.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		doc, err := repos.StockRepo().FindByID(ctx, stockMainID)
		if err != nil {
			return err
		}
		r := ToMovementResponse(doc)
		resp = &r
		return nil
	})
	return resp, err
}

// StockLedger lists the posted documents touching a product, oldest first.
// Each line carries its balance-after snapshot, so the rows read as a ledger.
func (c *PostingCoordinator) StockLedger(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]MovementResponse, error) {
	var out []MovementResponse
	err := c.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		docs, err := repos.StockRepo().FindByProduct(ctx, productID, filter)
		if err != nil {
			return err
		}
		out = make([]MovementResponse, 0, len(docs))
		for i := range docs {
			out = append(out, ToMovementResponse(&docs[i]))
		}
		return nil
	})
	return out, err
}

// GetInventoryState returns the current quantity on hand and average cost
// for a product
func (c *PostingCoordinator) GetInventoryState(ctx context.Context, productID uuid.UUID) (*InventoryStateResponse, error) {
	var resp *InventoryStateResponse
	err := c.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		state, err := repos.InventoryRepo().FindByProduct(ctx, productID)
		if err != nil {
			return err
		}
		r := ToInventoryStateResponse(state)
		resp = &r
		return nil
	})
	return resp, err
}

func (c *PostingCoordinator) publishEvents(ctx context.Context, doc *stock.StockMain, voucher *accounting.Voucher, states map[string]*stock.ProductInventoryState) {
	events := make([]shared.DomainEvent, 0)
	if doc != nil {
		events = append(events, doc.GetDomainEvents()...)
		doc.ClearDomainEvents()
	}
	if voucher != nil {
		events = append(events, voucher.GetDomainEvents()...)
		voucher.ClearDomainEvents()
	}
	for _, state := range states {
		events = append(events, state.GetDomainEvents()...)
		state.ClearDomainEvents()
	}
	if len(events) == 0 {
		return
	}
	_ = c.eventPublisher.Publish(ctx, events...)
}

// buildDocument assembles the draft stock document and the per-product cost
// overrides from the request
func buildDocument(req PostMovementRequest) (*stock.StockMain, map[string]decimal.Decimal, error) {
	doc, err := stock.NewStockMain(req.TransactionType, req.TransactionDate, req.PartyID)
	if err != nil {
		return nil, nil, err
	}
	if req.Remark != "" {
		doc.WithRemark(req.Remark)
	}

	overrides := make(map[string]decimal.Decimal)
	for _, lineReq := range req.Lines {
		line, err := stock.NewStockDetail(lineReq.ProductID, lineReq.Quantity, lineReq.UnitPrice, lineReq.LineDiscount)
		if err != nil {
			return nil, nil, err
		}
		if err := doc.AddLine(line); err != nil {
			return nil, nil, err
		}

		if cost, ok := lineCostOverride(req.TransactionType, lineReq, line); ok {
			overrides[lineReq.ProductID.String()] = cost
		}
	}
	return doc, overrides, nil
}

// lineCostOverride resolves the unit cost a line should be received at, when
// the request determines it: an explicit unit cost always wins; purchases
// default to the discounted line price; adjustment increases default to the
// stated unit price.
func lineCostOverride(txType stock.TransactionType, req MovementLineRequest, line *stock.StockDetail) (decimal.Decimal, bool) {
	if req.UnitCost != nil {
		return *req.UnitCost, true
	}
	if txType.UsesDocumentCost() {
		return line.LineTotal.Div(line.Quantity), true
	}
	if txType == stock.TransactionTypeAdjustmentIncrease && req.UnitPrice.IsPositive() {
		return req.UnitPrice, true
	}
	return decimal.Zero, false
}

func buildTransferLeg(txType stock.TransactionType, req TransferRequest, transferRef string) (*stock.StockMain, error) {
	doc, err := stock.NewStockMain(txType, req.TransactionDate, nil)
	if err != nil {
		return nil, err
	}
	doc.WithTransferRef(transferRef)
	if req.Remark != "" {
		doc.WithRemark(req.Remark)
	}
	for _, lineReq := range req.Lines {
		line, err := stock.NewStockDetail(lineReq.ProductID, lineReq.Quantity, lineReq.UnitPrice, decimal.Zero)
		if err != nil {
			return nil, err
		}
		if err := doc.AddLine(line); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// loadStates fetches (or creates) the inventory state for every product on
// the documents, keyed by product id. Products shared across documents load
// once, so all effects apply to one state instance.
func loadStates(ctx context.Context, repo stock.ProductInventoryRepository, docs ...*stock.StockMain) (map[string]*stock.ProductInventoryState, error) {
	states := make(map[string]*stock.ProductInventoryState)
	for _, doc := range docs {
		for i := range doc.Details {
			productID := doc.Details[i].ProductID
			if _, ok := states[productID.String()]; ok {
				continue
			}
			state, err := repo.GetOrCreate(ctx, productID)
			if err != nil {
				return nil, err
			}
			states[productID.String()] = state
		}
	}
	return states, nil
}

func saveStates(ctx context.Context, repo stock.ProductInventoryRepository, states map[string]*stock.ProductInventoryState) error {
	for _, state := range states {
		if err := repo.SaveWithLock(ctx, state); err != nil {
			return err
		}
	}
	return nil
}

// postDocument assigns a transaction number, posts the document and saves
// it. Number collisions surface as ErrConcurrencyConflict so the whole unit
// of work replays in a fresh transaction.
func postDocument(ctx context.Context, repo stock.StockMainRepository, doc *stock.StockMain, tax, paid decimal.Decimal, postedBy uuid.UUID) error {
	number, err := repo.NextTransactionNumber(ctx, doc.TransactionType)
	if err != nil {
		return err
	}
	if doc.Status.CanPost() {
		if err := doc.Post(number, tax, paid, postedBy); err != nil {
			return err
		}
	} else {
		doc.TransactionNumber = number
	}

	if err := repo.Save(ctx, doc); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return shared.ErrConcurrencyConflict
		}
		return err
	}
	return nil
}

// isZeroValueAdjustment reports whether the movement is an adjustment with no
// monetary effect; such movements post without a voucher
func isZeroValueAdjustment(txType stock.TransactionType, totals *stock.MovementTotals) bool {
	switch txType {
	case stock.TransactionTypeAdjustmentIncrease, stock.TransactionTypeAdjustmentDecrease:
		return totals.TotalCost.IsZero()
	}
	return false
}
