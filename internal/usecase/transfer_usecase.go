package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paylith/cardvault/internal/domain"
	"github.com/paylith/cardvault/internal/infrastructure/metrics"
)

// TransferUseCase orchestrates transfers between cards: authorization,
// atomic execution, and cancellation with compensation.
type TransferUseCase struct {
	txManager    TransactionManager
	retrier      Retrier
	cardRepo     CardRepository
	transferRepo TransferRepository
	authorizer   *TransferAuthorizer
	idGen        IDGenerator
	metrics      *metrics.Metrics
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	txManager TransactionManager,
	retrier Retrier,
	cardRepo CardRepository,
	transferRepo TransferRepository,
	authorizer *TransferAuthorizer,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:    txManager,
		retrier:      retrier,
		cardRepo:     cardRepo,
		transferRepo: transferRepo,
		authorizer:   authorizer,
		idGen:        idGen,
		metrics:      metrics,
	}
}

// CreateTransferInput represents input for creating a transfer.
type CreateTransferInput struct {
	FromCardID string
	ToCardID   string
	Amount     decimal.Decimal
}

// CreateTransfer validates, authorizes and executes a transfer on behalf of
// requesterID.
//
// The debit, the credit and the status write happen inside one database
// transaction with both card rows locked, so the transfer either fully
// completes or leaves no balance change. Requests rejected during
// authorization, eligibility or the balance check never write anything.
// An unexpected storage failure mid-execution rolls the transaction back and
// records the attempt as FAILED, so no transfer rests in PENDING.
func (uc *TransferUseCase) CreateTransfer(ctx context.Context, input CreateTransferInput, requesterID string) (*domain.Transfer, error) {
	start := time.Now()

	if input.FromCardID == input.ToCardID {
		uc.recordRejection(domain.ErrSameCard)
		return nil, domain.ErrSameCard
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		uc.recordRejection(err)
		return nil, err
	}

	transfer := &domain.Transfer{
		ID:         uc.idGen.Generate(),
		FromCardID: input.FromCardID,
		ToCardID:   input.ToCardID,
		Amount:     input.Amount,
		Status:     domain.TransferStatusPending,
		CreatedAt:  time.Now().UTC(),
	}

	err := uc.retrier.Retry(ctx, func() error {
		return uc.execute(ctx, transfer, requesterID)
	})
	if err != nil {
		if isRejection(err) {
			uc.recordRejection(err)
			return nil, err
		}

		// Execution failed after the request was accepted. The transaction
		// rolled back, so balances are intact; record the attempt as FAILED
		// outside the dead transaction.
		transfer.Status = domain.TransferStatusFailed
		if createErr := uc.transferRepo.CreateFailed(ctx, transfer); createErr != nil {
			slog.Error("failed to record failed transfer",
				"transfer_id", transfer.ID,
				"error", createErr,
			)
		}

		return nil, fmt.Errorf("%w: %v", domain.ErrExecution, err)
	}

	if uc.metrics != nil {
		uc.metrics.TransfersCreated.Inc()
		uc.metrics.TransferDuration.Observe(time.Since(start).Seconds())

		amount, _ := transfer.Amount.Float64()
		uc.metrics.TransferAmount.Observe(amount)
	}

	return transfer, nil
}

// execute runs the transactional section of a transfer. Retried as a whole
// on deadlock or serialization failure.
func (uc *TransferUseCase) execute(ctx context.Context, transfer *domain.Transfer, requesterID string) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Lock both cards in ascending id order (DEADLOCK PREVENTION).
	from, to, err := uc.lockCardPair(ctx, tx, transfer.FromCardID, transfer.ToCardID)
	if err != nil {
		return err
	}

	if err := uc.authorizer.Authorize(requesterID, from, to); err != nil {
		return err
	}

	if err := from.ValidateDebit(transfer.Amount); err != nil {
		return err
	}

	// The request is accepted; everything below is one atomic unit.
	if err := uc.transferRepo.Create(ctx, tx, transfer); err != nil {
		return err
	}

	now := time.Now().UTC()

	if err := uc.cardRepo.UpdateBalance(ctx, tx, from.ID, from.ApplyDebit(transfer.Amount), now); err != nil {
		return err
	}

	if err := uc.cardRepo.UpdateBalance(ctx, tx, to.ID, to.ApplyCredit(transfer.Amount), now); err != nil {
		return err
	}

	if err := uc.transferRepo.MarkCompleted(ctx, tx, transfer.ID, now); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	transfer.Status = domain.TransferStatusCompleted
	transfer.ProcessedAt = &now

	return nil
}

// CancelTransfer cancels a transfer on behalf of requesterID.
//
// Only PENDING transfers are cancellable; COMPLETED, FAILED and CANCELLED
// return ErrInvalidState. A PENDING transfer whose balances were already
// moved (processed_at set) gets a compensating reversal: the amount is
// credited back to the source card and debited from the destination, inside
// the same transaction as the status write.
func (uc *TransferUseCase) CancelTransfer(ctx context.Context, transferID, requesterID string) (*domain.Transfer, error) {
	var transfer *domain.Transfer

	err := uc.retrier.Retry(ctx, func() error {
		var err error
		transfer, err = uc.cancel(ctx, transferID, requesterID)
		return err
	})
	if err != nil {
		if isRejection(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrExecution, err)
	}

	if uc.metrics != nil {
		uc.metrics.TransfersCancelled.Inc()
	}

	return transfer, nil
}

func (uc *TransferUseCase) cancel(ctx context.Context, transferID, requesterID string) (*domain.Transfer, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	transfer, err := uc.transferRepo.GetByIDForUpdate(ctx, tx, transferID)
	if err != nil {
		return nil, err
	}

	from, to, err := uc.lockCardPair(ctx, tx, transfer.FromCardID, transfer.ToCardID)
	if err != nil {
		return nil, err
	}

	if from.UserID != requesterID && to.UserID != requesterID {
		return nil, domain.ErrUnauthorized
	}

	if err := transfer.CanCancel(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	if transfer.NeedsCompensation() {
		// The destination may have spent the funds already; compensation
		// never drives a balance negative.
		if err := to.ValidateDebit(transfer.Amount); err != nil {
			return nil, err
		}

		if err := uc.cardRepo.UpdateBalance(ctx, tx, from.ID, from.ApplyCredit(transfer.Amount), now); err != nil {
			return nil, err
		}

		if err := uc.cardRepo.UpdateBalance(ctx, tx, to.ID, to.ApplyDebit(transfer.Amount), now); err != nil {
			return nil, err
		}
	}

	if err := uc.transferRepo.MarkCancelled(ctx, tx, transfer.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	transfer.Status = domain.TransferStatusCancelled

	return transfer, nil
}

// GetTransfer retrieves a transfer by ID. Requesters see only transfers
// touching their own cards; admins see everything.
func (uc *TransferUseCase) GetTransfer(ctx context.Context, transferID string, requester *domain.User) (*domain.Transfer, error) {
	transfer, err := uc.transferRepo.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}

	if requester.Role.CanViewAll() {
		return transfer, nil
	}

	from, err := uc.cardRepo.GetByID(ctx, transfer.FromCardID)
	if err != nil {
		return nil, err
	}

	to, err := uc.cardRepo.GetByID(ctx, transfer.ToCardID)
	if err != nil {
		return nil, err
	}

	if from.UserID != requester.ID && to.UserID != requester.ID {
		return nil, domain.ErrUnauthorized
	}

	return transfer, nil
}

// ListTransfersInput represents input for listing a user's transfers.
type ListTransfersInput struct {
	UserID string
	Status domain.TransferStatus
	Limit  int
	Offset int
}

// TransferPage is one page of transfer records.
type TransferPage struct {
	Items  []*domain.Transfer
	Total  int64
	Limit  int
	Offset int
}

// ListTransfers lists transfers where the user owns either endpoint card.
func (uc *TransferUseCase) ListTransfers(ctx context.Context, input ListTransfersInput) (*TransferPage, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	items, err := uc.transferRepo.ListByParticipant(ctx, input.UserID, input.Status, limit, offset)
	if err != nil {
		return nil, err
	}

	total, err := uc.transferRepo.CountByParticipant(ctx, input.UserID, input.Status)
	if err != nil {
		return nil, err
	}

	return &TransferPage{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

// ListAllTransfers lists transfers across all users. Admin only, enforced at
// the transport layer.
func (uc *TransferUseCase) ListAllTransfers(ctx context.Context, limit, offset int) ([]*domain.Transfer, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.transferRepo.ListAll(ctx, limit, offset)
}

// lockCardPair locks two cards in ascending id order and returns them in
// (from, to) order.
func (uc *TransferUseCase) lockCardPair(ctx context.Context, tx Transaction, fromID, toID string) (*domain.Card, *domain.Card, error) {
	ids := []string{fromID, toID}
	sort.Strings(ids)

	cards, err := uc.cardRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, nil, err
	}

	var from, to *domain.Card
	for _, c := range cards {
		switch c.ID {
		case fromID:
			from = c
		case toID:
			to = c
		}
	}

	if from == nil || to == nil {
		return nil, nil, domain.ErrCardNotFound
	}

	return from, to, nil
}

func (uc *TransferUseCase) recordRejection(err error) {
	if uc.metrics == nil {
		return
	}

	uc.metrics.TransferRejections.WithLabelValues(rejectionReason(err)).Inc()
}

// rejectionReason maps a rejection to a bounded metric label.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, domain.ErrCardNotEligible):
		return "card_not_eligible"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrSameCard):
		return "same_card"
	case errors.Is(err, domain.ErrCardNotFound), errors.Is(err, domain.ErrTransferNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooSmall),
		errors.Is(err, domain.ErrAmountTooLarge):
		return "invalid_amount"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	}

	return "other"
}

// isRejection reports whether the error is a deliberate refusal rather than
// a storage failure. Rejections happen before any ledger write and are
// surfaced as-is.
func isRejection(err error) bool {
	for _, rejection := range []error{
		domain.ErrCardNotFound,
		domain.ErrTransferNotFound,
		domain.ErrUnauthorized,
		domain.ErrCardNotEligible,
		domain.ErrInsufficientBalance,
		domain.ErrInvalidState,
		domain.ErrSameCard,
		domain.ErrInvalidAmount,
		domain.ErrAmountTooSmall,
		domain.ErrAmountTooLarge,
	} {
		if errors.Is(err, rejection) {
			return true
		}
	}

	return false
}
