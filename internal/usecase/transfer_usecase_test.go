package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paylith/cardvault/internal/domain"
	"github.com/paylith/cardvault/internal/usecase"
	"github.com/paylith/cardvault/internal/usecase/mocks"
)

func activeCard(id, userID, balance string) *domain.Card {
	return &domain.Card{
		ID:         id,
		UserID:     userID,
		Status:     domain.CardStatusActive,
		Balance:    decimal.RequireFromString(balance),
		ExpiryDate: time.Now().UTC().AddDate(3, 0, 0),
	}
}

func newTransferUseCase(cardRepo *mocks.FakeCardRepository, transferRepo *mocks.FakeTransferRepository, txMgr *mocks.FakeTransactionManager) *usecase.TransferUseCase {
	return usecase.NewTransferUseCase(
		txMgr,
		mocks.NewPassthroughRetrier(),
		cardRepo,
		transferRepo,
		usecase.NewTransferAuthorizer(),
		mocks.NewFakeIDGenerator(),
		nil,
	)
}

func TestTransferUseCase_CreateTransfer(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.CreateTransferInput
		requesterID string
		setupCards  func(*mocks.FakeCardRepository)
		errorType   error
	}{
		{
			name: "successful transfer",
			input: usecase.CreateTransferInput{
				FromCardID: "card-1",
				ToCardID:   "card-2",
				Amount:     decimal.RequireFromString("100.50"),
			},
			requesterID: "user-1",
			setupCards: func(repo *mocks.FakeCardRepository) {
				repo.Put(activeCard("card-1", "user-1", "500.00"))
				repo.Put(activeCard("card-2", "user-1", "0"))
			},
		},
		{
			name: "reject same card transfer",
			input: usecase.CreateTransferInput{
				FromCardID: "card-1",
				ToCardID:   "card-1",
				Amount:     decimal.NewFromInt(100),
			},
			requesterID: "user-1",
			setupCards:  func(repo *mocks.FakeCardRepository) {},
			errorType:   domain.ErrSameCard,
		},
		{
			name: "reject non-positive amount",
			input: usecase.CreateTransferInput{
				FromCardID: "card-1",
				ToCardID:   "card-2",
				Amount:     decimal.Zero,
			},
			requesterID: "user-1",
			setupCards:  func(repo *mocks.FakeCardRepository) {},
			errorType:   domain.ErrInvalidAmount,
		},
		{
			name: "reject amount below minimum",
			input: usecase.CreateTransferInput{
				FromCardID: "card-1",
				ToCardID:   "card-2",
				Amount:     decimal.RequireFromString("0.001"),
			},
			requesterID: "user-1",
			setupCards:  func(repo *mocks.FakeCardRepository) {},
			errorType:   domain.ErrAmountTooSmall,
		},
		{
			name: "reject insufficient balance",
			input: usecase.CreateTransferInput{
				FromCardID: "card-1",
				ToCardID:   "card-2",
				Amount:     decimal.NewFromInt(1000),
			},
			requesterID: "user-1",
			setupCards: func(repo *mocks.FakeCardRepository) {
				repo.Put(activeCard("card-1", "user-1", "100.00"))
				repo.Put(activeCard("card-2", "user-1", "0"))
			},
			errorType: domain.ErrInsufficientBalance,
		},
		{
			name: "reject transfer to another user's card",
			input: usecase.CreateTransferInput{
				FromCardID: "card-1",
				ToCardID:   "card-2",
				Amount:     decimal.NewFromInt(50),
			},
			requesterID: "user-1",
			setupCards: func(repo *mocks.FakeCardRepository) {
				repo.Put(activeCard("card-1", "user-1", "500.00"))
				repo.Put(activeCard("card-2", "user-2", "0"))
			},
			errorType: domain.ErrUnauthorized,
		},
		{
			name: "reject transfer from card not owned by requester",
			input: usecase.CreateTransferInput{
				FromCardID: "card-1",
				ToCardID:   "card-2",
				Amount:     decimal.NewFromInt(50),
			},
			requesterID: "user-2",
			setupCards: func(repo *mocks.FakeCardRepository) {
				repo.Put(activeCard("card-1", "user-1", "500.00"))
				repo.Put(activeCard("card-2", "user-1", "0"))
			},
			errorType: domain.ErrUnauthorized,
		},
		{
			name: "reject blocked source card",
			input: usecase.CreateTransferInput{
				FromCardID: "card-1",
				ToCardID:   "card-2",
				Amount:     decimal.NewFromInt(50),
			},
			requesterID: "user-1",
			setupCards: func(repo *mocks.FakeCardRepository) {
				blocked := activeCard("card-1", "user-1", "500.00")
				blocked.Status = domain.CardStatusBlocked
				repo.Put(blocked)
				repo.Put(activeCard("card-2", "user-1", "0"))
			},
			errorType: domain.ErrCardNotEligible,
		},
		{
			name: "reject expired destination card",
			input: usecase.CreateTransferInput{
				FromCardID: "card-1",
				ToCardID:   "card-2",
				Amount:     decimal.NewFromInt(50),
			},
			requesterID: "user-1",
			setupCards: func(repo *mocks.FakeCardRepository) {
				repo.Put(activeCard("card-1", "user-1", "500.00"))
				expired := activeCard("card-2", "user-1", "0")
				expired.Status = domain.CardStatusExpired
				repo.Put(expired)
			},
			errorType: domain.ErrCardNotEligible,
		},
		{
			name: "reject unknown card",
			input: usecase.CreateTransferInput{
				FromCardID: "card-1",
				ToCardID:   "card-404",
				Amount:     decimal.NewFromInt(50),
			},
			requesterID: "user-1",
			setupCards: func(repo *mocks.FakeCardRepository) {
				repo.Put(activeCard("card-1", "user-1", "500.00"))
			},
			errorType: domain.ErrCardNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cardRepo := mocks.NewFakeCardRepository()
			transferRepo := mocks.NewFakeTransferRepository()
			txMgr := mocks.NewFakeTransactionManager()

			tt.setupCards(cardRepo)

			uc := newTransferUseCase(cardRepo, transferRepo, txMgr)
			transfer, err := uc.CreateTransfer(context.Background(), tt.input, tt.requesterID)

			if tt.errorType != nil {
				if !errors.Is(err, tt.errorType) {
					t.Fatalf("expected error %v, got %v", tt.errorType, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if transfer.Status != domain.TransferStatusCompleted {
				t.Errorf("expected status COMPLETED, got %s", transfer.Status)
			}
			if transfer.ProcessedAt == nil {
				t.Error("expected processedAt to be set")
			}
		})
	}
}

func TestTransferUseCase_CreateTransfer_BalanceMath(t *testing.T) {
	cardRepo := mocks.NewFakeCardRepository()
	transferRepo := mocks.NewFakeTransferRepository()
	txMgr := mocks.NewFakeTransactionManager()

	cardRepo.Put(activeCard("card-1", "user-1", "500.00"))
	cardRepo.Put(activeCard("card-2", "user-1", "19.99"))

	uc := newTransferUseCase(cardRepo, transferRepo, txMgr)

	transfer, err := uc.CreateTransfer(context.Background(), usecase.CreateTransferInput{
		FromCardID: "card-1",
		ToCardID:   "card-2",
		Amount:     decimal.RequireFromString("100.01"),
	}, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	from, _ := cardRepo.GetByID(context.Background(), "card-1")
	to, _ := cardRepo.GetByID(context.Background(), "card-2")

	if !from.Balance.Equal(decimal.RequireFromString("399.99")) {
		t.Errorf("expected source balance 399.99, got %s", from.Balance)
	}
	if !to.Balance.Equal(decimal.RequireFromString("120.00")) {
		t.Errorf("expected destination balance 120.00, got %s", to.Balance)
	}

	stored := transferRepo.Get(transfer.ID)
	if stored == nil {
		t.Fatal("expected transfer record to be persisted")
	}
	if stored.Status != domain.TransferStatusCompleted {
		t.Errorf("expected persisted status COMPLETED, got %s", stored.Status)
	}

	if len(txMgr.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txMgr.Transactions))
	}
	if !txMgr.Transactions[0].Committed {
		t.Error("expected transaction to be committed")
	}
}

func TestTransferUseCase_CreateTransfer_RejectionWritesNothing(t *testing.T) {
	cardRepo := mocks.NewFakeCardRepository()
	transferRepo := mocks.NewFakeTransferRepository()
	txMgr := mocks.NewFakeTransactionManager()

	cardRepo.Put(activeCard("card-1", "user-1", "100.00"))
	cardRepo.Put(activeCard("card-2", "user-1", "50.00"))

	createCalled := false
	transferRepo.CreateFunc = func(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error {
		createCalled = true
		return nil
	}

	uc := newTransferUseCase(cardRepo, transferRepo, txMgr)

	_, err := uc.CreateTransfer(context.Background(), usecase.CreateTransferInput{
		FromCardID: "card-1",
		ToCardID:   "card-2",
		Amount:     decimal.NewFromInt(500),
	}, "user-1")
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	if createCalled {
		t.Error("rejected transfer must not write a ledger record")
	}

	from, _ := cardRepo.GetByID(context.Background(), "card-1")
	if !from.Balance.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("expected source balance unchanged, got %s", from.Balance)
	}

	if len(txMgr.Transactions) != 1 || txMgr.Transactions[0].Committed {
		t.Error("expected transaction to roll back")
	}
}

func TestTransferUseCase_CreateTransfer_ExecutionFailureRecordsFailed(t *testing.T) {
	cardRepo := mocks.NewFakeCardRepository()
	transferRepo := mocks.NewFakeTransferRepository()
	txMgr := mocks.NewFakeTransactionManager()

	cardRepo.Put(activeCard("card-1", "user-1", "500.00"))
	cardRepo.Put(activeCard("card-2", "user-1", "0"))

	cardRepo.UpdateBalanceFunc = func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
		return errors.New("connection reset")
	}

	var failedRecord *domain.Transfer
	transferRepo.CreateFailedFunc = func(ctx context.Context, transfer *domain.Transfer) error {
		copied := *transfer
		failedRecord = &copied
		return nil
	}

	uc := newTransferUseCase(cardRepo, transferRepo, txMgr)

	_, err := uc.CreateTransfer(context.Background(), usecase.CreateTransferInput{
		FromCardID: "card-1",
		ToCardID:   "card-2",
		Amount:     decimal.NewFromInt(100),
	}, "user-1")
	if !errors.Is(err, domain.ErrExecution) {
		t.Fatalf("expected ErrExecution, got %v", err)
	}

	if failedRecord == nil {
		t.Fatal("expected a FAILED record to be written")
	}
	if failedRecord.Status != domain.TransferStatusFailed {
		t.Errorf("expected status FAILED, got %s", failedRecord.Status)
	}

	if txMgr.Transactions[0].Committed {
		t.Error("expected transaction to roll back")
	}
}

func TestTransferUseCase_CancelTransfer(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name        string
		transfer    *domain.Transfer
		requesterID string
		errorType   error
		compensated bool
	}{
		{
			name: "cancel pending transfer without compensation",
			transfer: &domain.Transfer{
				ID:         "tr-1",
				FromCardID: "card-1",
				ToCardID:   "card-2",
				Amount:     decimal.NewFromInt(100),
				Status:     domain.TransferStatusPending,
			},
			requesterID: "user-1",
		},
		{
			name: "cancel pending transfer with compensation",
			transfer: &domain.Transfer{
				ID:          "tr-1",
				FromCardID:  "card-1",
				ToCardID:    "card-2",
				Amount:      decimal.NewFromInt(100),
				Status:      domain.TransferStatusPending,
				ProcessedAt: &now,
			},
			requesterID: "user-1",
			compensated: true,
		},
		{
			name: "reject cancelling completed transfer",
			transfer: &domain.Transfer{
				ID:          "tr-1",
				FromCardID:  "card-1",
				ToCardID:    "card-2",
				Amount:      decimal.NewFromInt(100),
				Status:      domain.TransferStatusCompleted,
				ProcessedAt: &now,
			},
			requesterID: "user-1",
			errorType:   domain.ErrInvalidState,
		},
		{
			name: "reject cancelling cancelled transfer",
			transfer: &domain.Transfer{
				ID:         "tr-1",
				FromCardID: "card-1",
				ToCardID:   "card-2",
				Amount:     decimal.NewFromInt(100),
				Status:     domain.TransferStatusCancelled,
			},
			requesterID: "user-1",
			errorType:   domain.ErrInvalidState,
		},
		{
			name: "reject cancellation by non-participant",
			transfer: &domain.Transfer{
				ID:         "tr-1",
				FromCardID: "card-1",
				ToCardID:   "card-2",
				Amount:     decimal.NewFromInt(100),
				Status:     domain.TransferStatusPending,
			},
			requesterID: "user-9",
			errorType:   domain.ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cardRepo := mocks.NewFakeCardRepository()
			transferRepo := mocks.NewFakeTransferRepository()
			txMgr := mocks.NewFakeTransactionManager()

			cardRepo.Put(activeCard("card-1", "user-1", "400.00"))
			cardRepo.Put(activeCard("card-2", "user-1", "100.00"))
			transferRepo.Put(tt.transfer)

			uc := newTransferUseCase(cardRepo, transferRepo, txMgr)
			cancelled, err := uc.CancelTransfer(context.Background(), "tr-1", tt.requesterID)

			if tt.errorType != nil {
				if !errors.Is(err, tt.errorType) {
					t.Fatalf("expected error %v, got %v", tt.errorType, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cancelled.Status != domain.TransferStatusCancelled {
				t.Errorf("expected status CANCELLED, got %s", cancelled.Status)
			}

			from, _ := cardRepo.GetByID(context.Background(), "card-1")
			to, _ := cardRepo.GetByID(context.Background(), "card-2")

			if tt.compensated {
				if !from.Balance.Equal(decimal.RequireFromString("500.00")) {
					t.Errorf("expected source balance restored to 500.00, got %s", from.Balance)
				}
				if !to.Balance.Equal(decimal.RequireFromString("0.00")) {
					t.Errorf("expected destination balance back to 0.00, got %s", to.Balance)
				}
			} else {
				if !from.Balance.Equal(decimal.RequireFromString("400.00")) {
					t.Errorf("expected source balance untouched, got %s", from.Balance)
				}
			}
		})
	}
}

func TestTransferUseCase_CancelTransfer_CompensationNeverOverdraws(t *testing.T) {
	now := time.Now().UTC()

	cardRepo := mocks.NewFakeCardRepository()
	transferRepo := mocks.NewFakeTransferRepository()
	txMgr := mocks.NewFakeTransactionManager()

	// Destination already spent the funds down to 30.
	cardRepo.Put(activeCard("card-1", "user-1", "400.00"))
	cardRepo.Put(activeCard("card-2", "user-1", "30.00"))
	transferRepo.Put(&domain.Transfer{
		ID:          "tr-1",
		FromCardID:  "card-1",
		ToCardID:    "card-2",
		Amount:      decimal.NewFromInt(100),
		Status:      domain.TransferStatusPending,
		ProcessedAt: &now,
	})

	uc := newTransferUseCase(cardRepo, transferRepo, txMgr)

	_, err := uc.CancelTransfer(context.Background(), "tr-1", "user-1")
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	to, _ := cardRepo.GetByID(context.Background(), "card-2")
	if !to.Balance.Equal(decimal.RequireFromString("30.00")) {
		t.Errorf("expected destination balance unchanged, got %s", to.Balance)
	}

	stored := transferRepo.Get("tr-1")
	if stored.Status != domain.TransferStatusPending {
		t.Errorf("expected transfer to stay PENDING, got %s", stored.Status)
	}
}

func TestTransferUseCase_GetTransfer(t *testing.T) {
	cardRepo := mocks.NewFakeCardRepository()
	transferRepo := mocks.NewFakeTransferRepository()
	txMgr := mocks.NewFakeTransactionManager()

	cardRepo.Put(activeCard("card-1", "user-1", "100.00"))
	cardRepo.Put(activeCard("card-2", "user-1", "0"))
	transferRepo.Put(&domain.Transfer{
		ID:         "tr-1",
		FromCardID: "card-1",
		ToCardID:   "card-2",
		Amount:     decimal.NewFromInt(10),
		Status:     domain.TransferStatusCompleted,
	})

	uc := newTransferUseCase(cardRepo, transferRepo, txMgr)

	owner := &domain.User{ID: "user-1", Role: domain.RoleUser}
	if _, err := uc.GetTransfer(context.Background(), "tr-1", owner); err != nil {
		t.Errorf("owner should see own transfer: %v", err)
	}

	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin}
	if _, err := uc.GetTransfer(context.Background(), "tr-1", admin); err != nil {
		t.Errorf("admin should see any transfer: %v", err)
	}

	stranger := &domain.User{ID: "user-9", Role: domain.RoleUser}
	if _, err := uc.GetTransfer(context.Background(), "tr-1", stranger); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for non-participant, got %v", err)
	}

	if _, err := uc.GetTransfer(context.Background(), "tr-404", owner); !errors.Is(err, domain.ErrTransferNotFound) {
		t.Errorf("expected ErrTransferNotFound, got %v", err)
	}
}

func TestTransferUseCase_ListTransfers(t *testing.T) {
	cardRepo := mocks.NewFakeCardRepository()
	transferRepo := mocks.NewFakeTransferRepository()
	txMgr := mocks.NewFakeTransactionManager()

	for _, tr := range []*domain.Transfer{
		{ID: "tr-1", FromCardID: "card-1", ToCardID: "card-2", Status: domain.TransferStatusCompleted},
		{ID: "tr-2", FromCardID: "card-2", ToCardID: "card-1", Status: domain.TransferStatusFailed},
	} {
		transferRepo.Put(tr)
	}

	uc := newTransferUseCase(cardRepo, transferRepo, txMgr)

	page, err := uc.ListTransfers(context.Background(), usecase.ListTransfersInput{UserID: "user-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("expected total 2, got %d", page.Total)
	}
	if page.Limit != 20 {
		t.Errorf("expected default limit 20, got %d", page.Limit)
	}

	page, err = uc.ListTransfers(context.Background(), usecase.ListTransfersInput{
		UserID: "user-1",
		Status: domain.TransferStatusFailed,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("expected total 1 with status filter, got %d", page.Total)
	}
}
