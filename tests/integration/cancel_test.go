package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/paylith/cardvault/internal/domain"
	"github.com/paylith/cardvault/internal/infrastructure/postgres/generated"
	"github.com/paylith/cardvault/internal/usecase"
	"github.com/paylith/cardvault/tests/testutil"
)

// seedPendingTransfer inserts a transfer directly so cancellation paths can
// be exercised without racing the executor. When processed is true the card
// balances are written as if the debit and credit already happened.
func seedPendingTransfer(ctx context.Context, t *testing.T, db *testutil.TestDB, fromID, toID string, amount decimal.Decimal, processed bool) string {
	t.Helper()

	id := testutil.GenerateID()
	now := time.Now().UTC()

	var numericAmount pgtype.Numeric

	_ = numericAmount.Scan(amount.String())

	processedAt := pgtype.Timestamptz{}
	if processed {
		processedAt = pgtype.Timestamptz{Time: now, Valid: true}
	}

	_, err := db.Queries.CreateTransfer(ctx, generated.CreateTransferParams{
		ID:          id,
		FromCardID:  fromID,
		ToCardID:    toID,
		Amount:      numericAmount,
		Status:      string(domain.TransferStatusPending),
		CreatedAt:   pgtype.Timestamptz{Time: now, Valid: true},
		ProcessedAt: processedAt,
	})
	if err != nil {
		t.Fatalf("failed to seed transfer: %v", err)
	}

	return id
}

func TestTransferCancellation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	transferUC, cardRepo, transferRepo := newTransferUseCase(testDB)

	t.Run("cancelling an unexecuted pending transfer leaves balances alone", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		owner := testDB.CreateTestUser(ctx, "owner@example.com", domain.RoleUser)
		from := testDB.CreateTestCard(ctx, owner.ID, decimal.NewFromInt(500))
		to := testDB.CreateTestCard(ctx, owner.ID, decimal.NewFromInt(100))
		transferID := seedPendingTransfer(ctx, t, testDB, from.ID, to.ID, decimal.NewFromInt(100), false)

		cancelled, err := transferUC.CancelTransfer(ctx, transferID, owner.ID)
		if err != nil {
			t.Fatalf("CancelTransfer failed: %v", err)
		}
		if cancelled.Status != domain.TransferStatusCancelled {
			t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
		}

		fromCard, _ := cardRepo.GetByID(ctx, from.ID)
		toCard, _ := cardRepo.GetByID(ctx, to.ID)
		if !fromCard.Balance.Equal(decimal.NewFromInt(500)) || !toCard.Balance.Equal(decimal.NewFromInt(100)) {
			t.Errorf("expected balances untouched, got %s and %s", fromCard.Balance, toCard.Balance)
		}
	})

	t.Run("cancelling an executed pending transfer reverses the movement", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		// Balances reflect an already executed 100 transfer from a 500 card.
		owner := testDB.CreateTestUser(ctx, "owner@example.com", domain.RoleUser)
		from := testDB.CreateTestCard(ctx, owner.ID, decimal.NewFromInt(400))
		to := testDB.CreateTestCard(ctx, owner.ID, decimal.NewFromInt(100))
		transferID := seedPendingTransfer(ctx, t, testDB, from.ID, to.ID, decimal.NewFromInt(100), true)

		cancelled, err := transferUC.CancelTransfer(ctx, transferID, owner.ID)
		if err != nil {
			t.Fatalf("CancelTransfer failed: %v", err)
		}
		if cancelled.Status != domain.TransferStatusCancelled {
			t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
		}

		fromCard, _ := cardRepo.GetByID(ctx, from.ID)
		toCard, _ := cardRepo.GetByID(ctx, to.ID)
		if !fromCard.Balance.Equal(decimal.NewFromInt(500)) {
			t.Errorf("expected source restored to 500, got %s", fromCard.Balance)
		}
		if !toCard.Balance.Equal(decimal.Zero) {
			t.Errorf("expected destination back to 0, got %s", toCard.Balance)
		}
	})

	t.Run("compensation never drives the destination negative", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		owner := testDB.CreateTestUser(ctx, "owner@example.com", domain.RoleUser)
		from := testDB.CreateTestCard(ctx, owner.ID, decimal.NewFromInt(400))
		// Destination already spent most of the credited funds.
		to := testDB.CreateTestCard(ctx, owner.ID, decimal.NewFromInt(30))
		transferID := seedPendingTransfer(ctx, t, testDB, from.ID, to.ID, decimal.NewFromInt(100), true)

		_, err := transferUC.CancelTransfer(ctx, transferID, owner.ID)
		if !errors.Is(err, domain.ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance, got %v", err)
		}

		stored, err := transferRepo.GetByID(ctx, transferID)
		if err != nil {
			t.Fatalf("failed to reload transfer: %v", err)
		}
		if stored.Status != domain.TransferStatusPending {
			t.Errorf("expected transfer to stay PENDING, got %s", stored.Status)
		}

		toCard, _ := cardRepo.GetByID(ctx, to.ID)
		if toCard.Balance.IsNegative() {
			t.Errorf("destination balance went negative: %s", toCard.Balance)
		}
	})

	t.Run("completed transfers are not cancellable", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		owner := testDB.CreateTestUser(ctx, "owner@example.com", domain.RoleUser)
		from := testDB.CreateTestCard(ctx, owner.ID, decimal.NewFromInt(500))
		to := testDB.CreateTestCard(ctx, owner.ID, decimal.Zero)

		transfer, err := transferUC.CreateTransfer(ctx, usecase.CreateTransferInput{
			FromCardID: from.ID,
			ToCardID:   to.ID,
			Amount:     decimal.NewFromInt(100),
		}, owner.ID)
		if err != nil {
			t.Fatalf("CreateTransfer failed: %v", err)
		}

		_, err = transferUC.CancelTransfer(ctx, transfer.ID, owner.ID)
		if !errors.Is(err, domain.ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("strangers cannot cancel a transfer", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		owner := testDB.CreateTestUser(ctx, "owner@example.com", domain.RoleUser)
		stranger := testDB.CreateTestUser(ctx, "stranger@example.com", domain.RoleUser)
		from := testDB.CreateTestCard(ctx, owner.ID, decimal.NewFromInt(500))
		to := testDB.CreateTestCard(ctx, owner.ID, decimal.Zero)
		transferID := seedPendingTransfer(ctx, t, testDB, from.ID, to.ID, decimal.NewFromInt(100), false)

		_, err := transferUC.CancelTransfer(ctx, transferID, stranger.ID)
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}
