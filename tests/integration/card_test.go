package integration

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/paylith/cardvault/internal/adapter/repository/postgres"
	redisRepo "github.com/paylith/cardvault/internal/adapter/repository/redis"
	"github.com/paylith/cardvault/internal/domain"
	"github.com/paylith/cardvault/internal/infrastructure/crypto"
	"github.com/paylith/cardvault/internal/usecase"
	"github.com/paylith/cardvault/tests/testutil"
)

func newCardUseCase(t *testing.T, db *testutil.TestDB) (*usecase.CardUseCase, *postgres.CardRepository) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cipher, err := crypto.NewAESCardCipher("0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatalf("failed to create cipher: %v", err)
	}

	cardRepo := postgres.NewCardRepository(db.Pool)
	userRepo := postgres.NewUserRepository(db.Pool)
	txManager := postgres.NewTxManager(db.Pool)
	idGen := postgres.NewULIDGenerator()

	uc := usecase.NewCardUseCase(txManager, cardRepo, userRepo, cipher, redisRepo.NewCache(client), idGen, nil)
	return uc, cardRepo
}

func TestCardLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	cardUC, cardRepo := newCardUseCase(t, testDB)

	t.Run("issued card stores only ciphertext", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		owner := testDB.CreateTestUser(ctx, "owner@example.com", domain.RoleUser)

		view, err := cardUC.IssueCard(ctx, usecase.IssueCardInput{
			OwnerID:        owner.ID,
			HolderName:     "ALICE EXAMPLE",
			ExpiryDate:     time.Now().AddDate(3, 0, 0),
			InitialBalance: decimal.NewFromInt(250),
		})
		if err != nil {
			t.Fatalf("IssueCard failed: %v", err)
		}

		if !strings.HasPrefix(view.MaskedNumber, "**** **** **** ") {
			t.Errorf("expected masked number, got %s", view.MaskedNumber)
		}

		stored, err := cardRepo.GetByID(ctx, view.Card.ID)
		if err != nil {
			t.Fatalf("failed to reload card: %v", err)
		}
		if stored.NumberEncrypted == "" {
			t.Error("expected ciphertext to be stored")
		}
		if len(stored.NumberEncrypted) == 16 && !strings.ContainsAny(stored.NumberEncrypted, "=+/") {
			t.Errorf("stored number does not look encrypted: %s", stored.NumberEncrypted)
		}
		if !stored.Balance.Equal(decimal.NewFromInt(250)) {
			t.Errorf("expected balance 250, got %s", stored.Balance)
		}
	})

	t.Run("top up adds funds", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		owner := testDB.CreateTestUser(ctx, "owner@example.com", domain.RoleUser)
		card := testDB.CreateTestCard(ctx, owner.ID, decimal.RequireFromString("10.50"))

		view, err := cardUC.TopUp(ctx, card.ID, decimal.RequireFromString("89.50"))
		if err != nil {
			t.Fatalf("TopUp failed: %v", err)
		}
		if !view.Card.Balance.Equal(decimal.NewFromInt(100)) {
			t.Errorf("expected balance 100, got %s", view.Card.Balance)
		}
	})

	t.Run("expire sweep only touches overdue active cards", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		owner := testDB.CreateTestUser(ctx, "owner@example.com", domain.RoleUser)
		fresh := testDB.CreateTestCard(ctx, owner.ID, decimal.Zero)
		blocked := testDB.CreateTestCardWithStatus(ctx, owner.ID, domain.CardStatusBlocked, decimal.Zero)
		overdue := testDB.CreateTestCard(ctx, owner.ID, decimal.Zero)

		_, err := testDB.Pool.Exec(ctx,
			"UPDATE cards SET expiry_date = $1 WHERE id = $2",
			time.Now().AddDate(0, -1, 0), overdue.ID)
		if err != nil {
			t.Fatalf("failed to age card: %v", err)
		}

		expired, err := cardUC.ExpireSweep(ctx)
		if err != nil {
			t.Fatalf("ExpireSweep failed: %v", err)
		}
		if expired != 1 {
			t.Errorf("expected 1 expired card, got %d", expired)
		}

		overdueCard, _ := cardRepo.GetByID(ctx, overdue.ID)
		if overdueCard.Status != domain.CardStatusExpired {
			t.Errorf("expected overdue card EXPIRED, got %s", overdueCard.Status)
		}

		freshCard, _ := cardRepo.GetByID(ctx, fresh.ID)
		if freshCard.Status != domain.CardStatusActive {
			t.Errorf("expected fresh card untouched, got %s", freshCard.Status)
		}

		blockedCard, _ := cardRepo.GetByID(ctx, blocked.ID)
		if blockedCard.Status != domain.CardStatusBlocked {
			t.Errorf("expected blocked card untouched, got %s", blockedCard.Status)
		}
	})

	t.Run("deleted card no longer resolves", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		owner := testDB.CreateTestUser(ctx, "owner@example.com", domain.RoleUser)
		card := testDB.CreateTestCard(ctx, owner.ID, decimal.Zero)

		if err := cardUC.DeleteCard(ctx, card.ID); err != nil {
			t.Fatalf("DeleteCard failed: %v", err)
		}

		_, err := cardRepo.GetByID(ctx, card.ID)
		if !errors.Is(err, domain.ErrCardNotFound) {
			t.Fatalf("expected ErrCardNotFound, got %v", err)
		}
	})

	t.Run("card with transfer history cannot be deleted", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		owner := testDB.CreateTestUser(ctx, "owner@example.com", domain.RoleUser)
		from := testDB.CreateTestCard(ctx, owner.ID, decimal.NewFromInt(100))
		to := testDB.CreateTestCard(ctx, owner.ID, decimal.Zero)

		seedTransferAt(ctx, t, testDB, testutil.GenerateID(), from.ID, to.ID, decimal.NewFromInt(10), time.Now().UTC())

		err := cardUC.DeleteCard(ctx, from.ID)
		if !errors.Is(err, domain.ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}

		if _, err := cardRepo.GetByID(ctx, from.ID); err != nil {
			t.Fatalf("card should survive the failed delete: %v", err)
		}
	})
}
