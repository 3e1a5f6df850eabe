package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paylith/cardvault/internal/domain"
	"github.com/paylith/cardvault/internal/infrastructure/metrics"
)

const maskedNumberCachePrefix = "card:mask:"

// CardUseCase handles card lifecycle and balance administration.
type CardUseCase struct {
	txManager TransactionManager
	cardRepo  CardRepository
	userRepo  UserRepository
	cipher    CardCipher
	cache     Cache
	idGen     IDGenerator
	metrics   *metrics.Metrics
}

// NewCardUseCase creates a new CardUseCase.
func NewCardUseCase(
	txManager TransactionManager,
	cardRepo CardRepository,
	userRepo UserRepository,
	cipher CardCipher,
	cache Cache,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *CardUseCase {
	return &CardUseCase{
		txManager: txManager,
		cardRepo:  cardRepo,
		userRepo:  userRepo,
		cipher:    cipher,
		cache:     cache,
		idGen:     idGen,
		metrics:   metrics,
	}
}

// CardView is a card together with its displayable masked number. The
// plaintext number never leaves the use case layer.
type CardView struct {
	Card         *domain.Card
	MaskedNumber string
}

// IssueCardInput represents input for issuing a card.
type IssueCardInput struct {
	OwnerID        string
	HolderName     string
	ExpiryDate     time.Time
	InitialBalance decimal.Decimal
}

// IssueCard issues a new card to a user. Admin only, enforced at the
// transport layer.
func (uc *CardUseCase) IssueCard(ctx context.Context, input IssueCardInput) (*CardView, error) {
	if err := domain.ValidateHolderName(input.HolderName); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	if err := domain.ValidateExpiry(input.ExpiryDate, now); err != nil {
		return nil, err
	}

	if input.InitialBalance.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	// The owner must exist; card ownership is a foreign-key reference.
	if _, err := uc.userRepo.GetByID(ctx, input.OwnerID); err != nil {
		return nil, err
	}

	number, err := domain.GenerateCardNumber()
	if err != nil {
		return nil, err
	}

	encrypted, err := uc.cipher.Encrypt(number)
	if err != nil {
		return nil, err
	}

	card := &domain.Card{
		ID:              uc.idGen.Generate(),
		UserID:          input.OwnerID,
		NumberEncrypted: encrypted,
		HolderName:      input.HolderName,
		Status:          domain.CardStatusActive,
		Balance:         input.InitialBalance,
		ExpiryDate:      input.ExpiryDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := uc.cardRepo.Create(ctx, card); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.CardsIssued.Inc()
	}

	return &CardView{Card: card, MaskedNumber: domain.MaskCardNumber(number)}, nil
}

// GetCard retrieves a card. Owners see their own cards; admins see any.
func (uc *CardUseCase) GetCard(ctx context.Context, cardID string, requester *domain.User) (*CardView, error) {
	card, err := uc.cardRepo.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if card.UserID != requester.ID && !requester.Role.CanViewAll() {
		return nil, domain.ErrUnauthorized
	}

	masked, err := uc.maskedNumber(ctx, card)
	if err != nil {
		return nil, err
	}

	return &CardView{Card: card, MaskedNumber: masked}, nil
}

// ListCardsInput represents input for listing a user's cards.
type ListCardsInput struct {
	OwnerID string
	Status  domain.CardStatus
	Holder  string
	Limit   int
	Offset  int
}

// ListCards lists a user's cards. Expired cards are hidden unless the
// EXPIRED status is requested explicitly.
func (uc *CardUseCase) ListCards(ctx context.Context, input ListCardsInput) ([]*CardView, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	cards, err := uc.cardRepo.ListByUser(ctx, input.OwnerID, CardFilter{
		Status: input.Status,
		Holder: input.Holder,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}

	views := make([]*CardView, 0, len(cards))
	for _, card := range cards {
		masked, err := uc.maskedNumber(ctx, card)
		if err != nil {
			return nil, err
		}
		views = append(views, &CardView{Card: card, MaskedNumber: masked})
	}

	return views, nil
}

// UpdateCardStatus blocks, unblocks or expires a card. Admin only, enforced
// at the transport layer.
func (uc *CardUseCase) UpdateCardStatus(ctx context.Context, cardID string, status domain.CardStatus) (*CardView, error) {
	if !status.IsValid() {
		return nil, domain.ErrInvalidCardStatus
	}

	card, err := uc.cardRepo.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := uc.cardRepo.UpdateStatus(ctx, cardID, status, now); err != nil {
		return nil, err
	}

	card.Status = status
	card.UpdatedAt = now

	uc.recordOperation("status_update")

	masked, err := uc.maskedNumber(ctx, card)
	if err != nil {
		return nil, err
	}

	return &CardView{Card: card, MaskedNumber: masked}, nil
}

// DeleteCard removes a card. Admin only, enforced at the transport layer.
func (uc *CardUseCase) DeleteCard(ctx context.Context, cardID string) error {
	if _, err := uc.cardRepo.GetByID(ctx, cardID); err != nil {
		return err
	}

	if err := uc.cardRepo.Delete(ctx, cardID); err != nil {
		return err
	}

	if err := uc.cache.Delete(ctx, maskedNumberCachePrefix+cardID); err != nil {
		slog.Warn("failed to evict masked number cache", "card_id", cardID, "error", err)
	}

	uc.recordOperation("delete")

	return nil
}

// TopUp adds funds to a card outside of a transfer. Admin only, enforced at
// the transport layer. Uses the same row-lock discipline as transfers so a
// top-up never races a concurrent debit.
func (uc *CardUseCase) TopUp(ctx context.Context, cardID string, amount decimal.Decimal) (*CardView, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cards, err := uc.cardRepo.GetByIDsForUpdate(ctx, tx, []string{cardID})
	if err != nil {
		return nil, err
	}

	if len(cards) != 1 {
		return nil, domain.ErrCardNotFound
	}

	card := cards[0]
	now := time.Now().UTC()
	newBalance := card.ApplyCredit(amount)

	if err := uc.cardRepo.UpdateBalance(ctx, tx, card.ID, newBalance, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	card.Balance = newBalance
	card.UpdatedAt = now

	uc.recordOperation("topup")

	masked, err := uc.maskedNumber(ctx, card)
	if err != nil {
		return nil, err
	}

	return &CardView{Card: card, MaskedNumber: masked}, nil
}

// ExpireSweep marks ACTIVE cards past their expiry date as EXPIRED and
// returns how many were updated.
func (uc *CardUseCase) ExpireSweep(ctx context.Context) (int64, error) {
	now := time.Now().UTC()

	count, err := uc.cardRepo.ExpireActiveBefore(ctx, now, now)
	if err != nil {
		return 0, err
	}

	if uc.metrics != nil {
		uc.metrics.CardsExpired.Add(float64(count))
	}

	return count, nil
}

func (uc *CardUseCase) recordOperation(operation string) {
	if uc.metrics == nil {
		return
	}

	uc.metrics.CardOperations.WithLabelValues(operation).Inc()
}

// maskedNumber returns the displayable masked number for a card, reading
// through the cache. Cache failures fall back to decryption.
func (uc *CardUseCase) maskedNumber(ctx context.Context, card *domain.Card) (string, error) {
	key := maskedNumberCachePrefix + card.ID

	if cached, err := uc.cache.Get(ctx, key); err == nil && cached != "" {
		return cached, nil
	}

	number, err := uc.cipher.Decrypt(card.NumberEncrypted)
	if err != nil {
		return "", err
	}

	masked := domain.MaskCardNumber(number)

	if err := uc.cache.Set(ctx, key, masked, MaskedNumberCacheTTL); err != nil {
		slog.Warn("failed to cache masked number", "card_id", card.ID, "error", err)
	}

	return masked, nil
}
