package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/paylith/cardvault/internal/domain"
	"github.com/paylith/cardvault/internal/infrastructure/postgres/generated"
	"github.com/paylith/cardvault/internal/usecase"
)

// CardRepository implements usecase.CardRepository.
type CardRepository struct {
	pool    *pgxpool.Pool
	queries *generated.Queries
}

// NewCardRepository creates a new CardRepository.
func NewCardRepository(pool *pgxpool.Pool) *CardRepository {
	return &CardRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Create creates a new card.
func (r *CardRepository) Create(ctx context.Context, card *domain.Card) error {
	_, err := r.queries.CreateCard(ctx, generated.CreateCardParams{
		ID:              card.ID,
		UserID:          card.UserID,
		NumberEncrypted: card.NumberEncrypted,
		HolderName:      card.HolderName,
		Status:          string(card.Status),
		Balance:         decimalToNumeric(card.Balance),
		ExpiryDate:      timeToPgTimestamptz(card.ExpiryDate),
		CreatedAt:       timeToPgTimestamptz(card.CreatedAt),
		UpdatedAt:       timeToPgTimestamptz(card.UpdatedAt),
	})

	return err
}

// GetByID retrieves a card by ID.
func (r *CardRepository) GetByID(ctx context.Context, id string) (*domain.Card, error) {
	row, err := r.queries.GetCardByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCardNotFound
		}

		return nil, err
	}

	return rowToCard(row), nil
}

// GetByIDsForUpdate retrieves multiple cards by IDs with FOR UPDATE locks.
// Rows are locked in ascending id order regardless of input order.
func (r *CardRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Card, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	rows, err := queries.GetCardsByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}

	cards := make([]*domain.Card, 0, len(rows))
	for _, row := range rows {
		cards = append(cards, rowToCard(row))
	}

	return cards, nil
}

// UpdateBalance updates the balance of a card.
func (r *CardRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	return queries.UpdateCardBalance(ctx, generated.UpdateCardBalanceParams{
		ID:        id,
		Balance:   decimalToNumeric(balance),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
}

// UpdateStatus updates the status of a card.
func (r *CardRepository) UpdateStatus(ctx context.Context, id string, status domain.CardStatus, updatedAt time.Time) error {
	return r.queries.UpdateCardStatus(ctx, generated.UpdateCardStatusParams{
		ID:        id,
		Status:    string(status),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
}

// Delete removes a card.
func (r *CardRepository) Delete(ctx context.Context, id string) error {
	if err := r.queries.DeleteCard(ctx, id); err != nil {
		// Transfers reference cards; the row outlives the card request.
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: card has transfer history", domain.ErrInvalidState)
		}

		return err
	}

	return nil
}

// ListByUser lists a user's cards with filtering and pagination.
func (r *CardRepository) ListByUser(ctx context.Context, userID string, filter usecase.CardFilter) ([]*domain.Card, error) {
	rows, err := r.queries.ListCardsByUser(ctx, generated.ListCardsByUserParams{
		UserID:  userID,
		Column2: string(filter.Status),
		Column3: filter.Holder,
		Limit:   int32(filter.Limit),
		Offset:  int32(filter.Offset),
	})
	if err != nil {
		return nil, err
	}

	cards := make([]*domain.Card, 0, len(rows))
	for _, row := range rows {
		cards = append(cards, rowToCard(row))
	}

	return cards, nil
}

// ExpireActiveBefore marks ACTIVE cards whose expiry date is before cutoff
// as EXPIRED and returns the number of rows updated.
func (r *CardRepository) ExpireActiveBefore(ctx context.Context, cutoff, updatedAt time.Time) (int64, error) {
	return r.queries.ExpireActiveCards(ctx, generated.ExpireActiveCardsParams{
		ExpiryDate: timeToPgTimestamptz(cutoff),
		UpdatedAt:  timeToPgTimestamptz(updatedAt),
	})
}

func rowToCard(row generated.Card) *domain.Card {
	return &domain.Card{
		ID:              row.ID,
		UserID:          row.UserID,
		NumberEncrypted: row.NumberEncrypted,
		HolderName:      row.HolderName,
		Status:          domain.CardStatus(row.Status),
		Balance:         numericToDecimal(row.Balance),
		ExpiryDate:      row.ExpiryDate.Time,
		CreatedAt:       row.CreatedAt.Time,
		UpdatedAt:       row.UpdatedAt.Time,
	}
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
