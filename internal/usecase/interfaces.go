package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paylith/cardvault/internal/domain"
)

// CardRepository defines data access for cards.
type CardRepository interface {
	Create(ctx context.Context, card *domain.Card) error
	GetByID(ctx context.Context, id string) (*domain.Card, error)
	// GetByIDsForUpdate acquires row locks on the given cards. Callers must
	// pass ids in ascending order so concurrent transfers lock in the same
	// global order.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Card, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	UpdateStatus(ctx context.Context, id string, status domain.CardStatus, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string, filter CardFilter) ([]*domain.Card, error)
	ExpireActiveBefore(ctx context.Context, cutoff, updatedAt time.Time) (int64, error)
}

// CardFilter narrows card listings.
type CardFilter struct {
	Status domain.CardStatus // empty means any non-expired status
	Holder string            // substring match on holder name
	Limit  int
	Offset int
}

// TransferRepository defines data access for transfer records.
type TransferRepository interface {
	Create(ctx context.Context, tx Transaction, transfer *domain.Transfer) error
	// CreateFailed persists a FAILED record outside any caller transaction,
	// so the attempt is visible even after the executing transaction rolled
	// back.
	CreateFailed(ctx context.Context, transfer *domain.Transfer) error
	GetByID(ctx context.Context, id string) (*domain.Transfer, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Transfer, error)
	MarkCompleted(ctx context.Context, tx Transaction, id string, processedAt time.Time) error
	MarkCancelled(ctx context.Context, tx Transaction, id string) error
	ListByParticipant(ctx context.Context, userID string, status domain.TransferStatus, limit, offset int) ([]*domain.Transfer, error)
	CountByParticipant(ctx context.Context, userID string, status domain.TransferStatus) (int64, error)
	ListAll(ctx context.Context, limit, offset int) ([]*domain.Transfer, error)
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]*domain.User, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CardCipher encrypts and decrypts card numbers at rest.
type CardCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}
