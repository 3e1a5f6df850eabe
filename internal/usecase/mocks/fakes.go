package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paylith/cardvault/internal/domain"
	"github.com/paylith/cardvault/internal/usecase"
)

// FakeCardRepository is an in-memory fake implementation of CardRepository backed by an
// in-memory map. Individual methods can be overridden via the *Func fields.
type FakeCardRepository struct {
	mu    sync.RWMutex
	cards map[string]*domain.Card

	CreateFunc             func(ctx context.Context, card *domain.Card) error
	GetByIDFunc            func(ctx context.Context, id string) (*domain.Card, error)
	GetByIDsForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Card, error)
	UpdateBalanceFunc      func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	UpdateStatusFunc       func(ctx context.Context, id string, status domain.CardStatus, updatedAt time.Time) error
	DeleteFunc             func(ctx context.Context, id string) error
	ListByUserFunc         func(ctx context.Context, userID string, filter usecase.CardFilter) ([]*domain.Card, error)
	ExpireActiveBeforeFunc func(ctx context.Context, cutoff, updatedAt time.Time) (int64, error)
}

func NewFakeCardRepository() *FakeCardRepository {
	return &FakeCardRepository{
		cards: make(map[string]*domain.Card),
	}
}

// Put seeds the in-memory store.
func (m *FakeCardRepository) Put(card *domain.Card) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cards[card.ID] = card
}

func (m *FakeCardRepository) Create(ctx context.Context, card *domain.Card) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, card)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cards[card.ID] = card
	return nil
}

func (m *FakeCardRepository) GetByID(ctx context.Context, id string) (*domain.Card, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if card, ok := m.cards[id]; ok {
		return card, nil
	}
	return nil, domain.ErrCardNotFound
}

func (m *FakeCardRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Card, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var cards []*domain.Card
	for _, id := range ids {
		if card, ok := m.cards[id]; ok {
			cards = append(cards, card)
		}
	}
	return cards, nil
}

func (m *FakeCardRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if card, ok := m.cards[id]; ok {
		card.Balance = balance
		card.UpdatedAt = updatedAt
	}
	return nil
}

func (m *FakeCardRepository) UpdateStatus(ctx context.Context, id string, status domain.CardStatus, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if card, ok := m.cards[id]; ok {
		card.Status = status
		card.UpdatedAt = updatedAt
	}
	return nil
}

func (m *FakeCardRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cards, id)
	return nil
}

func (m *FakeCardRepository) ListByUser(ctx context.Context, userID string, filter usecase.CardFilter) ([]*domain.Card, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var cards []*domain.Card
	for _, card := range m.cards {
		if card.UserID != userID {
			continue
		}
		if filter.Status != "" && card.Status != filter.Status {
			continue
		}
		if filter.Status == "" && card.Status == domain.CardStatusExpired {
			continue
		}
		cards = append(cards, card)
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
	return cards, nil
}

func (m *FakeCardRepository) ExpireActiveBefore(ctx context.Context, cutoff, updatedAt time.Time) (int64, error) {
	if m.ExpireActiveBeforeFunc != nil {
		return m.ExpireActiveBeforeFunc(ctx, cutoff, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, card := range m.cards {
		if card.Status == domain.CardStatusActive && card.ExpiryDate.Before(cutoff) {
			card.Status = domain.CardStatusExpired
			card.UpdatedAt = updatedAt
			n++
		}
	}
	return n, nil
}

// FakeTransferRepository is an in-memory fake implementation of TransferRepository.
type FakeTransferRepository struct {
	mu        sync.RWMutex
	transfers map[string]*domain.Transfer

	CreateFunc        func(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error
	CreateFailedFunc  func(ctx context.Context, transfer *domain.Transfer) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Transfer, error)
	MarkCompletedFunc func(ctx context.Context, tx usecase.Transaction, id string, processedAt time.Time) error
	MarkCancelledFunc func(ctx context.Context, tx usecase.Transaction, id string) error
}

func NewFakeTransferRepository() *FakeTransferRepository {
	return &FakeTransferRepository{
		transfers: make(map[string]*domain.Transfer),
	}
}

// Put seeds the in-memory store.
func (m *FakeTransferRepository) Put(transfer *domain.Transfer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers[transfer.ID] = transfer
}

func (m *FakeTransferRepository) Create(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, transfer)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *transfer
	m.transfers[transfer.ID] = &copied
	return nil
}

func (m *FakeTransferRepository) CreateFailed(ctx context.Context, transfer *domain.Transfer) error {
	if m.CreateFailedFunc != nil {
		return m.CreateFailedFunc(ctx, transfer)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *transfer
	m.transfers[transfer.ID] = &copied
	return nil
}

func (m *FakeTransferRepository) GetByID(ctx context.Context, id string) (*domain.Transfer, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if transfer, ok := m.transfers[id]; ok {
		return transfer, nil
	}
	return nil, domain.ErrTransferNotFound
}

func (m *FakeTransferRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transfer, error) {
	return m.GetByID(ctx, id)
}

func (m *FakeTransferRepository) MarkCompleted(ctx context.Context, tx usecase.Transaction, id string, processedAt time.Time) error {
	if m.MarkCompletedFunc != nil {
		return m.MarkCompletedFunc(ctx, tx, id, processedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if transfer, ok := m.transfers[id]; ok {
		transfer.Status = domain.TransferStatusCompleted
		transfer.ProcessedAt = &processedAt
	}
	return nil
}

func (m *FakeTransferRepository) MarkCancelled(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.MarkCancelledFunc != nil {
		return m.MarkCancelledFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if transfer, ok := m.transfers[id]; ok {
		transfer.Status = domain.TransferStatusCancelled
	}
	return nil
}

func (m *FakeTransferRepository) ListByParticipant(ctx context.Context, userID string, status domain.TransferStatus, limit, offset int) ([]*domain.Transfer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var transfers []*domain.Transfer
	for _, transfer := range m.transfers {
		if status != "" && transfer.Status != status {
			continue
		}
		transfers = append(transfers, transfer)
	}
	sort.Slice(transfers, func(i, j int) bool { return transfers[i].ID < transfers[j].ID })
	return transfers, nil
}

func (m *FakeTransferRepository) CountByParticipant(ctx context.Context, userID string, status domain.TransferStatus) (int64, error) {
	transfers, _ := m.ListByParticipant(ctx, userID, status, 0, 0)
	return int64(len(transfers)), nil
}

func (m *FakeTransferRepository) ListAll(ctx context.Context, limit, offset int) ([]*domain.Transfer, error) {
	return m.ListByParticipant(ctx, "", "", limit, offset)
}

// Get returns the stored transfer, for assertions.
func (m *FakeTransferRepository) Get(id string) *domain.Transfer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.transfers[id]
}

// FakeUserRepository is an in-memory fake implementation of UserRepository.
type FakeUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	GetByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
}

func NewFakeUserRepository() *FakeUserRepository {
	return &FakeUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *FakeUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *FakeUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *FakeUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *FakeUserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var users []*domain.User
	for _, user := range m.users {
		users = append(users, user)
	}
	return users, nil
}

// FakeTransaction is a no-op transaction that records commits and rollbacks.
type FakeTransaction struct {
	Committed  bool
	RolledBack bool

	CommitFunc func(ctx context.Context) error
}

func (t *FakeTransaction) Commit(ctx context.Context) error {
	if t.CommitFunc != nil {
		return t.CommitFunc(ctx)
	}
	t.Committed = true
	return nil
}

func (t *FakeTransaction) Rollback(ctx context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// FakeTransactionManager is an in-memory fake implementation of TransactionManager.
type FakeTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	mu           sync.Mutex
	Transactions []*FakeTransaction
}

func NewFakeTransactionManager() *FakeTransactionManager {
	return &FakeTransactionManager{}
}

func (m *FakeTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	tx := &FakeTransaction{}
	m.mu.Lock()
	m.Transactions = append(m.Transactions, tx)
	m.mu.Unlock()
	return tx, nil
}

// PassthroughRetrier runs the operation exactly once.
type PassthroughRetrier struct{}

func NewPassthroughRetrier() *PassthroughRetrier {
	return &PassthroughRetrier{}
}

func (r *PassthroughRetrier) Retry(ctx context.Context, operation func() error) error {
	return operation()
}

// FakeIDGenerator generates sequential test IDs.
type FakeIDGenerator struct {
	mu   sync.Mutex
	next int

	GenerateFunc func() string
}

func NewFakeIDGenerator() *FakeIDGenerator {
	return &FakeIDGenerator{}
}

func (g *FakeIDGenerator) Generate() string {
	if g.GenerateFunc != nil {
		return g.GenerateFunc()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("test-id-%03d", g.next)
}

// FakeCache is an in-memory Cache.
type FakeCache struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewFakeCache() *FakeCache {
	return &FakeCache{items: make(map[string]string)}
}

func (c *FakeCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.items[key], nil
}

func (c *FakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *FakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

// PlainCipher is a CardCipher that stores numbers unmodified, for tests.
type PlainCipher struct{}

func (PlainCipher) Encrypt(plaintext string) (string, error) { return plaintext, nil }

func (PlainCipher) Decrypt(ciphertext string) (string, error) { return ciphertext, nil }
