package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paylith/cardvault/internal/domain"
	"github.com/paylith/cardvault/internal/infrastructure/postgres/generated"
	"github.com/paylith/cardvault/internal/usecase"
)

// TransferRepository implements usecase.TransferRepository.
type TransferRepository struct {
	pool    *pgxpool.Pool
	queries *generated.Queries
}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(pool *pgxpool.Pool) *TransferRepository {
	return &TransferRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Create creates a new transfer record inside the given transaction.
func (r *TransferRepository) Create(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	_, err := queries.CreateTransfer(ctx, createTransferParams(transfer))

	return err
}

// CreateFailed persists a FAILED record on the pool, outside any caller
// transaction, so the attempt survives the executing transaction's rollback.
func (r *TransferRepository) CreateFailed(ctx context.Context, transfer *domain.Transfer) error {
	_, err := r.queries.CreateTransfer(ctx, createTransferParams(transfer))

	return err
}

// GetByID retrieves a transfer by ID.
func (r *TransferRepository) GetByID(ctx context.Context, id string) (*domain.Transfer, error) {
	row, err := r.queries.GetTransferByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransferNotFound
		}

		return nil, err
	}

	return rowToTransfer(row), nil
}

// GetByIDForUpdate retrieves a transfer by ID with a FOR UPDATE lock.
func (r *TransferRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transfer, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	row, err := queries.GetTransferByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransferNotFound
		}

		return nil, err
	}

	return rowToTransfer(row), nil
}

// MarkCompleted sets a transfer to COMPLETED with the given processed time.
func (r *TransferRepository) MarkCompleted(ctx context.Context, tx usecase.Transaction, id string, processedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	return queries.UpdateTransferCompleted(ctx, generated.UpdateTransferCompletedParams{
		ID:          id,
		ProcessedAt: timeToPgTimestamptz(processedAt),
	})
}

// MarkCancelled sets a transfer to CANCELLED.
func (r *TransferRepository) MarkCancelled(ctx context.Context, tx usecase.Transaction, id string) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	return queries.UpdateTransferCancelled(ctx, id)
}

// ListByParticipant lists transfers where the user owns either endpoint
// card, optionally filtered by status.
func (r *TransferRepository) ListByParticipant(ctx context.Context, userID string, status domain.TransferStatus, limit, offset int) ([]*domain.Transfer, error) {
	rows, err := r.queries.ListTransfersByParticipant(ctx, generated.ListTransfersByParticipantParams{
		UserID:  userID,
		Column2: string(status),
		Limit:   int32(limit),
		Offset:  int32(offset),
	})
	if err != nil {
		return nil, err
	}

	transfers := make([]*domain.Transfer, 0, len(rows))
	for _, row := range rows {
		transfers = append(transfers, rowToTransfer(row))
	}

	return transfers, nil
}

// CountByParticipant counts transfers where the user owns either endpoint
// card, optionally filtered by status.
func (r *TransferRepository) CountByParticipant(ctx context.Context, userID string, status domain.TransferStatus) (int64, error) {
	return r.queries.CountTransfersByParticipant(ctx, generated.CountTransfersByParticipantParams{
		UserID:  userID,
		Column2: string(status),
	})
}

// ListAll lists transfers across all users with pagination.
func (r *TransferRepository) ListAll(ctx context.Context, limit, offset int) ([]*domain.Transfer, error) {
	rows, err := r.queries.ListTransfers(ctx, generated.ListTransfersParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	transfers := make([]*domain.Transfer, 0, len(rows))
	for _, row := range rows {
		transfers = append(transfers, rowToTransfer(row))
	}

	return transfers, nil
}

func createTransferParams(transfer *domain.Transfer) generated.CreateTransferParams {
	var processedAt pgtype.Timestamptz
	if transfer.ProcessedAt != nil {
		processedAt = timeToPgTimestamptz(*transfer.ProcessedAt)
	}

	return generated.CreateTransferParams{
		ID:          transfer.ID,
		FromCardID:  transfer.FromCardID,
		ToCardID:    transfer.ToCardID,
		Amount:      decimalToNumeric(transfer.Amount),
		Status:      string(transfer.Status),
		CreatedAt:   timeToPgTimestamptz(transfer.CreatedAt),
		ProcessedAt: processedAt,
	}
}

func rowToTransfer(row generated.Transfer) *domain.Transfer {
	transfer := &domain.Transfer{
		ID:         row.ID,
		FromCardID: row.FromCardID,
		ToCardID:   row.ToCardID,
		Amount:     numericToDecimal(row.Amount),
		Status:     domain.TransferStatus(row.Status),
		CreatedAt:  row.CreatedAt.Time,
	}

	if row.ProcessedAt.Valid {
		processedAt := row.ProcessedAt.Time
		transfer.ProcessedAt = &processedAt
	}

	return transfer
}
