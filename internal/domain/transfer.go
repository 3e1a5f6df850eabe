package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus represents the state of a transfer.
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusCompleted TransferStatus = "COMPLETED"
	TransferStatusFailed    TransferStatus = "FAILED"
	TransferStatusCancelled TransferStatus = "CANCELLED"
)

var validTransferStatuses = map[TransferStatus]bool{
	TransferStatusPending:   true,
	TransferStatusCompleted: true,
	TransferStatusFailed:    true,
	TransferStatusCancelled: true,
}

// IsValid checks if the status is a known transfer status.
func (s TransferStatus) IsValid() bool {
	return validTransferStatuses[s]
}

// IsTerminal reports whether no further transition is allowed from the status.
func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusCompleted || s == TransferStatusFailed || s == TransferStatusCancelled
}

// Transfer represents a money movement between two cards.
type Transfer struct {
	ID          string
	FromCardID  string
	ToCardID    string
	Amount      decimal.Decimal
	Status      TransferStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// Validate validates a transfer request.
func (t *Transfer) Validate() error {
	if t.FromCardID == t.ToCardID {
		return ErrSameCard
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return nil
}

// CanCancel checks if the transfer may transition to CANCELLED.
// Only PENDING transfers are cancellable; COMPLETED, FAILED and
// CANCELLED are terminal.
func (t *Transfer) CanCancel() error {
	if t.Status != TransferStatusPending {
		return ErrInvalidState
	}
	return nil
}

// NeedsCompensation reports whether cancelling the transfer must undo
// balance movements. Balances were moved iff processed_at was written.
func (t *Transfer) NeedsCompensation() bool {
	return t.ProcessedAt != nil
}
