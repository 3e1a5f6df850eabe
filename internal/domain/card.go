package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CardStatus represents the lifecycle state of a card.
type CardStatus string

const (
	CardStatusActive  CardStatus = "ACTIVE"
	CardStatusBlocked CardStatus = "BLOCKED"
	CardStatusExpired CardStatus = "EXPIRED"
)

var validCardStatuses = map[CardStatus]bool{
	CardStatusActive:  true,
	CardStatusBlocked: true,
	CardStatusExpired: true,
}

// IsValid checks if the status is a known card status.
func (s CardStatus) IsValid() bool {
	return validCardStatuses[s]
}

// Card represents a virtual payment card holding a balance.
// The card number is stored encrypted; only masked forms leave the service.
type Card struct {
	ID              string
	UserID          string
	NumberEncrypted string
	HolderName      string
	Status          CardStatus
	Balance         decimal.Decimal
	ExpiryDate      time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsEligible checks if the card may participate in a transfer.
func (c *Card) IsEligible() error {
	if c.Status != CardStatusActive {
		return ErrCardNotEligible
	}
	return nil
}

// ValidateDebit checks if the card can be debited by amount.
// Card balances are never allowed to go negative.
func (c *Card) ValidateDebit(amount decimal.Decimal) error {
	if c.Balance.LessThan(amount) {
		return ErrInsufficientBalance
	}
	return nil
}

// ApplyDebit returns the balance after a debit.
func (c *Card) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return c.Balance.Sub(amount)
}

// ApplyCredit returns the balance after a credit.
func (c *Card) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return c.Balance.Add(amount)
}

// IsExpiredAt reports whether the card's expiry date has passed.
func (c *Card) IsExpiredAt(at time.Time) bool {
	return c.ExpiryDate.Before(at)
}
