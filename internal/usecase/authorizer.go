package usecase

import (
	"github.com/paylith/cardvault/internal/domain"
)

// TransferAuthorizer validates that a requester may move funds between two
// cards. It has no side effects.
//
// Transfers are only authorized between cards owned by the same requester;
// transfers to another user's card are never authorized. This is a closed
// product decision, not an oversight.
type TransferAuthorizer struct{}

// NewTransferAuthorizer creates a new TransferAuthorizer.
func NewTransferAuthorizer() *TransferAuthorizer {
	return &TransferAuthorizer{}
}

// Authorize checks ownership and eligibility of both endpoint cards.
// Ownership is checked before eligibility so a requester probing foreign
// cards learns nothing about their status.
func (a *TransferAuthorizer) Authorize(requesterID string, from, to *domain.Card) error {
	if from.UserID != requesterID || to.UserID != requesterID {
		return domain.ErrUnauthorized
	}

	if err := from.IsEligible(); err != nil {
		return err
	}

	if err := to.IsEligible(); err != nil {
		return err
	}

	return nil
}
