package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/paylith/cardvault/internal/domain"
	"github.com/paylith/cardvault/internal/usecase"
)

// RegisterRequest represents a request to register a user.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterRequest) ToUseCaseInput() usecase.RegisterUserInput {
	return usecase.RegisterUserInput{
		Email:    r.Email,
		Name:     r.Name,
		Password: r.Password,
		Role:     domain.RoleUser,
	}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// IssueCardRequest represents a request to issue a card.
type IssueCardRequest struct {
	OwnerID        string          `json:"owner_id"`
	HolderName     string          `json:"holder_name"`
	ExpiryDate     time.Time       `json:"expiry_date"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *IssueCardRequest) ToUseCaseInput() usecase.IssueCardInput {
	return usecase.IssueCardInput{
		OwnerID:        r.OwnerID,
		HolderName:     r.HolderName,
		ExpiryDate:     r.ExpiryDate,
		InitialBalance: r.InitialBalance,
	}
}

// UpdateCardStatusRequest represents a request to change a card's status.
type UpdateCardStatusRequest struct {
	Status string `json:"status"`
}

// TopUpRequest represents a request to add funds to a card.
type TopUpRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// CreateTransferRequest represents a request to create a transfer.
type CreateTransferRequest struct {
	FromCardID string          `json:"from_card_id"`
	ToCardID   string          `json:"to_card_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput() usecase.CreateTransferInput {
	return usecase.CreateTransferInput{
		FromCardID: r.FromCardID,
		ToCardID:   r.ToCardID,
		Amount:     r.Amount,
	}
}
