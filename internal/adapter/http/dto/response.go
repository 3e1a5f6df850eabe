package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/paylith/cardvault/internal/domain"
	"github.com/paylith/cardvault/internal/usecase"
)

// CardResponse represents a card in API responses. The card number only ever
// appears masked.
type CardResponse struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	MaskedNumber string          `json:"masked_number"`
	HolderName   string          `json:"holder_name"`
	Status       string          `json:"status"`
	Balance      decimal.Decimal `json:"balance"`
	ExpiryDate   time.Time       `json:"expiry_date"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CardFromView converts a use case card view to a response.
func CardFromView(v *usecase.CardView) *CardResponse {
	return &CardResponse{
		ID:           v.Card.ID,
		UserID:       v.Card.UserID,
		MaskedNumber: v.MaskedNumber,
		HolderName:   v.Card.HolderName,
		Status:       string(v.Card.Status),
		Balance:      v.Card.Balance,
		ExpiryDate:   v.Card.ExpiryDate,
		CreatedAt:    v.Card.CreatedAt,
		UpdatedAt:    v.Card.UpdatedAt,
	}
}

// CardsFromViews converts use case card views to responses.
func CardsFromViews(views []*usecase.CardView) []*CardResponse {
	result := make([]*CardResponse, len(views))
	for i, v := range views {
		result[i] = CardFromView(v)
	}
	return result
}

// TransferResponse represents a transfer in API responses.
type TransferResponse struct {
	ID          string          `json:"id"`
	FromCardID  string          `json:"from_card_id"`
	ToCardID    string          `json:"to_card_id"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
}

// TransferFromDomain converts a domain transfer to a response.
func TransferFromDomain(t *domain.Transfer) *TransferResponse {
	return &TransferResponse{
		ID:          t.ID,
		FromCardID:  t.FromCardID,
		ToCardID:    t.ToCardID,
		Amount:      t.Amount,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		ProcessedAt: t.ProcessedAt,
	}
}

// TransfersFromDomain converts domain transfers to responses.
func TransfersFromDomain(transfers []*domain.Transfer) []*TransferResponse {
	result := make([]*TransferResponse, len(transfers))
	for i, t := range transfers {
		result[i] = TransferFromDomain(t)
	}
	return result
}

// TransferPageResponse represents one page of transfers.
type TransferPageResponse struct {
	Items  []*TransferResponse `json:"items"`
	Total  int64               `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

// TransferPageFromDomain converts a use case transfer page to a response.
func TransferPageFromDomain(page *usecase.TransferPage) *TransferPageResponse {
	return &TransferPageResponse{
		Items:  TransfersFromDomain(page.Items),
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromDomain converts a domain user to a response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// ExpireSweepResponse reports how many cards a sweep expired.
type ExpireSweepResponse struct {
	Expired int64 `json:"expired"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
