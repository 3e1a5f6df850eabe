package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/paylith/cardvault/internal/adapter/http/dto"
	"github.com/paylith/cardvault/internal/adapter/http/middleware"
	"github.com/paylith/cardvault/internal/domain"
	"github.com/paylith/cardvault/internal/usecase"
)

type cardService interface {
	IssueCard(ctx context.Context, input usecase.IssueCardInput) (*usecase.CardView, error)
	GetCard(ctx context.Context, cardID string, requester *domain.User) (*usecase.CardView, error)
	ListCards(ctx context.Context, input usecase.ListCardsInput) ([]*usecase.CardView, error)
	UpdateCardStatus(ctx context.Context, cardID string, status domain.CardStatus) (*usecase.CardView, error)
	DeleteCard(ctx context.Context, cardID string) error
	TopUp(ctx context.Context, cardID string, amount decimal.Decimal) (*usecase.CardView, error)
	ExpireSweep(ctx context.Context) (int64, error)
}

// CardHandler handles card-related HTTP requests.
type CardHandler struct {
	cardUC cardService
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(cardUC cardService) *CardHandler {
	return &CardHandler{cardUC: cardUC}
}

// Issue issues a new card. Admin only.
func (h *CardHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req dto.IssueCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	card, err := h.cardUC.IssueCard(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to issue card", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.CardFromView(card))
}

// Get retrieves a card by ID. Owners see their own cards, admins see any.
func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing card ID", "")
		return
	}

	requester, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	card, err := h.cardUC.GetCard(r.Context(), id, requester)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get card", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.CardFromView(card))
}

// List lists the authenticated user's cards.
func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var status domain.CardStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		var err error
		status, err = domain.ParseCardStatus(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid card status", raw)
			return
		}
	}

	cards, err := h.cardUC.ListCards(r.Context(), usecase.ListCardsInput{
		OwnerID: requester.ID,
		Status:  status,
		Holder:  r.URL.Query().Get("holder"),
		Limit:   parseIntQuery(r, "limit", 20),
		Offset:  parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list cards", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CardsFromViews(cards))
}

// UpdateStatus blocks, unblocks or expires a card. Admin only.
func (h *CardHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing card ID", "")
		return
	}

	var req dto.UpdateCardStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	status, err := domain.ParseCardStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid card status", req.Status)
		return
	}

	card, err := h.cardUC.UpdateCardStatus(r.Context(), id, status)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to update card status", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.CardFromView(card))
}

// Delete retires a card. Admin only.
func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing card ID", "")
		return
	}

	if err := h.cardUC.DeleteCard(r.Context(), id); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to delete card", err.Error())

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// TopUp adds funds to a card. Admin only.
func (h *CardHandler) TopUp(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing card ID", "")
		return
	}

	var req dto.TopUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	card, err := h.cardUC.TopUp(r.Context(), id, req.Amount)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to top up card", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.CardFromView(card))
}

// ExpireSweep marks all active cards past their expiry date as expired.
// Admin only.
func (h *CardHandler) ExpireSweep(w http.ResponseWriter, r *http.Request) {
	expired, err := h.cardUC.ExpireSweep(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to expire cards", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ExpireSweepResponse{Expired: expired})
}
