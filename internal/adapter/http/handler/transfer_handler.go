package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paylith/cardvault/internal/adapter/http/dto"
	"github.com/paylith/cardvault/internal/adapter/http/middleware"
	"github.com/paylith/cardvault/internal/domain"
	"github.com/paylith/cardvault/internal/usecase"
)

type transferService interface {
	CreateTransfer(ctx context.Context, input usecase.CreateTransferInput, requesterID string) (*domain.Transfer, error)
	CancelTransfer(ctx context.Context, transferID, requesterID string) (*domain.Transfer, error)
	GetTransfer(ctx context.Context, transferID string, requester *domain.User) (*domain.Transfer, error)
	ListTransfers(ctx context.Context, input usecase.ListTransfersInput) (*usecase.TransferPage, error)
	ListAllTransfers(ctx context.Context, limit, offset int) ([]*domain.Transfer, error)
}

// TransferHandler handles transfer-related HTTP requests.
type TransferHandler struct {
	transferUC transferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferUC transferService) *TransferHandler {
	return &TransferHandler{transferUC: transferUC}
}

// Create creates and executes a transfer between the requester's cards.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	transfer, err := h.transferUC.CreateTransfer(r.Context(), req.ToUseCaseInput(), requester.ID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create transfer", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.TransferFromDomain(transfer))
}

// Get retrieves a transfer by ID. Participants see their own transfers,
// admins see any.
func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transfer ID", "")
		return
	}

	requester, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	transfer, err := h.transferUC.GetTransfer(r.Context(), id, requester)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get transfer", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TransferFromDomain(transfer))
}

// List lists transfers touching the requester's cards.
func (h *TransferHandler) List(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	status, err := domain.ParseTransferStatus(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transfer status", r.URL.Query().Get("status"))
		return
	}

	page, err := h.transferUC.ListTransfers(r.Context(), usecase.ListTransfersInput{
		UserID: requester.ID,
		Status: status,
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transfers", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransferPageFromDomain(page))
}

// ListAll lists transfers across all users. Admin only.
func (h *TransferHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	transfers, err := h.transferUC.ListAllTransfers(
		r.Context(),
		parseIntQuery(r, "limit", 20),
		parseIntQuery(r, "offset", 0),
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transfers", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransfersFromDomain(transfers))
}

// Cancel cancels a pending transfer, reversing its balance movement if the
// transfer already executed.
func (h *TransferHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transfer ID", "")
		return
	}

	requester, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	transfer, err := h.transferUC.CancelTransfer(r.Context(), id, requester.ID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to cancel transfer", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TransferFromDomain(transfer))
}
