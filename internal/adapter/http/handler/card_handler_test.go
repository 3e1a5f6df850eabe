package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paylith/cardvault/internal/adapter/http/dto"
	"github.com/paylith/cardvault/internal/domain"
	"github.com/paylith/cardvault/internal/usecase"
)

type cardServiceStub struct {
	issueFn        func(ctx context.Context, input usecase.IssueCardInput) (*usecase.CardView, error)
	getFn          func(ctx context.Context, cardID string, requester *domain.User) (*usecase.CardView, error)
	listFn         func(ctx context.Context, input usecase.ListCardsInput) ([]*usecase.CardView, error)
	updateStatusFn func(ctx context.Context, cardID string, status domain.CardStatus) (*usecase.CardView, error)
	deleteFn       func(ctx context.Context, cardID string) error
	topUpFn        func(ctx context.Context, cardID string, amount decimal.Decimal) (*usecase.CardView, error)
	expireSweepFn  func(ctx context.Context) (int64, error)
}

func (s *cardServiceStub) IssueCard(ctx context.Context, input usecase.IssueCardInput) (*usecase.CardView, error) {
	return s.issueFn(ctx, input)
}

func (s *cardServiceStub) GetCard(ctx context.Context, cardID string, requester *domain.User) (*usecase.CardView, error) {
	return s.getFn(ctx, cardID, requester)
}

func (s *cardServiceStub) ListCards(ctx context.Context, input usecase.ListCardsInput) ([]*usecase.CardView, error) {
	return s.listFn(ctx, input)
}

func (s *cardServiceStub) UpdateCardStatus(ctx context.Context, cardID string, status domain.CardStatus) (*usecase.CardView, error) {
	return s.updateStatusFn(ctx, cardID, status)
}

func (s *cardServiceStub) DeleteCard(ctx context.Context, cardID string) error {
	return s.deleteFn(ctx, cardID)
}

func (s *cardServiceStub) TopUp(ctx context.Context, cardID string, amount decimal.Decimal) (*usecase.CardView, error) {
	return s.topUpFn(ctx, cardID, amount)
}

func (s *cardServiceStub) ExpireSweep(ctx context.Context) (int64, error) {
	return s.expireSweepFn(ctx)
}

func testCardView(id, userID string) *usecase.CardView {
	return &usecase.CardView{
		Card: &domain.Card{
			ID:         id,
			UserID:     userID,
			HolderName: "ALICE EXAMPLE",
			Status:     domain.CardStatusActive,
			Balance:    decimal.NewFromInt(500),
			ExpiryDate: time.Now().AddDate(3, 0, 0),
		},
		MaskedNumber: "**** **** **** 0366",
	}
}

func TestCardHandler_Issue_Success(t *testing.T) {
	var captured usecase.IssueCardInput

	h := NewCardHandler(&cardServiceStub{
		issueFn: func(ctx context.Context, input usecase.IssueCardInput) (*usecase.CardView, error) {
			captured = input
			return testCardView("card-1", input.OwnerID), nil
		},
	})

	body, _ := json.Marshal(dto.IssueCardRequest{
		OwnerID:        "user-1",
		HolderName:     "ALICE EXAMPLE",
		ExpiryDate:     time.Now().AddDate(3, 0, 0),
		InitialBalance: decimal.NewFromInt(500),
	})

	req := httptest.NewRequest(http.MethodPost, "/cards", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Issue(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.OwnerID != "user-1" || captured.HolderName != "ALICE EXAMPLE" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.CardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.MaskedNumber != "**** **** **** 0366" {
		t.Fatalf("expected masked number in response, got %s", resp.MaskedNumber)
	}
}

func TestCardHandler_Issue_UnknownOwner(t *testing.T) {
	h := NewCardHandler(&cardServiceStub{
		issueFn: func(ctx context.Context, input usecase.IssueCardInput) (*usecase.CardView, error) {
			return nil, domain.ErrUserNotFound
		},
	})

	body, _ := json.Marshal(dto.IssueCardRequest{OwnerID: "ghost"})
	req := httptest.NewRequest(http.MethodPost, "/cards", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Issue(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCardHandler_Get(t *testing.T) {
	h := NewCardHandler(&cardServiceStub{
		getFn: func(ctx context.Context, cardID string, requester *domain.User) (*usecase.CardView, error) {
			if requester.ID != "user-1" {
				t.Fatalf("expected requester user-1, got %s", requester.ID)
			}
			return testCardView(cardID, requester.ID), nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/cards/card-1", nil)
	req = withUser(req, testRequester())
	req = withURLParam(req, "id", "card-1")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.CardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "card-1" {
		t.Fatalf("expected card-1, got %s", resp.ID)
	}
}

func TestCardHandler_Get_ForeignCard(t *testing.T) {
	h := NewCardHandler(&cardServiceStub{
		getFn: func(ctx context.Context, cardID string, requester *domain.User) (*usecase.CardView, error) {
			return nil, domain.ErrUnauthorized
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/cards/card-9", nil)
	req = withUser(req, testRequester())
	req = withURLParam(req, "id", "card-9")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestCardHandler_List(t *testing.T) {
	var captured usecase.ListCardsInput

	h := NewCardHandler(&cardServiceStub{
		listFn: func(ctx context.Context, input usecase.ListCardsInput) ([]*usecase.CardView, error) {
			captured = input
			return []*usecase.CardView{testCardView("card-1", input.OwnerID)}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/cards?status=ACTIVE&holder=alice", nil)
	req = withUser(req, testRequester())
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.OwnerID != "user-1" || captured.Status != domain.CardStatusActive || captured.Holder != "alice" {
		t.Fatalf("unexpected list input: %+v", captured)
	}

	var resp []*dto.CardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("expected one card, got %d", len(resp))
	}
}

func TestCardHandler_List_LowercaseStatus(t *testing.T) {
	var captured usecase.ListCardsInput

	h := NewCardHandler(&cardServiceStub{
		listFn: func(ctx context.Context, input usecase.ListCardsInput) ([]*usecase.CardView, error) {
			captured = input
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/cards?status=active", nil)
	req = withUser(req, testRequester())
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.Status != domain.CardStatusActive {
		t.Fatalf("expected normalized ACTIVE filter, got %q", captured.Status)
	}
}

func TestCardHandler_List_InvalidStatus(t *testing.T) {
	h := NewCardHandler(&cardServiceStub{
		listFn: func(ctx context.Context, input usecase.ListCardsInput) ([]*usecase.CardView, error) {
			t.Fatal("ListCards should not be called")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/cards?status=FROZEN", nil)
	req = withUser(req, testRequester())
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCardHandler_UpdateStatus(t *testing.T) {
	h := NewCardHandler(&cardServiceStub{
		updateStatusFn: func(ctx context.Context, cardID string, status domain.CardStatus) (*usecase.CardView, error) {
			if status != domain.CardStatusBlocked {
				t.Fatalf("expected BLOCKED, got %s", status)
			}
			view := testCardView(cardID, "user-1")
			view.Card.Status = status
			return view, nil
		},
	})

	body, _ := json.Marshal(dto.UpdateCardStatusRequest{Status: "BLOCKED"})
	req := httptest.NewRequest(http.MethodPatch, "/cards/card-1/status", bytes.NewReader(body))
	req = withURLParam(req, "id", "card-1")
	rec := httptest.NewRecorder()

	h.UpdateStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.CardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "BLOCKED" {
		t.Fatalf("expected BLOCKED, got %s", resp.Status)
	}
}

func TestCardHandler_UpdateStatus_Lowercase(t *testing.T) {
	h := NewCardHandler(&cardServiceStub{
		updateStatusFn: func(ctx context.Context, cardID string, status domain.CardStatus) (*usecase.CardView, error) {
			if status != domain.CardStatusBlocked {
				t.Fatalf("expected BLOCKED, got %s", status)
			}
			view := testCardView(cardID, "user-1")
			view.Card.Status = status
			return view, nil
		},
	})

	body, _ := json.Marshal(dto.UpdateCardStatusRequest{Status: "blocked"})
	req := httptest.NewRequest(http.MethodPatch, "/cards/card-1/status", bytes.NewReader(body))
	req = withURLParam(req, "id", "card-1")
	rec := httptest.NewRecorder()

	h.UpdateStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCardHandler_UpdateStatus_Invalid(t *testing.T) {
	h := NewCardHandler(&cardServiceStub{
		updateStatusFn: func(ctx context.Context, cardID string, status domain.CardStatus) (*usecase.CardView, error) {
			t.Fatal("UpdateCardStatus should not be called")
			return nil, nil
		},
	})

	body, _ := json.Marshal(dto.UpdateCardStatusRequest{Status: "FROZEN"})
	req := httptest.NewRequest(http.MethodPatch, "/cards/card-1/status", bytes.NewReader(body))
	req = withURLParam(req, "id", "card-1")
	rec := httptest.NewRecorder()

	h.UpdateStatus(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCardHandler_Delete(t *testing.T) {
	deleted := ""

	h := NewCardHandler(&cardServiceStub{
		deleteFn: func(ctx context.Context, cardID string) error {
			deleted = cardID
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/cards/card-1", nil)
	req = withURLParam(req, "id", "card-1")
	rec := httptest.NewRecorder()

	h.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if deleted != "card-1" {
		t.Fatalf("expected card-1 deleted, got %q", deleted)
	}
}

func TestCardHandler_TopUp(t *testing.T) {
	h := NewCardHandler(&cardServiceStub{
		topUpFn: func(ctx context.Context, cardID string, amount decimal.Decimal) (*usecase.CardView, error) {
			view := testCardView(cardID, "user-1")
			view.Card.Balance = view.Card.Balance.Add(amount)
			return view, nil
		},
	})

	body, _ := json.Marshal(dto.TopUpRequest{Amount: decimal.NewFromInt(100)})
	req := httptest.NewRequest(http.MethodPost, "/cards/card-1/topup", bytes.NewReader(body))
	req = withURLParam(req, "id", "card-1")
	rec := httptest.NewRecorder()

	h.TopUp(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.CardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Balance.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("expected balance 600, got %s", resp.Balance)
	}
}

func TestCardHandler_ExpireSweep(t *testing.T) {
	h := NewCardHandler(&cardServiceStub{
		expireSweepFn: func(ctx context.Context) (int64, error) {
			return 3, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/cards/expire-sweep", nil)
	rec := httptest.NewRecorder()

	h.ExpireSweep(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ExpireSweepResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Expired != 3 {
		t.Fatalf("expected 3 expired, got %d", resp.Expired)
	}
}
