package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/odv/mercsync/internal/adapter/http/dto"
	"github.com/odv/mercsync/internal/domain"
)

type credentialServiceStub struct {
	setFn func(ctx context.Context, accountID, value, actor string) error
	getFn func(ctx context.Context, accountID string) (string, error)
}

func (s *credentialServiceStub) SetAPIKey(ctx context.Context, accountID, value, actor string) error {
	return s.setFn(ctx, accountID, value, actor)
}

func (s *credentialServiceStub) GetAPIKey(ctx context.Context, accountID string) (string, error) {
	return s.getFn(ctx, accountID)
}

func TestCredentialHandler_Set(t *testing.T) {
	var gotAccount, gotValue string
	handler := NewCredentialHandler(&credentialServiceStub{
		setFn: func(ctx context.Context, accountID, value, actor string) error {
			gotAccount, gotValue = accountID, value
			return nil
		},
	})

	body, _ := json.Marshal(dto.SetCredentialRequest{APIKey: "mercury-key-123"})
	req := httptest.NewRequest(http.MethodPut, "/accounts/acc-1/credentials", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Set(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	if gotAccount != "acc-1" || gotValue != "mercury-key-123" {
		t.Fatalf("expected stored key for acc-1, got account=%s value=%s", gotAccount, gotValue)
	}
}

func TestCredentialHandler_Get(t *testing.T) {
	handler := NewCredentialHandler(&credentialServiceStub{
		getFn: func(ctx context.Context, accountID string) (string, error) {
			return "mercury-key-123", nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1/credentials", nil)
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.CredentialResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.APIKey != "mercury-key-123" {
		t.Fatalf("expected decrypted key, got %s", resp.APIKey)
	}
}

func TestCredentialHandler_Get_NotSet(t *testing.T) {
	handler := NewCredentialHandler(&credentialServiceStub{
		getFn: func(ctx context.Context, accountID string) (string, error) {
			return "", domain.ErrCredentialNotFound
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1/credentials", nil)
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
