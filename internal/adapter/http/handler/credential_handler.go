package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odv/mercsync/internal/adapter/http/dto"
)

// CredentialService defines the behavior needed by CredentialHandler.
type CredentialService interface {
	SetAPIKey(ctx context.Context, accountID, value, actor string) error
	GetAPIKey(ctx context.Context, accountID string) (string, error)
}

// CredentialHandler manages per-account Mercury API keys.
type CredentialHandler struct {
	credentialUC CredentialService
}

// NewCredentialHandler creates a new CredentialHandler.
func NewCredentialHandler(credentialUC CredentialService) *CredentialHandler {
	return &CredentialHandler{credentialUC: credentialUC}
}

// Set stores or rotates the API key for an account.
func (h *CredentialHandler) Set(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.SetCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.credentialUC.SetAPIKey(r.Context(), id, req.APIKey, actorFrom(r)); err != nil {
		writeError(w, mapDomainError(err), "failed to store credential", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get returns the decrypted API key for an account.
func (h *CredentialHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	value, err := h.credentialUC.GetAPIKey(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to fetch credential", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CredentialResponse{AccountID: id, APIKey: value})
}
