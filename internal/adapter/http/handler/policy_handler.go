package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odv/mercsync/internal/adapter/http/dto"
	"github.com/odv/mercsync/internal/domain"
	"github.com/odv/mercsync/internal/usecase"
)

// PolicyService defines the behavior needed by PolicyHandler.
type PolicyService interface {
	ApplyEdit(ctx context.Context, input usecase.ApplyEditInput) (*domain.PolicyRecord, error)
	Current(ctx context.Context, accountID string) (domain.Rule, error)
	History(ctx context.Context, input usecase.HistoryInput) ([]*domain.PolicyRecord, error)
}

// PolicyHandler handles policy-related HTTP requests.
type PolicyHandler struct {
	policyUC PolicyService
}

// NewPolicyHandler creates a new PolicyHandler.
func NewPolicyHandler(policyUC PolicyService) *PolicyHandler {
	return &PolicyHandler{policyUC: policyUC}
}

// GetCurrent returns the account's currently effective rule.
func (h *PolicyHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	rule, err := h.policyUC.Current(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get current policy", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RuleFromDomain(rule))
}

// ApplyEdit schedules a rule change from the given pivot.
func (h *PolicyHandler) ApplyEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.ApplyPolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	record, err := h.policyUC.ApplyEdit(r.Context(), req.ToUseCaseInput(id, actorFrom(r)))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to apply policy edit", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PolicyRecordFromDomain(record))
}

// History lists the account's policy records newest first.
func (h *PolicyHandler) History(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	records, err := h.policyUC.History(r.Context(), usecase.HistoryInput{
		AccountID: id,
		Limit:     parseIntQuery(r, "limit", 50),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list policy history", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PolicyHistoryResponse{
		Records: dto.PolicyRecordsFromDomain(records),
		Total:   int64(len(records)),
	})
}
