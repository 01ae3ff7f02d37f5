package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odv/mercsync/internal/adapter/http/dto"
	"github.com/odv/mercsync/internal/domain"
	"github.com/odv/mercsync/internal/infrastructure/metrics"
	"github.com/odv/mercsync/internal/usecase"
)

// ReceiptService defines the behavior needed by ReceiptHandler.
type ReceiptService interface {
	Evaluate(ctx context.Context, input usecase.EvaluateInput) (domain.ReceiptStatus, error)
}

// ReceiptHandler evaluates transactions against the governing policy.
type ReceiptHandler struct {
	evaluateUC ReceiptService
	metrics    *metrics.Metrics
}

// NewReceiptHandler creates a new ReceiptHandler. metrics may be nil.
func NewReceiptHandler(evaluateUC ReceiptService, m *metrics.Metrics) *ReceiptHandler {
	return &ReceiptHandler{evaluateUC: evaluateUC, metrics: m}
}

// Evaluate returns the receipt status for one transaction row.
func (h *ReceiptHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.EvaluateReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	status, err := h.evaluateUC.Evaluate(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to evaluate receipt status", err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.Evaluations.WithLabelValues(string(status)).Inc()
	}

	writeJSON(w, http.StatusOK, dto.ReceiptStatusFromDomain(status))
}
