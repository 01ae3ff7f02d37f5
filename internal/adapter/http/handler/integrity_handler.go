package handler

import (
	"context"
	"net/http"

	"github.com/odv/mercsync/internal/adapter/http/dto"
	"github.com/odv/mercsync/internal/usecase"
)

// IntegrityService defines the behavior needed by IntegrityHandler.
type IntegrityService interface {
	CheckAll(ctx context.Context) (*usecase.IntegrityReport, error)
}

// IntegrityHandler runs on-demand consistency sweeps.
type IntegrityHandler struct {
	integrityUC IntegrityService
}

// NewIntegrityHandler creates a new IntegrityHandler.
func NewIntegrityHandler(integrityUC IntegrityService) *IntegrityHandler {
	return &IntegrityHandler{integrityUC: integrityUC}
}

// Check sweeps every account and reports mirror and interval mismatches.
func (h *IntegrityHandler) Check(w http.ResponseWriter, r *http.Request) {
	report, err := h.integrityUC.CheckAll(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "integrity check failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.IntegrityReportFromUseCase(report))
}
