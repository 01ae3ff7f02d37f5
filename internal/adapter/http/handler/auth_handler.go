package handler

import (
	"encoding/json"
	"net/http"

	"github.com/odv/mercsync/internal/adapter/http/dto"
	"github.com/odv/mercsync/internal/infrastructure/auth"
)

// AuthHandler issues operator tokens.
type AuthHandler struct {
	operator *auth.Operator
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(operator *auth.Operator) *AuthHandler {
	return &AuthHandler{operator: operator}
}

// Login verifies operator credentials and returns a JWT.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	token, err := h.operator.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials", "")
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginResponse{Token: token, Email: req.Email})
}
