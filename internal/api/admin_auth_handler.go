package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	apperrors "parkmate/internal/errors"
	"parkmate/internal/service"
)

type AdminAuthHandler struct {
	Service  service.AdminAuthService
	validate *validator.Validate
}

func NewAdminAuthHandler(svc service.AdminAuthService) *AdminAuthHandler {
	return &AdminAuthHandler{Service: svc, validate: validator.New()}
}

func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	token, err := h.Service.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, apperrors.ErrUnauthorized("Invalid credentials"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
