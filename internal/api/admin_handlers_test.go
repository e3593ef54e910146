package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "parkmate/internal/errors"
	"parkmate/internal/service"
	"parkmate/internal/store"
)

func TestAdminLogin(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "admin@parkmate.test")
	hash, err := service.HashAdminPassword("right-password")
	require.NoError(t, err)
	t.Setenv("ADMIN_PASSWORD_HASH", hash)
	t.Setenv("JWT_SECRET", "test-secret")

	h := NewAdminAuthHandler(service.NewAdminAuthService())
	r := mux.NewRouter()
	r.HandleFunc("/admin/login", h.Login).Methods("POST")

	w := doJSON(t, r, "POST", "/admin/login", AdminLoginRequest{Email: "admin@parkmate.test", Password: "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid credentials", resp["message"])

	w = doJSON(t, r, "POST", "/admin/login", AdminLoginRequest{Email: "admin@parkmate.test", Password: "right-password"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["token"])
}

func TestListArchivedWithoutDatabase(t *testing.T) {
	slotStore := store.NewSlotStore(1)
	svc := service.NewBookingService(slotStore, nil, "Central Parking, Downtown", "Sarah Johnson", 500)
	h := NewAdminHandler(svc, nil)

	w := httptest.NewRecorder()
	h.ListArchived(w, httptest.NewRequest("GET", "/admin/archive", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["message"], "no archive database configured")
}

func TestWriteErrorHTTPError(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, apperrors.NewHTTPError(http.StatusForbidden, "forbidden"))
	require.Equal(t, http.StatusForbidden, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "forbidden", resp["message"])

	w = httptest.NewRecorder()
	writeError(w, apperrors.ErrUnauthorized("Invalid credentials"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
