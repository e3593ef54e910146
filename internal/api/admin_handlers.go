package api

import (
	"fmt"
	"net/http"
	"strconv"

	"parkmate/internal/db"
	"parkmate/internal/entities"
	apperrors "parkmate/internal/errors"
	"parkmate/internal/repository"
	"parkmate/internal/service"
)

type AdminHandler struct {
	Service *service.BookingService
	Archive *repository.ArchiveRepository // nil when no database is configured
}

func NewAdminHandler(svc *service.BookingService, archive *repository.ArchiveRepository) *AdminHandler {
	return &AdminHandler{Service: svc, Archive: archive}
}

// ListBookings returns every booking regardless of holder, with the same
// filters as the public listing.
func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	holder := r.URL.Query().Get("holder")
	status := r.URL.Query().Get("status")
	if status != "" && !db.ValidStatus(status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Unknown status filter"})
		return
	}

	bookings := h.Service.ListBookings(holder, db.Status(status))
	out := make([]entities.BookingView, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, entities.NewBookingView(b, h.Service.Status(b)))
	}
	writeJSON(w, http.StatusOK, out)
}

// PurgeTerminal archives and removes completed/cancelled bookings.
func (h *AdminHandler) PurgeTerminal(w http.ResponseWriter, r *http.Request) {
	var archiver service.Archiver
	if h.Archive != nil {
		archiver = h.Archive
	}
	purged, err := h.Service.PurgeTerminal(archiver)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Purge complete",
		"purged":  purged,
	})
}

// ListArchived reads back the archive; 503 when no database is configured.
func (h *AdminHandler) ListArchived(w http.ResponseWriter, r *http.Request) {
	if h.Archive == nil {
		writeError(w, fmt.Errorf("%w: no archive database configured", apperrors.ErrUnavailable))
		return
	}
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	archived, err := h.Archive.ListArchived(limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, archived)
}
