package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"parkmate/internal/db"
	"parkmate/internal/entities"
	apperrors "parkmate/internal/errors"
	"parkmate/internal/service"
)

type BookingHandler struct {
	Service      *service.BookingService
	Availability *service.AvailabilityQuery
	validate     *validator.Validate
}

func NewBookingHandler(svc *service.BookingService, avail *service.AvailabilityQuery) *BookingHandler {
	return &BookingHandler{
		Service:      svc,
		Availability: avail,
		validate:     validator.New(),
	}
}

func (h *BookingHandler) BookSlot(w http.ResponseWriter, r *http.Request) {
	var req BookSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	vehicle := db.VehicleDetails{Type: req.VehicleType, Plate: req.CarNumber}
	iv := db.Interval{Start: req.InTime.UTC(), End: req.OutTime.UTC()}

	booking, err := h.Service.CreateBooking(req.Name, req.Email, req.Phone, vehicle, iv)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, BookSlotResponse{
		Message:   "Booking confirmed.",
		BookingID: booking.ID,
		Slot:      booking.SlotID,
	})
}

// ListBookedSlots returns the slot ids occupied right now.
func (h *BookingHandler) ListBookedSlots(w http.ResponseWriter, r *http.Request) {
	booked := h.Availability.BookedSlots(time.Now().UTC())
	out := make([]map[string]int, 0, len(booked))
	for _, id := range booked {
		out = append(out, map[string]int{"slot": id})
	}
	writeJSON(w, http.StatusOK, out)
}

// SlotGrid returns free/booked for every slot at the requested instant
// (now when the `at` query parameter is missing).
func (h *BookingHandler) SlotGrid(w http.ResponseWriter, r *http.Request) {
	at := time.Now().UTC()
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid 'at' timestamp"})
			return
		}
		at = parsed.UTC()
	}

	grid := h.Availability.SlotGrid(at)
	out := make([]entities.SlotGridEntry, 0, len(grid))
	for id := 1; id <= len(grid); id++ {
		out = append(out, entities.SlotGridEntry{Slot: id, State: string(grid[id])})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	iv, err := parseWindow(r)
	if err != nil {
		writeError(w, err)
		return
	}
	free := h.Availability.FreeSlots(iv)
	resp := entities.AvailabilityResponse{
		RequestedStartTime: iv.Start,
		RequestedEndTime:   iv.End,
		IsOverallAvailable: len(free) > 0,
		FreeSlots:          free,
	}
	if len(free) == 0 {
		resp.Message = "No slots available for the requested window."
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BookingHandler) QuotePrice(w http.ResponseWriter, r *http.Request) {
	iv, err := parseWindow(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.PriceQuote{
		StartTime: iv.Start,
		EndTime:   iv.End,
		Amount:    float64(h.Service.PriceCents(iv)) / 100,
	})
}

func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
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

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.Service.CancelBooking(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Booking cancelled"})
}

func (h *BookingHandler) ExtendBooking(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req ExtendBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	booking, err := h.Service.GetBooking(id)
	if err != nil {
		writeError(w, err)
		return
	}
	newEnd := booking.Interval.End.Add(time.Duration(req.Hours) * time.Hour)
	updated, err := h.Service.ExtendBooking(id, newEnd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.NewBookingView(updated, h.Service.Status(updated)))
}

func parseWindow(r *http.Request) (db.Interval, error) {
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		return db.Interval{}, apperrors.ErrInvalidInterval
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil || !end.After(start) {
		return db.Interval{}, apperrors.ErrInvalidInterval
	}
	return db.Interval{Start: start.UTC(), End: end.UTC()}, nil
}
