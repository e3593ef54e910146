package entities

import (
	"time"

	"parkmate/internal/db"
)

// BookingView is the API-facing shape of a booking record with its
// derived status.
type BookingView struct {
	ID        string            `json:"id"`
	Code      string            `json:"code"`
	HolderID  string            `json:"holder_id"`
	Holder    string            `json:"holder"`
	Vehicle   db.VehicleDetails `json:"vehicle"`
	Slot      int               `json:"slot"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time"`
	Status    db.Status         `json:"status"`
	Price     float64           `json:"price"`
	Location  string            `json:"location"`
	OwnerName string            `json:"owner_name"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func NewBookingView(b *db.Booking, status db.Status) BookingView {
	return BookingView{
		ID:        b.ID,
		Code:      b.Code,
		HolderID:  b.HolderID,
		Holder:    b.HolderName,
		Vehicle:   b.Vehicle,
		Slot:      b.SlotID,
		StartTime: b.Interval.Start,
		EndTime:   b.Interval.End,
		Status:    status,
		Price:     float64(b.PriceCents) / 100,
		Location:  b.Location,
		OwnerName: b.OwnerName,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}
