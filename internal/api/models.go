package api

import "time"

// Booking
type BookSlotRequest struct {
	Name        string    `json:"name" validate:"required"`
	Email       string    `json:"email" validate:"omitempty,email"`
	Phone       string    `json:"phone"`
	CarNumber   string    `json:"car_number" validate:"required"`
	VehicleType string    `json:"vehicle_type"`
	InTime      time.Time `json:"in_time" validate:"required"`
	OutTime     time.Time `json:"out_time" validate:"required"`
}

type BookSlotResponse struct {
	Message   string `json:"message"`
	BookingID string `json:"booking_id,omitempty"`
	Slot      int    `json:"slot,omitempty"`
}

type ExtendBookingRequest struct {
	Hours int `json:"hours" validate:"required,min=1"`
}

// QR proof
type VerifyProofRequest struct {
	Payload string `json:"payload" validate:"required"`
}

// Admin
type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
