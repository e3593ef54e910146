package entities

import "time"

type SlotGridEntry struct {
	Slot  int    `json:"slot"`
	State string `json:"state"`
}

type AvailabilityResponse struct {
	RequestedStartTime time.Time `json:"requested_start_time"`
	RequestedEndTime   time.Time `json:"requested_end_time"`
	IsOverallAvailable bool      `json:"is_overall_available"`
	FreeSlots          []int     `json:"free_slots"`
	Message            string    `json:"message,omitempty"`
}

type PriceQuote struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Amount    float64   `json:"amount"`
}
