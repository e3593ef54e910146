package db

import "time"

// Status is the lifecycle state of a booking. It is derived from the
// booking's interval and the clock on every read; cancelled is the only
// state that is stored.
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ValidStatus reports whether s names one of the four booking states.
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusUpcoming, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the two half-open intervals share any instant.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Contains reports whether t falls within [Start, End).
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

func (iv Interval) Equal(other Interval) bool {
	return iv.Start.Equal(other.Start) && iv.End.Equal(other.End)
}

type VehicleDetails struct {
	Type  string `json:"type"`
	Plate string `json:"plate"`
}

type Booking struct {
	ID          string
	Code        string
	HolderID    string
	HolderName  string
	HolderEmail string
	HolderPhone string
	Vehicle     VehicleDetails
	SlotID      int
	Interval    Interval
	Cancelled   bool
	PriceCents  int
	Location    string
	OwnerName   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ArchivedBooking is the row written to the archive on explicit purge.
type ArchivedBooking struct {
	Booking
	FinalStatus Status
	ArchivedAt  time.Time
}
