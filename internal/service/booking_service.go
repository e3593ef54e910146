package service

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"parkmate/internal/db"
	apperrors "parkmate/internal/errors"
	"parkmate/internal/store"
	"parkmate/internal/utils"
)

// clockSkewTolerance is how far in the past a booking may start before the
// request is rejected as invalid.
const clockSkewTolerance = 5 * time.Minute

// Notifier is told about booking events. Implementations must not block
// the caller; failures are theirs to log.
type Notifier interface {
	BookingCreated(b *db.Booking, status db.Status)
	BookingCancelled(b *db.Booking)
}

// Archiver persists purged bookings outside the in-memory core.
type Archiver interface {
	ArchiveBookings(bookings []db.ArchivedBooking) error
}

// BookingService is the only writer to the SlotStore and to booking
// records. All mutations of the booking map run under its mutex; slot
// interval mutations are additionally atomic inside the store itself.
type BookingService struct {
	mu       sync.Mutex
	store    *store.SlotStore
	notifier Notifier
	bookings map[string]*db.Booking

	location   string
	ownerName  string
	hourlyRate int // cents

	now func() time.Time
}

func NewBookingService(st *store.SlotStore, notifier Notifier, location, ownerName string, hourlyRateCents int) *BookingService {
	return &BookingService{
		store:      st,
		notifier:   notifier,
		bookings:   make(map[string]*db.Booking),
		location:   location,
		ownerName:  ownerName,
		hourlyRate: hourlyRateCents,
		now:        time.Now,
	}
}

// CreateBooking validates the request, reserves the first free slot for
// the interval and records the booking.
func (s *BookingService) CreateBooking(holderName, holderEmail, holderPhone string, vehicle db.VehicleDetails, iv db.Interval) (*db.Booking, error) {
	now := s.now().UTC()
	if !iv.End.After(iv.Start) {
		return nil, fmt.Errorf("end time must be after start time: %w", apperrors.ErrInvalidInterval)
	}
	if iv.Start.Before(now.Add(-clockSkewTolerance)) {
		return nil, fmt.Errorf("start time is in the past: %w", apperrors.ErrInvalidInterval)
	}
	if vehicle.Type == "" {
		vehicle.Type = "Car"
	}
	vehicle.Plate = utils.NormalizePlate(vehicle.Plate)

	s.mu.Lock()
	defer s.mu.Unlock()

	slotID, err := s.store.Reserve(0, iv)
	if err != nil {
		return nil, err
	}

	b := &db.Booking{
		ID:          uuid.NewString(),
		Code:        fmt.Sprintf("PK%06X", now.UnixNano()%0x1000000),
		HolderID:    utils.HolderID(holderName),
		HolderName:  holderName,
		HolderEmail: holderEmail,
		HolderPhone: holderPhone,
		Vehicle:     vehicle,
		SlotID:      slotID,
		Interval:    iv,
		PriceCents:  s.PriceCents(iv),
		Location:    s.location,
		OwnerName:   s.ownerName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.bookings[b.ID] = b

	status := StatusOf(iv, now, false)
	log.Printf("Booking %s created: slot %d, %s - %s, holder %s",
		b.Code, slotID, iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339), b.HolderID)

	if s.notifier != nil {
		s.notifier.BookingCreated(cloneBooking(b), status)
	}
	return cloneBooking(b), nil
}

// CancelBooking releases the booking's interval and marks it cancelled.
// Cancellation is final; terminal bookings cannot be cancelled again.
func (s *BookingService) CancelBooking(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if StatusOf(b.Interval, s.now().UTC(), b.Cancelled).Terminal() {
		return apperrors.ErrAlreadyTerminal
	}
	if err := s.store.Release(b.SlotID, b.Interval); err != nil {
		// The interval must exist for a non-terminal booking; if it does
		// not, the store and the records have diverged.
		return fmt.Errorf("releasing slot %d for booking %s: %w", b.SlotID, b.Code, err)
	}
	b.Cancelled = true
	b.UpdatedAt = s.now().UTC()
	log.Printf("Booking %s cancelled, slot %d freed", b.Code, b.SlotID)

	if s.notifier != nil {
		s.notifier.BookingCancelled(cloneBooking(b))
	}
	return nil
}

// ExtendBooking moves the booking's end time forward on the same slot. If
// the longer interval collides with another reservation on that slot the
// original interval is left intact and ErrConflict is returned.
func (s *BookingService) ExtendBooking(id string, newEnd time.Time) (*db.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if StatusOf(b.Interval, s.now().UTC(), b.Cancelled).Terminal() {
		return nil, apperrors.ErrAlreadyTerminal
	}
	if !newEnd.After(b.Interval.End) {
		return nil, fmt.Errorf("new end time must be after current end time: %w", apperrors.ErrInvalidInterval)
	}

	extended := db.Interval{Start: b.Interval.Start, End: newEnd}
	if err := s.store.Replace(b.SlotID, b.Interval, extended); err != nil {
		return nil, err
	}
	b.Interval = extended
	b.PriceCents = s.PriceCents(extended)
	b.UpdatedAt = s.now().UTC()
	log.Printf("Booking %s extended to %s on slot %d", b.Code, newEnd.Format(time.RFC3339), b.SlotID)
	return cloneBooking(b), nil
}

// GetBooking returns a copy of the booking with the given id.
func (s *BookingService) GetBooking(id string) (*db.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return cloneBooking(b), nil
}

// ListBookings returns bookings ordered by start time ascending. holderID
// filters by holder when non-empty; statusFilter by derived status when
// non-empty.
func (s *BookingService) ListBookings(holderID string, statusFilter db.Status) []*db.Booking {
	now := s.now().UTC()

	s.mu.Lock()
	var out []*db.Booking
	for _, b := range s.bookings {
		if holderID != "" && b.HolderID != holderID {
			continue
		}
		if statusFilter != "" && StatusOf(b.Interval, now, b.Cancelled) != statusFilter {
			continue
		}
		out = append(out, cloneBooking(b))
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Interval.Start.Before(out[j].Interval.Start)
	})
	return out
}

// Status derives the booking's current lifecycle state.
func (s *BookingService) Status(b *db.Booking) db.Status {
	return StatusOf(b.Interval, s.now().UTC(), b.Cancelled)
}

// PriceCents charges the best-fitting unit: whole hours for short stays,
// discounted day and week rates for longer ones, always rounding the
// count up.
func (s *BookingService) PriceCents(iv db.Interval) int {
	unitRate, count := bestUnitAndCount(iv.Start, iv.End, s.hourlyRate)
	return unitRate * count
}

// PurgeTerminal removes every completed or cancelled booking, writing them
// to the archiver first when one is configured. Upcoming and active
// bookings are never touched. Returns how many were purged.
func (s *BookingService) PurgeTerminal(archiver Archiver) (int, error) {
	now := s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	var purged []db.ArchivedBooking
	for _, b := range s.bookings {
		status := StatusOf(b.Interval, now, b.Cancelled)
		if !status.Terminal() {
			continue
		}
		purged = append(purged, db.ArchivedBooking{
			Booking:     *cloneBooking(b),
			FinalStatus: status,
			ArchivedAt:  now,
		})
	}
	if len(purged) == 0 {
		return 0, nil
	}

	if archiver != nil {
		if err := archiver.ArchiveBookings(purged); err != nil {
			return 0, fmt.Errorf("archiving %d bookings: %w", len(purged), err)
		}
	} else {
		log.Printf("No archive configured; purging %d bookings from memory only", len(purged))
	}
	for _, ab := range purged {
		delete(s.bookings, ab.ID)
	}
	log.Printf("Purged %d terminal bookings", len(purged))
	return len(purged), nil
}

func cloneBooking(b *db.Booking) *db.Booking {
	c := *b
	return &c
}

func bestUnitAndCount(startTime, endTime time.Time, hourlyRate int) (unitRate, count int) {
	const (
		dayRateHours  = 20  // a day costs 20 hourly units
		weekRateHours = 110 // a week costs 110 hourly units
	)
	d := endTime.Sub(startTime)
	switch {
	case d.Hours() < 24:
		count = int(d.Hours())
		if d.Minutes() > float64(count*60) {
			count++
		}
		if count == 0 {
			count = 1
		}
		return hourlyRate, count
	case d.Hours() < 24*7:
		count = int(d.Hours() / 24)
		if d.Hours() > float64(count*24) {
			count++
		}
		return hourlyRate * dayRateHours, count
	default:
		count = int(d.Hours() / (24 * 7))
		if d.Hours() > float64(count*24*7) {
			count++
		}
		return hourlyRate * weekRateHours, count
	}
}
