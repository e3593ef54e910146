package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkmate/internal/db"
	apperrors "parkmate/internal/errors"
	"parkmate/internal/store"
)

type fakeNotifier struct {
	mu        sync.Mutex
	created   []string
	cancelled []string
}

func (f *fakeNotifier) BookingCreated(b *db.Booking, status db.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, b.Code)
}

func (f *fakeNotifier) BookingCancelled(b *db.Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, b.Code)
}

type fakeArchiver struct {
	archived []db.ArchivedBooking
	err      error
}

func (f *fakeArchiver) ArchiveBookings(bookings []db.ArchivedBooking) error {
	if f.err != nil {
		return f.err
	}
	f.archived = append(f.archived, bookings...)
	return nil
}

var testNow = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

func newTestService(slotCount int) (*BookingService, *fakeNotifier) {
	notifier := &fakeNotifier{}
	svc := NewBookingService(store.NewSlotStore(slotCount), notifier, "Central Parking, Downtown", "Sarah Johnson", 500)
	svc.now = func() time.Time { return testNow }
	return svc, notifier
}

func window(startHour, endHour int) db.Interval {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return db.Interval{
		Start: day.Add(time.Duration(startHour) * time.Hour),
		End:   day.Add(time.Duration(endHour) * time.Hour),
	}
}

func mustBook(t *testing.T, svc *BookingService, holder string, iv db.Interval) *db.Booking {
	t.Helper()
	b, err := svc.CreateBooking(holder, "", "", db.VehicleDetails{Type: "Car", Plate: "abc 123"}, iv)
	require.NoError(t, err)
	return b
}

func TestCreateBookingValidation(t *testing.T) {
	svc, _ := newTestService(5)

	_, err := svc.CreateBooking("John Doe", "", "", db.VehicleDetails{}, window(12, 10))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInterval)

	_, err = svc.CreateBooking("John Doe", "", "", db.VehicleDetails{}, window(10, 10))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInterval)

	// Start more than the skew tolerance before now (now is 08:00).
	_, err = svc.CreateBooking("John Doe", "", "", db.VehicleDetails{}, window(7, 10))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInterval)

	// Within tolerance is accepted.
	iv := db.Interval{Start: testNow.Add(-2 * time.Minute), End: testNow.Add(time.Hour)}
	_, err = svc.CreateBooking("John Doe", "", "", db.VehicleDetails{}, iv)
	assert.NoError(t, err)
}

func TestCreateBookingAssignsFields(t *testing.T) {
	svc, notifier := newTestService(5)

	b := mustBook(t, svc, "John Doe", window(10, 12))
	assert.NotEmpty(t, b.ID)
	assert.NotEmpty(t, b.Code)
	assert.Equal(t, "john-doe", b.HolderID)
	assert.Equal(t, 1, b.SlotID)
	assert.Equal(t, "ABC 123", b.Vehicle.Plate)
	assert.Equal(t, "Car", b.Vehicle.Type)
	assert.Equal(t, 2*500, b.PriceCents)
	assert.Equal(t, "Central Parking, Downtown", b.Location)
	assert.Equal(t, db.StatusUpcoming, svc.Status(b))
	assert.Equal(t, []string{b.Code}, notifier.created)
}

func TestInventoryExhaustionAndReassignment(t *testing.T) {
	svc, _ := newTestService(5)

	var bookings []*db.Booking
	for i := 0; i < 5; i++ {
		bookings = append(bookings, mustBook(t, svc, "Holder", window(10, 12)))
	}
	for i, b := range bookings {
		assert.Equal(t, i+1, b.SlotID)
	}

	_, err := svc.CreateBooking("Late", "", "", db.VehicleDetails{}, window(11, 13))
	assert.ErrorIs(t, err, apperrors.ErrNoSlotAvailable)

	// Cancelling the slot-3 booking frees exactly slot 3 for the retry.
	require.NoError(t, svc.CancelBooking(bookings[2].ID))
	b, err := svc.CreateBooking("Late", "", "", db.VehicleDetails{}, window(11, 13))
	require.NoError(t, err)
	assert.Equal(t, 3, b.SlotID)
}

func TestCancelBooking(t *testing.T) {
	svc, notifier := newTestService(5)

	b := mustBook(t, svc, "John Doe", window(10, 12))
	require.NoError(t, svc.CancelBooking(b.ID))

	got, err := svc.GetBooking(b.ID)
	require.NoError(t, err)
	assert.Equal(t, db.StatusCancelled, svc.Status(got))
	assert.Equal(t, []string{b.Code}, notifier.cancelled)

	// Cancellation is final.
	assert.ErrorIs(t, svc.CancelBooking(b.ID), apperrors.ErrAlreadyTerminal)
	assert.ErrorIs(t, svc.CancelBooking("no-such-id"), apperrors.ErrNotFound)
}

func TestCancelCompletedBookingFails(t *testing.T) {
	svc, _ := newTestService(5)

	iv := db.Interval{Start: testNow.Add(-2 * time.Minute), End: testNow.Add(time.Hour)}
	b, err := svc.CreateBooking("John Doe", "", "", db.VehicleDetails{}, iv)
	require.NoError(t, err)

	svc.now = func() time.Time { return iv.End.Add(time.Minute) }
	assert.ErrorIs(t, svc.CancelBooking(b.ID), apperrors.ErrAlreadyTerminal)
}

func TestExtendBookingConflictRollback(t *testing.T) {
	svc, _ := newTestService(1)

	first := mustBook(t, svc, "First", window(9, 11))
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	blocker := db.Interval{Start: day.Add(11*time.Hour + 15*time.Minute), End: day.Add(12 * time.Hour)}
	_, err := svc.CreateBooking("Second", "", "", db.VehicleDetails{}, blocker)
	require.NoError(t, err)

	_, err = svc.ExtendBooking(first.ID, day.Add(11*time.Hour+30*time.Minute))
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// The original interval is intact: the booking is unchanged and the
	// slot is still held for [09:00, 11:00).
	got, err := svc.GetBooking(first.ID)
	require.NoError(t, err)
	assert.True(t, got.Interval.Equal(window(9, 11)))
}

func TestExtendBookingSuccess(t *testing.T) {
	svc, _ := newTestService(1)

	b := mustBook(t, svc, "John Doe", window(9, 11))
	updated, err := svc.ExtendBooking(b.ID, window(9, 13).End)
	require.NoError(t, err)
	assert.True(t, updated.Interval.Equal(window(9, 13)))
	assert.Equal(t, 4*500, updated.PriceCents)

	_, err = svc.ExtendBooking(b.ID, window(9, 12).End)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInterval, "shrinking is not an extension")
}

func TestExtendTerminalBookingFails(t *testing.T) {
	svc, _ := newTestService(2)

	b := mustBook(t, svc, "John Doe", window(9, 11))
	require.NoError(t, svc.CancelBooking(b.ID))

	_, err := svc.ExtendBooking(b.ID, window(9, 12).End)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyTerminal)

	_, err = svc.ExtendBooking("no-such-id", window(9, 12).End)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListBookingsFilterAndOrder(t *testing.T) {
	svc, _ := newTestService(5)

	late := mustBook(t, svc, "John Doe", window(14, 16))
	early := mustBook(t, svc, "John Doe", window(9, 11))
	other := mustBook(t, svc, "Jane Roe", window(10, 12))
	require.NoError(t, svc.CancelBooking(late.ID))

	all := svc.ListBookings("", "")
	require.Len(t, all, 3)
	assert.Equal(t, early.ID, all[0].ID)
	assert.Equal(t, other.ID, all[1].ID)
	assert.Equal(t, late.ID, all[2].ID)

	johns := svc.ListBookings("john-doe", "")
	require.Len(t, johns, 2)

	cancelled := svc.ListBookings("john-doe", db.StatusCancelled)
	require.Len(t, cancelled, 1)
	assert.Equal(t, late.ID, cancelled[0].ID)

	upcoming := svc.ListBookings("", db.StatusUpcoming)
	require.Len(t, upcoming, 2)
}

func TestSlotGridAfterCancel(t *testing.T) {
	st := store.NewSlotStore(3)
	notifier := &fakeNotifier{}
	svc := NewBookingService(st, notifier, "loc", "owner", 500)
	svc.now = func() time.Time { return testNow }
	grid := NewAvailabilityQuery(st)

	b := mustBook(t, svc, "John Doe", window(10, 12))
	during := window(10, 12).Start.Add(30 * time.Minute)
	assert.Equal(t, store.SlotBooked, grid.SlotGrid(during)[b.SlotID])

	require.NoError(t, svc.CancelBooking(b.ID))
	for _, at := range []time.Time{window(10, 12).Start, during, window(10, 12).End.Add(-time.Second)} {
		assert.Equal(t, store.SlotFree, grid.SlotGrid(at)[b.SlotID])
	}
}

func TestPriceCentsTiers(t *testing.T) {
	svc, _ := newTestService(1)

	tests := []struct {
		name string
		d    time.Duration
		want int
	}{
		{"one hour", time.Hour, 500},
		{"partial hour rounds up", 90 * time.Minute, 1000},
		{"sub hour charges one hour", 20 * time.Minute, 500},
		{"one day", 24 * time.Hour, 500 * 20},
		{"day and a half", 36 * time.Hour, 500 * 20 * 2},
		{"one week", 7 * 24 * time.Hour, 500 * 110},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv := db.Interval{Start: testNow, End: testNow.Add(tt.d)}
			assert.Equal(t, tt.want, svc.PriceCents(iv))
		})
	}
}

func TestPurgeTerminal(t *testing.T) {
	svc, _ := newTestService(5)

	kept := mustBook(t, svc, "Keep", window(10, 12))
	gone := mustBook(t, svc, "Gone", window(9, 11))
	require.NoError(t, svc.CancelBooking(gone.ID))

	archiver := &fakeArchiver{}
	purged, err := svc.PurgeTerminal(archiver)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)
	require.Len(t, archiver.archived, 1)
	assert.Equal(t, gone.ID, archiver.archived[0].ID)
	assert.Equal(t, db.StatusCancelled, archiver.archived[0].FinalStatus)

	_, err = svc.GetBooking(gone.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = svc.GetBooking(kept.ID)
	assert.NoError(t, err)
}

func TestPurgeKeepsBookingsWhenArchiveFails(t *testing.T) {
	svc, _ := newTestService(5)

	gone := mustBook(t, svc, "Gone", window(9, 11))
	require.NoError(t, svc.CancelBooking(gone.ID))

	archiver := &fakeArchiver{err: assert.AnError}
	_, err := svc.PurgeTerminal(archiver)
	require.Error(t, err)

	// Archive failure must not lose the record.
	_, err = svc.GetBooking(gone.ID)
	assert.NoError(t, err)
}

func TestConcurrentCreateBookings(t *testing.T) {
	const slots = 5
	svc, _ := newTestService(slots)

	var wg sync.WaitGroup
	results := make(chan *db.Booking, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if b, err := svc.CreateBooking("Racer", "", "", db.VehicleDetails{}, window(10, 12)); err == nil {
				results <- b
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int]bool)
	count := 0
	for b := range results {
		assert.False(t, seen[b.SlotID])
		seen[b.SlotID] = true
		count++
	}
	assert.Equal(t, slots, count)
}
