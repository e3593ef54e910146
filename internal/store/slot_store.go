package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"parkmate/internal/db"
	apperrors "parkmate/internal/errors"
)

// SlotState is the availability of one slot at a point in time.
type SlotState string

const (
	SlotFree   SlotState = "free"
	SlotBooked SlotState = "booked"
)

// SlotStore owns the fixed inventory of parking slots and the reserved
// intervals on each of them. Every mutation runs under a single mutex so
// that a reserve, release or replace is observed either fully applied or
// not at all. Intervals within a slot are kept disjoint and sorted by
// start time.
type SlotStore struct {
	mu    sync.Mutex
	slots [][]db.Interval // index i holds the intervals of slot i+1
}

// NewSlotStore builds a store with slots numbered 1..slotCount, all free.
func NewSlotStore(slotCount int) *SlotStore {
	if slotCount < 1 {
		slotCount = 1
	}
	return &SlotStore{slots: make([][]db.Interval, slotCount)}
}

func (s *SlotStore) SlotCount() int {
	return len(s.slots)
}

// Reserve assigns iv to a slot and returns its id. With hint == 0 slots are
// scanned in ascending id order and the first one whose intervals are all
// disjoint from iv wins; with a hint only that slot is attempted. Fails
// with ErrNoSlotAvailable when nothing can accommodate the interval.
func (s *SlotStore) Reserve(hint int, iv db.Interval) (int, error) {
	if !iv.End.After(iv.Start) {
		return 0, apperrors.ErrInvalidInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if hint != 0 {
		if hint < 1 || hint > len(s.slots) {
			return 0, fmt.Errorf("slot %d: %w", hint, apperrors.ErrNoSlotAvailable)
		}
		if !s.fitsLocked(hint, iv) {
			return 0, apperrors.ErrNoSlotAvailable
		}
		s.insertLocked(hint, iv)
		return hint, nil
	}

	for id := 1; id <= len(s.slots); id++ {
		if s.fitsLocked(id, iv) {
			s.insertLocked(id, iv)
			return id, nil
		}
	}
	return 0, apperrors.ErrNoSlotAvailable
}

// Release removes the exact interval iv from the slot. Fails with
// ErrIntervalNotFound if no reserved interval matches it.
func (s *SlotStore) Release(slotID int, iv db.Interval) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(slotID, iv)
}

// Replace swaps old for updated on the same slot as one atomic step. If
// updated conflicts with any other interval on the slot, the store is left
// exactly as it was and ErrConflict is returned.
func (s *SlotStore) Replace(slotID int, old, updated db.Interval) error {
	if !updated.End.After(updated.Start) {
		return apperrors.ErrInvalidInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.removeLocked(slotID, old); err != nil {
		return err
	}
	if !s.fitsLocked(slotID, updated) {
		// Roll back: the old interval came out of this slot, so it fits.
		s.insertLocked(slotID, old)
		return apperrors.ErrConflict
	}
	s.insertLocked(slotID, updated)
	return nil
}

// IsFreeAt reports whether no reserved interval on the slot covers t.
func (s *SlotStore) IsFreeAt(slotID int, t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slotID < 1 || slotID > len(s.slots) {
		return false
	}
	for _, existing := range s.slots[slotID-1] {
		if existing.Contains(t) {
			return false
		}
	}
	return true
}

// IsFree reports whether no reserved interval on the slot overlaps iv.
func (s *SlotStore) IsFree(slotID int, iv db.Interval) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slotID < 1 || slotID > len(s.slots) {
		return false
	}
	return s.fitsLocked(slotID, iv)
}

// FreeSlotIDs returns, in ascending order, every slot with no interval
// overlapping iv.
func (s *SlotStore) FreeSlotIDs(iv db.Interval) []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var free []int
	for id := 1; id <= len(s.slots); id++ {
		if s.fitsLocked(id, iv) {
			free = append(free, id)
		}
	}
	return free
}

// SlotGrid reports, for every slot, whether it is free or booked at the
// given instant. Always recomputed from current state; never cached.
func (s *SlotStore) SlotGrid(at time.Time) map[int]SlotState {
	s.mu.Lock()
	defer s.mu.Unlock()

	grid := make(map[int]SlotState, len(s.slots))
	for id := 1; id <= len(s.slots); id++ {
		grid[id] = SlotFree
		for _, existing := range s.slots[id-1] {
			if existing.Contains(at) {
				grid[id] = SlotBooked
				break
			}
		}
	}
	return grid
}

// PruneBefore drops every interval that ended at or before cutoff and
// returns how many were removed. Used by the maintenance sweep; bookings
// referencing a pruned interval are terminal by time already.
func (s *SlotStore) PruneBefore(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for i, intervals := range s.slots {
		kept := intervals[:0]
		for _, iv := range intervals {
			if iv.End.After(cutoff) {
				kept = append(kept, iv)
			} else {
				pruned++
			}
		}
		s.slots[i] = kept
	}
	return pruned
}

// CheckInvariant panics if any slot holds overlapping or unsorted
// intervals. A violation means an atomicity bug, not a user error.
func (s *SlotStore) CheckInvariant() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, intervals := range s.slots {
		for j := 1; j < len(intervals); j++ {
			if intervals[j].Start.Before(intervals[j-1].End) {
				panic(fmt.Sprintf("slot %d: intervals %v and %v overlap or are unsorted",
					i+1, intervals[j-1], intervals[j]))
			}
		}
	}
}

func (s *SlotStore) fitsLocked(slotID int, iv db.Interval) bool {
	for _, existing := range s.slots[slotID-1] {
		if existing.Overlaps(iv) {
			return false
		}
	}
	return true
}

func (s *SlotStore) insertLocked(slotID int, iv db.Interval) {
	intervals := s.slots[slotID-1]
	at := sort.Search(len(intervals), func(i int) bool {
		return intervals[i].Start.After(iv.Start)
	})
	intervals = append(intervals, db.Interval{})
	copy(intervals[at+1:], intervals[at:])
	intervals[at] = iv
	s.slots[slotID-1] = intervals
}

func (s *SlotStore) removeLocked(slotID int, iv db.Interval) error {
	if slotID < 1 || slotID > len(s.slots) {
		return apperrors.ErrIntervalNotFound
	}
	intervals := s.slots[slotID-1]
	for i, existing := range intervals {
		if existing.Equal(iv) {
			s.slots[slotID-1] = append(intervals[:i], intervals[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrIntervalNotFound
}
