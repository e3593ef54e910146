package service

import (
	"time"

	"parkmate/internal/db"
	"parkmate/internal/store"
)

// AvailabilityQuery answers "what is free" for the slot grid. It is
// read-only over the SlotStore and recomputes on every call; a cached
// answer here is exactly what causes double-booking in the UI.
type AvailabilityQuery struct {
	store *store.SlotStore
}

func NewAvailabilityQuery(st *store.SlotStore) *AvailabilityQuery {
	return &AvailabilityQuery{store: st}
}

// SlotGrid maps every slot id to free or booked at the given instant.
func (q *AvailabilityQuery) SlotGrid(at time.Time) map[int]store.SlotState {
	return q.store.SlotGrid(at)
}

// BookedSlots returns the ids of slots occupied at the given instant, in
// ascending order.
func (q *AvailabilityQuery) BookedSlots(at time.Time) []int {
	grid := q.store.SlotGrid(at)
	var booked []int
	for id := 1; id <= q.store.SlotCount(); id++ {
		if grid[id] == store.SlotBooked {
			booked = append(booked, id)
		}
	}
	return booked
}

// FreeSlots returns the ids of slots with no reservation overlapping the
// window, in ascending order.
func (q *AvailabilityQuery) FreeSlots(iv db.Interval) []int {
	return q.store.FreeSlotIDs(iv)
}
