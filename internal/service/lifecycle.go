package service

import (
	"time"

	"parkmate/internal/db"
)

// StatusOf derives the lifecycle state of a booking from its interval, the
// clock, and the cancelled flag. Pure function; called on every read so a
// stored status can never drift from the wall clock. Cancellation is
// terminal and overrides everything else.
func StatusOf(iv db.Interval, now time.Time, cancelled bool) db.Status {
	switch {
	case cancelled:
		return db.StatusCancelled
	case now.Before(iv.Start):
		return db.StatusUpcoming
	case now.Before(iv.End):
		return db.StatusActive
	default:
		return db.StatusCompleted
	}
}
