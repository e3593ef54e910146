package service

import (
	"log"
	"time"

	"parkmate/internal/store"
)

// expiredRetention is how long a finished interval stays in the store
// before the sweep drops it. Status is never written by the sweep; it is
// derived on every read.
const expiredRetention = 24 * time.Hour

type JobService struct {
	store *store.SlotStore
}

func NewJobService(st *store.SlotStore) *JobService {
	return &JobService{store: st}
}

// PruneExpiredIntervals drops store intervals that ended longer than the
// retention window ago so per-slot scans stay short.
func (s *JobService) PruneExpiredIntervals() {
	cutoff := time.Now().UTC().Add(-expiredRetention)
	pruned := s.store.PruneBefore(cutoff)
	if pruned > 0 {
		log.Printf("Cron Job: pruned %d expired slot intervals", pruned)
	}
}
