package queue

import (
	"context"
	"sort"
	"time"

	"github.com/superchezzz/daa-ayospila/internal/models"
	"github.com/superchezzz/daa-ayospila/internal/scoring"
	"github.com/superchezzz/daa-ayospila/internal/store"
)

// Entry is one ranked row of the waiting list. Score, level and wait are
// decorations computed against the instant the snapshot was taken; they are
// never stored.
type Entry struct {
	Customer    models.Customer
	Score       int
	Level       scoring.Level
	WaitMinutes int
}

// Scheduler ranks the waiting set by live score and drives the single
// serve-next transition. It owns no state of its own; every call recomputes
// from a fresh store snapshot.
type Scheduler struct {
	store   store.CustomerStore
	weights scoring.Weights
	now     func() time.Time
}

func NewScheduler(st store.CustomerStore, weights scoring.Weights) *Scheduler {
	return &Scheduler{
		store:   st,
		weights: weights,
		now:     time.Now,
	}
}

// Snapshot returns the full waiting list ranked by score descending, ties
// broken by registration time then queue sequence.
func (s *Scheduler) Snapshot(ctx context.Context) ([]Entry, error) {
	waiting, err := s.store.ListWaiting(ctx)
	if err != nil {
		return nil, err
	}
	return s.rank(waiting, s.now()), nil
}

// PeekNext returns the highest-ranked waiting customer without mutating
// anything, or nil when the waiting set is empty.
func (s *Scheduler) PeekNext(ctx context.Context) (*Entry, error) {
	entries, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// ServeNext advances the queue atomically: the current occupant of the
// serving slot (if any) becomes served, the top-ranked waiting customer
// becomes serving. The ranking decision runs inside the store's writer
// critical section, so two concurrent callers can never both win the same
// slot. An empty waiting set is a valid outcome, not an error.
func (s *Scheduler) ServeNext(ctx context.Context) (store.ServeNextResult, error) {
	now := s.now()
	return s.store.ServeNext(ctx, now, func(waiting []models.Customer) (string, bool) {
		ranked := s.rank(waiting, now)
		if len(ranked) == 0 {
			return "", false
		}
		return ranked[0].Customer.ID, true
	})
}

func (s *Scheduler) rank(waiting []models.Customer, now time.Time) []Entry {
	entries := make([]Entry, 0, len(waiting))
	for _, customer := range waiting {
		score, level := s.weights.Score(customer, now)
		entries = append(entries, Entry{
			Customer:    customer,
			Score:       score,
			Level:       level,
			WaitMinutes: customer.WaitMinutes(now),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if !entries[i].Customer.RegisteredAt.Equal(entries[j].Customer.RegisteredAt) {
			return entries[i].Customer.RegisteredAt.Before(entries[j].Customer.RegisteredAt)
		}
		return entries[i].Customer.QueueSeq < entries[j].Customer.QueueSeq
	})
	return entries
}
