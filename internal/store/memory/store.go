package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/superchezzz/daa-ayospila/internal/models"
	"github.com/superchezzz/daa-ayospila/internal/store"

	"github.com/google/uuid"
)

const queueNumberPad = 3

// Store keeps all queue state in process memory. Writers (AddCustomer,
// ServeNext) take the write lock for their whole critical section; readers
// take the read lock and return deep copies, so a snapshot handed out never
// observes a later mutation.
type Store struct {
	mu        sync.RWMutex
	customers map[string]*models.Customer
	seq       int
	servingID string
}

func NewStore() *Store {
	return &Store{
		customers: make(map[string]*models.Customer),
	}
}

func (s *Store) AddCustomer(ctx context.Context, input store.AddCustomerInput) (models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	registeredAt := input.RegisteredAt
	if registeredAt.IsZero() {
		registeredAt = time.Now()
	}

	customer := &models.Customer{
		ID:            uuid.NewString(),
		QueueSeq:      s.seq,
		QueueNumber:   formatQueueNumber(input.Category, s.seq),
		FullName:      input.FullName,
		ContactNumber: input.ContactNumber,
		Category:      input.Category,
		Urgency:       input.Urgency,
		Status:        models.StatusWaiting,
		RegisteredAt:  registeredAt,
	}
	if len(input.Services) > 0 {
		customer.Services = append([]string(nil), input.Services...)
		customer.Service = input.Services[0]
	}
	if input.Appointment != nil {
		appointment := *input.Appointment
		customer.Appointment = &appointment
	}

	s.customers[customer.ID] = customer
	return cloneCustomer(customer), nil
}

func (s *Store) GetCustomer(ctx context.Context, id string) (models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, ok := s.customers[id]
	if !ok {
		return models.Customer{}, store.ErrCustomerNotFound
	}
	return cloneCustomer(customer), nil
}

func (s *Store) ListWaiting(ctx context.Context) ([]models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listWaitingLocked(), nil
}

func (s *Store) CurrentlyServing(ctx context.Context) (models.Customer, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.servingID == "" {
		return models.Customer{}, false, nil
	}
	customer, ok := s.customers[s.servingID]
	if !ok {
		return models.Customer{}, false, nil
	}
	return cloneCustomer(customer), true, nil
}

func (s *Store) ListRegisteredSince(ctx context.Context, since time.Time) ([]models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Customer, 0, len(s.customers))
	for _, customer := range s.customers {
		if customer.RegisteredAt.Before(since) {
			continue
		}
		result = append(result, cloneCustomer(customer))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].QueueSeq < result[j].QueueSeq
	})
	return result, nil
}

func (s *Store) ServeNext(ctx context.Context, now time.Time, pick store.PickFunc) (store.ServeNextResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result store.ServeNextResult

	if s.servingID != "" {
		previous := s.customers[s.servingID]
		if previous != nil && store.ValidTransition(previous.Status, models.StatusServed) {
			previous.Status = models.StatusServed
			servedAt := now
			previous.ServedAt = &servedAt
			done := cloneCustomer(previous)
			result.PreviouslyServing = &done
		}
		s.servingID = ""
	}

	waiting := s.listWaitingLocked()
	if len(waiting) == 0 {
		return result, nil
	}

	id, ok := pick(waiting)
	if !ok {
		return result, nil
	}
	next, found := s.customers[id]
	if !found {
		return store.ServeNextResult{}, store.ErrCustomerNotFound
	}
	if !store.ValidTransition(next.Status, models.StatusServing) {
		return store.ServeNextResult{}, store.ErrInvalidTransition
	}

	next.Status = models.StatusServing
	startedAt := now
	next.ServingStartedAt = &startedAt
	s.servingID = next.ID

	serving := cloneCustomer(next)
	result.NowServing = &serving
	return result, nil
}

func (s *Store) listWaitingLocked() []models.Customer {
	waiting := make([]models.Customer, 0, len(s.customers))
	for _, customer := range s.customers {
		if customer.Status != models.StatusWaiting {
			continue
		}
		waiting = append(waiting, cloneCustomer(customer))
	}
	sort.Slice(waiting, func(i, j int) bool {
		return waiting[i].QueueSeq < waiting[j].QueueSeq
	})
	return waiting
}

func cloneCustomer(c *models.Customer) models.Customer {
	clone := *c
	if c.Services != nil {
		clone.Services = append([]string(nil), c.Services...)
	}
	if c.Appointment != nil {
		appointment := *c.Appointment
		clone.Appointment = &appointment
	}
	if c.ServingStartedAt != nil {
		startedAt := *c.ServingStartedAt
		clone.ServingStartedAt = &startedAt
	}
	if c.ServedAt != nil {
		servedAt := *c.ServedAt
		clone.ServedAt = &servedAt
	}
	return clone
}

func formatQueueNumber(category string, seq int) string {
	prefix := "Q"
	if category != "" {
		prefix = string(category[0])
	}
	return fmt.Sprintf("%s-%0*d", prefix, queueNumberPad, seq)
}
