package store

import (
	"context"
	"time"

	"github.com/superchezzz/daa-ayospila/internal/models"
)

type AddCustomerInput struct {
	FullName      string
	ContactNumber string
	Category      string
	Services      []string
	Urgency       int
	Appointment   *models.Appointment
	RegisteredAt  time.Time
}

// PickFunc selects the id of the customer to serve next from the current
// waiting set, or ok=false when nothing should be picked. The store calls it
// inside its writer critical section so the decision and the commit see the
// same state.
type PickFunc func(waiting []models.Customer) (id string, ok bool)

type ServeNextResult struct {
	PreviouslyServing *models.Customer
	NowServing        *models.Customer
}

// CustomerStore owns all mutable queue state. Registration and ServeNext are
// the only writers and are serialized by the implementation; every read
// returns an independent snapshot that later mutations cannot touch.
type CustomerStore interface {
	AddCustomer(ctx context.Context, input AddCustomerInput) (models.Customer, error)
	GetCustomer(ctx context.Context, id string) (models.Customer, error)
	ListWaiting(ctx context.Context) ([]models.Customer, error)
	CurrentlyServing(ctx context.Context) (models.Customer, bool, error)
	ListRegisteredSince(ctx context.Context, since time.Time) ([]models.Customer, error)
	ServeNext(ctx context.Context, now time.Time, pick PickFunc) (ServeNextResult, error)
}
