package queue

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/superchezzz/daa-ayospila/internal/scoring"
	"github.com/superchezzz/daa-ayospila/internal/store"
)

type Alert struct {
	CustomerID  string `json:"customer_id"`
	QueueNumber string `json:"queue_number"`
	WaitMinutes int    `json:"wait_minutes"`
	Message     string `json:"message"`
}

// Monitor surfaces customers whose wait has crossed the alert threshold.
// It is a read-side view only: the aging bonus already guarantees eventual
// promotion, the monitor just makes the promotion visible before it wins.
type Monitor struct {
	store            store.CustomerStore
	weights          scoring.Weights
	thresholdMinutes int
	now              func() time.Time
}

func NewMonitor(st store.CustomerStore, weights scoring.Weights, thresholdMinutes int) *Monitor {
	return &Monitor{
		store:            st,
		weights:          weights,
		thresholdMinutes: thresholdMinutes,
		now:              time.Now,
	}
}

// Alerts lists all waiting customers at or past the threshold, longest wait
// first.
func (m *Monitor) Alerts(ctx context.Context) ([]Alert, error) {
	waiting, err := m.store.ListWaiting(ctx)
	if err != nil {
		return nil, err
	}

	now := m.now()
	var alerts []Alert
	for _, customer := range waiting {
		waitMinutes := customer.WaitMinutes(now)
		if waitMinutes < m.thresholdMinutes {
			continue
		}
		bonus := m.weights.AgingBonus(waitMinutes)
		alerts = append(alerts, Alert{
			CustomerID:  customer.ID,
			QueueNumber: customer.QueueNumber,
			WaitMinutes: waitMinutes,
			Message:     fmt.Sprintf("%s (%s) - %d Minute Wait (+%d Aging Bonus)", customer.FullName, customer.Category, waitMinutes, bonus),
		})
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].WaitMinutes > alerts[j].WaitMinutes
	})
	return alerts, nil
}
