package analytics

import (
	"context"
	"time"

	"github.com/superchezzz/daa-ayospila/internal/models"
	"github.com/superchezzz/daa-ayospila/internal/scoring"
	"github.com/superchezzz/daa-ayospila/internal/store"
)

type ServiceAnalytics struct {
	TotalCustomersToday     int    `json:"totalCustomersToday"`
	AverageWaitTime         Metric `json:"averageWaitTime"`
	PriorityCustomersServed int    `json:"priorityCustomersServed"`
	CurrentQueueLength      int    `json:"currentQueueLength"`
}

type FairnessMetrics struct {
	PWDAverageWaitTime           Metric `json:"pwdAverageWaitTime"`
	SeniorCitizenAverageWaitTime Metric `json:"seniorCitizenAverageWaitTime"`
	PregnantAverageWaitTime      Metric `json:"pregnantAverageWaitTime"`
	EmergencyResponseTime        Metric `json:"emergencyResponseTime"`
}

type Report struct {
	ServiceAnalytics ServiceAnalytics `json:"ltoServiceAnalytics"`
	FairnessMetrics  FairnessMetrics  `json:"fairnessMetrics"`
}

// Aggregator derives the same-day summary statistics from the record store.
// Pure read side: nothing here mutates queue state.
type Aggregator struct {
	store           store.CustomerStore
	weights         scoring.Weights
	dayBoundaryHour int
	now             func() time.Time
}

func NewAggregator(st store.CustomerStore, weights scoring.Weights, dayBoundaryHour int) *Aggregator {
	return &Aggregator{
		store:           st,
		weights:         weights,
		dayBoundaryHour: dayBoundaryHour,
		now:             time.Now,
	}
}

// Report computes the analytics over customers registered in the current
// service day. Metrics with an empty underlying population come back as
// N/A, never as a computed zero.
func (a *Aggregator) Report(ctx context.Context) (Report, error) {
	now := a.now()
	customers, err := a.store.ListRegisteredSince(ctx, a.dayStart(now))
	if err != nil {
		return Report{}, err
	}

	var report Report
	report.ServiceAnalytics.TotalCustomersToday = len(customers)

	var served meanAccumulator
	perCategory := map[string]*meanAccumulator{
		models.CategoryPWD:           {},
		models.CategorySeniorCitizen: {},
		models.CategoryPregnant:      {},
	}
	var emergency meanAccumulator

	for _, customer := range customers {
		if customer.Status == models.StatusWaiting {
			report.ServiceAnalytics.CurrentQueueLength++
		}
		if customer.Status == models.StatusServed {
			waitMinutes := customer.ServedAt.Sub(customer.RegisteredAt).Minutes()
			served.add(waitMinutes)
			if acc, ok := perCategory[customer.Category]; ok {
				acc.add(waitMinutes)
			}
			if customer.Category != models.CategoryRegular {
				report.ServiceAnalytics.PriorityCustomersServed++
			}
		}
		if customer.ServingStartedAt != nil {
			score, _ := a.weights.Score(customer, *customer.ServingStartedAt)
			if a.weights.LevelFor(score) == scoring.LevelHigh {
				emergency.add(customer.ServingStartedAt.Sub(customer.RegisteredAt).Minutes())
			}
		}
	}

	report.ServiceAnalytics.AverageWaitTime = served.metric()
	report.FairnessMetrics.PWDAverageWaitTime = perCategory[models.CategoryPWD].metric()
	report.FairnessMetrics.SeniorCitizenAverageWaitTime = perCategory[models.CategorySeniorCitizen].metric()
	report.FairnessMetrics.PregnantAverageWaitTime = perCategory[models.CategoryPregnant].metric()
	report.FairnessMetrics.EmergencyResponseTime = emergency.metric()

	return report, nil
}

// dayStart is the most recent day-boundary instant at or before now.
func (a *Aggregator) dayStart(now time.Time) time.Time {
	start := time.Date(now.Year(), now.Month(), now.Day(), a.dayBoundaryHour, 0, 0, 0, now.Location())
	if now.Before(start) {
		start = start.AddDate(0, 0, -1)
	}
	return start
}

type meanAccumulator struct {
	sum   float64
	count int
}

func (m *meanAccumulator) add(value float64) {
	m.sum += value
	m.count++
}

func (m *meanAccumulator) metric() Metric {
	if m.count == 0 {
		return Metric{}
	}
	return Metric{Valid: true, Value: m.sum / float64(m.count)}
}
