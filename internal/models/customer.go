package models

import "time"

type Customer struct {
	ID               string       `json:"id"`
	QueueSeq         int          `json:"queue_seq"`
	QueueNumber      string       `json:"queue_number"`
	FullName         string       `json:"full_name"`
	ContactNumber    string       `json:"contact_number,omitempty"`
	Category         string       `json:"category"`
	Service          string       `json:"service,omitempty"`
	Services         []string     `json:"services,omitempty"`
	Urgency          int          `json:"urgency"`
	Appointment      *Appointment `json:"appointment,omitempty"`
	Status           string       `json:"status"`
	RegisteredAt     time.Time    `json:"registered_at"`
	ServingStartedAt *time.Time   `json:"serving_started_at,omitempty"`
	ServedAt         *time.Time   `json:"served_at,omitempty"`
}

// Appointment is informational only: it is stored and echoed back but never
// feeds the score or the ordering tie-breaks.
type Appointment struct {
	Status string `json:"status"`
	Date   string `json:"date,omitempty"`
	Time   string `json:"time,omitempty"`
}

const (
	StatusWaiting = "waiting"
	StatusServing = "serving"
	StatusServed  = "served"
)

const (
	CategoryRegular       = "Regular"
	CategorySeniorCitizen = "Senior Citizen"
	CategoryPWD           = "PWD"
	CategoryPregnant      = "Pregnant"
)

func ValidCategory(category string) bool {
	switch category {
	case CategoryRegular, CategorySeniorCitizen, CategoryPWD, CategoryPregnant:
		return true
	}
	return false
}

// WaitMinutes is the customer's wait in whole minutes: now-registeredAt while
// waiting or serving, servedAt-registeredAt once served.
func (c Customer) WaitMinutes(now time.Time) int {
	end := now
	if c.Status == StatusServed && c.ServedAt != nil {
		end = *c.ServedAt
	}
	minutes := int(end.Sub(c.RegisteredAt).Minutes())
	if minutes < 0 {
		return 0
	}
	return minutes
}
