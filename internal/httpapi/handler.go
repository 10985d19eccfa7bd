package httpapi

import (
	"encoding/json"
	"errors"
	"expvar"
	"net/http"
	"strings"
	"time"

	"github.com/superchezzz/daa-ayospila/internal/analytics"
	"github.com/superchezzz/daa-ayospila/internal/models"
	"github.com/superchezzz/daa-ayospila/internal/queue"
	"github.com/superchezzz/daa-ayospila/internal/scoring"
	"github.com/superchezzz/daa-ayospila/internal/store"
)

type Handler struct {
	store      store.CustomerStore
	scheduler  *queue.Scheduler
	monitor    *queue.Monitor
	aggregator *analytics.Aggregator
	weights    scoring.Weights
}

func NewHandler(st store.CustomerStore, scheduler *queue.Scheduler, monitor *queue.Monitor, aggregator *analytics.Aggregator, weights scoring.Weights) *Handler {
	return &Handler{
		store:      st,
		scheduler:  scheduler,
		monitor:    monitor,
		aggregator: aggregator,
		weights:    weights,
	}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", expvar.Handler())
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/api/customers", h.handleCustomers)
	mux.HandleFunc("/api/queue", h.handleQueue)
	mux.HandleFunc("/api/queue/serve-next", h.handleServeNext)
	mux.HandleFunc("/api/analytics", h.handleAnalytics)
	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type registerRequest struct {
	FullName      string              `json:"fullName"`
	ContactNumber string              `json:"contactNumber"`
	Category      string              `json:"category"`
	Urgency       int                 `json:"urgency"`
	Appointment   *models.Appointment `json:"appointment"`
	Services      []string            `json:"services"`
}

type registeredCustomer struct {
	ID            string `json:"id"`
	QueueNumber   string `json:"queueNumber"`
	FullName      string `json:"fullName"`
	Category      string `json:"category"`
	PriorityScore int    `json:"priorityScore"`
	Status        string `json:"status"`
}

func (h *Handler) handleCustomers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req registerRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Category = strings.TrimSpace(req.Category)
	req.ContactNumber = strings.TrimSpace(req.ContactNumber)

	if req.FullName == "" || req.Category == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "fullName and category are required")
		return
	}
	if !models.ValidCategory(req.Category) {
		writeError(w, http.StatusBadRequest, "invalid_request", "category must be one of Regular, Senior Citizen, PWD, Pregnant")
		return
	}
	if req.Urgency == 0 {
		req.Urgency = 1
	}
	if req.Urgency < 1 || req.Urgency > 5 {
		writeError(w, http.StatusBadRequest, "invalid_request", "urgency must be between 1 and 5")
		return
	}
	for _, service := range req.Services {
		if !models.ValidService(service) {
			writeError(w, http.StatusBadRequest, "invalid_request", "unknown service: "+service)
			return
		}
	}
	if req.Appointment != nil && req.Appointment.Status != "" && req.Appointment.Status != "yes" && req.Appointment.Status != "no" {
		writeError(w, http.StatusBadRequest, "invalid_request", "appointment status must be yes or no")
		return
	}

	customer, err := h.store.AddCustomer(r.Context(), store.AddCustomerInput{
		FullName:      req.FullName,
		ContactNumber: req.ContactNumber,
		Category:      req.Category,
		Services:      req.Services,
		Urgency:       req.Urgency,
		Appointment:   req.Appointment,
		RegisteredAt:  time.Now(),
	})
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	score, _ := h.weights.Score(customer, customer.RegisteredAt)
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"customer": registeredCustomer{
			ID:            customer.ID,
			QueueNumber:   customer.QueueNumber,
			FullName:      customer.FullName,
			Category:      customer.Category,
			PriorityScore: score,
			Status:        customer.Status,
		},
	})
}

type queueEntry struct {
	ID          string        `json:"id"`
	QueueNumber string        `json:"queueNumber"`
	Name        string        `json:"name"`
	Category    string        `json:"category"`
	Service     string        `json:"service"`
	Priority    entryPriority `json:"priority"`
	WaitTime    int           `json:"waitTime"`
	Urgency     int           `json:"urgency"`
}

type entryPriority struct {
	Level scoring.Level `json:"level"`
	Score int           `json:"score"`
}

type servingCustomer struct {
	QueueNumber string `json:"queueNumber"`
	FullName    string `json:"fullName"`
	Service     string `json:"service,omitempty"`
	Category    string `json:"category"`
	Score       int    `json:"score"`
}

type queueResponse struct {
	CurrentlyServing     *servingCustomer `json:"currentlyServing"`
	Queue                []queueEntry     `json:"queue"`
	AntiStarvationAlerts []alertMessage   `json:"antiStarvationAlerts"`
}

type alertMessage struct {
	Message string `json:"message"`
}

func (h *Handler) handleQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	entries, err := h.scheduler.Snapshot(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	alerts, err := h.monitor.Alerts(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	serving, found, err := h.store.CurrentlyServing(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	response := queueResponse{
		Queue:                make([]queueEntry, 0, len(entries)),
		AntiStarvationAlerts: make([]alertMessage, 0, len(alerts)),
	}
	for _, entry := range entries {
		response.Queue = append(response.Queue, queueEntry{
			ID:          entry.Customer.ID,
			QueueNumber: entry.Customer.QueueNumber,
			Name:        entry.Customer.FullName,
			Category:    entry.Customer.Category,
			Service:     entry.Customer.Service,
			Priority:    entryPriority{Level: entry.Level, Score: entry.Score},
			WaitTime:    entry.WaitMinutes,
			Urgency:     entry.Customer.Urgency,
		})
	}
	for _, alert := range alerts {
		response.AntiStarvationAlerts = append(response.AntiStarvationAlerts, alertMessage{Message: alert.Message})
	}
	if found {
		score, _ := h.weights.Score(serving, time.Now())
		response.CurrentlyServing = &servingCustomer{
			QueueNumber: serving.QueueNumber,
			FullName:    serving.FullName,
			Service:     serving.Service,
			Category:    serving.Category,
			Score:       score,
		}
	}

	writeJSON(w, http.StatusOK, response)
}

type serveNextResponse struct {
	Success           bool             `json:"success"`
	PreviouslyServing *servedCustomer  `json:"previouslyServing"`
	NowServing        *servingCustomer `json:"nowServing"`
}

type servedCustomer struct {
	QueueNumber string `json:"queueNumber"`
	FullName    string `json:"fullName"`
	Status      string `json:"status"`
}

func (h *Handler) handleServeNext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	result, err := h.scheduler.ServeNext(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	response := serveNextResponse{Success: true}
	if result.PreviouslyServing != nil {
		response.PreviouslyServing = &servedCustomer{
			QueueNumber: result.PreviouslyServing.QueueNumber,
			FullName:    result.PreviouslyServing.FullName,
			Status:      result.PreviouslyServing.Status,
		}
	}
	if result.NowServing != nil {
		score, _ := h.weights.Score(*result.NowServing, time.Now())
		response.NowServing = &servingCustomer{
			QueueNumber: result.NowServing.QueueNumber,
			FullName:    result.NowServing.FullName,
			Service:     result.NowServing.Service,
			Category:    result.NowServing.Category,
			Score:       score,
		}
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	report, err := h.aggregator.Report(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func mapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, store.ErrCustomerNotFound):
		return http.StatusNotFound, "customer_not_found", "customer not found"
	case errors.Is(err, store.ErrInvalidTransition):
		return http.StatusConflict, "invalid_state", "customer state does not allow this action"
	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
