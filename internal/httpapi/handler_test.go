package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/superchezzz/daa-ayospila/internal/analytics"
	"github.com/superchezzz/daa-ayospila/internal/models"
	"github.com/superchezzz/daa-ayospila/internal/queue"
	"github.com/superchezzz/daa-ayospila/internal/scoring"
	"github.com/superchezzz/daa-ayospila/internal/store"
	"github.com/superchezzz/daa-ayospila/internal/store/memory"
)

func newTestHandler() (*Handler, *memory.Store) {
	st := memory.NewStore()
	weights := scoring.DefaultWeights()
	scheduler := queue.NewScheduler(st, weights)
	monitor := queue.NewMonitor(st, weights, 10)
	aggregator := analytics.NewAggregator(st, weights, 0)
	return NewHandler(st, scheduler, monitor, aggregator, weights), st
}

func postJSON(t *testing.T, handler http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func getJSON(t *testing.T, handler http.Handler, path string, target any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	if target != nil {
		if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return recorder
}

func TestRegisterCustomerSuccess(t *testing.T) {
	h, _ := newTestHandler()
	recorder := postJSON(t, h.Routes(), "/api/customers", map[string]any{
		"fullName":      "Ana Reyes",
		"contactNumber": "09171234567",
		"category":      "Regular",
		"urgency":       1,
		"services":      []string{"Driver's License Renewal"},
		"appointment":   map[string]string{"status": "no"},
	})

	if recorder.Code != http.StatusCreated {
		t.Fatalf("status=%d, want 201: %s", recorder.Code, recorder.Body.String())
	}

	var response struct {
		Success  bool `json:"success"`
		Customer struct {
			ID            string `json:"id"`
			QueueNumber   string `json:"queueNumber"`
			FullName      string `json:"fullName"`
			PriorityScore int    `json:"priorityScore"`
			Status        string `json:"status"`
		} `json:"customer"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !response.Success {
		t.Fatalf("success=false")
	}
	if response.Customer.QueueNumber != "R-001" {
		t.Fatalf("queueNumber=%q, want R-001", response.Customer.QueueNumber)
	}
	if response.Customer.PriorityScore != 3 {
		t.Fatalf("priorityScore=%d, want 3", response.Customer.PriorityScore)
	}
	if response.Customer.Status != models.StatusWaiting {
		t.Fatalf("status=%q, want waiting", response.Customer.Status)
	}
	if response.Customer.ID == "" {
		t.Fatalf("customer id missing")
	}
}

func TestRegisterCustomerValidation(t *testing.T) {
	cases := []struct {
		name    string
		payload map[string]any
		code    string
	}{
		{"missing fullName", map[string]any{"category": "Regular"}, "invalid_request"},
		{"missing category", map[string]any{"fullName": "Ana Reyes"}, "invalid_request"},
		{"unknown category", map[string]any{"fullName": "Ana Reyes", "category": "VIP"}, "invalid_request"},
		{"urgency too high", map[string]any{"fullName": "Ana Reyes", "category": "Regular", "urgency": 6}, "invalid_request"},
		{"urgency negative", map[string]any{"fullName": "Ana Reyes", "category": "Regular", "urgency": -1}, "invalid_request"},
		{"unknown service", map[string]any{"fullName": "Ana Reyes", "category": "Regular", "services": []string{"Time Travel Permit"}}, "invalid_request"},
		{"bad appointment status", map[string]any{"fullName": "Ana Reyes", "category": "Regular", "appointment": map[string]string{"status": "maybe"}}, "invalid_request"},
		{"unknown field", map[string]any{"fullName": "Ana Reyes", "category": "Regular", "vip": true}, "invalid_json"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			h, st := newTestHandler()
			recorder := postJSON(t, h.Routes(), "/api/customers", tt.payload)
			if recorder.Code != http.StatusBadRequest {
				t.Fatalf("status=%d, want 400", recorder.Code)
			}
			var response struct {
				Error string `json:"error"`
				Code  string `json:"code"`
			}
			if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if response.Code != tt.code {
				t.Fatalf("code=%q, want %q", response.Code, tt.code)
			}
			if response.Error == "" {
				t.Fatalf("error message missing")
			}

			// A rejected registration must leave the store untouched.
			waiting, err := st.ListWaiting(context.Background())
			if err != nil {
				t.Fatalf("ListWaiting: %v", err)
			}
			if len(waiting) != 0 {
				t.Fatalf("rejected write reached the store: %d waiting", len(waiting))
			}
		})
	}
}

func TestQueueEndpointOrderingAndAlerts(t *testing.T) {
	h, st := newTestHandler()

	aged, err := st.AddCustomer(context.Background(), store.AddCustomerInput{
		FullName:     "Maria Cruz",
		Category:     models.CategoryRegular,
		Urgency:      1,
		RegisteredAt: time.Now().Add(-30 * time.Minute),
	})
	if err != nil {
		t.Fatalf("AddCustomer: %v", err)
	}
	pwd, err := st.AddCustomer(context.Background(), store.AddCustomerInput{
		FullName:     "Ben Santos",
		Category:     models.CategoryPWD,
		Urgency:      3,
		Services:     []string{"OR/CR Request"},
		RegisteredAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("AddCustomer: %v", err)
	}

	var response struct {
		CurrentlyServing *struct {
			QueueNumber string `json:"queueNumber"`
		} `json:"currentlyServing"`
		Queue []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Priority struct {
				Level string `json:"level"`
				Score int    `json:"score"`
			} `json:"priority"`
			WaitTime int `json:"waitTime"`
			Urgency  int `json:"urgency"`
		} `json:"queue"`
		AntiStarvationAlerts []struct {
			Message string `json:"message"`
		} `json:"antiStarvationAlerts"`
	}
	recorder := getJSON(t, h.Routes(), "/api/queue", &response)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", recorder.Code)
	}

	if response.CurrentlyServing != nil {
		t.Fatalf("currentlyServing=%v, want null", response.CurrentlyServing)
	}
	if len(response.Queue) != 2 {
		t.Fatalf("queue length=%d, want 2", len(response.Queue))
	}
	// PWD urgency 3 scores 11; the aged regular scores 1+2+3=6.
	if response.Queue[0].ID != pwd.ID {
		t.Fatalf("top of queue=%s, want pwd customer", response.Queue[0].Name)
	}
	if response.Queue[0].Priority.Score != 11 || response.Queue[0].Priority.Level != "Medium" {
		t.Fatalf("pwd priority=%+v, want score 11 level Medium", response.Queue[0].Priority)
	}
	if response.Queue[1].WaitTime != 30 {
		t.Fatalf("aged waitTime=%d, want 30", response.Queue[1].WaitTime)
	}

	if len(response.AntiStarvationAlerts) != 1 {
		t.Fatalf("alerts=%d, want 1", len(response.AntiStarvationAlerts))
	}
	if !strings.Contains(response.AntiStarvationAlerts[0].Message, "Maria Cruz") {
		t.Fatalf("alert message=%q, want mention of %s", response.AntiStarvationAlerts[0].Message, aged.FullName)
	}
}

func TestServeNextEndpoint(t *testing.T) {
	h, st := newTestHandler()
	routes := h.Routes()

	pwd, err := st.AddCustomer(context.Background(), store.AddCustomerInput{
		FullName:     "Ben Santos",
		Category:     models.CategoryPWD,
		Urgency:      3,
		RegisteredAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("AddCustomer: %v", err)
	}

	recorder := postJSON(t, routes, "/api/queue/serve-next", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200: %s", recorder.Code, recorder.Body.String())
	}

	var response struct {
		Success    bool `json:"success"`
		NowServing *struct {
			QueueNumber string `json:"queueNumber"`
			FullName    string `json:"fullName"`
		} `json:"nowServing"`
		PreviouslyServing *struct {
			Status string `json:"status"`
		} `json:"previouslyServing"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !response.Success {
		t.Fatalf("success=false")
	}
	if response.NowServing == nil || response.NowServing.QueueNumber != pwd.QueueNumber {
		t.Fatalf("nowServing=%v, want %s", response.NowServing, pwd.QueueNumber)
	}
	if response.PreviouslyServing != nil {
		t.Fatalf("previouslyServing=%v, want null", response.PreviouslyServing)
	}

	// Empty queue: the occupant completes, nobody replaces them.
	recorder = postJSON(t, routes, "/api/queue/serve-next", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", recorder.Code)
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if response.NowServing != nil {
		t.Fatalf("nowServing=%v, want null on empty queue", response.NowServing)
	}
	if response.PreviouslyServing == nil || response.PreviouslyServing.Status != models.StatusServed {
		t.Fatalf("previouslyServing=%+v, want served", response.PreviouslyServing)
	}
}

func TestAnalyticsEndpointNoData(t *testing.T) {
	h, _ := newTestHandler()

	recorder := getJSON(t, h.Routes(), "/api/analytics", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", recorder.Code)
	}

	var response struct {
		ServiceAnalytics struct {
			TotalCustomersToday int             `json:"totalCustomersToday"`
			AverageWaitTime     json.RawMessage `json:"averageWaitTime"`
			CurrentQueueLength  int             `json:"currentQueueLength"`
		} `json:"ltoServiceAnalytics"`
		FairnessMetrics struct {
			PWDAverageWaitTime    json.RawMessage `json:"pwdAverageWaitTime"`
			EmergencyResponseTime json.RawMessage `json:"emergencyResponseTime"`
		} `json:"fairnessMetrics"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(response.ServiceAnalytics.AverageWaitTime) != `"N/A"` {
		t.Fatalf("averageWaitTime=%s, want \"N/A\"", response.ServiceAnalytics.AverageWaitTime)
	}
	if string(response.FairnessMetrics.PWDAverageWaitTime) != `"N/A"` {
		t.Fatalf("pwdAverageWaitTime=%s, want \"N/A\"", response.FairnessMetrics.PWDAverageWaitTime)
	}
	if string(response.FairnessMetrics.EmergencyResponseTime) != `"N/A"` {
		t.Fatalf("emergencyResponseTime=%s, want \"N/A\"", response.FairnessMetrics.EmergencyResponseTime)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler()
	routes := h.Routes()

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/customers"},
		{http.MethodPost, "/api/queue"},
		{http.MethodGet, "/api/queue/serve-next"},
		{http.MethodPost, "/api/analytics"},
	}
	for _, tt := range cases {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		recorder := httptest.NewRecorder()
		routes.ServeHTTP(recorder, req)
		if recorder.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s status=%d, want 405", tt.method, tt.path, recorder.Code)
		}
	}
}
