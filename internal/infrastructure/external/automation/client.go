package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	apperrors "github.com/g37/meeting-manager/errors"
)

// ErrNotConfigured means the automation webhook is disabled or has no URL.
// Callers report this as "unavailable", never as a hard failure.
var ErrNotConfigured = errors.New("automation webhook not configured")

// FlexID tolerates the webhook's habit of sending ids as either JSON strings
// or numbers.
type FlexID string

// UnmarshalJSON accepts "42", 42 and null.
func (f *FlexID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

// Event is one loosely-typed meeting event from the automation system. The
// id may arrive under any of three field names; identity resolution lives in
// the reconcile package.
type Event struct {
	ID        FlexID `json:"id"`
	EventID   FlexID `json:"eventId"`
	MeetingID FlexID `json:"meetingId"`

	Title       string `json:"title"`
	Description string `json:"description"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Date        string `json:"date"`
	CreatedAt   string `json:"createdAt"`
	EventType   string `json:"eventType"`
	Status      string `json:"status"`

	Attendees []struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"attendees"`
}

// Operation is one externally-created pending operation. Its ID doubles as
// the execution identifier used for duplicate-import protection.
type Operation struct {
	ID            string                 `json:"id"`
	OperationType string                 `json:"operation_type"`
	Status        string                 `json:"status"`
	CreatedTime   string                 `json:"created_time"`
	CreatedAt     string                 `json:"created_at"`
	UpdatedAt     string                 `json:"updated_at"`
	Operation     map[string]interface{} `json:"operation"`
}

// Client talks to the single-POST-endpoint automation webhook.
type Client interface {
	// Available reports whether the integration is configured at all.
	Available() bool
	GetEvents(ctx context.Context) ([]Event, error)
	GetEventDetails(ctx context.Context, eventID string) (*Event, error)
	GetPendingOperations(ctx context.Context, eventID string) ([]Operation, error)
	// TriggerOperation asks the automation system to execute an approved
	// operation. Best effort; failures are recorded, not propagated.
	TriggerOperation(ctx context.Context, payload map[string]interface{}) error
}

type httpClient struct {
	webhookURL string
	apiKey     string
	client     *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewClient creates an automation client. An empty webhookURL yields a client
// whose calls all return ErrNotConfigured.
func NewClient(webhookURL, apiKey string, timeout time.Duration) Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "automation-webhook",
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &httpClient{
		webhookURL: webhookURL,
		apiKey:     apiKey,
		client:     &http.Client{Timeout: timeout},
		breaker:    breaker,
	}
}

const sourceName = "automation-webhook"

func (c *httpClient) Available() bool {
	return c.webhookURL != ""
}

func (c *httpClient) GetEvents(ctx context.Context) ([]Event, error) {
	body := map[string]interface{}{"action": "get_events"}
	var events []Event
	if err := c.post(ctx, body, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *httpClient) GetEventDetails(ctx context.Context, eventID string) (*Event, error) {
	body := map[string]interface{}{"action": "get_event_details", "event_id": eventID}
	var event Event
	if err := c.post(ctx, body, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *httpClient) GetPendingOperations(ctx context.Context, eventID string) ([]Operation, error) {
	body := map[string]interface{}{"action": "get_pending", "event_id": eventID}
	var ops []Operation
	if err := c.post(ctx, body, &ops); err != nil {
		return nil, err
	}
	return ops, nil
}

func (c *httpClient) TriggerOperation(ctx context.Context, payload map[string]interface{}) error {
	body := map[string]interface{}{"action": "execute_operation"}
	for k, v := range payload {
		body[k] = v
	}
	return c.post(ctx, body, nil)
}

// post sends one webhook call through the circuit breaker. An open breaker
// surfaces as connectivity failure so callers degrade instead of hammering a
// dead endpoint.
func (c *httpClient) post(ctx context.Context, body, out interface{}) error {
	if !c.Available() {
		return ErrNotConfigured
	}

	raw, err := c.breaker.Execute(func() (interface{}, error) {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode webhook payload: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("failed to build webhook request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, apperrors.ErrSourceConnectivity(sourceName, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, apperrors.ErrSourceNotFound(sourceName, fmt.Sprintf("%v", body))
		}
		if resp.StatusCode >= 300 {
			return nil, apperrors.ErrSourceServer(sourceName, resp.StatusCode, nil)
		}

		var buf bytes.Buffer
		if _, err := buf.ReadFrom(resp.Body); err != nil {
			return nil, apperrors.ErrSourceServer(sourceName, resp.StatusCode, err)
		}
		return buf.Bytes(), nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return apperrors.ErrSourceConnectivity(sourceName, err)
		}
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw.([]byte), out); err != nil {
		return apperrors.ErrSourceServer(sourceName, http.StatusOK, err)
	}
	return nil
}
