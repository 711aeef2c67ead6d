package automation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFlexIDUnmarshal(t *testing.T) {
	var payload struct {
		A FlexID `json:"a"`
		B FlexID `json:"b"`
		C FlexID `json:"c"`
	}

	raw := `{"a": "ev-1", "b": 42, "c": null}`
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.A != "ev-1" {
		t.Errorf("string id = %q", payload.A)
	}
	if payload.B != "42" {
		t.Errorf("numeric id = %q, want \"42\"", payload.B)
	}
	if payload.C != "" {
		t.Errorf("null id = %q, want empty", payload.C)
	}
}

func TestNotConfigured(t *testing.T) {
	client := NewClient("", "", time.Second)
	if client.Available() {
		t.Error("client without URL must not report available")
	}
	if _, err := client.GetEvents(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestGetEvents(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("authorization header = %q", got)
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if body["action"] != "get_events" {
			t.Fatalf("action = %v", body["action"])
		}
		// Mixed id shapes, as the webhook actually sends them.
		w.Write([]byte(`[
			{"id": "ev-1", "title": "Planning"},
			{"eventId": 7, "title": "Retro"},
			{"meetingId": "m-3", "title": "Standup"}
		]`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-key", 2*time.Second)
	events, err := client.GetEvents(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].ID != "ev-1" || events[1].EventID != "7" || events[2].MeetingID != "m-3" {
		t.Errorf("ids not decoded: %+v", events)
	}
}

func TestGetPendingOperations(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["action"] != "get_pending" || body["event_id"] != "42" {
			t.Fatalf("payload = %v", body)
		}
		w.Write([]byte(`[{"id": "exec-1", "operation_type": "Contact", "status": "pending", "operation": {"FirstName": "Ada"}}]`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "", 2*time.Second)
	ops, err := client.GetPendingOperations(context.Background(), "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ops) != 1 || ops[0].ID != "exec-1" {
		t.Fatalf("ops = %+v", ops)
	}
	if ops[0].Operation["FirstName"] != "Ada" {
		t.Errorf("operation map not decoded: %v", ops[0].Operation)
	}
}
