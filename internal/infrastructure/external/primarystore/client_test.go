package primarystore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/g37/meeting-manager/errors"
)

func TestListMeetings(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/meetings" || r.Method != http.MethodGet {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode([]MeetingRecord{
			{ID: 1, Title: "Standup", StartTime: "2024-06-01T09:00:00Z"},
			{ID: 2, Title: "Retro", FathomRecordingID: "rec-2"},
		})
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 2*time.Second)
	records, err := client.ListMeetings(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].HasRecording() {
		t.Error("record without enrichment fields reported a recording")
	}
	if !records[1].HasRecording() {
		t.Error("record with fathomRecordingId should report a recording")
	}
}

func TestGetMeetingNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 2*time.Second)
	_, err := client.GetMeeting(context.Background(), 99)

	var appErr apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != apperrors.ErrorCode_NOT_FOUND {
		t.Errorf("code = %s, want NOT_FOUND", appErr.Code)
	}
}

func TestServerErrorClassification(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 2*time.Second)
	_, err := client.ListMeetings(context.Background())

	var appErr apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != apperrors.ErrorCode_SOURCE_SERVER {
		t.Errorf("code = %s, want SOURCE_SERVER", appErr.Code)
	}
}

func TestConnectivityClassification(t *testing.T) {
	// Point at a closed server so the dial fails.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	client := NewClient(ts.URL, time.Second)
	_, err := client.ListMeetings(context.Background())

	var appErr apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != apperrors.ErrorCode_SOURCE_CONNECTIVITY {
		t.Errorf("code = %s, want SOURCE_CONNECTIVITY", appErr.Code)
	}
}
