package reconcile

import (
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/g37/meeting-manager/internal/domain/entities"
	"github.com/g37/meeting-manager/internal/infrastructure/external/automation"
	"github.com/g37/meeting-manager/internal/infrastructure/external/primarystore"
)

func TestNormalizePrimaryDefaults(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := primarystore.MeetingRecord{
		ID:        42,
		Title:     "Weekly sync",
		StartTime: "2024-05-30T10:00:00Z",
	}

	m, err := NormalizePrimary(rec, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.ID != "primary:42" {
		t.Errorf("canonical id = %q, want primary:42", m.ID)
	}
	if !m.EndTime.Equal(m.StartTime) {
		t.Errorf("endTime should default to startTime, got %v", m.EndTime)
	}
	if m.Status != entities.MeetingStatusScheduled {
		t.Errorf("status should default to SCHEDULED, got %q", m.Status)
	}
	if m.MeetingType != "GENERAL" {
		t.Errorf("meetingType should default to GENERAL, got %q", m.MeetingType)
	}
	if m.Participants == nil || m.ActionItems == nil {
		t.Error("participants and actionItems must be non-nil slices")
	}
}

func TestNormalizePrimaryRequiresID(t *testing.T) {
	if _, err := NormalizePrimary(primarystore.MeetingRecord{Title: "no id"}, time.Now()); err == nil {
		t.Fatal("expected error for record without id")
	}
}

func TestNormalizePrimaryRecentlyCompleted(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	rec := primarystore.MeetingRecord{
		ID:        1,
		Status:    string(entities.MeetingStatusCompleted),
		StartTime: "2024-06-01T09:00:00Z",
		EndTime:   "2024-06-01T10:00:00Z",
	}
	m, err := NormalizePrimary(rec, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.IsJustCompleted {
		t.Error("meeting ended 2h ago should be just-completed")
	}

	rec.EndTime = "2024-05-29T10:00:00Z"
	m, err = NormalizePrimary(rec, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.IsJustCompleted {
		t.Error("meeting ended 3 days ago must not be just-completed")
	}
}

func TestNormalizePrimaryDedupsParticipants(t *testing.T) {
	id := int64(7)
	rec := primarystore.MeetingRecord{
		ID: 1,
		Participants: []primarystore.ParticipantRecord{
			{Name: "Alice", Email: "alice@example.com", Attended: false},
			{Name: "Alice B", Email: "alice@example.com", Attended: true, ID: &id},
			{Name: "Bob", Email: "bob@example.com"},
		},
	}

	m, err := NormalizePrimary(rec, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Participants) != 2 {
		t.Fatalf("expected 2 deduped participants, got %d", len(m.Participants))
	}
	alice := m.Participants[0]
	if alice.Name != "Alice" {
		t.Errorf("first occurrence should win the name, got %q", alice.Name)
	}
	if !alice.Attended {
		t.Error("attendance must be OR-ed across duplicates")
	}
	if alice.ID == nil || *alice.ID != 7 {
		t.Error("nil id should be backfilled from the duplicate")
	}
}

func TestNormalizePrimaryActionItemFallbacks(t *testing.T) {
	rec := primarystore.MeetingRecord{
		ID: 1,
		ActionItems: []primarystore.ActionItemRecord{
			{ID: 10, Description: "send the deck", Status: "COMPLETED"},
		},
	}

	m, err := NormalizePrimary(rec, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ai := m.ActionItems[0]
	if ai.Title != "send the deck" {
		t.Errorf("title should fall back to description, got %q", ai.Title)
	}
	if ai.Priority != string(entities.PriorityMedium) {
		t.Errorf("priority should default to MEDIUM, got %q", ai.Priority)
	}
	if !ai.Completed {
		t.Error("completed status should set the completed flag case-insensitively")
	}
}

func TestNormalizeRecordingTranscript(t *testing.T) {
	entries := []rawTranscriptEntry{
		{Speaker: "Alice", Text: "hello", Timestamp: "00:05"},
		{Speaker: "Bob", Text: "corrupt", Timestamp: "not-a-time"},
		{Speaker: "Alice", Text: "wrap up", Timestamp: "01:00:05"},
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		t.Fatal(err)
	}

	rec := primarystore.MeetingRecord{
		ID:                    9,
		FathomRecordingID:     "rec-9",
		FathomRecordingURL:    "https://fathom.example/rec-9",
		RecordingURL:          "https://old.example/rec-9",
		TranscriptEntriesJSON: string(raw),
	}

	m, err := NormalizeRecording(rec, time.Now(), zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Source != entities.SourceRecording {
		t.Errorf("source = %q, want recording-enriched", m.Source)
	}
	if m.ID != "recording-enriched:9" {
		t.Errorf("canonical id = %q", m.ID)
	}
	if m.RecordingURL != "https://fathom.example/rec-9" {
		t.Errorf("enriched recording url should override, got %q", m.RecordingURL)
	}
	if len(m.TranscriptEntries) != 2 {
		t.Fatalf("malformed entry should be dropped alone, got %d entries", len(m.TranscriptEntries))
	}
	if m.TranscriptEntries[0].Timestamp != 5 || m.TranscriptEntries[1].Timestamp != 3605 {
		t.Errorf("timestamps = %d, %d", m.TranscriptEntries[0].Timestamp, m.TranscriptEntries[1].Timestamp)
	}
}

func TestNormalizeRecordingBadContainer(t *testing.T) {
	rec := primarystore.MeetingRecord{
		ID:                    9,
		TranscriptEntriesJSON: "{not json",
	}

	m, err := NormalizeRecording(rec, time.Now(), zap.NewNop())
	if err != nil {
		t.Fatalf("bad transcript container must not fail the meeting: %v", err)
	}
	if len(m.TranscriptEntries) != 0 {
		t.Errorf("expected empty transcript, got %d entries", len(m.TranscriptEntries))
	}
}

func TestNormalizeAutomationIdentity(t *testing.T) {
	ev := automation.Event{
		EventID: "ev-12",
		Title:   "Planning",
		Date:    "2024-06-02",
		Attendees: []struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		}{
			{Name: "Carol", Email: "carol@example.com"},
			{Name: "Carol Again", Email: "carol@example.com"},
		},
	}

	m, err := NormalizeAutomation(ev, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID != "automation:ev-12" {
		t.Errorf("canonical id = %q, want automation:ev-12", m.ID)
	}
	if len(m.Participants) != 1 {
		t.Errorf("attendees should be deduped by email, got %d", len(m.Participants))
	}
	if got := m.EffectiveStart(); !got.Equal(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("effective start should fall back to date, got %v", got)
	}
}

func TestNormalizeAutomationNoID(t *testing.T) {
	if _, err := NormalizeAutomation(automation.Event{Title: "orphan"}, time.Now()); err == nil {
		t.Fatal("expected error for event with no resolvable id")
	}
}

func TestResolveEventIDOrder(t *testing.T) {
	ev := automation.Event{ID: "a", EventID: "b", MeetingID: "c"}
	if id, _ := ResolveEventID(ev); id != "a" {
		t.Errorf("id field should win, got %q", id)
	}
	ev.ID = ""
	if id, _ := ResolveEventID(ev); id != "b" {
		t.Errorf("eventId should be second, got %q", id)
	}
	ev.EventID = ""
	if id, _ := ResolveEventID(ev); id != "c" {
		t.Errorf("meetingId should be last, got %q", id)
	}
	ev.MeetingID = ""
	if _, ok := ResolveEventID(ev); ok {
		t.Error("empty event must not resolve")
	}
}

func TestParseSourceTimeFormats(t *testing.T) {
	if got := parseSourceTime("2024-06-02"); got.IsZero() {
		t.Error("date-only format should parse")
	}
	if got := parseSourceTime("2024-06-02T15:04:05"); got.IsZero() {
		t.Error("zoneless datetime should parse")
	}
	if got := parseSourceTime("2024-06-02T15:04:05Z"); got.IsZero() {
		t.Error("RFC3339 should parse")
	}
	if got := parseSourceTime("yesterday"); !got.IsZero() {
		t.Errorf("unparsable value should be zero, got %v", got)
	}
}
