package entities

import (
	"fmt"
	"time"
)

// MeetingSource identifies which origin produced a canonical meeting record.
type MeetingSource string

const (
	SourcePrimary    MeetingSource = "primary"
	SourceAutomation MeetingSource = "automation"
	SourceRecording  MeetingSource = "recording-enriched"
)

// MeetingStatus values mirror the primary store's status vocabulary.
type MeetingStatus string

const (
	MeetingStatusScheduled  MeetingStatus = "SCHEDULED"
	MeetingStatusInProgress MeetingStatus = "IN_PROGRESS"
	MeetingStatusCompleted  MeetingStatus = "COMPLETED"
	MeetingStatusCancelled  MeetingStatus = "CANCELLED"
)

// ParticipantRecord is a meeting participant. Email is the dedup key when
// participant lists from different source shapes are merged; ID stays nil
// until the backend assigns one.
type ParticipantRecord struct {
	ID       *int64 `json:"id,omitempty"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Attended bool   `json:"attended"`
	Role     string `json:"role"`
}

// TranscriptEntry is one utterance from a recording transcript. Timestamp is
// seconds from the start of the recording, derived from the source's
// "HH:MM:SS" / "MM:SS" string.
type TranscriptEntry struct {
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
	Timestamp int    `json:"timestamp"`
}

// ActionItem is an action item as reported by a meeting source. It is a
// read-only reconciliation artifact; approval state lives on PendingAction.
type ActionItem struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssignedTo  string     `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	Completed   bool       `json:"completed"`
}

// Meeting is the canonical shape produced by reconciliation. Meetings are
// recomputed per fetch and never persisted by this service.
type Meeting struct {
	ID            string        `json:"id"`
	Source        MeetingSource `json:"source"`
	SourceLocalID string        `json:"source_local_id"`

	Title       string        `json:"title"`
	Description string        `json:"description"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	MeetingType string        `json:"meeting_type"`
	Status      MeetingStatus `json:"status"`

	Participants []ParticipantRecord `json:"participants"`
	ActionItems  []ActionItem        `json:"action_items"`

	// Enrichment fields, present only on recording-enriched records.
	RecordingID       string            `json:"recording_id,omitempty"`
	RecordingURL      string            `json:"recording_url,omitempty"`
	TranscriptEntries []TranscriptEntry `json:"transcript_entries,omitempty"`

	// Fallback ordering fields for sources that lack a startTime.
	Date      time.Time `json:"date,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`

	// Derived, never trusted from upstream.
	IsJustCompleted bool `json:"is_just_completed"`
}

// CanonicalID builds the identity key for a (source, source-local id) pair.
// Exactly one canonical meeting exists per pair.
func CanonicalID(source MeetingSource, localID string) string {
	return fmt.Sprintf("%s:%s", source, localID)
}

// EffectiveStart returns the timestamp meetings are ordered by: explicit
// startTime, falling back to date, falling back to createdAt.
func (m *Meeting) EffectiveStart() time.Time {
	if !m.StartTime.IsZero() {
		return m.StartTime
	}
	if !m.Date.IsZero() {
		return m.Date
	}
	return m.CreatedAt
}

// RecentlyCompletedWindow is how long after its end a completed meeting is
// still flagged as just completed.
const RecentlyCompletedWindow = 24 * time.Hour

// RecentlyCompleted reports whether the meeting completed within the window
// relative to now. Computed here so no source can assert the flag directly.
func (m *Meeting) RecentlyCompleted(now time.Time) bool {
	if m.Status != MeetingStatusCompleted || m.EndTime.IsZero() {
		return false
	}
	return now.Sub(m.EndTime) >= 0 && now.Sub(m.EndTime) <= RecentlyCompletedWindow
}
