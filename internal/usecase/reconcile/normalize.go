package reconcile

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/g37/meeting-manager/internal/domain/entities"
	"github.com/g37/meeting-manager/internal/infrastructure/external/automation"
	"github.com/g37/meeting-manager/internal/infrastructure/external/primarystore"
)

// Canonical-field defaults applied when a source omits a value.
const (
	defaultMeetingType = "GENERAL"
	defaultStatus      = entities.MeetingStatusScheduled
)

// rawTranscriptEntry is the embedded transcript shape inside
// transcriptEntriesJson, which needs its own parse pass.
type rawTranscriptEntry struct {
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// NormalizePrimary maps a primary-store record onto the canonical Meeting.
// Every canonical field is mapped explicitly; a record without an id is the
// only fatal condition.
func NormalizePrimary(rec primarystore.MeetingRecord, now time.Time) (entities.Meeting, error) {
	if rec.ID == 0 {
		return entities.Meeting{}, fmt.Errorf("primary record has no id")
	}
	localID := strconv.FormatInt(rec.ID, 10)

	m := entities.Meeting{
		Source:        entities.SourcePrimary,
		SourceLocalID: localID,
		ID:            entities.CanonicalID(entities.SourcePrimary, localID),
		Title:         rec.Title,
		Description:   rec.Description,
		StartTime:     parseSourceTime(rec.StartTime),
		EndTime:       parseSourceTime(rec.EndTime),
		MeetingType:   rec.MeetingType,
		Status:        entities.MeetingStatus(rec.Status),
		Date:          parseSourceTime(rec.Date),
		CreatedAt:     parseSourceTime(rec.CreatedAt),
		Participants:  dedupParticipants(mapPrimaryParticipants(rec.Participants)),
		ActionItems:   mapPrimaryActionItems(rec.ActionItems),
		RecordingURL:  rec.RecordingURL,
	}

	applyMeetingDefaults(&m)
	m.IsJustCompleted = m.RecentlyCompleted(now)
	return m, nil
}

// NormalizeRecording maps a recording-enriched primary record. The transcript
// arrives as a JSON string field; malformed entries are dropped one at a
// time, and a malformed container leaves an empty transcript rather than
// failing the meeting.
func NormalizeRecording(rec primarystore.MeetingRecord, now time.Time, logger *zap.Logger) (entities.Meeting, error) {
	m, err := NormalizePrimary(rec, now)
	if err != nil {
		return entities.Meeting{}, err
	}

	m.Source = entities.SourceRecording
	m.ID = entities.CanonicalID(entities.SourceRecording, m.SourceLocalID)
	m.RecordingID = rec.FathomRecordingID
	if rec.FathomRecordingURL != "" {
		m.RecordingURL = rec.FathomRecordingURL
	}
	m.TranscriptEntries = parseTranscriptJSON(rec.TranscriptEntriesJSON, logger)
	return m, nil
}

// NormalizeAutomation maps a loosely-typed automation event. An event with no
// resolvable id under any of its three id fields is dropped.
func NormalizeAutomation(ev automation.Event, now time.Time) (entities.Meeting, error) {
	localID, ok := ResolveEventID(ev)
	if !ok {
		return entities.Meeting{}, fmt.Errorf("automation event has no id, eventId or meetingId")
	}

	m := entities.Meeting{
		Source:        entities.SourceAutomation,
		SourceLocalID: localID,
		ID:            entities.CanonicalID(entities.SourceAutomation, localID),
		Title:         ev.Title,
		Description:   ev.Description,
		StartTime:     parseSourceTime(ev.StartTime),
		EndTime:       parseSourceTime(ev.EndTime),
		MeetingType:   ev.EventType,
		Status:        entities.MeetingStatus(ev.Status),
		Date:          parseSourceTime(ev.Date),
		CreatedAt:     parseSourceTime(ev.CreatedAt),
	}

	participants := make([]entities.ParticipantRecord, 0, len(ev.Attendees))
	for _, a := range ev.Attendees {
		participants = append(participants, entities.ParticipantRecord{
			Name:  a.Name,
			Email: a.Email,
			Role:  "ATTENDEE",
		})
	}
	m.Participants = dedupParticipants(participants)

	applyMeetingDefaults(&m)
	m.IsJustCompleted = m.RecentlyCompleted(now)
	return m, nil
}

// applyMeetingDefaults fills the documented defaults for omitted fields:
// endTime falls back to startTime, status to SCHEDULED, type to GENERAL.
func applyMeetingDefaults(m *entities.Meeting) {
	if m.EndTime.IsZero() {
		m.EndTime = m.StartTime
	}
	if m.Status == "" {
		m.Status = defaultStatus
	}
	if m.MeetingType == "" {
		m.MeetingType = defaultMeetingType
	}
	if m.Participants == nil {
		m.Participants = []entities.ParticipantRecord{}
	}
	if m.ActionItems == nil {
		m.ActionItems = []entities.ActionItem{}
	}
}

// parseSourceTime coerces the timestamp formats sources actually emit.
// Unparsable or empty values become the zero time, which EffectiveStart
// treats as absent.
func parseSourceTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func mapPrimaryParticipants(in []primarystore.ParticipantRecord) []entities.ParticipantRecord {
	out := make([]entities.ParticipantRecord, 0, len(in))
	for _, p := range in {
		role := p.Role
		if role == "" {
			role = "ATTENDEE"
		}
		out = append(out, entities.ParticipantRecord{
			ID:       p.ID,
			Name:     p.Name,
			Email:    p.Email,
			Attended: p.Attended,
			Role:     role,
		})
	}
	return out
}

func mapPrimaryActionItems(in []primarystore.ActionItemRecord) []entities.ActionItem {
	out := make([]entities.ActionItem, 0, len(in))
	for _, ai := range in {
		title := ai.Title
		if title == "" {
			title = ai.Description
		}
		priority := ai.Priority
		if priority == "" {
			priority = string(entities.PriorityMedium)
		}
		status := ai.Status
		if status == "" {
			status = "pending"
		}
		var due *time.Time
		if t := parseSourceTime(ai.DueDate); !t.IsZero() {
			due = &t
		}
		out = append(out, entities.ActionItem{
			ID:          strconv.FormatInt(ai.ID, 10),
			Title:       title,
			Description: ai.Description,
			AssignedTo:  ai.AssignedTo,
			DueDate:     due,
			Priority:    priority,
			Status:      status,
			Completed:   strings.EqualFold(status, "completed") || strings.EqualFold(status, "done"),
		})
	}
	return out
}

// dedupParticipants merges participant lists by email, the identity key
// within a meeting. First occurrence wins for names; attendance is OR-ed.
func dedupParticipants(in []entities.ParticipantRecord) []entities.ParticipantRecord {
	out := make([]entities.ParticipantRecord, 0, len(in))
	seen := make(map[string]int)
	for _, p := range in {
		if p.Email == "" {
			out = append(out, p)
			continue
		}
		if idx, ok := seen[p.Email]; ok {
			if p.Attended {
				out[idx].Attended = true
			}
			if out[idx].ID == nil {
				out[idx].ID = p.ID
			}
			continue
		}
		seen[p.Email] = len(out)
		out = append(out, p)
	}
	return out
}

// parseTranscriptJSON runs the second parse pass over the embedded transcript
// string. A malformed timestamp drops only its entry.
func parseTranscriptJSON(raw string, logger *zap.Logger) []entities.TranscriptEntry {
	if raw == "" {
		return nil
	}

	var rawEntries []rawTranscriptEntry
	if err := json.Unmarshal([]byte(raw), &rawEntries); err != nil {
		logger.Warn("transcript container unparsable, keeping meeting without transcript",
			zap.Error(err),
		)
		return nil
	}

	entries := make([]entities.TranscriptEntry, 0, len(rawEntries))
	for _, re := range rawEntries {
		seconds, err := ParseTranscriptTimestamp(re.Timestamp)
		if err != nil {
			logger.Warn("dropping transcript entry with malformed timestamp",
				zap.String("timestamp", re.Timestamp),
				zap.String("speaker", re.Speaker),
			)
			continue
		}
		entries = append(entries, entities.TranscriptEntry{
			Speaker:   re.Speaker,
			Text:      re.Text,
			Timestamp: seconds,
		})
	}
	return entries
}
