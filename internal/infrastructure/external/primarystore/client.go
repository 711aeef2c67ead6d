package primarystore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/g37/meeting-manager/errors"
)

// ParticipantRecord is the primary store's participant shape.
type ParticipantRecord struct {
	ID       *int64 `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Attended bool   `json:"attended"`
	Role     string `json:"role"`
}

// ActionItemRecord is the primary store's action item shape.
type ActionItemRecord struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	AssignedTo  string `json:"assignedTo"`
	DueDate     string `json:"dueDate"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

// MeetingRecord is the raw primary-store meeting payload. Timestamps stay as
// strings here; coercion and defaulting happen in the normalizer. The
// transcript arrives as a JSON-encoded string field needing a second parse.
type MeetingRecord struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	MeetingType string `json:"meetingType"`
	Status      string `json:"status"`
	Date        string `json:"date"`
	CreatedAt   string `json:"createdAt"`

	Participants []ParticipantRecord `json:"participants"`
	ActionItems  []ActionItemRecord  `json:"actionItems"`

	RecordingURL          string `json:"recordingUrl"`
	FathomRecordingID     string `json:"fathomRecordingId"`
	FathomRecordingURL    string `json:"fathomRecordingUrl"`
	TranscriptEntriesJSON string `json:"transcriptEntriesJson"`
}

// HasRecording reports whether the record carries recording enrichment.
func (r *MeetingRecord) HasRecording() bool {
	return r.FathomRecordingID != "" || r.FathomRecordingURL != "" || r.TranscriptEntriesJSON != ""
}

// Client is the HTTP boundary to the primary meeting store. It classifies
// failures but never retries; retry is a caller policy.
type Client interface {
	ListMeetings(ctx context.Context) ([]MeetingRecord, error)
	GetMeeting(ctx context.Context, id int64) (*MeetingRecord, error)
	CreateMeeting(ctx context.Context, rec *MeetingRecord) (*MeetingRecord, error)
	UpdateMeeting(ctx context.Context, id int64, rec *MeetingRecord) (*MeetingRecord, error)
	DeleteMeeting(ctx context.Context, id int64) error
}

type httpClient struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a primary store client with a bounded request timeout.
func NewClient(baseURL string, timeout time.Duration) Client {
	return &httpClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

const sourceName = "primary-store"

func (c *httpClient) ListMeetings(ctx context.Context) ([]MeetingRecord, error) {
	var records []MeetingRecord
	if err := c.do(ctx, http.MethodGet, "/meetings", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *httpClient) GetMeeting(ctx context.Context, id int64) (*MeetingRecord, error) {
	var rec MeetingRecord
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/meetings/%d", id), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *httpClient) CreateMeeting(ctx context.Context, rec *MeetingRecord) (*MeetingRecord, error) {
	var created MeetingRecord
	if err := c.do(ctx, http.MethodPost, "/meetings", rec, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *httpClient) UpdateMeeting(ctx context.Context, id int64, rec *MeetingRecord) (*MeetingRecord, error) {
	var updated MeetingRecord
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/meetings/%d", id), rec, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *httpClient) DeleteMeeting(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/meetings/%d", id), nil, nil)
}

// do performs one request and maps the outcome onto the source error
// taxonomy: connectivity, not-found, or server error.
func (c *httpClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return apperrors.ErrSourceConnectivity(sourceName, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.ErrSourceNotFound(sourceName, path)
	case resp.StatusCode >= 500:
		return apperrors.ErrSourceServer(sourceName, resp.StatusCode, nil)
	case resp.StatusCode >= 300:
		return apperrors.ErrSourceServer(sourceName, resp.StatusCode, nil)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.ErrSourceServer(sourceName, resp.StatusCode, err)
	}
	return nil
}
