package reconcile

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/g37/meeting-manager/internal/domain/entities"
	"github.com/g37/meeting-manager/internal/infrastructure/external/automation"
	"github.com/g37/meeting-manager/internal/infrastructure/external/primarystore"
)

// Source is one independent origin of meeting data. Load fetches from the
// source boundary and normalizes each record; per-record failures drop only
// that record and are counted in dropped. Load never retries; that is engine
// policy.
type Source interface {
	Name() entities.MeetingSource
	Load(ctx context.Context) (meetings []entities.Meeting, dropped int, err error)
}

type primarySource struct {
	client primarystore.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewPrimarySource wraps the primary store as a reconciliation source.
func NewPrimarySource(client primarystore.Client, logger *zap.Logger) Source {
	return &primarySource{client: client, logger: logger, now: time.Now}
}

func (s *primarySource) Name() entities.MeetingSource { return entities.SourcePrimary }

func (s *primarySource) Load(ctx context.Context) ([]entities.Meeting, int, error) {
	records, err := s.client.ListMeetings(ctx)
	if err != nil {
		return nil, 0, err
	}

	now := s.now()
	meetings := make([]entities.Meeting, 0, len(records))
	dropped := 0
	for _, rec := range records {
		m, err := NormalizePrimary(rec, now)
		if err != nil {
			dropped++
			s.logger.Warn("dropping unnormalizable primary record",
				zap.Int64("record_id", rec.ID),
				zap.Error(err),
			)
			continue
		}
		meetings = append(meetings, m)
	}
	return meetings, dropped, nil
}

type recordingSource struct {
	client primarystore.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewRecordingSource exposes recording enrichment as its own source. The
// enrichment fields ride on primary records rather than a separate fetch, so
// this source reads the same listing and keeps only enriched records.
func NewRecordingSource(client primarystore.Client, logger *zap.Logger) Source {
	return &recordingSource{client: client, logger: logger, now: time.Now}
}

func (s *recordingSource) Name() entities.MeetingSource { return entities.SourceRecording }

func (s *recordingSource) Load(ctx context.Context) ([]entities.Meeting, int, error) {
	records, err := s.client.ListMeetings(ctx)
	if err != nil {
		return nil, 0, err
	}

	now := s.now()
	meetings := make([]entities.Meeting, 0)
	dropped := 0
	for _, rec := range records {
		if !rec.HasRecording() {
			continue
		}
		m, err := NormalizeRecording(rec, now, s.logger)
		if err != nil {
			dropped++
			s.logger.Warn("dropping unnormalizable recording record",
				zap.Int64("record_id", rec.ID),
				zap.Error(err),
			)
			continue
		}
		meetings = append(meetings, m)
	}
	return meetings, dropped, nil
}

type automationSource struct {
	client automation.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewAutomationSource wraps the automation webhook as a reconciliation
// source.
func NewAutomationSource(client automation.Client, logger *zap.Logger) Source {
	return &automationSource{client: client, logger: logger, now: time.Now}
}

func (s *automationSource) Name() entities.MeetingSource { return entities.SourceAutomation }

func (s *automationSource) Load(ctx context.Context) ([]entities.Meeting, int, error) {
	events, err := s.client.GetEvents(ctx)
	if err != nil {
		return nil, 0, err
	}

	now := s.now()
	meetings := make([]entities.Meeting, 0, len(events))
	dropped := 0
	for _, ev := range events {
		m, err := NormalizeAutomation(ev, now)
		if err != nil {
			dropped++
			s.logger.Warn("dropping automation event without resolvable id",
				zap.String("title", ev.Title),
				zap.Error(err),
			)
			continue
		}
		meetings = append(meetings, m)
	}
	return meetings, dropped, nil
}
