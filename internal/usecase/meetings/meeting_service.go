package meetings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/g37/meeting-manager/errors"
	"github.com/g37/meeting-manager/internal/domain/entities"
	"github.com/g37/meeting-manager/internal/infrastructure/cache"
	"github.com/g37/meeting-manager/internal/infrastructure/external/primarystore"
	usecaseErrors "github.com/g37/meeting-manager/internal/usecase/errors"
	"github.com/g37/meeting-manager/internal/usecase/reconcile"
)

// MeetingService fronts the reconciliation engine and the primary store's
// write surface.
type MeetingService struct {
	engine   *reconcile.Engine
	primary  primarystore.Client
	snapshot *cache.SnapshotStore
	logger   *zap.Logger
	now      func() time.Time

	mu          sync.Mutex
	lastSources []reconcile.SourceSummary
}

// NewMeetingService creates a new meeting service. snapshot may be nil when
// no cache is configured.
func NewMeetingService(
	engine *reconcile.Engine,
	primary primarystore.Client,
	snapshot *cache.SnapshotStore,
	logger *zap.Logger,
) *MeetingService {
	return &MeetingService{
		engine:   engine,
		primary:  primary,
		snapshot: snapshot,
		logger:   logger,
		now:      time.Now,
	}
}

// List returns the reconciled meeting view. A successful load refreshes the
// snapshot cache; a total failure falls back to the last snapshot when one
// exists, so readers keep a stale view over no view.
func (s *MeetingService) List(ctx context.Context) (*reconcile.LoadResult, error) {
	result, err := s.engine.Load(ctx)
	if err != nil {
		if errors.Is(err, usecaseErrors.ErrAllSourcesFailed) && s.snapshot != nil {
			var cached reconcile.LoadResult
			if cacheErr := s.snapshot.GetMeetings(ctx, &cached); cacheErr == nil {
				s.logger.Warn("all sources failed, serving cached snapshot",
					zap.Int("meetings", len(cached.Meetings)),
				)
				s.remember(result.Sources)
				cached.Sources = result.Sources
				return &cached, nil
			}
		}
		if result != nil {
			s.remember(result.Sources)
		}
		return nil, err
	}

	s.remember(result.Sources)
	if s.snapshot != nil {
		if err := s.snapshot.PutMeetings(ctx, result); err != nil {
			s.logger.Warn("failed to cache meeting snapshot", zap.Error(err))
		}
	}
	return result, nil
}

// GetMeeting retrieves one canonical meeting. Primary-backed ids are fetched
// directly; everything else goes through a full reconciliation.
func (s *MeetingService) GetMeeting(ctx context.Context, meetingID string) (*entities.Meeting, error) {
	source, localID, ok := splitCanonicalID(meetingID)
	if !ok {
		return nil, usecaseErrors.ErrMeetingNotFound
	}

	switch source {
	case entities.SourcePrimary, entities.SourceRecording:
		id, err := strconv.ParseInt(localID, 10, 64)
		if err != nil {
			return nil, usecaseErrors.ErrMeetingNotFound
		}
		rec, err := s.primary.GetMeeting(ctx, id)
		if err != nil {
			return nil, mapSourceError(err)
		}
		var m entities.Meeting
		if source == entities.SourceRecording {
			m, err = reconcile.NormalizeRecording(*rec, s.now(), s.logger)
		} else {
			m, err = reconcile.NormalizePrimary(*rec, s.now())
		}
		if err != nil {
			return nil, fmt.Errorf("failed to normalize meeting %s: %w", meetingID, err)
		}
		return &m, nil
	default:
		result, err := s.engine.Load(ctx)
		if err != nil {
			return nil, err
		}
		for i := range result.Meetings {
			if result.Meetings[i].ID == meetingID {
				return &result.Meetings[i], nil
			}
		}
		return nil, usecaseErrors.ErrMeetingNotFound
	}
}

// Create creates a meeting in the primary store
func (s *MeetingService) Create(ctx context.Context, rec *primarystore.MeetingRecord) (*entities.Meeting, error) {
	created, err := s.primary.CreateMeeting(ctx, rec)
	if err != nil {
		return nil, mapSourceError(err)
	}
	s.invalidateSnapshot(ctx)

	m, err := reconcile.NormalizePrimary(*created, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to normalize created meeting: %w", err)
	}
	return &m, nil
}

// Update updates a primary-store meeting
func (s *MeetingService) Update(ctx context.Context, meetingID string, rec *primarystore.MeetingRecord) (*entities.Meeting, error) {
	id, err := primaryLocalID(meetingID)
	if err != nil {
		return nil, err
	}

	updated, err := s.primary.UpdateMeeting(ctx, id, rec)
	if err != nil {
		return nil, mapSourceError(err)
	}
	s.invalidateSnapshot(ctx)

	m, err := reconcile.NormalizePrimary(*updated, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to normalize updated meeting: %w", err)
	}
	return &m, nil
}

// Delete deletes a primary-store meeting
func (s *MeetingService) Delete(ctx context.Context, meetingID string) error {
	id, err := primaryLocalID(meetingID)
	if err != nil {
		return err
	}
	if err := s.primary.DeleteMeeting(ctx, id); err != nil {
		return mapSourceError(err)
	}
	s.invalidateSnapshot(ctx)
	return nil
}

// SourceStatus returns the per-source summary of the last reconciliation
func (s *MeetingService) SourceStatus(ctx context.Context) []reconcile.SourceSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]reconcile.SourceSummary, len(s.lastSources))
	copy(out, s.lastSources)
	return out
}

func (s *MeetingService) remember(sources []reconcile.SourceSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSources = sources
}

func (s *MeetingService) invalidateSnapshot(ctx context.Context) {
	if s.snapshot == nil {
		return
	}
	if err := s.snapshot.Invalidate(ctx); err != nil {
		s.logger.Warn("failed to invalidate meeting snapshot", zap.Error(err))
	}
}

// primaryLocalID resolves a canonical id to the primary store's numeric id.
// Writes only target the primary store; other sources are read-only.
func primaryLocalID(meetingID string) (int64, error) {
	source, localID, ok := splitCanonicalID(meetingID)
	if !ok || source != entities.SourcePrimary {
		return 0, usecaseErrors.ErrMeetingNotFound
	}
	id, err := strconv.ParseInt(localID, 10, 64)
	if err != nil {
		return 0, usecaseErrors.ErrMeetingNotFound
	}
	return id, nil
}

func splitCanonicalID(meetingID string) (entities.MeetingSource, string, bool) {
	// Bare numeric ids are accepted as primary-store ids for compatibility
	// with callers that predate canonical ids.
	if _, err := strconv.ParseInt(meetingID, 10, 64); err == nil {
		return entities.SourcePrimary, meetingID, true
	}

	idx := strings.Index(meetingID, ":")
	if idx <= 0 || idx == len(meetingID)-1 {
		return "", "", false
	}
	return entities.MeetingSource(meetingID[:idx]), meetingID[idx+1:], true
}

// mapSourceError folds primary-store not-found responses into the domain
// sentinel; other source errors pass through with their classification.
func mapSourceError(err error) error {
	var appErr apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code == apperrors.ErrorCode_NOT_FOUND {
		return usecaseErrors.ErrMeetingNotFound
	}
	return err
}
