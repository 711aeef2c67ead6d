package meetings

import (
	"context"

	"github.com/g37/meeting-manager/internal/domain/entities"
	"github.com/g37/meeting-manager/internal/infrastructure/external/primarystore"
	"github.com/g37/meeting-manager/internal/usecase/reconcile"
)

// Service defines the interface for the meeting read/write surface.
type Service interface {
	// List returns the reconciled meeting view across all sources.
	List(ctx context.Context) (*reconcile.LoadResult, error)

	// GetMeeting retrieves one canonical meeting by its id.
	GetMeeting(ctx context.Context, meetingID string) (*entities.Meeting, error)

	// Create creates a meeting in the primary store.
	Create(ctx context.Context, rec *primarystore.MeetingRecord) (*entities.Meeting, error)

	// Update updates a primary-store meeting.
	Update(ctx context.Context, meetingID string, rec *primarystore.MeetingRecord) (*entities.Meeting, error)

	// Delete deletes a primary-store meeting.
	Delete(ctx context.Context, meetingID string) error

	// SourceStatus returns the per-source summary of the last reconciliation.
	SourceStatus(ctx context.Context) []reconcile.SourceSummary
}

// Ensure MeetingService implements Service interface
var _ Service = (*MeetingService)(nil)
