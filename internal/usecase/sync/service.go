package sync

import (
	"context"

	"github.com/g37/meeting-manager/internal/domain/entities"
)

// Status is the overall outcome of one sync run. Unavailable is the soft
// condition: the automation system is not configured or not reachable, which
// callers surface as "not configured" rather than "broken".
type Status string

const (
	StatusSuccess     Status = "success"
	StatusUnavailable Status = "unavailable"
	StatusError       Status = "error"
)

// Result is the outcome of one sync run.
type Result struct {
	Imported []*entities.PendingAction `json:"imported"`
	Skipped  int                       `json:"skipped"`
	Status   Status                    `json:"status"`
}

// Service defines the interface for importing externally-created operations.
type Service interface {
	// Sync pulls the automation system's pending operations for one meeting
	// and imports each one not already present, keyed by execution id.
	Sync(ctx context.Context, meetingID string) (*Result, error)
}

// Ensure SyncService implements Service interface
var _ Service = (*SyncService)(nil)
