package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/g37/meeting-manager/internal/domain/entities"
)

// PendingActionFilters narrows List queries.
type PendingActionFilters struct {
	MeetingID      string
	OrganizationID *int64
	AssigneeID     *int64
	Statuses       []entities.ActionStatus
	Page           int
	PageSize       int
}

// StatusCounts is the per-status breakdown used by statistics.
type StatusCounts map[entities.ActionStatus]int64

// PendingActionRepository is the persistence boundary for pending actions.
type PendingActionRepository interface {
	Create(ctx context.Context, action *entities.PendingAction) error

	// CreateIfExecutionAbsent inserts the action only when no existing row
	// carries the same external execution id. Returns false without error
	// when the id is already present. The check-and-insert is atomic at the
	// storage layer.
	CreateIfExecutionAbsent(ctx context.Context, action *entities.PendingAction) (bool, error)

	FindByID(ctx context.Context, id uuid.UUID) (*entities.PendingAction, error)
	FindByMeeting(ctx context.Context, meetingID string) ([]*entities.PendingAction, error)
	List(ctx context.Context, filters PendingActionFilters) ([]*entities.PendingAction, int64, error)

	Update(ctx context.Context, action *entities.PendingAction) error

	// TransitionStatus atomically moves the action to next only when its
	// current status is one of from, applying mutate to the reloaded row
	// inside the same transaction. Returns the updated action, or
	// entities.ErrInvalidTransition when the precondition fails.
	TransitionStatus(ctx context.Context, id uuid.UUID, from []entities.ActionStatus, next entities.ActionStatus, mutate func(*entities.PendingAction)) (*entities.PendingAction, error)

	Delete(ctx context.Context, id uuid.UUID) error

	CountByStatus(ctx context.Context, userID int64) (StatusCounts, error)
	CountOverdue(ctx context.Context, userID int64) (int64, error)
}
