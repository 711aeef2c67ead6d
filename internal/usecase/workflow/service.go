package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/g37/meeting-manager/internal/domain/entities"
	"github.com/g37/meeting-manager/internal/domain/repositories"
)

// CreateInput carries everything needed to create a pending action.
// ApprovalRequired decides the initial state: NEW when false,
// PENDING_APPROVAL when true.
type CreateInput struct {
	MeetingID      string
	OrganizationID int64
	Title          string
	Description    string
	ActionType     entities.ActionType
	Priority       entities.ActionPriority

	ApprovalRequired bool

	AssigneeID    *int64
	AssigneeName  string
	AssigneeEmail string
	ReporterID    *int64

	DueDate *time.Time
	Notes   string

	Source entities.ActionSource
}

// UpdateInput carries the mutable non-workflow fields of an action.
type UpdateInput struct {
	Title         *string
	Description   *string
	ActionType    *entities.ActionType
	Priority      *entities.ActionPriority
	AssigneeID    *int64
	AssigneeName  *string
	AssigneeEmail *string
	DueDate       *time.Time
	Notes         *string
}

// BulkResult is the per-id outcome of a bulk transition. Exactly one of
// Status and Error is meaningful.
type BulkResult struct {
	ID     uuid.UUID             `json:"id"`
	OK     bool                  `json:"ok"`
	Status entities.ActionStatus `json:"status,omitempty"`
	Error  string                `json:"error,omitempty"`
}

// Statistics is the per-user workload breakdown.
type Statistics struct {
	Total          int64   `json:"total"`
	Pending        int64   `json:"pending"`
	Active         int64   `json:"active"`
	Completed      int64   `json:"completed"`
	Rejected       int64   `json:"rejected"`
	Overdue        int64   `json:"overdue"`
	CompletionRate float64 `json:"completionRate"`
	ApprovalRate   float64 `json:"approvalRate"`
}

// Service defines the interface for the pending-action approval workflow.
type Service interface {
	// Create creates a new pending action in its initial state.
	Create(ctx context.Context, input CreateInput) (*entities.PendingAction, error)

	// CreateFromMeeting creates one pending action per action item of the
	// given meeting.
	CreateFromMeeting(ctx context.Context, meetingID string, organizationID int64, reporterID int64) ([]*entities.PendingAction, error)

	// Get retrieves a pending action by id.
	Get(ctx context.Context, id uuid.UUID) (*entities.PendingAction, error)

	// List retrieves pending actions with filters.
	List(ctx context.Context, filters repositories.PendingActionFilters) ([]*entities.PendingAction, int64, error)

	// ListByMeeting retrieves all pending actions of one meeting.
	ListByMeeting(ctx context.Context, meetingID string) ([]*entities.PendingAction, error)

	// Update edits non-workflow fields of an action.
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*entities.PendingAction, error)

	// Approve moves a PENDING_APPROVAL action to APPROVED and records the
	// decision.
	Approve(ctx context.Context, id uuid.UUID, approverID int64, notes string) (*entities.PendingAction, error)

	// Reject moves a PENDING_APPROVAL action to REJECTED. The reason is
	// mandatory and must be non-empty.
	Reject(ctx context.Context, id uuid.UUID, rejecterID int64, reason string) (*entities.PendingAction, error)

	// Activate moves an APPROVED action to ACTIVE.
	Activate(ctx context.Context, id uuid.UUID) (*entities.PendingAction, error)

	// Complete moves an APPROVED or ACTIVE action to COMPLETE.
	Complete(ctx context.Context, id uuid.UUID, completionNotes string) (*entities.PendingAction, error)

	// Cancel moves any non-terminal action to CANCELLED.
	Cancel(ctx context.Context, id uuid.UUID) (*entities.PendingAction, error)

	// BulkApprove applies Approve per id independently and never aborts on
	// one failure.
	BulkApprove(ctx context.Context, ids []uuid.UUID, approverID int64, notes string) []BulkResult

	// BulkReject applies Reject per id independently and never aborts on one
	// failure.
	BulkReject(ctx context.Context, ids []uuid.UUID, rejecterID int64, reason string) ([]BulkResult, error)

	// Delete removes an action. Terminal user operation, independent of the
	// state machine.
	Delete(ctx context.Context, id uuid.UUID) error

	// Statistics returns the per-user workload breakdown.
	Statistics(ctx context.Context, userID int64) (*Statistics, error)
}

// Ensure WorkflowService implements Service interface
var _ Service = (*WorkflowService)(nil)
