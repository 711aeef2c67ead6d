package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/g37/meeting-manager/internal/domain/entities"
	"github.com/g37/meeting-manager/internal/domain/repositories"
	"github.com/g37/meeting-manager/internal/infrastructure/external/automation"
	"github.com/g37/meeting-manager/internal/infrastructure/metrics"
	usecaseErrors "github.com/g37/meeting-manager/internal/usecase/errors"
)

// MeetingLoader is the slice of the meeting surface this service needs to
// expand a meeting's action items into pending actions.
type MeetingLoader interface {
	GetMeeting(ctx context.Context, meetingID string) (*entities.Meeting, error)
}

// WorkflowService handles the pending-action lifecycle.
type WorkflowService struct {
	actionRepo repositories.PendingActionRepository
	meetings   MeetingLoader
	automation automation.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewWorkflowService creates a new workflow service. automationClient and m
// may be nil.
func NewWorkflowService(
	actionRepo repositories.PendingActionRepository,
	meetings MeetingLoader,
	automationClient automation.Client,
	logger *zap.Logger,
	m *metrics.Metrics,
) *WorkflowService {
	return &WorkflowService{
		actionRepo: actionRepo,
		meetings:   meetings,
		automation: automationClient,
		logger:     logger,
		metrics:    m,
		now:        time.Now,
	}
}

// Create creates a new pending action
func (s *WorkflowService) Create(ctx context.Context, input CreateInput) (*entities.PendingAction, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, usecaseErrors.ErrInvalidInput
	}

	status := entities.ActionStatusNew
	if input.ApprovalRequired {
		status = entities.ActionStatusPendingApproval
	}

	actionType := input.ActionType
	if actionType == "" {
		actionType = entities.ActionTypeTask
	}
	priority := input.Priority
	if priority == "" {
		priority = entities.PriorityMedium
	}
	source := input.Source
	if source == "" {
		source = entities.ActionSourceManual
	}

	action := &entities.PendingAction{
		ID:               uuid.New(),
		MeetingID:        input.MeetingID,
		OrganizationID:   input.OrganizationID,
		Title:            input.Title,
		Description:      input.Description,
		ActionType:       actionType,
		Priority:         priority,
		Status:           status,
		ApprovalRequired: input.ApprovalRequired,
		AssigneeID:       input.AssigneeID,
		AssigneeName:     input.AssigneeName,
		AssigneeEmail:    input.AssigneeEmail,
		ReporterID:       input.ReporterID,
		DueDate:          input.DueDate,
		Notes:            input.Notes,
		Source:           source,
	}

	if err := s.actionRepo.Create(ctx, action); err != nil {
		return nil, fmt.Errorf("failed to create pending action: %w", err)
	}
	return action, nil
}

// CreateFromMeeting creates one pending action per action item of the meeting
func (s *WorkflowService) CreateFromMeeting(ctx context.Context, meetingID string, organizationID int64, reporterID int64) ([]*entities.PendingAction, error) {
	meeting, err := s.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if len(meeting.ActionItems) == 0 {
		return nil, usecaseErrors.ErrNoActionItems
	}

	created := make([]*entities.PendingAction, 0, len(meeting.ActionItems))
	for _, item := range meeting.ActionItems {
		if item.Completed {
			continue
		}
		priority := entities.ActionPriority(strings.ToUpper(item.Priority))
		switch priority {
		case entities.PriorityLow, entities.PriorityMedium, entities.PriorityHigh, entities.PriorityUrgent:
		default:
			priority = entities.PriorityMedium
		}

		action, err := s.Create(ctx, CreateInput{
			MeetingID:        meeting.ID,
			OrganizationID:   organizationID,
			Title:            item.Title,
			Description:      item.Description,
			ActionType:       entities.ActionTypeTask,
			Priority:         priority,
			ApprovalRequired: true,
			AssigneeName:     item.AssignedTo,
			ReporterID:       &reporterID,
			DueDate:          item.DueDate,
			Source:           entities.ActionSourceMeeting,
		})
		if err != nil {
			return nil, err
		}
		created = append(created, action)
	}
	return created, nil
}

// Get retrieves a pending action by id
func (s *WorkflowService) Get(ctx context.Context, id uuid.UUID) (*entities.PendingAction, error) {
	action, err := s.actionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecaseErrors.ErrActionNotFound
		}
		return nil, fmt.Errorf("failed to get pending action: %w", err)
	}
	return action, nil
}

// List retrieves pending actions with filters
func (s *WorkflowService) List(ctx context.Context, filters repositories.PendingActionFilters) ([]*entities.PendingAction, int64, error) {
	actions, total, err := s.actionRepo.List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pending actions: %w", err)
	}
	return actions, total, nil
}

// ListByMeeting retrieves all pending actions of one meeting
func (s *WorkflowService) ListByMeeting(ctx context.Context, meetingID string) ([]*entities.PendingAction, error) {
	actions, err := s.actionRepo.FindByMeeting(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meeting pending actions: %w", err)
	}
	return actions, nil
}

// Update edits non-workflow fields of an action
func (s *WorkflowService) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*entities.PendingAction, error) {
	action, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, usecaseErrors.ErrInvalidInput
		}
		action.Title = *input.Title
	}
	if input.Description != nil {
		action.Description = *input.Description
	}
	if input.ActionType != nil {
		action.ActionType = *input.ActionType
	}
	if input.Priority != nil {
		action.Priority = *input.Priority
	}
	if input.AssigneeID != nil {
		action.AssigneeID = input.AssigneeID
	}
	if input.AssigneeName != nil {
		action.AssigneeName = *input.AssigneeName
	}
	if input.AssigneeEmail != nil {
		action.AssigneeEmail = *input.AssigneeEmail
	}
	if input.DueDate != nil {
		action.DueDate = input.DueDate
	}
	if input.Notes != nil {
		action.Notes = *input.Notes
	}

	if err := s.actionRepo.Update(ctx, action); err != nil {
		return nil, fmt.Errorf("failed to update pending action: %w", err)
	}
	return action, nil
}

// Approve moves a PENDING_APPROVAL action to APPROVED
func (s *WorkflowService) Approve(ctx context.Context, id uuid.UUID, approverID int64, notes string) (*entities.PendingAction, error) {
	decidedAt := s.now()
	action, err := s.transition(ctx, "approve", id,
		[]entities.ActionStatus{entities.ActionStatusPendingApproval},
		entities.ActionStatusApproved,
		func(a *entities.PendingAction) {
			a.Decision = &entities.ApprovalDecision{
				DecidedByID: approverID,
				Approved:    true,
				DecidedAt:   decidedAt,
				Notes:       notes,
			}
		})
	if err != nil {
		return nil, err
	}

	s.triggerExecution(ctx, action)
	return action, nil
}

// Reject moves a PENDING_APPROVAL action to REJECTED. Reason is mandatory.
func (s *WorkflowService) Reject(ctx context.Context, id uuid.UUID, rejecterID int64, reason string) (*entities.PendingAction, error) {
	if strings.TrimSpace(reason) == "" {
		s.count("reject", "rejected")
		return nil, usecaseErrors.ErrRejectReasonRequired
	}

	decidedAt := s.now()
	return s.transition(ctx, "reject", id,
		[]entities.ActionStatus{entities.ActionStatusPendingApproval},
		entities.ActionStatusRejected,
		func(a *entities.PendingAction) {
			a.Decision = &entities.ApprovalDecision{
				DecidedByID: rejecterID,
				Approved:    false,
				DecidedAt:   decidedAt,
				Notes:       reason,
			}
		})
}

// Activate moves an APPROVED action to ACTIVE
func (s *WorkflowService) Activate(ctx context.Context, id uuid.UUID) (*entities.PendingAction, error) {
	return s.transition(ctx, "activate", id,
		[]entities.ActionStatus{entities.ActionStatusApproved},
		entities.ActionStatusActive, nil)
}

// Complete moves an APPROVED or ACTIVE action to COMPLETE
func (s *WorkflowService) Complete(ctx context.Context, id uuid.UUID, completionNotes string) (*entities.PendingAction, error) {
	completedAt := s.now()
	return s.transition(ctx, "complete", id,
		[]entities.ActionStatus{entities.ActionStatusApproved, entities.ActionStatusActive},
		entities.ActionStatusComplete,
		func(a *entities.PendingAction) {
			a.CompletionNotes = completionNotes
			a.CompletedAt = &completedAt
		})
}

// Cancel moves any non-terminal action to CANCELLED
func (s *WorkflowService) Cancel(ctx context.Context, id uuid.UUID) (*entities.PendingAction, error) {
	cancelledAt := s.now()
	return s.transition(ctx, "cancel", id,
		[]entities.ActionStatus{
			entities.ActionStatusNew,
			entities.ActionStatusPendingApproval,
			entities.ActionStatusApproved,
			entities.ActionStatusActive,
		},
		entities.ActionStatusCancelled,
		func(a *entities.PendingAction) {
			a.CancelledAt = &cancelledAt
		})
}

// BulkApprove applies Approve per id independently
func (s *WorkflowService) BulkApprove(ctx context.Context, ids []uuid.UUID, approverID int64, notes string) []BulkResult {
	results := make([]BulkResult, 0, len(ids))
	for _, id := range ids {
		action, err := s.Approve(ctx, id, approverID, notes)
		if err != nil {
			results = append(results, BulkResult{ID: id, Error: err.Error()})
			continue
		}
		results = append(results, BulkResult{ID: id, OK: true, Status: action.Status})
	}
	return results
}

// BulkReject applies Reject per id independently. An empty reason fails the
// whole call up front since every item would fail identically.
func (s *WorkflowService) BulkReject(ctx context.Context, ids []uuid.UUID, rejecterID int64, reason string) ([]BulkResult, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, usecaseErrors.ErrRejectReasonRequired
	}

	results := make([]BulkResult, 0, len(ids))
	for _, id := range ids {
		action, err := s.Reject(ctx, id, rejecterID, reason)
		if err != nil {
			results = append(results, BulkResult{ID: id, Error: err.Error()})
			continue
		}
		results = append(results, BulkResult{ID: id, OK: true, Status: action.Status})
	}
	return results, nil
}

// Delete removes an action
func (s *WorkflowService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.actionRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete pending action: %w", err)
	}
	return nil
}

// Statistics returns the per-user workload breakdown
func (s *WorkflowService) Statistics(ctx context.Context, userID int64) (*Statistics, error) {
	counts, err := s.actionRepo.CountByStatus(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending actions: %w", err)
	}
	overdue, err := s.actionRepo.CountOverdue(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count overdue actions: %w", err)
	}

	stats := &Statistics{
		Pending:   counts[entities.ActionStatusNew] + counts[entities.ActionStatusPendingApproval],
		Active:    counts[entities.ActionStatusApproved] + counts[entities.ActionStatusActive],
		Completed: counts[entities.ActionStatusComplete],
		Rejected:  counts[entities.ActionStatusRejected],
		Overdue:   overdue,
	}
	for _, n := range counts {
		stats.Total += n
	}

	if stats.Total > 0 {
		stats.CompletionRate = 100 * float64(stats.Completed) / float64(stats.Total)
	}
	// Approval rate is over decided actions only: everything that passed or
	// failed the approval gate.
	approved := counts[entities.ActionStatusApproved] + counts[entities.ActionStatusActive] + counts[entities.ActionStatusComplete]
	if decided := approved + stats.Rejected; decided > 0 {
		stats.ApprovalRate = 100 * float64(approved) / float64(decided)
	}
	return stats, nil
}

// transition runs one atomic check-and-set through the repository and maps
// its errors onto the workflow taxonomy.
func (s *WorkflowService) transition(
	ctx context.Context,
	name string,
	id uuid.UUID,
	from []entities.ActionStatus,
	next entities.ActionStatus,
	mutate func(*entities.PendingAction),
) (*entities.PendingAction, error) {
	action, err := s.actionRepo.TransitionStatus(ctx, id, from, next, mutate)
	if err != nil {
		s.count(name, "rejected")
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, usecaseErrors.ErrActionNotFound
		case errors.Is(err, entities.ErrInvalidTransition):
			return nil, fmt.Errorf("%s %s: %w", name, id, usecaseErrors.ErrInvalidTransition)
		default:
			return nil, fmt.Errorf("failed to %s pending action: %w", name, err)
		}
	}
	s.count(name, "ok")
	return action, nil
}

func (s *WorkflowService) count(transition, result string) {
	if s.metrics != nil {
		s.metrics.Transitions.WithLabelValues(transition, result).Inc()
	}
}

// triggerExecution asks the automation system to run an approved external
// operation. Best effort: failures are recorded on the action, never
// propagated to the approver.
func (s *WorkflowService) triggerExecution(ctx context.Context, action *entities.PendingAction) {
	if s.automation == nil || !s.automation.Available() {
		return
	}
	if action.Source != entities.ActionSourceN8N || action.ExternalExecutionID == nil {
		return
	}

	err := s.automation.TriggerOperation(ctx, map[string]interface{}{
		"execution_id": *action.ExternalExecutionID,
	})
	if err != nil {
		s.logger.Warn("automation trigger failed after approval",
			zap.String("action_id", action.ID.String()),
			zap.String("execution_id", *action.ExternalExecutionID),
			zap.Error(err),
		)
		action.ExternalWorkflowStatus = "FAILED"
		action.ExecutionError = err.Error()
	} else {
		action.ExternalWorkflowStatus = "TRIGGERED"
		action.ExecutionError = ""
	}

	if err := s.actionRepo.Update(ctx, action); err != nil {
		s.logger.Warn("failed to record automation trigger outcome",
			zap.String("action_id", action.ID.String()),
			zap.Error(err),
		)
	}
}
