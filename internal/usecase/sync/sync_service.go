package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/g37/meeting-manager/errors"
	"github.com/g37/meeting-manager/internal/domain/entities"
	"github.com/g37/meeting-manager/internal/domain/repositories"
	"github.com/g37/meeting-manager/internal/infrastructure/external/automation"
	"github.com/g37/meeting-manager/internal/infrastructure/metrics"
)

// SyncService imports externally-created operations into the pending-action
// store. Deduplication by execution id is the only concurrency-safety
// mechanism; no lock is held across the run.
type SyncService struct {
	client     automation.Client
	actionRepo repositories.PendingActionRepository
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewSyncService creates a new sync service. m may be nil.
func NewSyncService(
	client automation.Client,
	actionRepo repositories.PendingActionRepository,
	logger *zap.Logger,
	m *metrics.Metrics,
) *SyncService {
	return &SyncService{
		client:     client,
		actionRepo: actionRepo,
		logger:     logger,
		metrics:    m,
	}
}

// Sync pulls pending operations for one meeting and imports the new ones.
// Importing the same execution id twice yields exactly one pending action.
func (s *SyncService) Sync(ctx context.Context, meetingID string) (*Result, error) {
	if s.client == nil || !s.client.Available() {
		return &Result{Imported: []*entities.PendingAction{}, Status: StatusUnavailable}, nil
	}

	ops, err := s.client.GetPendingOperations(ctx, eventIDOf(meetingID))
	if err != nil {
		if isUnavailable(err) {
			s.logger.Warn("automation system unreachable, reporting unavailable",
				zap.String("meeting_id", meetingID),
				zap.Error(err),
			)
			return &Result{Imported: []*entities.PendingAction{}, Status: StatusUnavailable}, nil
		}
		return &Result{Imported: []*entities.PendingAction{}, Status: StatusError}, fmt.Errorf("failed to fetch pending operations: %w", err)
	}

	result := &Result{Imported: []*entities.PendingAction{}, Status: StatusSuccess}
	for _, op := range ops {
		if op.ID == "" {
			s.logger.Warn("skipping external operation without execution id",
				zap.String("meeting_id", meetingID),
			)
			result.Skipped++
			continue
		}

		action := convertOperation(op, meetingID)
		created, err := s.actionRepo.CreateIfExecutionAbsent(ctx, action)
		if err != nil {
			result.Status = StatusError
			return result, fmt.Errorf("failed to import operation %s: %w", op.ID, err)
		}
		if !created {
			result.Skipped++
			if s.metrics != nil {
				s.metrics.SyncSkipped.Inc()
			}
			continue
		}
		result.Imported = append(result.Imported, action)
		if s.metrics != nil {
			s.metrics.SyncImports.Inc()
		}
	}

	s.logger.Info("external sync finished",
		zap.String("meeting_id", meetingID),
		zap.Int("imported", len(result.Imported)),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// convertOperation maps one loosely-typed external operation onto a pending
// action. Contact-style operations get their title and description built from
// the contact fields; priority always defaults to MEDIUM.
func convertOperation(op automation.Operation, meetingID string) *entities.PendingAction {
	execID := op.ID
	action := &entities.PendingAction{
		ID:                     uuid.New(),
		MeetingID:              meetingID,
		Title:                  op.OperationType,
		ActionType:             mapOperationType(op.OperationType),
		Priority:               entities.PriorityMedium,
		Status:                 mapOperationStatus(op.Status),
		ApprovalRequired:       true,
		Source:                 entities.ActionSourceN8N,
		ExternalExecutionID:    &execID,
		ExternalWorkflowStatus: op.Status,
	}

	if op.Operation != nil {
		firstName := stringValue(op.Operation, "FirstName")
		lastName := stringValue(op.Operation, "LastName")
		email := stringValue(op.Operation, "Email")
		phone := stringValue(op.Operation, "Phone")
		role := stringValue(op.Operation, "Role")
		company := stringValue(op.Operation, "Company")

		var title strings.Builder
		if strings.EqualFold(op.OperationType, "Contact") {
			title.WriteString("Contact: ")
		}
		switch {
		case firstName != "" || lastName != "":
			title.WriteString(strings.TrimSpace(firstName + " " + lastName))
		case email != "":
			title.WriteString(email)
		}
		if t := strings.TrimSpace(title.String()); t != "" {
			action.Title = t
		}

		var desc strings.Builder
		for _, line := range []struct{ label, value string }{
			{"Email", email},
			{"Phone", phone},
			{"Role", role},
			{"Company", company},
		} {
			if line.value != "" {
				fmt.Fprintf(&desc, "%s: %s\n", line.label, line.value)
			}
		}
		action.Description = strings.TrimSpace(desc.String())

		action.AssigneeEmail = email
		if name := strings.TrimSpace(firstName + " " + lastName); name != "" {
			action.AssigneeName = name
		}
	}

	if action.Title == "" {
		action.Title = "External operation " + op.ID
	}
	return action
}

// mapOperationType coerces the external operation type onto the action type
// vocabulary, defaulting to TASK.
func mapOperationType(operationType string) entities.ActionType {
	normalized := entities.ActionType(strings.ReplaceAll(strings.ToUpper(operationType), " ", "_"))
	switch normalized {
	case entities.ActionTypeTask, entities.ActionTypeFollowUp, entities.ActionTypeDecision,
		entities.ActionTypeApproval, entities.ActionTypeReview, entities.ActionTypeCommunication,
		entities.ActionTypeOther:
		return normalized
	default:
		return entities.ActionTypeTask
	}
}

// mapOperationStatus maps the external status vocabulary onto the workflow's.
// Unknown statuses start at NEW so they enter the normal lifecycle.
func mapOperationStatus(status string) entities.ActionStatus {
	switch strings.ToLower(status) {
	case "pending", "pending_approval":
		return entities.ActionStatusPendingApproval
	case "active", "approved":
		return entities.ActionStatusActive
	case "complete", "completed":
		return entities.ActionStatusComplete
	default:
		return entities.ActionStatusNew
	}
}

// eventIDOf strips the canonical source prefix; the webhook knows only the
// source-local id.
func eventIDOf(meetingID string) string {
	if idx := strings.Index(meetingID, ":"); idx >= 0 {
		return meetingID[idx+1:]
	}
	return meetingID
}

// isUnavailable separates the soft conditions (not configured, unreachable)
// from real failures.
func isUnavailable(err error) bool {
	if errors.Is(err, automation.ErrNotConfigured) {
		return true
	}
	var appErr apperrors.AppError
	return errors.As(err, &appErr) && appErr.Code == apperrors.ErrorCode_SOURCE_CONNECTIVITY
}

func stringValue(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok && v != nil {
		return fmt.Sprintf("%v", v)
	}
	return ""
}
