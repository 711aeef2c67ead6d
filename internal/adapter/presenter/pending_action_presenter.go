package presenter

import (
	"time"

	"github.com/g37/meeting-manager/internal/adapter/dto/pendingaction"
	"github.com/g37/meeting-manager/internal/domain/entities"
	"github.com/g37/meeting-manager/internal/usecase/sync"
	"github.com/g37/meeting-manager/internal/usecase/workflow"
)

// ToPendingActionResponse converts a PendingAction entity to its DTO
func ToPendingActionResponse(a *entities.PendingAction, hasDraft bool) *pendingaction.PendingActionResponse {
	if a == nil {
		return nil
	}

	resp := &pendingaction.PendingActionResponse{
		ID:                     a.ID.String(),
		MeetingID:              a.MeetingID,
		OrganizationID:         a.OrganizationID,
		Title:                  a.Title,
		Description:            a.Description,
		ActionType:             string(a.ActionType),
		Priority:               string(a.Priority),
		Status:                 string(a.Status),
		ApprovalRequired:       a.ApprovalRequired,
		AssigneeID:             a.AssigneeID,
		AssigneeName:           a.AssigneeName,
		AssigneeEmail:          a.AssigneeEmail,
		ReporterID:             a.ReporterID,
		DueDate:                a.DueDate,
		Overdue:                a.Overdue(time.Now()),
		Notes:                  a.Notes,
		CompletionNotes:        a.CompletionNotes,
		Source:                 string(a.Source),
		ExternalWorkflowStatus: a.ExternalWorkflowStatus,
		ExecutionError:         a.ExecutionError,
		HasDraft:               hasDraft,
		CreatedAt:              a.CreatedAt,
		UpdatedAt:              a.UpdatedAt,
		CompletedAt:            a.CompletedAt,
		CancelledAt:            a.CancelledAt,
	}

	if a.ExternalExecutionID != nil {
		resp.ExternalExecutionID = *a.ExternalExecutionID
	}
	if a.Decision != nil {
		resp.Decision = &pendingaction.DecisionResponse{
			DecidedByID: a.Decision.DecidedByID,
			Approved:    a.Decision.Approved,
			DecidedAt:   a.Decision.DecidedAt,
			Notes:       a.Decision.Notes,
		}
	}
	return resp
}

// ToPendingActionListResponse converts a slice of PendingAction entities
func ToPendingActionListResponse(actions []*entities.PendingAction, hasDraft func(id string) bool) []*pendingaction.PendingActionResponse {
	out := make([]*pendingaction.PendingActionResponse, len(actions))
	for i, a := range actions {
		draft := false
		if hasDraft != nil {
			draft = hasDraft(a.ID.String())
		}
		out[i] = ToPendingActionResponse(a, draft)
	}
	return out
}

// ToBulkResultResponses converts bulk transition results
func ToBulkResultResponses(results []workflow.BulkResult) []*pendingaction.BulkResultResponse {
	out := make([]*pendingaction.BulkResultResponse, len(results))
	for i, r := range results {
		out[i] = &pendingaction.BulkResultResponse{
			ID:     r.ID.String(),
			OK:     r.OK,
			Status: string(r.Status),
			Error:  r.Error,
		}
	}
	return out
}

// ToSyncResponse converts an external sync result
func ToSyncResponse(result *sync.Result) *pendingaction.SyncResponse {
	return &pendingaction.SyncResponse{
		Imported: ToPendingActionListResponse(result.Imported, nil),
		Skipped:  result.Skipped,
		Status:   string(result.Status),
	}
}
