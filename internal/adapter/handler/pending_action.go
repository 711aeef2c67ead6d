package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/g37/meeting-manager/errors"
	"github.com/g37/meeting-manager/internal/adapter/dto/pendingaction"
	"github.com/g37/meeting-manager/internal/adapter/presenter"
	"github.com/g37/meeting-manager/internal/domain/entities"
	"github.com/g37/meeting-manager/internal/domain/repositories"
	"github.com/g37/meeting-manager/internal/infrastructure/http/middleware"
	syncusecase "github.com/g37/meeting-manager/internal/usecase/sync"
	"github.com/g37/meeting-manager/internal/usecase/workflow"
)

// PendingAction handles the pending-action HTTP surface.
type PendingAction struct {
	workflow workflow.Service
	sync     syncusecase.Service
	overlay  *EditOverlay
	logger   *zap.Logger
}

// NewPendingAction creates a new pending action handler
func NewPendingAction(wf workflow.Service, sync syncusecase.Service, overlay *EditOverlay, logger *zap.Logger) *PendingAction {
	return &PendingAction{
		workflow: wf,
		sync:     sync,
		overlay:  overlay,
		logger:   logger,
	}
}

// List handles GET /v1/pending-actions
func (h *PendingAction) List(c echo.Context) error {
	var req pendingaction.ListPendingActionsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	filters := repositories.PendingActionFilters{
		MeetingID:      req.MeetingID,
		OrganizationID: req.OrganizationID,
		AssigneeID:     req.AssigneeID,
		Page:           req.Page,
		PageSize:       req.PageSize,
	}
	for _, s := range req.Statuses {
		filters.Statuses = append(filters.Statuses, entities.ActionStatus(s))
	}

	actions, total, err := h.workflow.List(c.Request().Context(), filters)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":  presenter.ToPendingActionListResponse(actions, h.overlay.Has),
		"total": total,
	})
}

// Get handles GET /v1/pending-actions/:id
func (h *PendingAction) Get(c echo.Context) error {
	id, err := actionID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	action, err := h.workflow.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, presenter.ToPendingActionResponse(action, h.overlay.Has(id.String())))
}

// Create handles POST /v1/pending-actions
func (h *PendingAction) Create(c echo.Context) error {
	var req pendingaction.CreatePendingActionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	userID, err := callerID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	action, err := h.workflow.Create(c.Request().Context(), workflow.CreateInput{
		MeetingID:        req.MeetingID,
		OrganizationID:   h.organizationID(c, req.OrganizationID),
		Title:            req.Title,
		Description:      req.Description,
		ActionType:       entities.ActionType(req.ActionType),
		Priority:         entities.ActionPriority(req.Priority),
		ApprovalRequired: req.ApprovalRequired,
		AssigneeID:       req.AssigneeID,
		AssigneeName:     req.AssigneeName,
		AssigneeEmail:    req.AssigneeEmail,
		ReporterID:       &userID,
		DueDate:          req.DueDate,
		Notes:            req.Notes,
		Source:           entities.ActionSourceManual,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, presenter.ToPendingActionResponse(action, false))
}

// Update handles PUT /v1/pending-actions/:id
func (h *PendingAction) Update(c echo.Context) error {
	id, err := actionID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req pendingaction.UpdatePendingActionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	input := workflow.UpdateInput{
		Title:         req.Title,
		Description:   req.Description,
		AssigneeID:    req.AssigneeID,
		AssigneeName:  req.AssigneeName,
		AssigneeEmail: req.AssigneeEmail,
		DueDate:       req.DueDate,
		Notes:         req.Notes,
	}
	if req.ActionType != nil {
		at := entities.ActionType(*req.ActionType)
		input.ActionType = &at
	}
	if req.Priority != nil {
		p := entities.ActionPriority(*req.Priority)
		input.Priority = &p
	}

	action, err := h.workflow.Update(c.Request().Context(), id, input)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	// A saved edit supersedes any stashed draft.
	h.overlay.Discard(id.String())
	return c.JSON(http.StatusOK, presenter.ToPendingActionResponse(action, false))
}

// Delete handles DELETE /v1/pending-actions/:id
func (h *PendingAction) Delete(c echo.Context) error {
	id, err := actionID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := h.workflow.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, h.logger, err)
	}
	h.overlay.Discard(id.String())
	return c.NoContent(http.StatusNoContent)
}

// Approve handles POST /v1/pending-actions/:id/approve
func (h *PendingAction) Approve(c echo.Context) error {
	id, err := actionID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req pendingaction.ApproveRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	userID, err := callerID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	action, err := h.workflow.Approve(c.Request().Context(), id, userID, req.Notes)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, presenter.ToPendingActionResponse(action, h.overlay.Has(id.String())))
}

// Reject handles POST /v1/pending-actions/:id/reject
func (h *PendingAction) Reject(c echo.Context) error {
	id, err := actionID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req pendingaction.RejectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	userID, err := callerID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	action, err := h.workflow.Reject(c.Request().Context(), id, userID, req.Reason)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, presenter.ToPendingActionResponse(action, h.overlay.Has(id.String())))
}

// Activate handles POST /v1/pending-actions/:id/activate
func (h *PendingAction) Activate(c echo.Context) error {
	id, err := actionID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	action, err := h.workflow.Activate(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, presenter.ToPendingActionResponse(action, h.overlay.Has(id.String())))
}

// Complete handles POST /v1/pending-actions/:id/complete
func (h *PendingAction) Complete(c echo.Context) error {
	id, err := actionID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req pendingaction.CompleteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	action, err := h.workflow.Complete(c.Request().Context(), id, req.CompletionNotes)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, presenter.ToPendingActionResponse(action, h.overlay.Has(id.String())))
}

// Cancel handles POST /v1/pending-actions/:id/cancel
func (h *PendingAction) Cancel(c echo.Context) error {
	id, err := actionID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	action, err := h.workflow.Cancel(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, presenter.ToPendingActionResponse(action, h.overlay.Has(id.String())))
}

// BulkApprove handles POST /v1/pending-actions/bulk-approve
func (h *PendingAction) BulkApprove(c echo.Context) error {
	var req pendingaction.BulkApproveRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	userID, err := callerID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	ids, err := parseIDs(req.IDs)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	results := h.workflow.BulkApprove(c.Request().Context(), ids, userID, req.Notes)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"results": presenter.ToBulkResultResponses(results),
	})
}

// BulkReject handles POST /v1/pending-actions/bulk-reject
func (h *PendingAction) BulkReject(c echo.Context) error {
	var req pendingaction.BulkRejectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	userID, err := callerID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	ids, err := parseIDs(req.IDs)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	results, err := h.workflow.BulkReject(c.Request().Context(), ids, userID, req.Reason)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"results": presenter.ToBulkResultResponses(results),
	})
}

// FromMeeting handles POST /v1/pending-actions/from-meeting/:meetingId
func (h *PendingAction) FromMeeting(c echo.Context) error {
	meetingID := c.Param("meetingId")
	if meetingID == "" {
		return respondError(c, h.logger, apperrors.ErrInvalidArgument("missing meeting id"))
	}

	var req pendingaction.FromMeetingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	userID, err := callerID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	created, err := h.workflow.CreateFromMeeting(c.Request().Context(), meetingID, h.organizationID(c, req.OrganizationID), userID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"data": presenter.ToPendingActionListResponse(created, nil),
	})
}

// ByMeeting handles GET /v1/pending-actions/meeting/:meetingId
func (h *PendingAction) ByMeeting(c echo.Context) error {
	meetingID := c.Param("meetingId")
	if meetingID == "" {
		return respondError(c, h.logger, apperrors.ErrInvalidArgument("missing meeting id"))
	}

	actions, err := h.workflow.ListByMeeting(c.Request().Context(), meetingID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data": presenter.ToPendingActionListResponse(actions, h.overlay.Has),
	})
}

// Sync handles POST /v1/pending-actions/sync-from-n8n
func (h *PendingAction) Sync(c echo.Context) error {
	var req pendingaction.SyncRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	result, err := h.sync.Sync(c.Request().Context(), req.MeetingID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, presenter.ToSyncResponse(result))
}

// Statistics handles GET /v1/pending-actions/statistics/:userId
func (h *PendingAction) Statistics(c echo.Context) error {
	var userID int64
	if err := echo.PathParamsBinder(c).Int64("userId", &userID).BindError(); err != nil {
		return respondError(c, h.logger, apperrors.ErrInvalidArgument("invalid user id"))
	}

	stats, err := h.workflow.Statistics(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// StashDraft handles PUT /v1/pending-actions/:id/draft
func (h *PendingAction) StashDraft(c echo.Context) error {
	id, err := actionID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req pendingaction.EditDraftRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	// The action must exist before a draft can hang off it.
	if _, err := h.workflow.Get(c.Request().Context(), id); err != nil {
		return respondError(c, h.logger, err)
	}

	h.overlay.Put(id.String(), req.Fields)
	return c.NoContent(http.StatusNoContent)
}

// GetDraft handles GET /v1/pending-actions/:id/draft
func (h *PendingAction) GetDraft(c echo.Context) error {
	id, err := actionID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	fields, ok := h.overlay.Get(id.String())
	if !ok {
		return respondError(c, h.logger, apperrors.ErrNotFound("draft"))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"fields": fields})
}

// DiscardDraft handles DELETE /v1/pending-actions/:id/draft
func (h *PendingAction) DiscardDraft(c echo.Context) error {
	id, err := actionID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	h.overlay.Discard(id.String())
	return c.NoContent(http.StatusNoContent)
}

// organizationID prefers the explicit request value, falling back to the
// caller's claim.
func (h *PendingAction) organizationID(c echo.Context, requested int64) int64 {
	if requested != 0 {
		return requested
	}
	if claim, ok := c.Get(middleware.ContextOrganizationID).(int64); ok {
		return claim
	}
	return 0
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, apperrors.ErrInvalidArgument("invalid pending action id: " + s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
