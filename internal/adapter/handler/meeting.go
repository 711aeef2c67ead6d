package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/g37/meeting-manager/errors"
	meetingdto "github.com/g37/meeting-manager/internal/adapter/dto/meeting"
	"github.com/g37/meeting-manager/internal/infrastructure/external/primarystore"
	"github.com/g37/meeting-manager/internal/usecase/meetings"
)

// Meeting handles the reconciled meeting HTTP surface.
type Meeting struct {
	meetings meetings.Service
	logger   *zap.Logger
}

// NewMeeting creates a new meeting handler
func NewMeeting(svc meetings.Service, logger *zap.Logger) *Meeting {
	return &Meeting{meetings: svc, logger: logger}
}

// List handles GET /v1/meetings. The response carries the merged list plus
// the per-source summary so clients can surface partial failures.
func (h *Meeting) List(c echo.Context) error {
	result, err := h.meetings.List(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Get handles GET /v1/meetings/:id
func (h *Meeting) Get(c echo.Context) error {
	meetingID := c.Param("id")
	if meetingID == "" {
		return respondError(c, h.logger, apperrors.ErrInvalidArgument("missing meeting id"))
	}

	meeting, err := h.meetings.GetMeeting(c.Request().Context(), meetingID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, meeting)
}

// Create handles POST /v1/meetings
func (h *Meeting) Create(c echo.Context) error {
	var req meetingdto.WriteMeetingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	meeting, err := h.meetings.Create(c.Request().Context(), toMeetingRecord(&req))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, meeting)
}

// Update handles PUT /v1/meetings/:id
func (h *Meeting) Update(c echo.Context) error {
	meetingID := c.Param("id")
	if meetingID == "" {
		return respondError(c, h.logger, apperrors.ErrInvalidArgument("missing meeting id"))
	}

	var req meetingdto.WriteMeetingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	meeting, err := h.meetings.Update(c.Request().Context(), meetingID, toMeetingRecord(&req))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, meeting)
}

// Delete handles DELETE /v1/meetings/:id
func (h *Meeting) Delete(c echo.Context) error {
	meetingID := c.Param("id")
	if meetingID == "" {
		return respondError(c, h.logger, apperrors.ErrInvalidArgument("missing meeting id"))
	}

	if err := h.meetings.Delete(c.Request().Context(), meetingID); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SourceStatus handles GET /v1/meetings/sources/status
func (h *Meeting) SourceStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"sources": h.meetings.SourceStatus(c.Request().Context()),
	})
}

func toMeetingRecord(req *meetingdto.WriteMeetingRequest) *primarystore.MeetingRecord {
	rec := &primarystore.MeetingRecord{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		MeetingType: req.MeetingType,
		Status:      req.Status,
		Date:        req.Date,
	}
	for _, p := range req.Participants {
		rec.Participants = append(rec.Participants, primarystore.ParticipantRecord{
			ID:       p.ID,
			Name:     p.Name,
			Email:    p.Email,
			Attended: p.Attended,
			Role:     p.Role,
		})
	}
	for _, ai := range req.ActionItems {
		rec.ActionItems = append(rec.ActionItems, primarystore.ActionItemRecord{
			ID:          ai.ID,
			Title:       ai.Title,
			Description: ai.Description,
			AssignedTo:  ai.AssignedTo,
			DueDate:     ai.DueDate,
			Priority:    ai.Priority,
			Status:      ai.Status,
		})
	}
	return rec
}
