package pendingaction

import "time"

// CreatePendingActionRequest represents the request to create a pending action
type CreatePendingActionRequest struct {
	MeetingID      string `json:"meeting_id"`
	OrganizationID int64  `json:"organization_id"`
	Title          string `json:"title" validate:"required,min=1,max=500"`
	Description    string `json:"description,omitempty"`
	ActionType     string `json:"action_type,omitempty" validate:"omitempty,oneof=TASK FOLLOW_UP DECISION APPROVAL REVIEW COMMUNICATION OTHER"`
	Priority       string `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`

	ApprovalRequired bool `json:"approval_required"`

	AssigneeID    *int64 `json:"assignee_id,omitempty"`
	AssigneeName  string `json:"assignee_name,omitempty"`
	AssigneeEmail string `json:"assignee_email,omitempty" validate:"omitempty,email"`

	DueDate *time.Time `json:"due_date,omitempty"`
	Notes   string     `json:"notes,omitempty"`
}

// UpdatePendingActionRequest represents the request to update a pending action
type UpdatePendingActionRequest struct {
	Title         *string    `json:"title,omitempty" validate:"omitempty,min=1,max=500"`
	Description   *string    `json:"description,omitempty"`
	ActionType    *string    `json:"action_type,omitempty" validate:"omitempty,oneof=TASK FOLLOW_UP DECISION APPROVAL REVIEW COMMUNICATION OTHER"`
	Priority      *string    `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	AssigneeID    *int64     `json:"assignee_id,omitempty"`
	AssigneeName  *string    `json:"assignee_name,omitempty"`
	AssigneeEmail *string    `json:"assignee_email,omitempty" validate:"omitempty,email"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

// ListPendingActionsRequest represents query parameters for listing
type ListPendingActionsRequest struct {
	MeetingID      string   `query:"meeting_id"`
	OrganizationID *int64   `query:"organization_id"`
	AssigneeID     *int64   `query:"assignee_id"`
	Statuses       []string `query:"statuses" validate:"dive,oneof=NEW PENDING_APPROVAL APPROVED REJECTED ACTIVE COMPLETE CANCELLED"`
	Page           int      `query:"page" validate:"omitempty,min=1"`
	PageSize       int      `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// ApproveRequest represents the request to approve a pending action
type ApproveRequest struct {
	Notes string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// RejectRequest represents the request to reject a pending action. The reason
// is mandatory.
type RejectRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=2000"`
}

// CompleteRequest represents the request to complete a pending action
type CompleteRequest struct {
	CompletionNotes string `json:"completion_notes,omitempty" validate:"omitempty,max=2000"`
}

// BulkApproveRequest represents the request to approve many actions at once
type BulkApproveRequest struct {
	IDs   []string `json:"ids" validate:"required,min=1,dive,uuid"`
	Notes string   `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// BulkRejectRequest represents the request to reject many actions at once
type BulkRejectRequest struct {
	IDs    []string `json:"ids" validate:"required,min=1,dive,uuid"`
	Reason string   `json:"reason" validate:"required,min=1,max=2000"`
}

// FromMeetingRequest carries the organization scope for meeting expansion
type FromMeetingRequest struct {
	OrganizationID int64 `json:"organization_id"`
}

// SyncRequest represents the request to pull external operations
type SyncRequest struct {
	MeetingID string `json:"meeting_id" validate:"required"`
}

// EditDraftRequest carries unsaved edit state stashed by the UI
type EditDraftRequest struct {
	Fields map[string]interface{} `json:"fields" validate:"required"`
}
