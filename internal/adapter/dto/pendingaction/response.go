package pendingaction

import "time"

// DecisionResponse is the immutable approve/reject record
type DecisionResponse struct {
	DecidedByID int64     `json:"decided_by_id"`
	Approved    bool      `json:"approved"`
	DecidedAt   time.Time `json:"decided_at"`
	Notes       string    `json:"notes,omitempty"`
}

// PendingActionResponse represents a pending action in API responses
type PendingActionResponse struct {
	ID             string `json:"id"`
	MeetingID      string `json:"meeting_id,omitempty"`
	OrganizationID int64  `json:"organization_id,omitempty"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	ActionType     string `json:"action_type"`
	Priority       string `json:"priority"`
	Status         string `json:"status"`

	ApprovalRequired bool `json:"approval_required"`

	AssigneeID    *int64 `json:"assignee_id,omitempty"`
	AssigneeName  string `json:"assignee_name,omitempty"`
	AssigneeEmail string `json:"assignee_email,omitempty"`
	ReporterID    *int64 `json:"reporter_id,omitempty"`

	DueDate         *time.Time `json:"due_date,omitempty"`
	Overdue         bool       `json:"overdue"`
	Notes           string     `json:"notes,omitempty"`
	CompletionNotes string     `json:"completion_notes,omitempty"`

	Source   string            `json:"source"`
	Decision *DecisionResponse `json:"decision,omitempty"`

	ExternalExecutionID    string `json:"external_execution_id,omitempty"`
	ExternalWorkflowStatus string `json:"external_workflow_status,omitempty"`
	ExecutionError         string `json:"execution_error,omitempty"`

	// HasDraft flags unsaved UI edit state stashed against this action.
	HasDraft bool `json:"has_draft,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// BulkResultResponse is the per-id outcome of a bulk transition
type BulkResultResponse struct {
	ID     string `json:"id"`
	OK     bool   `json:"ok"`
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// SyncResponse is the outcome of one external sync run
type SyncResponse struct {
	Imported []*PendingActionResponse `json:"imported"`
	Skipped  int                      `json:"skipped"`
	Status   string                   `json:"status"`
}
