package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ActionStatus is the pending-action lifecycle state.
type ActionStatus string

const (
	ActionStatusNew             ActionStatus = "NEW"
	ActionStatusPendingApproval ActionStatus = "PENDING_APPROVAL"
	ActionStatusApproved        ActionStatus = "APPROVED"
	ActionStatusRejected        ActionStatus = "REJECTED"
	ActionStatusActive          ActionStatus = "ACTIVE"
	ActionStatusComplete        ActionStatus = "COMPLETE"
	ActionStatusCancelled       ActionStatus = "CANCELLED"
)

// Terminal reports whether no further workflow transition is possible.
func (s ActionStatus) Terminal() bool {
	return s == ActionStatusRejected || s == ActionStatusComplete || s == ActionStatusCancelled
}

// ActionPriority mirrors the priority vocabulary of the original task model.
type ActionPriority string

const (
	PriorityLow    ActionPriority = "LOW"
	PriorityMedium ActionPriority = "MEDIUM"
	PriorityHigh   ActionPriority = "HIGH"
	PriorityUrgent ActionPriority = "URGENT"
)

// ActionType classifies what kind of work a pending action represents.
type ActionType string

const (
	ActionTypeTask          ActionType = "TASK"
	ActionTypeFollowUp      ActionType = "FOLLOW_UP"
	ActionTypeDecision      ActionType = "DECISION"
	ActionTypeApproval      ActionType = "APPROVAL"
	ActionTypeReview        ActionType = "REVIEW"
	ActionTypeCommunication ActionType = "COMMUNICATION"
	ActionTypeOther         ActionType = "OTHER"
)

// ActionSource records where a pending action came from.
type ActionSource string

const (
	ActionSourceManual  ActionSource = "MANUAL"
	ActionSourceMeeting ActionSource = "MEETING"
	ActionSourceN8N     ActionSource = "N8N"
)

// ApprovalDecision is the immutable record of an approve/reject transition.
// It is written once when the transition happens and never mutated.
type ApprovalDecision struct {
	DecidedByID int64     `json:"decided_by_id" gorm:"column:decision_by_id"`
	Approved    bool      `json:"approved" gorm:"column:decision_approved"`
	DecidedAt   time.Time `json:"decided_at" gorm:"column:decision_at"`
	Notes       string    `json:"notes" gorm:"column:decision_notes"`
}

// PendingAction is a proposed task awaiting or past approval. It is mutated
// only through workflow transitions, except for explicit user delete.
type PendingAction struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	MeetingID      string         `json:"meeting_id" gorm:"index"`
	OrganizationID int64          `json:"organization_id" gorm:"index"`
	Title          string         `json:"title" gorm:"size:500;not null"`
	Description    string         `json:"description"`
	ActionType     ActionType     `json:"action_type"`
	Priority       ActionPriority `json:"priority" gorm:"index"`
	Status         ActionStatus   `json:"status" gorm:"index"`

	ApprovalRequired bool `json:"approval_required"`

	AssigneeID    *int64 `json:"assignee_id,omitempty" gorm:"index"`
	AssigneeName  string `json:"assignee_name,omitempty"`
	AssigneeEmail string `json:"assignee_email,omitempty"`
	ReporterID    *int64 `json:"reporter_id,omitempty"`

	DueDate         *time.Time     `json:"due_date,omitempty"`
	Notes           string         `json:"notes,omitempty"`
	CompletionNotes string         `json:"completion_notes,omitempty"`
	Tags            datatypes.JSON `json:"tags,omitempty"`

	Source ActionSource `json:"source" gorm:"index"`

	// Decision is set exactly once, on approve or reject.
	Decision *ApprovalDecision `json:"decision,omitempty" gorm:"embedded"`

	// ExternalExecutionID is the automation system's unique operation id.
	// Uniqueness across all pending actions is what makes external import
	// idempotent.
	ExternalExecutionID    *string `json:"external_execution_id,omitempty" gorm:"uniqueIndex"`
	ExternalWorkflowStatus string  `json:"external_workflow_status,omitempty"`
	ExecutionError         string  `json:"execution_error,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// TableName keeps the collection name the frontend already knows.
func (PendingAction) TableName() string { return "pending_actions" }

// Overdue reports whether the action has a due date in the past and is still
// open.
func (a *PendingAction) Overdue(now time.Time) bool {
	return a.DueDate != nil && !a.Status.Terminal() && now.After(*a.DueDate)
}
