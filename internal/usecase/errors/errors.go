package errors

import (
	"errors"

	"github.com/g37/meeting-manager/internal/domain/entities"
)

// Common errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = entities.ErrUnauthorized
	ErrNotFound      = errors.New("resource not found")
	ErrConflict      = errors.New("resource conflict")
	ErrInternalError = errors.New("internal server error")
)

// Reconciliation errors. Shared sentinels alias the domain errors so
// errors.Is matches across layers.
var (
	ErrAllSourcesFailed  = entities.ErrAllSourcesFailed
	ErrMeetingNotFound   = entities.ErrMeetingNotFound
	ErrSourceUnreachable = errors.New("meeting source unreachable")
)

// Workflow errors
var (
	ErrActionNotFound       = entities.ErrActionNotFound
	ErrInvalidTransition    = entities.ErrInvalidTransition
	ErrRejectReasonRequired = entities.ErrRejectReasonMissing
	ErrNoActionItems        = errors.New("meeting has no action items")
)

// External sync errors
var (
	ErrAutomationUnavailable = errors.New("automation system not configured or unreachable")
	ErrDuplicateExecution    = entities.ErrDuplicateExecution
)
