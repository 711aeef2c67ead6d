package entities

import "errors"

// Domain errors
var (
	// Workflow errors
	ErrActionNotFound      = errors.New("pending action not found")
	ErrInvalidTransition   = errors.New("invalid pending action status transition")
	ErrRejectReasonMissing = errors.New("rejection requires a non-empty reason")
	ErrDuplicateExecution  = errors.New("external execution id already imported")

	// Reconciliation errors
	ErrAllSourcesFailed = errors.New("all meeting sources failed")
	ErrMeetingNotFound  = errors.New("meeting not found")

	// Generic errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnauthorized   = errors.New("unauthorized")
)
