package meeting

// ParticipantRequest is one participant in a meeting write request
type ParticipantRequest struct {
	ID       *int64 `json:"id,omitempty"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Attended bool   `json:"attended"`
	Role     string `json:"role,omitempty"`
}

// ActionItemRequest is one action item in a meeting write request
type ActionItemRequest struct {
	ID          int64  `json:"id,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	AssignedTo  string `json:"assigned_to,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	Priority    string `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Status      string `json:"status,omitempty"`
}

// WriteMeetingRequest represents the request to create or update a meeting in
// the primary store. Timestamps stay strings; the store owns their format.
type WriteMeetingRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=500"`
	Description string `json:"description,omitempty"`
	StartTime   string `json:"start_time,omitempty"`
	EndTime     string `json:"end_time,omitempty"`
	MeetingType string `json:"meeting_type,omitempty"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=SCHEDULED IN_PROGRESS COMPLETED CANCELLED"`
	Date        string `json:"date,omitempty"`

	Participants []ParticipantRequest `json:"participants,omitempty" validate:"dive"`
	ActionItems  []ActionItemRequest  `json:"action_items,omitempty" validate:"dive"`
}
