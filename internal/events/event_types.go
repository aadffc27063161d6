package events

import (
	"time"

	"github.com/spec-kit/exam-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestCreated      EventType = "request_created"
	EventRequestTransitioned EventType = "request_transitioned"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID string      `json:"request_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RequestCreatedPayload payload.
type RequestCreatedPayload struct {
	ExternalKey  string                 `json:"external_key"`
	DepartmentID string                 `json:"department_id"`
	RequestType  domain.RequestType     `json:"request_type"`
	Priority     domain.RequestPriority `json:"priority"`
	Title        string                 `json:"title"`
}

// RequestTransitionedPayload payload. Carries the student contact details so
// notification handlers need no extra lookups.
type RequestTransitionedPayload struct {
	OldStatus    domain.RequestStatus `json:"old_status"`
	NewStatus    domain.RequestStatus `json:"new_status"`
	Notes        string               `json:"notes,omitempty"`
	RequestTitle string               `json:"request_title"`
	ExternalKey  string               `json:"external_key"`
	StudentEmail string               `json:"student_email"`
	StudentName  string               `json:"student_name"`
	Attachments  []string             `json:"attachments,omitempty"`
}
