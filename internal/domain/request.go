package domain

import "time"

// RequestStatus enumerates lifecycle states for examination requests.
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusResolved   RequestStatus = "resolved"
	RequestStatusEscalated  RequestStatus = "escalated"
	RequestStatusTerminated RequestStatus = "terminated"
)

// RequestType enumerates the categories students can file under.
type RequestType string

const (
	RequestTypeExamIssue     RequestType = "exam_issue"
	RequestTypeClarification RequestType = "clarification"
	RequestTypeReschedule    RequestType = "reschedule"
	RequestTypeGradeDispute  RequestType = "grade_dispute"
	RequestTypeOther         RequestType = "other"
)

// RequestPriority enumerates urgency levels.
type RequestPriority string

const (
	RequestPriorityLow    RequestPriority = "low"
	RequestPriorityMedium RequestPriority = "medium"
	RequestPriorityHigh   RequestPriority = "high"
	RequestPriorityUrgent RequestPriority = "urgent"
)

// Request is the aggregate for a student-submitted examination-support ticket.
type Request struct {
	ID              string
	ExternalKey     string
	StudentID       string
	DepartmentID    string
	Title           string
	Description     string
	RequestType     RequestType
	Priority        RequestPriority
	Status          RequestStatus
	Attachments     []string
	AssignedAdminID *string
	ResolutionNotes *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ResolvedAt      *time.Time
}

// ValidRequestType reports whether t is one of the known categories.
func ValidRequestType(t RequestType) bool {
	switch t {
	case RequestTypeExamIssue, RequestTypeClarification, RequestTypeReschedule, RequestTypeGradeDispute, RequestTypeOther:
		return true
	}
	return false
}

// ValidRequestPriority reports whether p is one of the known levels.
func ValidRequestPriority(p RequestPriority) bool {
	switch p {
	case RequestPriorityLow, RequestPriorityMedium, RequestPriorityHigh, RequestPriorityUrgent:
		return true
	}
	return false
}

// ValidRequestStatus reports whether s is one of the four lifecycle states.
func ValidRequestStatus(s RequestStatus) bool {
	switch s {
	case RequestStatusPending, RequestStatusResolved, RequestStatusEscalated, RequestStatusTerminated:
		return true
	}
	return false
}
