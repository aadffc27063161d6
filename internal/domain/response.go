package domain

import "time"

// ResponseType matches the lifecycle transition that produced the response.
type ResponseType string

const (
	ResponseTypeResolution  ResponseType = "resolution"
	ResponseTypeEscalation  ResponseType = "escalation"
	ResponseTypeTermination ResponseType = "termination"
)

// Response is an immutable audit record tied to a lifecycle transition.
// Never updated or deleted once created.
type Response struct {
	ID           string
	RequestID    string
	ResponderID  string
	ResponseText string
	ResponseType ResponseType
	Attachments  []string
	CreatedAt    time.Time
}

// ResponseTypeFor maps a target status to the response type recorded for it.
func ResponseTypeFor(target RequestStatus) (ResponseType, bool) {
	switch target {
	case RequestStatusResolved:
		return ResponseTypeResolution, true
	case RequestStatusEscalated:
		return ResponseTypeEscalation, true
	case RequestStatusTerminated:
		return ResponseTypeTermination, true
	}
	return "", false
}
