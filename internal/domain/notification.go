package domain

import "time"

// NotificationStatus enumerates delivery states for queued emails.
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// EmailType identifies which outcome template a notification renders.
type EmailType string

const (
	EmailTypeRequestResolved   EmailType = "request_resolved"
	EmailTypeRequestEscalated  EmailType = "request_escalated"
	EmailTypeRequestTerminated EmailType = "request_terminated"
)

// Notification is a queued outbound email record. Created by the lifecycle
// manager as a transition side effect; mutated only by the dispatcher
// (pending -> sent or pending -> failed). Failed rows keep an error
// annotation appended to Content and are never deleted automatically.
type Notification struct {
	ID             string
	RecipientEmail string
	RecipientName  string
	RequestID      string
	EmailType      EmailType
	Subject        string
	Content        string
	Attachments    []string
	Status         NotificationStatus
	CreatedAt      time.Time
}
