package dto

import (
	"time"

	"github.com/spec-kit/exam-portal/internal/domain"
)

// NotificationItem response.
type NotificationItem struct {
	ID             string                    `json:"id"`
	RecipientEmail string                    `json:"recipient_email"`
	RecipientName  string                    `json:"recipient_name"`
	RequestID      string                    `json:"request_id"`
	EmailType      domain.EmailType          `json:"email_type"`
	Subject        string                    `json:"subject"`
	Status         domain.NotificationStatus `json:"status"`
	CreatedAt      time.Time                 `json:"created_at"`
}

// SweepResult reports one dispatcher pass over the pending queue.
type SweepResult struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}

// NewNotificationItem maps a domain notification, omitting the rendered body.
func NewNotificationItem(n *domain.Notification) NotificationItem {
	return NotificationItem{
		ID:             n.ID,
		RecipientEmail: n.RecipientEmail,
		RecipientName:  n.RecipientName,
		RequestID:      n.RequestID,
		EmailType:      n.EmailType,
		Subject:        n.Subject,
		Status:         n.Status,
		CreatedAt:      n.CreatedAt,
	}
}
