// Package mailer renders notification emails and sends them through a
// transactional email provider. The provider credential stays server-side.
package mailer

import "context"

// Message is a fully rendered outbound email.
type Message struct {
	RecipientEmail string
	RecipientName  string
	Subject        string
	HTMLBody       string
	AttachmentURLs []string
}

// Provider sends a message synchronously, returning success or failure.
type Provider interface {
	Send(ctx context.Context, msg Message) error
}
