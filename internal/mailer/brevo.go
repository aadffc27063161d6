package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/exam-portal/internal/config"
)

const brevoSendEndpoint = "/v3/smtp/email"

// BrevoProvider sends messages over Brevo's HTTPS JSON API.
type BrevoProvider struct {
	apiKey      string
	baseURL     string
	senderName  string
	senderEmail string
	client      *http.Client
	logger      *zap.Logger
}

var _ Provider = (*BrevoProvider)(nil)

// NewBrevoProvider builds the provider client.
func NewBrevoProvider(cfg config.EmailConfig, logger *zap.Logger) *BrevoProvider {
	timeout := time.Duration(cfg.SendTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &BrevoProvider{
		apiKey:      cfg.BrevoAPIKey,
		baseURL:     cfg.BrevoBaseURL,
		senderName:  cfg.SenderName,
		senderEmail: cfg.SenderEmail,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

type brevoParty struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoAttachment struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

type brevoPayload struct {
	Sender      brevoParty        `json:"sender"`
	To          []brevoParty      `json:"to"`
	Subject     string            `json:"subject"`
	HTMLContent string            `json:"htmlContent"`
	Attachment  []brevoAttachment `json:"attachment,omitempty"`
}

// Send posts the message to Brevo and fails on any non-2xx response.
func (p *BrevoProvider) Send(ctx context.Context, msg Message) error {
	payload := brevoPayload{
		Sender:      brevoParty{Name: p.senderName, Email: p.senderEmail},
		To:          []brevoParty{{Name: msg.RecipientName, Email: msg.RecipientEmail}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTMLBody,
	}
	for _, url := range msg.AttachmentURLs {
		payload.Attachment = append(payload.Attachment, brevoAttachment{
			URL:  url,
			Name: FileNameFromURL(url),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+brevoSendEndpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", p.apiKey)

	res, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		resBody, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		p.logger.Error("brevo send failed",
			zap.String("recipient", msg.RecipientEmail),
			zap.Int("status", res.StatusCode),
			zap.ByteString("body", resBody))
		return fmt.Errorf("brevo api: status %d: %s", res.StatusCode, string(resBody))
	}
	return nil
}

// FileNameFromURL extracts the last path segment, dropping query parameters.
func FileNameFromURL(url string) string {
	parts := strings.Split(url, "/")
	name := parts[len(parts)-1]
	if idx := strings.Index(name, "?"); idx >= 0 {
		name = name[:idx]
	}
	if name == "" {
		return "attachment"
	}
	return name
}
