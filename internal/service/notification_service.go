package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/exam-portal/internal/config"
	"github.com/spec-kit/exam-portal/internal/domain"
	"github.com/spec-kit/exam-portal/internal/events"
	"github.com/spec-kit/exam-portal/internal/mailer"
	"github.com/spec-kit/exam-portal/internal/observability"
	"github.com/spec-kit/exam-portal/internal/repository"
)

// NotificationService owns the store-then-send notification flow: persist a
// pending row, attempt synchronous delivery, and retry undelivered rows via
// Sweep. A failed send never blocks or reverses the lifecycle transition that
// produced the notification.
type NotificationService struct {
	notifications repository.NotificationRepository
	provider      mailer.Provider
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	metrics       *observability.Metrics
	portalName    string
	senderName    string
	batchLimit    int
}

// NewNotificationService creates the service.
func NewNotificationService(
	notifications repository.NotificationRepository,
	provider mailer.Provider,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
	metrics *observability.Metrics,
	emailCfg config.EmailConfig,
	sweepCfg config.SweepConfig,
) *NotificationService {
	limit := sweepCfg.BatchLimit
	if limit <= 0 {
		limit = 10
	}
	return &NotificationService{
		notifications: notifications,
		provider:      provider,
		dispatcher:    dispatcher,
		logger:        logger,
		metrics:       metrics,
		portalName:    emailCfg.PortalName,
		senderName:    emailCfg.SenderName,
		batchLimit:    limit,
	}
}

// RegisterHandlers subscribes to lifecycle events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventRequestTransitioned, n.handleRequestTransitioned)
}

func (n *NotificationService) handleRequestTransitioned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RequestTransitionedPayload)
	if !ok {
		n.logger.Warn("unexpected transition payload", zap.String("event_id", event.ID))
		return nil
	}

	emailType, subject, content := n.composeOutcomeEmail(payload)
	if emailType == "" {
		return nil
	}

	notification := &domain.Notification{
		RecipientEmail: payload.StudentEmail,
		RecipientName:  payload.StudentName,
		RequestID:      event.RequestID,
		EmailType:      emailType,
		Subject:        subject,
		Content:        content,
		Attachments:    payload.Attachments,
		Status:         domain.NotificationStatusPending,
	}
	if err := n.Enqueue(ctx, notification); err != nil {
		n.logger.Error("failed to enqueue notification",
			zap.String("request_id", event.RequestID),
			zap.Error(err))
	}
	return nil
}

// composeOutcomeEmail builds the subject and body for a transition outcome.
func (n *NotificationService) composeOutcomeEmail(payload events.RequestTransitionedPayload) (domain.EmailType, string, string) {
	switch payload.NewStatus {
	case domain.RequestStatusResolved:
		return domain.EmailTypeRequestResolved,
			fmt.Sprintf("Your Request %q Has Been Resolved", payload.RequestTitle),
			fmt.Sprintf("Dear %s,\n\nYour request %q has been resolved. Here's the resolution:\n\n%s\n\nThank you for your patience.\n\nRegards,\n%s",
				payload.StudentName, payload.RequestTitle, payload.Notes, n.senderName)
	case domain.RequestStatusEscalated:
		return domain.EmailTypeRequestEscalated,
			fmt.Sprintf("Your Request %q Has Been Escalated", payload.RequestTitle),
			fmt.Sprintf("Dear %s,\n\nYour request %q has been escalated to senior administrators for further review.\n\n%s\n\nThank you for your patience.\n\nRegards,\n%s",
				payload.StudentName, payload.RequestTitle, payload.Notes, n.senderName)
	case domain.RequestStatusTerminated:
		return domain.EmailTypeRequestTerminated,
			fmt.Sprintf("Your Request %q Has Been Closed", payload.RequestTitle),
			fmt.Sprintf("Dear %s,\n\nYour request %q has been closed. Here's the reason:\n\n%s\n\nThank you for your understanding.\n\nRegards,\n%s",
				payload.StudentName, payload.RequestTitle, payload.Notes, n.senderName)
	}
	return "", "", ""
}

// Enqueue persists the notification as pending, then immediately runs a
// sweep so the new row (and any stale ones) get a delivery attempt.
func (n *NotificationService) Enqueue(ctx context.Context, notification *domain.Notification) error {
	notification.Status = domain.NotificationStatusPending
	if err := n.notifications.Create(ctx, notification); err != nil {
		return err
	}
	n.Sweep(ctx, n.batchLimit)
	return nil
}

// Deliver renders and sends one notification, then flips its status to sent
// or failed. On failure the error text is appended to the stored content so
// operators can inspect it without a separate error log.
func (n *NotificationService) Deliver(ctx context.Context, notification *domain.Notification) error {
	html, err := mailer.RenderHTML(n.portalName, notification.Subject, notification.RequestID, notification.Content, notification.Attachments)
	if err != nil {
		return n.markFailed(ctx, notification, err)
	}

	msg := mailer.Message{
		RecipientEmail: notification.RecipientEmail,
		RecipientName:  notification.RecipientName,
		Subject:        notification.Subject,
		HTMLBody:       html,
		AttachmentURLs: notification.Attachments,
	}
	if err := n.provider.Send(ctx, msg); err != nil {
		return n.markFailed(ctx, notification, err)
	}

	if err := n.notifications.MarkSent(ctx, notification.ID); err != nil {
		// Provider accepted but the status write failed: the row stays
		// pending and the next sweep re-sends. At-least-once is accepted.
		n.logger.Error("failed to mark notification sent", zap.String("id", notification.ID), zap.Error(err))
		return err
	}
	notification.Status = domain.NotificationStatusSent
	return nil
}

func (n *NotificationService) markFailed(ctx context.Context, notification *domain.Notification, cause error) error {
	annotated := notification.Content + "\n\nError: " + cause.Error()
	if err := n.notifications.MarkFailed(ctx, notification.ID, annotated); err != nil {
		n.logger.Error("failed to mark notification failed", zap.String("id", notification.ID), zap.Error(err))
	}
	notification.Status = domain.NotificationStatusFailed
	notification.Content = annotated
	n.logger.Warn("notification delivery failed",
		zap.String("id", notification.ID),
		zap.String("recipient", notification.RecipientEmail),
		zap.Error(cause))
	return cause
}

// Sweep delivers up to limit pending notifications, oldest first. Every
// processed row ends up sent or failed. Returns how many were processed and
// how many of those were delivered.
func (n *NotificationService) Sweep(ctx context.Context, limit int) (processed, sent int) {
	if limit <= 0 {
		limit = n.batchLimit
	}
	pending, err := n.notifications.ListPending(ctx, limit)
	if err != nil {
		n.logger.Error("failed to list pending notifications", zap.Error(err))
		return 0, 0
	}

	for i := range pending {
		processed++
		if err := n.Deliver(ctx, &pending[i]); err == nil {
			sent++
		}
	}
	if processed > 0 {
		n.metrics.RecordSweep(sent, processed-sent)
		n.logger.Info("notification sweep complete",
			zap.Int("processed", processed),
			zap.Int("sent", sent))
	}
	return processed, sent
}
