package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/exam-portal/internal/domain"
)

// NotificationRepository persists queued email notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListPending(ctx context.Context, limit int) ([]domain.Notification, error)
	ListByStatus(ctx context.Context, status domain.NotificationStatus, limit, offset int) ([]domain.Notification, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, content string) error
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository instantiates repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

const notificationColumns = `id, recipient_email, recipient_name, request_id, email_type,
               subject, content, attachments, status, created_at`

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	const query = `
        INSERT INTO email_notifications
            (recipient_email, recipient_name, request_id, email_type, subject, content, attachments, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		notification.RecipientEmail,
		notification.RecipientName,
		notification.RequestID,
		notification.EmailType,
		notification.Subject,
		notification.Content,
		notification.Attachments,
		notification.Status,
	).Scan(&notification.ID, &notification.CreatedAt)
}

// ListPending returns undelivered notifications oldest first, so retries of
// stale rows are never starved by newer enqueues.
func (r *notificationRepository) ListPending(ctx context.Context, limit int) ([]domain.Notification, error) {
	const query = `
        SELECT ` + notificationColumns + `
        FROM email_notifications WHERE status='pending'
        ORDER BY created_at ASC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNotifications(rows)
}

func (r *notificationRepository) ListByStatus(ctx context.Context, status domain.NotificationStatus, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT ` + notificationColumns + `
        FROM email_notifications WHERE status=$1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNotifications(rows)
}

func (r *notificationRepository) MarkSent(ctx context.Context, id string) error {
	const query = `UPDATE email_notifications SET status='sent' WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// MarkFailed flips the status and stores the annotated content so operators
// can inspect failures without a separate error log.
func (r *notificationRepository) MarkFailed(ctx context.Context, id, content string) error {
	const query = `UPDATE email_notifications SET status='failed', content=$1 WHERE id=$2`
	_, err := r.pool.Exec(ctx, query, content, id)
	return err
}

func scanNotifications(rows pgx.Rows) ([]domain.Notification, error) {
	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.RecipientEmail,
			&n.RecipientName,
			&n.RequestID,
			&n.EmailType,
			&n.Subject,
			&n.Content,
			&n.Attachments,
			&n.Status,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}
