package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/exam-portal/internal/domain"
)

// ResponseRepository persists immutable audit responses. There is no update
// or delete: responses are append-only.
type ResponseRepository interface {
	Create(ctx context.Context, response *domain.Response) error
	ListByRequest(ctx context.Context, requestID string) ([]domain.Response, error)
}

type responseRepository struct {
	pool *pgxpool.Pool
}

// NewResponseRepository instantiates repository.
func NewResponseRepository(pool *pgxpool.Pool) ResponseRepository {
	return &responseRepository{pool: pool}
}

func (r *responseRepository) Create(ctx context.Context, response *domain.Response) error {
	const query = `
        INSERT INTO request_responses (request_id, responder_id, response_text, response_type, attachments)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		response.RequestID,
		response.ResponderID,
		response.ResponseText,
		response.ResponseType,
		response.Attachments,
	).Scan(&response.ID, &response.CreatedAt)
}

func (r *responseRepository) ListByRequest(ctx context.Context, requestID string) ([]domain.Response, error) {
	const query = `
        SELECT id, request_id, responder_id, response_text, response_type, attachments, created_at
        FROM request_responses WHERE request_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Response
	for rows.Next() {
		var resp domain.Response
		if err := rows.Scan(
			&resp.ID,
			&resp.RequestID,
			&resp.ResponderID,
			&resp.ResponseText,
			&resp.ResponseType,
			&resp.Attachments,
			&resp.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, resp)
	}
	return result, rows.Err()
}
