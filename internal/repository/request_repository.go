package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/exam-portal/internal/domain"
)

// RequestFilter captures listing parameters. Fields map directly onto the
// visibility scope plus the caller's tab/status filter.
type RequestFilter struct {
	StudentID    *string
	DepartmentID *string
	Status       *domain.RequestStatus
	Limit        int
	Offset       int
}

// TransitionUpdate carries the fields written by a lifecycle transition.
// ExpectedStatus makes the update conditional: zero rows affected means
// another actor already transitioned the request.
type TransitionUpdate struct {
	RequestID       string
	ExpectedStatus  domain.RequestStatus
	NewStatus       domain.RequestStatus
	AssignedAdminID string
	ResolutionNotes *string
	ResolvedAt      *time.Time
}

// RequestRepository encapsulates examination request persistence.
type RequestRepository interface {
	Create(ctx context.Context, req *domain.Request) error
	GetByID(ctx context.Context, id string) (*domain.Request, error)
	List(ctx context.Context, filter RequestFilter) ([]domain.Request, error)
	TransitionWithResponse(ctx context.Context, update TransitionUpdate, response *domain.Response) (bool, error)
}

type requestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository instantiates repository.
func NewRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &requestRepository{pool: pool}
}

const requestColumns = `id, external_key, student_id, department_id, title, description,
               request_type, priority, status, attachments, assigned_admin_id,
               resolution_notes, created_at, updated_at, resolved_at`

func (r *requestRepository) Create(ctx context.Context, req *domain.Request) error {
	const query = `
        INSERT INTO examination_requests
            (external_key, student_id, department_id, title, description, request_type, priority, status, attachments)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		req.ExternalKey,
		req.StudentID,
		req.DepartmentID,
		req.Title,
		req.Description,
		req.RequestType,
		req.Priority,
		req.Status,
		req.Attachments,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM examination_requests WHERE id=$1`, requestColumns)
	var req domain.Request
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.ExternalKey,
		&req.StudentID,
		&req.DepartmentID,
		&req.Title,
		&req.Description,
		&req.RequestType,
		&req.Priority,
		&req.Status,
		&req.Attachments,
		&req.AssignedAdminID,
		&req.ResolutionNotes,
		&req.CreatedAt,
		&req.UpdatedAt,
		&req.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) List(ctx context.Context, filter RequestFilter) ([]domain.Request, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.StudentID != nil {
		args = append(args, *filter.StudentID)
		clauses = append(clauses, fmt.Sprintf("student_id=$%d", len(args)))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM examination_requests WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		requestColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

// TransitionWithResponse runs the conditional status update and the audit
// response insert in one transaction, so a lost race leaves neither a status
// change nor a response row behind.
func (r *requestRepository) TransitionWithResponse(ctx context.Context, update TransitionUpdate, response *domain.Response) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const updateQuery = `
        UPDATE examination_requests
        SET status=$1, assigned_admin_id=$2, resolution_notes=COALESCE($3, resolution_notes),
            resolved_at=COALESCE($4, resolved_at), updated_at=NOW()
        WHERE id=$5 AND status=$6`
	cmd, err := tx.Exec(ctx, updateQuery,
		update.NewStatus,
		update.AssignedAdminID,
		update.ResolutionNotes,
		update.ResolvedAt,
		update.RequestID,
		update.ExpectedStatus,
	)
	if err != nil {
		return false, err
	}
	if cmd.RowsAffected() == 0 {
		return false, nil
	}

	const insertQuery = `
        INSERT INTO request_responses (request_id, responder_id, response_text, response_type, attachments)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, insertQuery,
		response.RequestID,
		response.ResponderID,
		response.ResponseText,
		response.ResponseType,
		response.Attachments,
	).Scan(&response.ID, &response.CreatedAt); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func scanRequests(rows pgx.Rows) ([]domain.Request, error) {
	var result []domain.Request
	for rows.Next() {
		var req domain.Request
		if err := rows.Scan(
			&req.ID,
			&req.ExternalKey,
			&req.StudentID,
			&req.DepartmentID,
			&req.Title,
			&req.Description,
			&req.RequestType,
			&req.Priority,
			&req.Status,
			&req.Attachments,
			&req.AssignedAdminID,
			&req.ResolutionNotes,
			&req.CreatedAt,
			&req.UpdatedAt,
			&req.ResolvedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}
