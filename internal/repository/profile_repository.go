package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/exam-portal/internal/domain"
)

// ProfileRepository encapsulates portal account persistence.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	CompleteSetup(ctx context.Context, profile *domain.Profile) error
}

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository instantiates repository.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

const profileColumns = `id, email, full_name, password_hash, role, department_id,
               student_id, phone, avatar_url, is_complete, created_at, updated_at`

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	const query = `
        INSERT INTO profiles (email, full_name, password_hash, role, department_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		profile.Email,
		profile.FullName,
		profile.PasswordHash,
		profile.Role,
		profile.DepartmentID,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

// CompleteSetup fills in the first-login profile fields and flips the
// completeness flag. Role and email are never writable here.
func (r *profileRepository) CompleteSetup(ctx context.Context, profile *domain.Profile) error {
	const query = `
        UPDATE profiles
        SET full_name=$1, department_id=$2, student_id=$3, phone=$4, avatar_url=$5,
            is_complete=TRUE, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		profile.FullName,
		profile.DepartmentID,
		profile.StudentID,
		profile.Phone,
		profile.AvatarURL,
		profile.ID,
	).Scan(&profile.UpdatedAt)
}

func (r *profileRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Profile, error) {
	var profile domain.Profile
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&profile.ID,
		&profile.Email,
		&profile.FullName,
		&profile.PasswordHash,
		&profile.Role,
		&profile.DepartmentID,
		&profile.StudentID,
		&profile.Phone,
		&profile.AvatarURL,
		&profile.IsComplete,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}
