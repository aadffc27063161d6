package dto

import (
	"time"

	"github.com/spec-kit/exam-portal/internal/domain"
)

// RegisterRequest is the JSON payload for account creation.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,min=2,max=120"`
}

// LoginRequest is the JSON payload for credential login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries a signed token plus the authenticated profile.
type AuthResponse struct {
	Token   string        `json:"token"`
	Profile ProfileDetail `json:"profile"`
}

// ProfileSetupForm is the multipart payload for first-login profile setup.
// The optional avatar arrives as a separate form file.
type ProfileSetupForm struct {
	FullName     string `form:"full_name"`
	DepartmentID string `form:"department_id"`
	StudentID    string `form:"student_id"`
	Phone        string `form:"phone"`
}

// ProfileDetail response.
type ProfileDetail struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	FullName     string      `json:"full_name"`
	Role         domain.Role `json:"role"`
	DepartmentID *string     `json:"department_id,omitempty"`
	StudentID    *string     `json:"student_id,omitempty"`
	Phone        *string     `json:"phone,omitempty"`
	AvatarURL    *string     `json:"avatar_url,omitempty"`
	IsComplete   bool        `json:"is_complete"`
	CreatedAt    time.Time   `json:"created_at"`
}

// NewProfileDetail maps a domain profile, never exposing the password hash.
func NewProfileDetail(p *domain.Profile) ProfileDetail {
	return ProfileDetail{
		ID:           p.ID,
		Email:        p.Email,
		FullName:     p.FullName,
		Role:         p.Role,
		DepartmentID: p.DepartmentID,
		StudentID:    p.StudentID,
		Phone:        p.Phone,
		AvatarURL:    p.AvatarURL,
		IsComplete:   p.IsComplete,
		CreatedAt:    p.CreatedAt,
	}
}
