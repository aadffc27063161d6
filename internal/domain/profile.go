package domain

import "time"

// Role enumerates portal roles. Admin roles are provisioned out-of-band;
// there is no self-service elevation path.
type Role string

const (
	RoleStudent    Role = "student"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Profile models a portal account, one per identity.
type Profile struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	Role         Role
	DepartmentID *string
	StudentID    *string
	Phone        *string
	AvatarURL    *string
	IsComplete   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
