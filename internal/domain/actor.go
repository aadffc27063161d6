package domain

// Actor is the authenticated caller passed explicitly into every core
// operation. There is no ambient identity.
type Actor struct {
	ID           string
	Email        string
	FullName     string
	Role         Role
	DepartmentID *string
}

// ActorFromProfile derives the operation-level actor from a stored profile.
func ActorFromProfile(p *Profile) Actor {
	return Actor{
		ID:           p.ID,
		Email:        p.Email,
		FullName:     p.FullName,
		Role:         p.Role,
		DepartmentID: p.DepartmentID,
	}
}

// IsAdminTier reports whether the actor may access admin surfaces.
func (a Actor) IsAdminTier() bool {
	return a.Role == RoleAdmin || a.Role == RoleSuperAdmin
}
