// Package policy decides which requests an actor may see and mutate.
// It is the single authorization point for lifecycle transitions.
package policy

import (
	"github.com/spec-kit/exam-portal/internal/domain"
)

// Scope is a row filter derived from the actor's role. Exactly one of the
// pointer fields is set for students and super-admins; admins get a
// department filter that callers may narrow further by status.
type Scope struct {
	StudentID    *string
	DepartmentID *string
	Status       *domain.RequestStatus
}

// VisibleScope returns the listing filter for the actor:
// students see their own requests, admins see their department,
// super-admins see every escalated request regardless of department.
func VisibleScope(actor domain.Actor) Scope {
	switch actor.Role {
	case domain.RoleAdmin:
		return Scope{DepartmentID: actor.DepartmentID}
	case domain.RoleSuperAdmin:
		escalated := domain.RequestStatusEscalated
		return Scope{Status: &escalated}
	default:
		id := actor.ID
		return Scope{StudentID: &id}
	}
}

// CanView reports whether the actor may read a single request.
func CanView(actor domain.Actor, req *domain.Request) bool {
	switch actor.Role {
	case domain.RoleStudent:
		return req.StudentID == actor.ID
	case domain.RoleAdmin:
		return actor.DepartmentID != nil && *actor.DepartmentID == req.DepartmentID
	case domain.RoleSuperAdmin:
		return true
	}
	return false
}

// transitionTargets is the lifecycle state machine. Pending requests can be
// resolved, escalated, or terminated; escalated requests can be resolved or
// terminated by the super-admin tier. There is no de-escalation.
var transitionTargets = map[domain.RequestStatus][]domain.RequestStatus{
	domain.RequestStatusPending:   {domain.RequestStatusResolved, domain.RequestStatusEscalated, domain.RequestStatusTerminated},
	domain.RequestStatusEscalated: {domain.RequestStatusResolved, domain.RequestStatusTerminated},
}

// ValidTransition reports whether the state machine permits current -> target.
func ValidTransition(current, target domain.RequestStatus) bool {
	for _, candidate := range transitionTargets[current] {
		if candidate == target {
			return true
		}
	}
	return false
}

// Decision explains a denied mutation.
type Decision int

const (
	Allowed Decision = iota
	DeniedRole
	DeniedDepartment
	DeniedTransition
)

// CanTransition checks whether the actor may move the request to target.
// Admins must be scoped to the request's department; super-admins cannot
// escalate (already the top tier) and act on escalated requests from any
// department.
func CanTransition(actor domain.Actor, req *domain.Request, target domain.RequestStatus) Decision {
	if !ValidTransition(req.Status, target) {
		return DeniedTransition
	}

	switch actor.Role {
	case domain.RoleAdmin:
		// Department admins only act on pending requests; anything else
		// means another actor got there first.
		if req.Status != domain.RequestStatusPending {
			return DeniedTransition
		}
		if actor.DepartmentID == nil || *actor.DepartmentID != req.DepartmentID {
			return DeniedDepartment
		}
		return Allowed
	case domain.RoleSuperAdmin:
		if target == domain.RequestStatusEscalated {
			return DeniedRole
		}
		return Allowed
	default:
		return DeniedRole
	}
}
