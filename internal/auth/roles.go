package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/exam-portal/internal/domain"
	apperrors "github.com/spec-kit/exam-portal/pkg/util"
)

// RequireRole ensures the principal has one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Actor.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAdminTier ensures the caller is an admin or super-admin.
func RequireAdminTier() fiber.Handler {
	return RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin)
}
