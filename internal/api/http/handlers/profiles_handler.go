package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/exam-portal/internal/api/dto"
	"github.com/spec-kit/exam-portal/internal/auth"
	"github.com/spec-kit/exam-portal/internal/service"
	apperrors "github.com/spec-kit/exam-portal/pkg/util"
)

// ProfilesHandler manages the authenticated profile endpoints.
type ProfilesHandler struct {
	service *service.ProfileService
}

// NewProfilesHandler constructs handler.
func NewProfilesHandler(profileService *service.ProfileService) *ProfilesHandler {
	return &ProfilesHandler{service: profileService}
}

// Me GET /profiles/me.
func (h *ProfilesHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	profile, err := h.service.Get(c.Context(), principal.Actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProfileDetail(profile)})
}

// Setup POST /profiles/setup. Multipart: form fields plus an optional avatar file.
func (h *ProfilesHandler) Setup(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var form dto.ProfileSetupForm
	if err := c.BodyParser(&form); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	avatar, err := formUpload(c, "avatar")
	if err != nil {
		return err
	}

	profile, err := h.service.CompleteSetup(c.Context(), principal.Actor, service.SetupInput{
		FullName:     form.FullName,
		DepartmentID: form.DepartmentID,
		StudentID:    form.StudentID,
		Phone:        form.Phone,
		Avatar:       avatar,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProfileDetail(profile)})
}
