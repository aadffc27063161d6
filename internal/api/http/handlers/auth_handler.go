package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/exam-portal/internal/api/dto"
	"github.com/spec-kit/exam-portal/internal/service"
	apperrors "github.com/spec-kit/exam-portal/pkg/util"
)

// AuthHandler manages registration and login endpoints.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Register POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	profile, token, expiresAt, err := h.service.Register(c.Context(), req.Email, req.FullName, req.Password)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data":       dto.AuthResponse{Token: token, Profile: dto.NewProfileDetail(profile)},
		"expires_at": expiresAt,
	})
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	profile, token, expiresAt, err := h.service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":       dto.AuthResponse{Token: token, Profile: dto.NewProfileDetail(profile)},
		"expires_at": expiresAt,
	})
}
