package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/exam-portal/internal/api/dto"
	"github.com/spec-kit/exam-portal/internal/auth"
	"github.com/spec-kit/exam-portal/internal/domain"
	"github.com/spec-kit/exam-portal/internal/service"
	apperrors "github.com/spec-kit/exam-portal/pkg/util"
)

// AdminRequestsHandler manages the admin-tier lifecycle endpoints. The same
// handler serves department admins and super-admins; the policy layer decides
// who may do what.
type AdminRequestsHandler struct {
	service *service.RequestService
}

// NewAdminRequestsHandler constructs handler.
func NewAdminRequestsHandler(requestService *service.RequestService) *AdminRequestsHandler {
	return &AdminRequestsHandler{service: requestService}
}

// List GET /admin/requests.
func (h *AdminRequestsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	status := parseStatusQuery(c)
	limit, offset := parsePagination(c)
	requests, err := h.service.ListRequests(c.Context(), principal.Actor, status, limit, offset)
	if err != nil {
		return err
	}

	items := make([]dto.RequestSummary, 0, len(requests))
	for i := range requests {
		items = append(items, dto.NewRequestSummary(&requests[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /admin/requests/:id.
func (h *AdminRequestsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	req, responses, err := h.service.GetRequest(c.Context(), principal.Actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRequestDetail(req, responses)})
}

// Resolve POST /admin/requests/:id/resolve.
func (h *AdminRequestsHandler) Resolve(c *fiber.Ctx) error {
	return h.transition(c, domain.RequestStatusResolved)
}

// Escalate POST /admin/requests/:id/escalate.
func (h *AdminRequestsHandler) Escalate(c *fiber.Ctx) error {
	return h.transition(c, domain.RequestStatusEscalated)
}

// Terminate POST /admin/requests/:id/terminate.
func (h *AdminRequestsHandler) Terminate(c *fiber.Ctx) error {
	return h.transition(c, domain.RequestStatusTerminated)
}

// transition parses the shared multipart payload: response text plus an
// optional attachment file.
func (h *AdminRequestsHandler) transition(c *fiber.Ctx, target domain.RequestStatus) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var form dto.TransitionForm
	if err := c.BodyParser(&form); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	attachment, err := formUpload(c, "attachment")
	if err != nil {
		return err
	}

	req, err := h.service.ApplyTransition(c.Context(), principal.Actor, service.TransitionInput{
		RequestID:    c.Params("id"),
		Target:       target,
		ResponseText: form.ResponseText,
		Attachment:   attachment,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRequestSummary(req)})
}
