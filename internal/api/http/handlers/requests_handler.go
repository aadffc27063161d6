package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/exam-portal/internal/api/dto"
	"github.com/spec-kit/exam-portal/internal/auth"
	"github.com/spec-kit/exam-portal/internal/domain"
	"github.com/spec-kit/exam-portal/internal/service"
	apperrors "github.com/spec-kit/exam-portal/pkg/util"
)

// RequestsHandler manages student-facing request endpoints.
type RequestsHandler struct {
	service *service.RequestService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requestService *service.RequestService) *RequestsHandler {
	return &RequestsHandler{service: requestService}
}

// Create POST /requests. Multipart: form fields plus an optional attachment file.
func (h *RequestsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var form dto.CreateRequestForm
	if err := c.BodyParser(&form); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	attachment, err := formUpload(c, "attachment")
	if err != nil {
		return err
	}

	req, err := h.service.CreateRequest(c.Context(), principal.Actor, service.CreateRequestInput{
		Title:        form.Title,
		Description:  form.Description,
		RequestType:  domain.RequestType(form.RequestType),
		Priority:     domain.RequestPriority(form.Priority),
		DepartmentID: form.DepartmentID,
		Attachment:   attachment,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewRequestSummary(req)})
}

// List GET /requests.
func (h *RequestsHandler) List(c *fiber.Ctx) error {
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

// Get GET /requests/:id.
func (h *RequestsHandler) Get(c *fiber.Ctx) error {
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

func parseStatusQuery(c *fiber.Ctx) *domain.RequestStatus {
	raw := c.Query("status")
	if raw == "" {
		return nil
	}
	status := domain.RequestStatus(raw)
	return &status
}

func parsePagination(c *fiber.Ctx) (limit, offset int) {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	return pageSize, (page - 1) * pageSize
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
