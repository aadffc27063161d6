package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/exam-portal/internal/api/dto"
	"github.com/spec-kit/exam-portal/internal/service"
)

// DepartmentsHandler serves department reference data.
type DepartmentsHandler struct {
	service *service.DepartmentService
}

// NewDepartmentsHandler constructs handler.
func NewDepartmentsHandler(departmentService *service.DepartmentService) *DepartmentsHandler {
	return &DepartmentsHandler{service: departmentService}
}

// List GET /departments.
func (h *DepartmentsHandler) List(c *fiber.Ctx) error {
	departments, err := h.service.ListActive(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDepartmentItems(departments)})
}
