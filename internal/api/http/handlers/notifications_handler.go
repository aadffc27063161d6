package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/exam-portal/internal/api/dto"
	"github.com/spec-kit/exam-portal/internal/domain"
	"github.com/spec-kit/exam-portal/internal/repository"
	"github.com/spec-kit/exam-portal/internal/service"
	apperrors "github.com/spec-kit/exam-portal/pkg/util"
)

// NotificationsHandler exposes the dispatch queue to super-admins: a manual
// sweep trigger and a delivery-log listing for inspecting failed sends.
type NotificationsHandler struct {
	service       *service.NotificationService
	notifications repository.NotificationRepository
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notificationService *service.NotificationService, notifications repository.NotificationRepository) *NotificationsHandler {
	return &NotificationsHandler{service: notificationService, notifications: notifications}
}

// Sweep POST /admin/notifications/sweep.
func (h *NotificationsHandler) Sweep(c *fiber.Ctx) error {
	limit := parseInt(c.Query("limit"), 0)
	processed, sent := h.service.Sweep(c.UserContext(), limit)
	return c.JSON(fiber.Map{"data": dto.SweepResult{
		Processed: processed,
		Sent:      sent,
		Failed:    processed - sent,
	}})
}

// List GET /admin/notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	status := domain.NotificationStatus(c.Query("status", string(domain.NotificationStatusFailed)))
	switch status {
	case domain.NotificationStatusPending, domain.NotificationStatusSent, domain.NotificationStatusFailed:
	default:
		return apperrors.NewValidationError("unknown notification status", map[string]any{"status": status})
	}

	limit, offset := parsePagination(c)
	notifications, err := h.notifications.ListByStatus(c.UserContext(), status, limit, offset)
	if err != nil {
		return apperrors.MapError(err)
	}

	items := make([]dto.NotificationItem, 0, len(notifications))
	for i := range notifications {
		items = append(items, dto.NewNotificationItem(&notifications[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
