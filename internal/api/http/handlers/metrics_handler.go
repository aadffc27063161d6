package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/exam-portal/internal/observability"
)

// MetricsHandler exposes the in-memory counters.
type MetricsHandler struct {
	metrics *observability.Metrics
}

// NewMetricsHandler constructs handler.
func NewMetricsHandler(metrics *observability.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Snapshot GET /admin/metrics.
func (h *MetricsHandler) Snapshot(c *fiber.Ctx) error {
	requests, errs, sweeps, sent, failed := h.metrics.Snapshot()
	return c.JSON(fiber.Map{"data": fiber.Map{
		"requests": requests,
		"errors":   errs,
		"notifications": fiber.Map{
			"sweep_runs":    sweeps,
			"emails_sent":   sent,
			"emails_failed": failed,
		},
	}})
}
