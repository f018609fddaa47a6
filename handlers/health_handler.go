package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// HealthHandler reports the status of optional backing services.
type HealthHandler struct {
	checks map[string]func() error
}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{checks: make(map[string]func() error)}
}

func (h *HealthHandler) AddCheck(name string, check func() error) {
	h.checks[name] = check
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	status := fiber.Map{}
	healthy := true
	for name, check := range h.checks {
		if err := check(); err != nil {
			status[name] = err.Error()
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "checks": status})
	}
	return c.JSON(fiber.Map{"status": "ok", "checks": status})
}
