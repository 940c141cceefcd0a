package handlers

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	config "github.com/ribotflowdeveloper-hub/ribotflow-sub005/configs"
)

// SweepRunner is the slice of the publish queue the trigger endpoint needs.
type SweepRunner interface {
	PublishDuePosts(ctx context.Context) (processed, due int, err error)
}

type JobHandler struct {
	cfg config.Config
	q   SweepRunner
}

func NewJobHandler(cfg config.Config, q SweepRunner) *JobHandler {
	return &JobHandler{cfg: cfg, q: q}
}

// PublishScheduled is the time-triggered entry point. The caller authenticates
// with the service-role secret; no body is expected.
func (h *JobHandler) PublishScheduled(c *fiber.Ctx) error {
	if c.Get("Authorization") != "Bearer "+h.cfg.ServiceRoleSecret {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	processed, due, err := h.q.PublishDuePosts(c.Context())
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	// Posts that were due but claimed by a concurrent run still count as a
	// working sweep, not an idle one.
	if due == 0 {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "No hi ha publicacions per a enviar.",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "ok",
		"processed": processed,
	})
}
