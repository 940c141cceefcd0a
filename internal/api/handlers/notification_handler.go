package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/service"
)

type NotificationHandler struct {
	s service.NotificationService
}

func NewNotificationHandler(service service.NotificationService) *NotificationHandler {
	return &NotificationHandler{s: service}
}

func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	userID := GetUserID(c)

	notifications, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list notifications",
		})
	}

	return c.Status(fiber.StatusOK).JSON(notifications)
}
