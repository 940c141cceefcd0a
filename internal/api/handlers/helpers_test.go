package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserID(t *testing.T) {
	var got int64

	app := fiber.New()
	app.Get("/with", func(c *fiber.Ctx) error {
		c.Locals("user_id", "42")
		got = GetUserID(c)
		return c.SendStatus(fiber.StatusOK)
	})
	// Mounted without the auth middleware; must yield zero, not panic.
	app.Get("/without", func(c *fiber.Ctx) error {
		got = GetUserID(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/with", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(42), got)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/without", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Zero(t, got)
}
