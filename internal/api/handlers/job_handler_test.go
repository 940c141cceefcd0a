package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	config "github.com/ribotflowdeveloper-hub/ribotflow-sub005/configs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweepRunner struct {
	processed int
	due       int
	err       error
	calls     int
}

func (f *fakeSweepRunner) PublishDuePosts(ctx context.Context) (int, int, error) {
	f.calls++
	return f.processed, f.due, f.err
}

func triggerApp(runner *fakeSweepRunner) *fiber.App {
	app := fiber.New()
	h := NewJobHandler(config.Config{ServiceRoleSecret: "sweep-secret"}, runner)
	app.Post("/jobs/publish-scheduled", h.PublishScheduled)
	return app
}

func triggerRequest(authorization string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/jobs/publish-scheduled", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestPublishScheduled_RejectsMissingSecret(t *testing.T) {
	runner := &fakeSweepRunner{}
	app := triggerApp(runner)

	resp, err := app.Test(triggerRequest(""))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Unauthorized", string(body))
	assert.Zero(t, runner.calls, "an unauthorized call must not run the sweep")
}

func TestPublishScheduled_RejectsWrongSecret(t *testing.T) {
	runner := &fakeSweepRunner{}
	app := triggerApp(runner)

	resp, err := app.Test(triggerRequest("Bearer wrong"))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, runner.calls)
}

func TestPublishScheduled_ReportsProcessedCount(t *testing.T) {
	runner := &fakeSweepRunner{processed: 3, due: 3}
	app := triggerApp(runner)

	resp, err := app.Test(triggerRequest("Bearer sweep-secret"))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(3), body["processed"])
	assert.Equal(t, 1, runner.calls)
}

func TestPublishScheduled_NothingDue(t *testing.T) {
	runner := &fakeSweepRunner{}
	app := triggerApp(runner)

	resp, err := app.Test(triggerRequest("Bearer sweep-secret"))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "No hi ha publicacions per a enviar.", body["message"])
	assert.NotContains(t, body, "processed")
}

func TestPublishScheduled_DuePostsClaimedByConcurrentRun(t *testing.T) {
	runner := &fakeSweepRunner{processed: 0, due: 2}
	app := triggerApp(runner)

	resp, err := app.Test(triggerRequest("Bearer sweep-secret"))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(0), body["processed"])
	assert.NotContains(t, body, "message")
}

func TestPublishScheduled_SweepFailure(t *testing.T) {
	runner := &fakeSweepRunner{err: errors.New("pq: connection refused")}
	app := triggerApp(runner)

	resp, err := app.Test(triggerRequest("Bearer sweep-secret"))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "pq: connection refused", body["error"])
}
