package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"course_gen_backend/models"
)

type fakeRuns map[string]*models.GenerationRun

func (f fakeRuns) Latest(_ context.Context, requestID string) (*models.GenerationRun, error) {
	if requestID == "broken" {
		return nil, errors.New("db down")
	}
	run, ok := f[requestID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return run, nil
}

func TestGetRun(t *testing.T) {
	app := fiber.New()
	h := NewRunHandler(fakeRuns{"r1": {ID: "run-1", RequestID: "r1", Status: models.RunStatusCompleted}}, nil, time.Minute)
	app.Get("/generation-runs/:requestId", h.GetRun)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/generation-runs/r1", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "run-1", body["id"])
	assert.Equal(t, "completed", body["status"])
	assert.NotContains(t, body, "courseUrl")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/generation-runs/nope", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/generation-runs/broken", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

type fakeLinker struct {
	objects map[string]bool
	expiry  time.Duration
}

func (f *fakeLinker) FileExists(_ context.Context, key string) (bool, error) {
	if key == "broken" {
		return false, errors.New("stat failed")
	}
	return f.objects[key], nil
}

func (f *fakeLinker) GeneratePresignedGetDownload(_ context.Context, key string, expiry time.Duration) (string, error) {
	f.expiry = expiry
	return "https://bucket.local/" + key + "?sig=1", nil
}

func TestGetRun_CourseURL(t *testing.T) {
	runs := fakeRuns{
		"done":     {ID: "1", RequestID: "done", Status: models.RunStatusCompleted, CourseKey: "courses/a/1_course.json"},
		"running":  {ID: "2", RequestID: "running", Status: models.RunStatusProcessing, CourseKey: "courses/b/1_course.json"},
		"gone":     {ID: "3", RequestID: "gone", Status: models.RunStatusCompleted, CourseKey: "courses/c/1_course.json"},
		"statfail": {ID: "4", RequestID: "statfail", Status: models.RunStatusCompleted, CourseKey: "broken"},
		"nokey":    {ID: "5", RequestID: "nokey", Status: models.RunStatusCompleted},
	}
	links := &fakeLinker{objects: map[string]bool{
		"courses/a/1_course.json": true,
		"courses/b/1_course.json": true,
	}}
	app := fiber.New()
	h := NewRunHandler(runs, links, 10*time.Minute)
	app.Get("/generation-runs/:requestId", h.GetRun)

	get := func(id string) map[string]interface{} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/generation-runs/"+id, nil), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		return decodeBody(t, resp)
	}

	body := get("done")
	assert.Equal(t, "https://bucket.local/courses/a/1_course.json?sig=1", body["courseUrl"])
	assert.NotContains(t, body, "CourseKey")
	assert.Equal(t, 10*time.Minute, links.expiry)

	for _, id := range []string{"running", "gone", "statfail", "nokey"} {
		assert.NotContains(t, get(id), "courseUrl", id)
	}
}

func TestHealth(t *testing.T) {
	app := fiber.New()
	h := NewHealthHandler()
	h.AddCheck("redis", func() error { return nil })
	app.Get("/healthz", h.Health)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	h.AddCheck("postgres", func() error { return errors.New("connection refused") })
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "degraded", decodeBody(t, resp)["status"])
}
