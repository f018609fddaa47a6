package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"course_gen_backend/models"
	"course_gen_backend/pkg/logging"
)

type RunLookup interface {
	Latest(ctx context.Context, requestID string) (*models.GenerationRun, error)
}

// CourseLinker hands out download links for archived courses.
type CourseLinker interface {
	FileExists(ctx context.Context, fileKey string) (bool, error)
	GeneratePresignedGetDownload(ctx context.Context, fileKey string, expiry time.Duration) (string, error)
}

type RunHandler struct {
	runs   RunLookup
	links  CourseLinker
	expiry time.Duration
}

// NewRunHandler builds the run lookup endpoint. links may be nil when no
// object storage is configured.
func NewRunHandler(runs RunLookup, links CourseLinker, expiry time.Duration) *RunHandler {
	return &RunHandler{runs: runs, links: links, expiry: expiry}
}

type runResponse struct {
	*models.GenerationRun
	CourseURL string `json:"courseUrl,omitempty"`
}

func (h *RunHandler) GetRun(c *fiber.Ctx) error {
	run, err := h.runs.Latest(c.UserContext(), c.Params("requestId"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "generation run not found"})
	}
	if err != nil {
		logging.Logger.Error("fail GetRun", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load generation run"})
	}
	return c.JSON(runResponse{GenerationRun: run, CourseURL: h.courseURL(c.UserContext(), run)})
}

// courseURL is empty unless the run completed and its archive is present.
func (h *RunHandler) courseURL(ctx context.Context, run *models.GenerationRun) string {
	if h.links == nil || run.Status != models.RunStatusCompleted || run.CourseKey == "" {
		return ""
	}
	ok, err := h.links.FileExists(ctx, run.CourseKey)
	if err != nil {
		logging.Logger.Error("fail stat archived course", "requestId", run.RequestID, "key", run.CourseKey, "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	url, err := h.links.GeneratePresignedGetDownload(ctx, run.CourseKey, h.expiry)
	if err != nil {
		return ""
	}
	return url
}
