package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"course_gen_backend/config"
	"course_gen_backend/models"
	"course_gen_backend/pkg/logging"
	"course_gen_backend/services"
)

// StatusClientClosedRequest reports a job canceled by its client.
const StatusClientClosedRequest = 499

const (
	errUnsupportedFile  = "Only PDF, Word (.doc/.docx), and images are allowed"
	errRegenerateFields = "Missing required fields: language, level, or bulletpoints must be a non-empty array."
	errRegenerateFailed = "Failed to regenerate bulletpoints."
)

type CourseGenerator interface {
	Generate(ctx context.Context, req models.CourseRequest) (*models.Course, error)
}

type LessonRegenerator interface {
	RegenerateBullets(ctx context.Context, language, level string, bulletpoints []string) ([]string, error)
}

type CourseHandler struct {
	generator   CourseGenerator
	regenerator LessonRegenerator
	maxFiles    int
	maxFileSize int64
	allowed     map[string]struct{}
}

func NewCourseHandler(generator CourseGenerator, regenerator LessonRegenerator, cfg *config.Config) *CourseHandler {
	allowed := make(map[string]struct{}, len(cfg.AllowedMimeTypes))
	for _, m := range cfg.AllowedMimeTypes {
		allowed[strings.ToLower(m)] = struct{}{}
	}
	return &CourseHandler{
		generator:   generator,
		regenerator: regenerator,
		maxFiles:    cfg.MaxFiles,
		maxFileSize: cfg.MaxFileSize,
		allowed:     allowed,
	}
}

// GenerateCourse runs a whole job inside the request and answers with the
// course or the terminal error.
func (h *CourseHandler) GenerateCourse(c *fiber.Ctx) error {
	minutes, err := strconv.Atoi(strings.TrimSpace(c.FormValue("time")))
	if err != nil {
		minutes = 0
	}
	req := models.CourseRequest{
		Topic:     c.FormValue("topic"),
		Level:     c.FormValue("level"),
		Time:      minutes,
		Language:  c.FormValue("language"),
		RequestID: c.FormValue("requestId"),
	}

	files, err := h.readFiles(c)
	if err != nil {
		logging.Logger.Warn("rejecting upload", "requestId", req.RequestID, "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	req.Files = files

	course, err := h.generator.Generate(c.UserContext(), req)
	switch {
	case err == nil:
		return c.JSON(course)
	case errors.Is(err, services.ErrInvalidRequest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": services.MissingParamsMessage})
	case errors.Is(err, services.ErrJobCanceled):
		return c.Status(StatusClientClosedRequest).JSON(fiber.Map{"error": services.CanceledMessage})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

func (h *CourseHandler) readFiles(c *fiber.Ctx) ([]models.Attachment, error) {
	if !strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	headers := form.File["files"]
	if len(headers) > h.maxFiles {
		return nil, fmt.Errorf("too many files: at most %d allowed", h.maxFiles)
	}

	files := make([]models.Attachment, 0, len(headers))
	for _, fh := range headers {
		att, err := h.readFile(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, att)
	}
	return files, nil
}

func (h *CourseHandler) readFile(fh *multipart.FileHeader) (models.Attachment, error) {
	if fh.Size > h.maxFileSize {
		return models.Attachment{}, fmt.Errorf("file %s is larger than %d bytes", fh.Filename, h.maxFileSize)
	}
	mimeType := strings.ToLower(strings.TrimSpace(strings.Split(fh.Header.Get(fiber.HeaderContentType), ";")[0]))
	if _, ok := h.allowed[mimeType]; !ok {
		return models.Attachment{}, errors.New(errUnsupportedFile)
	}

	f, err := fh.Open()
	if err != nil {
		return models.Attachment{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxFileSize+1))
	if err != nil {
		return models.Attachment{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	if int64(len(data)) > h.maxFileSize {
		return models.Attachment{}, fmt.Errorf("file %s is larger than %d bytes", fh.Filename, h.maxFileSize)
	}
	return models.Attachment{Name: fh.Filename, MimeType: mimeType, Data: data}, nil
}

// RegenerateLesson rewrites one lesson's paragraphs. Single model call.
func (h *CourseHandler) RegenerateLesson(c *fiber.Ctx) error {
	var req models.RegenerateLessonReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errRegenerateFields})
	}
	if strings.TrimSpace(req.Language) == "" || strings.TrimSpace(string(req.Level)) == "" || len(req.Bulletpoints) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errRegenerateFields})
	}

	out, err := h.regenerator.RegenerateBullets(c.UserContext(), req.Language, string(req.Level), req.Bulletpoints)
	if err != nil {
		logging.Logger.Error("fail RegenerateLesson", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": errRegenerateFailed})
	}
	return c.JSON(models.RegenerateLessonResp{NewBulletpoints: out})
}
