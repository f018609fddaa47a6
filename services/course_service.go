package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"course_gen_backend/models"
	"course_gen_backend/pkg/logging"
	"course_gen_backend/platform/genai"
)

const defaultBulletCount = 3

var (
	ErrEmptySummary   = errors.New("empty summary")
	ErrNotStringArray = errors.New("regenerated content is not a valid JSON array")
	ErrEmptySection   = errors.New("section has no content")
)

// MinSections is the smallest plan accepted for a time budget in minutes.
func MinSections(minutes int) int {
	if minutes <= 30 {
		return 4
	}
	return minutes / 10
}

// CourseService runs the individual prompt steps. Each call is one model
// request; retries belong to the caller.
type CourseService struct {
	gen genai.Generator
}

func NewCourseService(gen genai.Generator) *CourseService {
	return &CourseService{gen: gen}
}

func (s *CourseService) Summarize(ctx context.Context, files []models.Attachment, language string) (string, error) {
	out, err := s.gen.Generate(ctx, summarizePrompt(files, language), files)
	if err != nil {
		return "", fmt.Errorf("summarize files: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptySummary
	}
	return out, nil
}

func (s *CourseService) Plan(ctx context.Context, req models.CourseRequest, sources string) (*models.CoursePlan, error) {
	raw, err := s.gen.Generate(ctx, planPrompt(req, MinSections(req.Time), sources), nil)
	if err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}
	var plan models.CoursePlan
	if err := decodeModelJSON(raw, &plan); err != nil {
		logging.Logger.Warn("unusable course plan", "requestId", req.RequestID, "error", err)
		return nil, fmt.Errorf("generate plan: %w", err)
	}
	return &plan, nil
}

type generatedSection struct {
	Title   string               `json:"title"`
	Content []models.ContentItem `json:"content"`
	Test    []models.TestItem    `json:"test"`
}

// GenerateSection writes the lessons and quiz for one planned section. The
// model's title wins over the planned one when it sends one.
func (s *CourseService) GenerateSection(ctx context.Context, section models.SectionSpec, req models.CourseRequest, topic, sources string) (*models.SectionResult, error) {
	bulletCount := int(section.BulletCount)
	if bulletCount <= 0 {
		bulletCount = defaultBulletCount
	}
	raw, err := s.gen.Generate(ctx, sectionPrompt(section, bulletCount, req.Level, req.Language, topic, sources), nil)
	if err != nil {
		return nil, fmt.Errorf("generate section %q: %w", section.Title, err)
	}
	var parsed generatedSection
	if err := decodeModelJSON(raw, &parsed); err != nil {
		logging.Logger.Warn("unusable section", "requestId", req.RequestID, "section", section.Title, "error", err)
		return nil, fmt.Errorf("generate section %q: %w", section.Title, err)
	}

	if len(parsed.Content) == 0 {
		return nil, fmt.Errorf("generate section %q: %w", section.Title, ErrEmptySection)
	}

	result := &models.SectionResult{SectionSpec: section}
	if parsed.Title != "" {
		result.Title = parsed.Title
	}
	result.Content = make([]models.ContentItem, len(parsed.Content))
	for i, item := range parsed.Content {
		item.ID = i
		item.IsDone = false
		result.Content[i] = item
	}
	result.Test = make([]models.TestItem, len(parsed.Test))
	for i, item := range parsed.Test {
		item.ID = i
		item.IsDone = false
		result.Test[i] = item
	}
	return result, nil
}

// RegenerateBullets rewrites lesson paragraphs for another language or level.
func (s *CourseService) RegenerateBullets(ctx context.Context, language, level string, bulletpoints []string) ([]string, error) {
	prompt, err := regeneratePrompt(language, level, bulletpoints)
	if err != nil {
		return nil, err
	}
	raw, err := s.gen.Generate(ctx, prompt, nil)
	if err != nil {
		return nil, fmt.Errorf("regenerate bulletpoints: %w", err)
	}
	var out []string
	if err := decodeModelJSON(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotStringArray, err)
	}
	if out == nil {
		return nil, ErrNotStringArray
	}
	return out, nil
}
