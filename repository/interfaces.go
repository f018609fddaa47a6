package repository

import (
	"context"

	"course_gen_backend/models"
)

type RunRepository interface {
	Create(ctx context.Context, run *models.GenerationRun) error
	GetLatestByRequestID(ctx context.Context, requestID string) (*models.GenerationRun, error)

	UpdateProgress(ctx context.Context, id string, sectionsDone, sectionsTotal int) error
	Finish(ctx context.Context, id string, status string, errMsg string, course []byte) error
	SetCourseKey(ctx context.Context, id string, key string) error
}
