package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"course_gen_backend/models"
)

type runRepository struct {
	DB *gorm.DB
}

func NewRunRepository(db *gorm.DB) RunRepository {
	return &runRepository{DB: db}
}

func (r *runRepository) Create(ctx context.Context, run *models.GenerationRun) error {
	return r.DB.WithContext(ctx).Create(run).Error
}

// GetLatestByRequestID returns gorm.ErrRecordNotFound when the id was never run.
func (r *runRepository) GetLatestByRequestID(ctx context.Context, requestID string) (*models.GenerationRun, error) {
	var run models.GenerationRun
	err := r.DB.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at DESC").
		First(&run).Error
	return &run, err
}

func (r *runRepository) UpdateProgress(ctx context.Context, id string, sectionsDone, sectionsTotal int) error {
	return r.DB.WithContext(ctx).
		Model(&models.GenerationRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"sections_done":  sectionsDone,
			"sections_total": sectionsTotal,
		}).Error
}

func (r *runRepository) Finish(ctx context.Context, id string, status string, errMsg string, course []byte) error {
	updates := map[string]interface{}{
		"status":       status,
		"error":        errMsg,
		"completed_at": time.Now(),
	}
	if len(course) > 0 {
		updates["course"] = datatypes.JSON(course)
	}
	return r.DB.WithContext(ctx).
		Model(&models.GenerationRun{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *runRepository) SetCourseKey(ctx context.Context, id string, key string) error {
	return r.DB.WithContext(ctx).
		Model(&models.GenerationRun{}).
		Where("id = ?", id).
		Update("course_key", key).Error
}
