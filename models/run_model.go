package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GenerationRun records one course generation job.
type GenerationRun struct {
	ID        string `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	RequestID string `gorm:"column:request_id;type:varchar(255);not null;index:idx_request_id" json:"request_id"`

	Topic      string `gorm:"column:topic;type:text" json:"topic"`
	Level      string `gorm:"column:level;type:varchar(32)" json:"level"`
	Language   string `gorm:"column:language;type:varchar(64)" json:"language"`
	TimeBudget int    `gorm:"column:time_budget;type:int" json:"time_budget"`
	FileCount  int    `gorm:"column:file_count;type:int" json:"file_count"`

	Status        string         `gorm:"column:status;type:varchar(32);default:'processing';index:idx_run_status" json:"status"`
	SectionsTotal int            `gorm:"column:sections_total;type:int;default:0" json:"sections_total"`
	SectionsDone  int            `gorm:"column:sections_done;type:int;default:0" json:"sections_done"`
	Error         string         `gorm:"column:error;type:text" json:"error,omitempty"`
	Course        datatypes.JSON `gorm:"column:course" json:"course,omitempty"`
	CourseKey     string         `gorm:"column:course_key;type:text" json:"-"`

	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (GenerationRun) TableName() string {
	return "generation_runs"
}

const (
	RunStatusProcessing = "processing"
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"
	RunStatusCanceled   = "canceled"
)

func (r *GenerationRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = RunStatusProcessing
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	return nil
}

func (r *GenerationRun) IsFinished() bool {
	return r.Status != RunStatusProcessing
}
