package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"course_gen_backend/models"
)

func setupRunRepo(t *testing.T) (RunRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.GenerationRun{}))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewRunRepository(db), db
}

func findRun(t *testing.T, db *gorm.DB, id string) *models.GenerationRun {
	t.Helper()
	var run models.GenerationRun
	require.NoError(t, db.First(&run, "id = ?", id).Error)
	return &run
}

func TestRunRepository_CreateDefaults(t *testing.T) {
	repo, db := setupRunRepo(t)
	ctx := context.Background()

	run := &models.GenerationRun{RequestID: "r1", Topic: "Go", Level: "3", Language: "English", TimeBudget: 30}
	require.NoError(t, repo.Create(ctx, run))
	assert.NotEmpty(t, run.ID)

	got := findRun(t, db, run.ID)
	assert.Equal(t, models.RunStatusProcessing, got.Status)
	assert.False(t, got.IsFinished())
	assert.Nil(t, got.CompletedAt)
}

func TestRunRepository_LatestByRequestID(t *testing.T) {
	repo, _ := setupRunRepo(t)
	ctx := context.Background()

	older := &models.GenerationRun{RequestID: "r1", Topic: "first", CreatedAt: time.Now().Add(-time.Hour)}
	newer := &models.GenerationRun{RequestID: "r1", Topic: "second"}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	got, err := repo.GetLatestByRequestID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)

	_, err = repo.GetLatestByRequestID(ctx, "unknown")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRunRepository_ProgressAndFinish(t *testing.T) {
	repo, db := setupRunRepo(t)
	ctx := context.Background()

	run := &models.GenerationRun{RequestID: "r1"}
	require.NoError(t, repo.Create(ctx, run))

	require.NoError(t, repo.UpdateProgress(ctx, run.ID, 2, 5))
	got := findRun(t, db, run.ID)
	assert.Equal(t, 2, got.SectionsDone)
	assert.Equal(t, 5, got.SectionsTotal)

	require.NoError(t, repo.Finish(ctx, run.ID, models.RunStatusCompleted, "", []byte(`{"topic":"Go"}`)))
	got = findRun(t, db, run.ID)
	assert.True(t, got.IsFinished())
	assert.Equal(t, models.RunStatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)
	assert.JSONEq(t, `{"topic":"Go"}`, string(got.Course))
}

func TestRunRepository_FinishFailedKeepsError(t *testing.T) {
	repo, db := setupRunRepo(t)
	ctx := context.Background()

	run := &models.GenerationRun{RequestID: "r1"}
	require.NoError(t, repo.Create(ctx, run))
	require.NoError(t, repo.Finish(ctx, run.ID, models.RunStatusFailed, "validation failed after 4 retries", nil))

	got := findRun(t, db, run.ID)
	assert.Equal(t, models.RunStatusFailed, got.Status)
	assert.Equal(t, "validation failed after 4 retries", got.Error)
	assert.Empty(t, got.Course)
}

func TestRunRepository_SetCourseKey(t *testing.T) {
	repo, db := setupRunRepo(t)
	ctx := context.Background()

	run := &models.GenerationRun{ID: "job-1", RequestID: "r1"}
	require.NoError(t, repo.Create(ctx, run))
	assert.Equal(t, "job-1", run.ID)

	require.NoError(t, repo.SetCourseKey(ctx, run.ID, "courses/abc/1_course.json"))
	assert.Equal(t, "courses/abc/1_course.json", findRun(t, db, run.ID).CourseKey)
}
